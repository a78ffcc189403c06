package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanbook/internal/amqp"
	"loanbook/internal/core"
	"loanbook/internal/loanbook"
	applog "loanbook/internal/log"
	"loanbook/internal/metrics"
	"loanbook/internal/report"
	"loanbook/internal/report/charts"
)

var fixedNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil)})
}

func testBook(t *testing.T) *loanbook.Book {
	t.Helper()
	book, _, err := loanbook.Build(context.Background(), []core.RawEntry{
		{"loan_id": "1", "start_date": "2025-03-01", "maturity_date": "2026-06-15", "loan_amount": 100.0, "profit_percentage": 10.0, "status": "Active"},
		{"loan_id": "2", "start_date": "2025-03-20", "maturity_date": "2025-05-20", "loan_amount": 200.0, "profit_percentage": 5.0, "status": "Completed"},
		{"loan_id": "3", "start_date": "2024-11-01", "maturity_date": "2025-11-01", "loan_amount": 500.0, "profit_percentage": 8.0, "status": "Defaulted"},
	})
	require.NoError(t, err)
	return book
}

type fakeComposer struct {
	err error
}

func (f fakeComposer) Compose(_ context.Context, _ core.Snapshot) (*report.Bundle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &report.Bundle{ID: "report-1", GeneratedAt: fixedNow, PDF: []byte("%PDF-1.3 fake")}, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ReportGeneratedMessage
	err  error
	done chan struct{}
}

func (f *fakePublisher) PublishReportGenerated(_ context.Context, msg *amqp.ReportGeneratedMessage) error {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.err
}

func newTestServer(t *testing.T, composer ReportComposer, opts Options) *Server {
	t.Helper()
	opts.Logger = quietLogger()
	engine := metrics.NewEngine(metrics.WithClock(func() time.Time { return fixedNow }), metrics.WithLogger(quietLogger()))
	srv := NewServer(testBook(t), engine, composer, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(srv *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestLoanMetrics(t *testing.T) {
	srv := newTestServer(t, fakeComposer{}, Options{})

	rec := do(srv, http.MethodGet, "/loan_metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		TotalActive    int                            `json:"total_active_loans"`
		TotalCompleted int                            `json:"total_completed_loans"`
		Financed       map[string]float64             `json:"monthly_amount_financed_current_year"`
		Outstanding    float64                        `json:"total_outstanding_amount_with_interest"`
		MonthWise      map[string]metrics.MonthCounts `json:"month_wise_loan_data_current_year"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 1, body.TotalActive)
	assert.Equal(t, 1, body.TotalCompleted)
	assert.InDelta(t, 110.0, body.Outstanding, 0.01)

	require.Len(t, body.Financed, 12)
	assert.Equal(t, 300.0, body.Financed["3"])
	assert.Zero(t, body.Financed["11"], "2024 loans are not in the current year")

	require.Len(t, body.MonthWise, 12)
	assert.Equal(t, metrics.MonthCounts{NewLoans: 2, ClosedLoans: 1}, body.MonthWise["March"])
	assert.Equal(t, metrics.MonthCounts{}, body.MonthWise["December"])
}

func TestLoanMetricsRawKeys(t *testing.T) {
	srv := newTestServer(t, fakeComposer{}, Options{})

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(do(srv, http.MethodGet, "/loan_metrics").Body.Bytes(), &raw))
	for _, key := range []string{
		"total_active_loans",
		"total_completed_loans",
		"monthly_amount_financed_current_year",
		"total_outstanding_amount_with_interest",
		"month_wise_loan_data_current_year",
	} {
		assert.Contains(t, raw, key)
	}
	assert.Len(t, raw, 5)
}

func TestNonFiniteMetricsGive500(t *testing.T) {
	resp := metrics.NewLoanMetrics(core.Snapshot{TotalOutstanding: math.Inf(1)})
	rec := httptest.NewRecorder()
	err := writeJSON(rec, http.StatusOK, resp)
	require.Error(t, err)
	assert.Equal(t, http.StatusOK, rec.Code, "nothing written on encode failure")
	assert.Empty(t, rec.Body.Bytes())
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, fakeComposer{}, Options{})

	for _, path := range []string{"/loan_metrics", "/generate_report"} {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rec := do(srv, method, path)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method+" "+path)
			assert.Equal(t, "GET", rec.Header().Get("Allow"))
		}
	}
}

func TestGenerateReport(t *testing.T) {
	srv := newTestServer(t, fakeComposer{}, Options{})

	rec := do(srv, http.MethodGet, "/generate_report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="loan_report.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestGenerateReportWithRealCharts(t *testing.T) {
	composer := report.NewComposer(charts.New(), report.WithLogger(quietLogger()))
	srv := newTestServer(t, composer, Options{})

	rec := do(srv, http.MethodGet, "/generate_report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestGenerateReportFailure(t *testing.T) {
	srv := newTestServer(t, fakeComposer{err: errors.New("renderer down")}, Options{})

	rec := do(srv, http.MethodGet, "/generate_report")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "report generation failed")

	// the book is untouched and metrics still work
	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/loan_metrics").Code)
}

func TestGenerateReportPublishesEvent(t *testing.T) {
	pub := &fakePublisher{done: make(chan struct{}, 1), err: errors.New("broker down")}
	srv := newTestServer(t, fakeComposer{}, Options{Publisher: pub})

	rec := do(srv, http.MethodGet, "/generate_report")
	require.Equal(t, http.StatusOK, rec.Code, "publish failure must not fail the request")

	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("report event not published")
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "report-1", msg.ReportID)
	assert.Equal(t, len("%PDF-1.3 fake"), msg.SizeBytes)
	assert.Equal(t, 1, msg.TotalActiveLoans)
	assert.Equal(t, 1, msg.TotalCompletedLoans)
	assert.Equal(t, 3, msg.BookSize)
}

func TestGenerateReportRateLimited(t *testing.T) {
	srv := newTestServer(t, fakeComposer{}, Options{ReportRateLimit: 1})

	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/generate_report").Code)
	rec := do(srv, http.MethodGet, "/generate_report")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/loan_metrics").Code, "metrics are not rate limited")
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, fakeComposer{}, Options{})

	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/healthz").Code)

	rec := do(srv, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, 3.0, body["book_size"])
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, fakeComposer{}, Options{})
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/nope").Code)
}
