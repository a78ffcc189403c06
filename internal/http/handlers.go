package http

import (
	"context"
	"net/http"
	"strconv"

	"loanbook/internal/amqp"
	"loanbook/internal/core"
	applog "loanbook/internal/log"
	"loanbook/internal/metrics"
	"loanbook/internal/report"
)

func (s *Server) handleLoanMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	snap := s.engine.Snapshot(ctx, s.book)
	if err := writeJSON(w, http.StatusOK, metrics.NewLoanMetrics(snap)); err != nil {
		logger.ErrorContext(ctx, "Cannot encode loan metrics",
			applog.FieldOperation, applog.OpMetrics,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal)
		writeError(w, http.StatusInternalServerError, "cannot encode loan metrics")
	}
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	snap := s.engine.Snapshot(ctx, s.book)
	bundle, err := s.composer.Compose(ctx, snap)
	if err != nil {
		logger.ErrorContext(ctx, "Report generation failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeRender)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="loan_report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(bundle.PDF)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(bundle.PDF); err != nil {
		logger.WarnContext(ctx, "Report write interrupted", applog.FieldError, err)
		return
	}

	s.events.LogReportGenerated(ctx, bundle.ID, len(bundle.PDF), snap.BookSize)
	s.publishReport(ctx, bundle, snap)
}

// publishReport sends the report event in the background. Failures are
// logged and never reach the client.
func (s *Server) publishReport(ctx context.Context, bundle *report.Bundle, snap core.Snapshot) {
	if s.publisher == nil {
		return
	}
	msg := &amqp.ReportGeneratedMessage{
		ReportID:            bundle.ID,
		GeneratedAt:         bundle.GeneratedAt.UTC(),
		SizeBytes:           len(bundle.PDF),
		TotalActiveLoans:    snap.TotalActive,
		TotalCompletedLoans: snap.TotalCompleted,
		BookSize:            snap.BookSize,
	}
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentAMQP)
	ctx = context.WithoutCancel(ctx)

	s.publishes.Add(1)
	go func() {
		defer s.publishes.Done()
		if err := s.publisher.PublishReportGenerated(ctx, msg); err != nil {
			logger.WarnContext(ctx, "Cannot publish report event",
				applog.FieldReportID, msg.ReportID,
				applog.FieldOperation, applog.OpPublish,
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
		}
	}()
}

type healthResponse struct {
	Status   string `json:"status"`
	BookSize *int   `json:"book_size,omitempty"`
	Requests *int64 `json:"requests_served,omitempty"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	size := s.book.Len()
	served := s.tracer.GetMetrics().TotalRequests
	_ = writeJSON(w, http.StatusOK, healthResponse{Status: "ready", BookSize: &size, Requests: &served})
}
