package metrics

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanbook/internal/core"
	"loanbook/internal/loanbook"
	applog "loanbook/internal/log"
)

var fixedNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func buildBook(t *testing.T, entries ...core.RawEntry) *loanbook.Book {
	t.Helper()
	book, _, err := loanbook.Build(context.Background(), entries)
	require.NoError(t, err)
	return book
}

func loan(id, start, maturity string, amount, rate float64, status string) core.RawEntry {
	return core.RawEntry{
		loanbook.FieldLoanID:           id,
		loanbook.FieldStartDate:        start,
		loanbook.FieldMaturityDate:     maturity,
		loanbook.FieldLoanAmount:       amount,
		loanbook.FieldProfitPercentage: rate,
		loanbook.FieldStatus:           status,
	}
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{
		Component: applog.ComponentMetrics,
		Handler:   slog.NewTextHandler(&bytes.Buffer{}, nil),
	})
}

func newTestEngine() *Engine {
	return NewEngine(WithClock(fixedClock), WithLogger(quietLogger()))
}

func TestSnapshotCounts(t *testing.T) {
	book := buildBook(t,
		loan("a", "2025-01-01", "2026-01-01", 100, 5, "Active"),
		loan("b", "2024-01-01", "2026-01-01", 100, 5, "Active"),
		loan("c", "2025-02-01", "2026-01-01", 100, 5, "Completed"),
		loan("d", "2025-02-01", "2026-01-01", 100, 5, "Defaulted"),
		loan("e", "2023-02-01", "2026-01-01", 100, 5, "Pending"),
	)

	snap := newTestEngine().Snapshot(context.Background(), book)

	assert.Equal(t, 2, snap.TotalActive)
	assert.Equal(t, 1, snap.TotalCompleted)
	assert.Equal(t, 2, snap.OtherStatusCount())
	assert.Equal(t, book.Len(), snap.TotalActive+snap.TotalCompleted+snap.OtherStatusCount())
	assert.Equal(t, 2025, snap.Year)
	assert.Equal(t, core.NewDate(2025, 6, 15), snap.AsOf)
}

func TestSnapshotMonthlyFinancedZeroFilled(t *testing.T) {
	book := buildBook(t,
		loan("a", "2025-03-02", "2026-01-01", 100, 5, "Active"),
		loan("b", "2025-03-20", "2026-01-01", 200, 5, "Completed"),
		loan("c", "2024-03-20", "2026-01-01", 5000, 5, "Active"),
	)

	snap := newTestEngine().Snapshot(context.Background(), book)

	for m, amount := range snap.MonthlyFinanced {
		if m+1 == 3 {
			assert.Equal(t, 300.0, amount.Float())
			continue
		}
		assert.True(t, amount.IsZero(), "month %d", m+1)
	}
}

func TestSnapshotOutstanding(t *testing.T) {
	today := core.DateOf(fixedNow)
	oneYear := today.AddDate(0, 0, 365).Format("2006-01-02")
	todayStr := today.Format("2006-01-02")

	t.Run("one year out", func(t *testing.T) {
		book := buildBook(t, loan("a", "2025-01-01", oneYear, 1000, 10, "Active"))
		snap := newTestEngine().Snapshot(context.Background(), book)
		assert.InDelta(t, 1100.00, snap.TotalOutstanding, 0.01)
	})

	t.Run("matures today", func(t *testing.T) {
		book := buildBook(t, loan("a", "2025-01-01", todayStr, 1000, 10, "Active"))
		snap := newTestEngine().Snapshot(context.Background(), book)
		assert.Equal(t, 1000.00, snap.TotalOutstanding)
	})

	t.Run("only active loans count", func(t *testing.T) {
		book := buildBook(t,
			loan("a", "2025-01-01", todayStr, 1000, 10, "Active"),
			loan("b", "2025-01-01", oneYear, 1000, 10, "Completed"),
		)
		snap := newTestEngine().Snapshot(context.Background(), book)
		assert.Equal(t, 1000.00, snap.TotalOutstanding)
	})
}

func TestSnapshotDegenerateInputsWarnButCompute(t *testing.T) {
	book := buildBook(t,
		loan("neg-rate", "2025-01-01", "2026-06-15", 1000, -10, "Active"),
		loan("past", "2024-01-01", "2025-01-01", 1000, 10, "Active"),
		loan("neg-amount", "2025-01-01", "2026-06-15", -50, 10, "Active"),
	)

	var logs bytes.Buffer
	engine := NewEngine(WithClock(fixedClock), WithLogger(applog.New(applog.Config{
		Component: applog.ComponentMetrics,
		Handler:   slog.NewTextHandler(&logs, nil),
	})))
	snap := engine.Snapshot(context.Background(), book)

	kinds := map[core.WarningKind]string{}
	for _, w := range snap.Warnings {
		kinds[w.Kind] = w.LoanID
	}
	assert.Equal(t, "neg-rate", kinds[core.WarnNegativeRate])
	assert.Equal(t, "past", kinds[core.WarnPastMaturity])
	assert.Equal(t, "neg-amount", kinds[core.WarnNegativeAmount])
	assert.NotZero(t, snap.TotalOutstanding)
	assert.Contains(t, logs.String(), applog.ErrorTypeDegenerateInput)
}

func TestSnapshotIsIdempotentAtFixedClock(t *testing.T) {
	book := buildBook(t,
		loan("a", "2025-01-01", "2027-01-01", 1234.56, 7.5, "Active"),
		loan("b", "2025-04-01", "2026-01-01", 999, 3, "Completed"),
	)
	engine := newTestEngine()

	first := engine.Snapshot(context.Background(), book)
	second := engine.Snapshot(context.Background(), book)
	assert.Equal(t, first, second)
}

func TestSnapshotDoesNotMutateBook(t *testing.T) {
	book := buildBook(t, loan("a", "2025-01-01", "2027-01-01", 1000, 10, "Active"))
	before := book.Loans()

	newTestEngine().Snapshot(context.Background(), book)

	assert.Equal(t, before, book.Loans())
}

func TestSnapshotEmptyBook(t *testing.T) {
	snap := newTestEngine().Snapshot(context.Background(), buildBook(t))

	assert.Zero(t, snap.BookSize)
	assert.Zero(t, snap.TotalOutstanding)
	assert.Len(t, snap.Monthly, 12)
	assert.Empty(t, snap.StatusDistribution)
}

func TestStatusDistribution(t *testing.T) {
	loans := []core.Loan{
		{Status: "Active"}, {Status: "Completed"}, {Status: "Active"}, {Status: "Defaulted"},
	}
	got := StatusDistribution(loans)

	require.Len(t, got, 3)
	assert.Equal(t, core.StatusShare{Status: "Active", Count: 2, Share: 0.5}, got[0])
	assert.Equal(t, core.Status("Completed"), got[1].Status)
	assert.Equal(t, core.Status("Defaulted"), got[2].Status)
}

func TestActiveOutstandingView(t *testing.T) {
	book := buildBook(t,
		loan("a", "2025-01-01", "2025-06-15", 1000, 10, "Active"),
		loan("b", "2025-01-01", "2026-01-01", 1000, 10, "Completed"),
	)
	e := newTestEngine()
	view := e.activeOutstanding(book, e.Today())

	require.Len(t, view, 1)
	assert.Equal(t, "a", view[0].Loan.ID)
	assert.Equal(t, 0, view[0].RemainingDays)
	assert.Equal(t, 1000.0, view[0].Outstanding)
}
