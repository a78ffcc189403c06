// Package metrics computes book-wide aggregates over a loan book.
package metrics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"loanbook/internal/core"
	"loanbook/internal/loanbook"
	applog "loanbook/internal/log"
)

// Engine computes metrics snapshots. It holds no state besides its clock
// and logger and is safe for concurrent use.
type Engine struct {
	now    func() time.Time
	logger *applog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used as "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger used for degenerate-input warnings.
func WithLogger(l *applog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = applog.Default().WithComponent(applog.ComponentMetrics)
	}
	return e
}

// Today returns the engine's evaluation date.
func (e *Engine) Today() core.Date {
	return core.DateOf(e.now())
}

// Snapshot computes every metric from scratch over book. The book is only
// read; per-loan derived values live in the returned snapshot.
func (e *Engine) Snapshot(ctx context.Context, book *loanbook.Book) core.Snapshot {
	now := e.now()
	today := core.DateOf(now)
	year := today.Year()

	all := book.Loans()
	currentYear := book.StartedIn(year)

	snap := core.Snapshot{
		AsOf:            today,
		Year:            year,
		BookSize:        len(all),
		GeneratedAt:     now,
		MonthlyFinanced: MonthlyFinanced(currentYear),
		Monthly:         MonthlySeriesFor(currentYear),
	}

	for _, l := range all {
		switch {
		case l.IsActive():
			snap.TotalActive++
		case l.IsCompleted():
			snap.TotalCompleted++
		}
	}

	for _, ol := range e.activeOutstanding(book, today) {
		snap.TotalOutstanding += ol.Outstanding
		snap.Warnings = append(snap.Warnings, ol.Warnings...)
	}
	snap.StatusDistribution = StatusDistribution(all)

	for _, w := range snap.Warnings {
		e.logger.WarnContext(ctx, "Degenerate loan input",
			applog.FieldErrorType, applog.ErrorTypeDegenerateInput,
			applog.FieldLoanID, w.LoanID,
			"kind", string(w.Kind),
			"detail", w.Detail)
	}

	e.logger.DebugContext(ctx, "Metrics snapshot computed",
		applog.FieldYear, year,
		applog.FieldBookSize, snap.BookSize,
		"active", snap.TotalActive,
		"completed", snap.TotalCompleted,
		"warnings", len(snap.Warnings))

	return snap
}

// OutstandingLoan is an active loan with its projected balance.
type OutstandingLoan struct {
	Loan          core.Loan
	RemainingDays int
	Outstanding   float64
	Warnings      []core.Warning
}

// activeOutstanding builds a fresh per-call view of active loans with their
// outstanding balance at today.
func (e *Engine) activeOutstanding(book *loanbook.Book, today core.Date) []OutstandingLoan {
	var out []OutstandingLoan
	for _, l := range book.Filter(core.Loan.IsActive) {
		ol := OutstandingLoan{
			Loan:          l,
			RemainingDays: l.RemainingDays(today),
			Outstanding:   l.OutstandingWithInterest(today),
		}
		ol.Warnings = degenerateWarnings(ol)
		out = append(out, ol)
	}
	return out
}

func degenerateWarnings(ol OutstandingLoan) []core.Warning {
	var ws []core.Warning
	add := func(kind core.WarningKind, detail string) {
		ws = append(ws, core.Warning{LoanID: ol.Loan.ID, Kind: kind, Detail: detail})
	}
	if ol.Loan.Amount.IsNegative() {
		add(core.WarnNegativeAmount, "loan_amount="+ol.Loan.Amount.Decimal.String())
	}
	if ol.Loan.ProfitPercentage < 0 {
		add(core.WarnNegativeRate, fmt.Sprintf("profit_percentage=%g", ol.Loan.ProfitPercentage))
	}
	if ol.RemainingDays < 0 {
		add(core.WarnPastMaturity, fmt.Sprintf("remaining_days=%d", ol.RemainingDays))
	}
	if math.IsNaN(ol.Outstanding) || math.IsInf(ol.Outstanding, 0) {
		add(core.WarnNonFiniteOutstanding, fmt.Sprintf("outstanding=%v", ol.Outstanding))
	}
	return ws
}

// StatusDistribution counts loans per status, largest first; ties break on
// status name so the order is stable.
func StatusDistribution(loans []core.Loan) []core.StatusShare {
	counts := map[core.Status]int{}
	for _, l := range loans {
		counts[l.Status]++
	}
	out := make([]core.StatusShare, 0, len(counts))
	for status, n := range counts {
		out = append(out, core.StatusShare{
			Status: status,
			Count:  n,
			Share:  float64(n) / float64(len(loans)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}
