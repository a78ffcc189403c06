package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"loanbook/internal/core"
)

func testSnapshot() core.Snapshot {
	snap := core.Snapshot{
		AsOf:             core.NewDate(2025, 6, 15),
		Year:             2025,
		BookSize:         1200,
		TotalActive:      3,
		TotalCompleted:   1,
		TotalOutstanding: 1234.5,
		Monthly:          core.NewMonthlySeries(),
		StatusDistribution: []core.StatusShare{
			{Status: "Active", Count: 3, Share: 0.75},
			{Status: "", Count: 1, Share: 0.25},
		},
		Warnings: []core.Warning{
			{LoanID: "L-9", Kind: core.WarnPastMaturity, Detail: "remaining_days=-3"},
		},
	}
	for i := range snap.MonthlyFinanced {
		snap.MonthlyFinanced[i] = core.ZeroMoney()
	}
	snap.MonthlyFinanced[2] = core.NewMoney(2500)
	snap.Monthly[2].NewLoans = 2
	return snap
}

func TestRenderSnapshot(t *testing.T) {
	out := RenderSnapshot(testSnapshot())

	for _, want := range []string{
		"2025-06-15",
		"1,200",
		"$1,234.50",
		"March",
		"$2,500.00",
		"December",
		"Active 3 (75.0%)",
		"Unknown 1 (25.0%)",
		"loan L-9",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderSnapshot() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderSnapshotEmptyBook(t *testing.T) {
	snap := core.Snapshot{AsOf: core.NewDate(2025, 1, 1), Monthly: core.NewMonthlySeries()}
	out := RenderSnapshot(snap)

	if strings.Contains(out, "Statuses:") {
		t.Errorf("empty book should not list statuses:\n%s", out)
	}
	if got := strings.Count(out, "$0.00"); got < 12 {
		t.Errorf("expected a zero row per month, got %d zero amounts", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[float64]string{
		0:        "$0.00",
		12.5:     "$12.50",
		1234567:  "$1,234,567.00",
		-1000.25: "-$1,000.25",
	}
	for in, want := range tests {
		if got := formatAmount(in); got != want {
			t.Errorf("formatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRunShutdown(t *testing.T) {
	if err := runShutdown(context.Background(), nil); err != nil {
		t.Errorf("runShutdown(nil) = %v", err)
	}
	boom := errors.New("boom")
	err := runShutdown(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("runShutdown() = %v, want %v", err, boom)
	}
}
