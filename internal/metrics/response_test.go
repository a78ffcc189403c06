package metrics

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanbook/internal/core"
)

func TestNewLoanMetricsKeys(t *testing.T) {
	loans := []core.Loan{
		{StartDate: core.NewDate(2025, 3, 1), MaturityDate: core.NewDate(2025, 8, 1), Amount: core.NewMoney(300), Status: core.StatusCompleted},
		{StartDate: core.NewDate(2025, 3, 9), MaturityDate: core.NewDate(2026, 3, 9), Amount: core.NewMoney(50), Status: core.StatusActive},
	}
	snap := core.Snapshot{
		TotalActive:     1,
		TotalCompleted:  1,
		MonthlyFinanced: MonthlyFinanced(loans),
		Monthly:         MonthlySeriesFor(loans),
	}

	resp := NewLoanMetrics(snap)

	require.Len(t, resp.MonthlyAmountFinanced, 12)
	for i := 1; i <= 12; i++ {
		assert.Contains(t, resp.MonthlyAmountFinanced, strconv.Itoa(i))
	}
	assert.Equal(t, 350.0, resp.MonthlyAmountFinanced["3"])
	require.Len(t, resp.MonthWiseLoanData, 12)
	for _, name := range core.MonthNames {
		assert.Contains(t, resp.MonthWiseLoanData, name)
	}
	assert.Equal(t, MonthCounts{NewLoans: 2, ClosedLoans: 1}, resp.MonthWiseLoanData["March"])
	assert.Equal(t, 1, resp.TotalActiveLoans)
	assert.Equal(t, 1, resp.TotalCompletedLoans)
}
