package metrics

import (
	"strconv"

	"loanbook/internal/core"
)

// MonthCounts is the per-month activity entry of the metrics payload.
type MonthCounts struct {
	NewLoans    int `json:"new_loans"`
	ClosedLoans int `json:"closed_loans"`
}

// LoanMetrics is the JSON shape of the book metrics, shared by the
// /loan_metrics endpoint and the CLI.
type LoanMetrics struct {
	TotalActiveLoans      int                    `json:"total_active_loans"`
	TotalCompletedLoans   int                    `json:"total_completed_loans"`
	MonthlyAmountFinanced map[string]float64     `json:"monthly_amount_financed_current_year"`
	TotalOutstanding      float64                `json:"total_outstanding_amount_with_interest"`
	MonthWiseLoanData     map[string]MonthCounts `json:"month_wise_loan_data_current_year"`
}

// NewLoanMetrics keys financed amounts by month number ("1".."12") and
// activity by English month name.
func NewLoanMetrics(snap core.Snapshot) LoanMetrics {
	resp := LoanMetrics{
		TotalActiveLoans:      snap.TotalActive,
		TotalCompletedLoans:   snap.TotalCompleted,
		MonthlyAmountFinanced: make(map[string]float64, len(snap.MonthlyFinanced)),
		TotalOutstanding:      snap.TotalOutstanding,
		MonthWiseLoanData:     make(map[string]MonthCounts, len(snap.Monthly)),
	}
	for i, amount := range snap.MonthlyFinanced {
		resp.MonthlyAmountFinanced[strconv.Itoa(i+1)] = amount.Float()
	}
	for _, m := range snap.Monthly {
		resp.MonthWiseLoanData[m.Name] = MonthCounts{NewLoans: m.NewLoans, ClosedLoans: m.ClosedLoans}
	}
	return resp
}
