package metrics

import "loanbook/internal/core"

// MonthlySeriesFor buckets loans by start month. All twelve months are
// present whatever the input; callers pass the current-year book.
//
// Closed loans are attributed to the month they started in, not the month
// they were completed.
func MonthlySeriesFor(loans []core.Loan) core.MonthlySeries {
	series := core.NewMonthlySeries()
	for _, l := range loans {
		m := l.StartMonth()
		if m < 1 || m > 12 {
			continue
		}
		series[m-1].NewLoans++
		if l.IsCompleted() {
			series[m-1].ClosedLoans++
		}
	}
	return series
}

// MonthlyFinanced sums loan amounts by start month, months 1..12 zero filled.
func MonthlyFinanced(loans []core.Loan) [12]core.Money {
	var out [12]core.Money
	for m := range out {
		out[m] = core.ZeroMoney()
	}
	for _, l := range loans {
		m := l.StartMonth()
		if m < 1 || m > 12 {
			continue
		}
		out[m-1] = out[m-1].Add(l.Amount)
	}
	return out
}
