package core

import "time"

// MonthActivity is the new/closed loan count for one calendar month.
type MonthActivity struct {
	Month       int    `json:"month"` // 1-12
	Name        string `json:"name"`
	NewLoans    int    `json:"new_loans"`
	ClosedLoans int    `json:"closed_loans"`
}

// MonthlySeries always holds January..December in order.
type MonthlySeries [12]MonthActivity

// MonthNames lists calendar month names, January first.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// NewMonthlySeries returns a zero-filled series with month numbers and names set.
func NewMonthlySeries() MonthlySeries {
	var s MonthlySeries
	for i := range s {
		s[i] = MonthActivity{Month: i + 1, Name: MonthNames[i]}
	}
	return s
}

// StatusShare is the count of loans with one status and its share of the book.
type StatusShare struct {
	Status Status
	Count  int
	Share  float64 // 0..1
}

// WarningKind classifies a degenerate input met while computing metrics.
type WarningKind string

const (
	WarnNegativeAmount       WarningKind = "negative_amount"
	WarnNegativeRate         WarningKind = "negative_rate"
	WarnPastMaturity         WarningKind = "past_maturity"
	WarnNonFiniteOutstanding WarningKind = "non_finite_outstanding"
)

// Warning flags a loan whose figures were computed but may mislead.
type Warning struct {
	LoanID string
	Kind   WarningKind
	Detail string
}

// Snapshot is the book-wide metrics view at one evaluation date.
type Snapshot struct {
	AsOf        Date
	Year        int
	BookSize    int
	GeneratedAt time.Time

	TotalActive    int
	TotalCompleted int

	// MonthlyFinanced is indexed by month-1 and always zero filled.
	MonthlyFinanced  [12]Money
	TotalOutstanding float64

	Monthly            MonthlySeries
	StatusDistribution []StatusShare
	Warnings           []Warning
}

// OtherStatusCount is the number of loans neither Active nor Completed.
func (s Snapshot) OtherStatusCount() int {
	return s.BookSize - s.TotalActive - s.TotalCompleted
}
