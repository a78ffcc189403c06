package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateDaysUntil(t *testing.T) {
	d := NewDate(2025, 1, 1)
	assert.Equal(t, 365, d.DaysUntil(NewDate(2026, 1, 1)))
	assert.Equal(t, 0, d.DaysUntil(d))
	assert.Equal(t, -31, d.DaysUntil(NewDate(2024, 12, 1)))
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	at := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, NewDate(2025, 3, 9), DateOf(at))
}

func TestLoanDerivedFields(t *testing.T) {
	l := Loan{StartDate: NewDate(2025, 3, 15), MaturityDate: NewDate(2026, 3, 15)}
	assert.Equal(t, 2025, l.StartYear())
	assert.Equal(t, 3, l.StartMonth())
}

func TestOutstandingWithInterest(t *testing.T) {
	today := NewDate(2025, 6, 1)
	loan := Loan{
		Amount:           NewMoney(1000),
		ProfitPercentage: 10,
		Status:           StatusActive,
	}

	t.Run("one year to maturity", func(t *testing.T) {
		loan.MaturityDate = NewDate(2026, 6, 1)
		require.Equal(t, 365, loan.RemainingDays(today))
		assert.InDelta(t, 1100.00, loan.OutstandingWithInterest(today), 0.01)
	})

	t.Run("matures today", func(t *testing.T) {
		loan.MaturityDate = today
		assert.Equal(t, 1000.00, loan.OutstandingWithInterest(today))
	})

	t.Run("past maturity shrinks below principal", func(t *testing.T) {
		loan.MaturityDate = NewDate(2024, 6, 1)
		got := loan.OutstandingWithInterest(today)
		assert.Less(t, got, 1000.0)
		assert.InDelta(t, 1000/1.1, got, 0.5)
	})

	t.Run("negative rate still computes", func(t *testing.T) {
		l := loan
		l.MaturityDate = NewDate(2026, 6, 1)
		l.ProfitPercentage = -10
		got := l.OutstandingWithInterest(today)
		assert.False(t, math.IsNaN(got))
		assert.InDelta(t, 900.0, got, 0.01)
	})
}
