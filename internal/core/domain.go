package core

import (
	"math"
	"time"
)

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
)

type (
	// Status is the lifecycle label of a loan. Only Active and Completed carry
	// meaning for aggregation; any other value is counted as is.
	Status string

	// RawEntry is one loan as read from a source, before parsing.
	RawEntry map[string]any

	Date struct {
		time.Time
	}

	Loan struct {
		ID               string
		StartDate        Date
		MaturityDate     Date
		Amount           Money
		ProfitPercentage float64
		Status           Status
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// DaysUntil returns the number of whole calendar days from d to other.
// The result is negative when other is before d.
func (d Date) DaysUntil(other Date) int {
	return int(math.Round(other.Time.Sub(d.Time).Hours() / 24))
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// StartYear returns the calendar year the loan started in.
func (l Loan) StartYear() int {
	return l.StartDate.Year()
}

// StartMonth returns the calendar month (1-12) the loan started in.
func (l Loan) StartMonth() int {
	return l.StartDate.Month()
}

func (l Loan) IsActive() bool {
	return l.Status == StatusActive
}

func (l Loan) IsCompleted() bool {
	return l.Status == StatusCompleted
}

// RemainingDays is the signed number of days between today and maturity.
func (l Loan) RemainingDays(today Date) int {
	return today.DaysUntil(l.MaturityDate)
}

// OutstandingWithInterest projects principal plus compound interest over the
// days left until maturity:
//
//	amount * (1 + rate/100) ^ (remainingDays / 365)
//
// Past maturity the exponent is negative and the value falls below principal.
// The value is only meaningful for active loans.
func (l Loan) OutstandingWithInterest(today Date) float64 {
	days := float64(l.RemainingDays(today))
	growth := math.Pow(1+l.ProfitPercentage/100, days/365)
	return l.Amount.Float() * growth
}
