// Package loanbook turns raw loan entries into the cleaned, immutable loan
// book every metrics and report computation reads from.
package loanbook

import (
	"loanbook/internal/core"
)

// Book is the cleaned, deduplicated set of loans for the process lifetime.
// It has no mutators; accessors hand out copies.
type Book struct {
	loans []core.Loan
	index map[string]int
}

func newBook(loans []core.Loan) *Book {
	idx := make(map[string]int, len(loans))
	for i, l := range loans {
		idx[l.ID] = i
	}
	return &Book{loans: loans, index: idx}
}

// Len returns the number of loans in the book.
func (b *Book) Len() int {
	if b == nil {
		return 0
	}
	return len(b.loans)
}

// Loans returns a copy of all loans in input order.
func (b *Book) Loans() []core.Loan {
	if b == nil {
		return nil
	}
	out := make([]core.Loan, len(b.loans))
	copy(out, b.loans)
	return out
}

// Get looks a loan up by ID.
func (b *Book) Get(id string) (core.Loan, bool) {
	if b == nil {
		return core.Loan{}, false
	}
	i, ok := b.index[id]
	if !ok {
		return core.Loan{}, false
	}
	return b.loans[i], true
}

// StartedIn returns the loans whose start date falls in year.
func (b *Book) StartedIn(year int) []core.Loan {
	if b == nil {
		return nil
	}
	var out []core.Loan
	for _, l := range b.loans {
		if l.StartYear() == year {
			out = append(out, l)
		}
	}
	return out
}

// Filter returns the loans matching keep, as a fresh slice.
func (b *Book) Filter(keep func(core.Loan) bool) []core.Loan {
	if b == nil {
		return nil
	}
	var out []core.Loan
	for _, l := range b.loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
