// Package source defines where raw loan entries come from.
package source

import (
	"context"

	"loanbook/internal/core"
)

// Ports for loan source adapters.
type (
	// LoanSource yields the raw entries of the loan book in input order.
	LoanSource interface {
		ReadEntries(ctx context.Context) ([]core.RawEntry, error)
	}

	// LoanImporter replaces the stored entries with the given ones.
	LoanImporter interface {
		Import(ctx context.Context, entries []core.RawEntry) (int, error)
	}
)
