package backend

import (
	"context"

	"loanbook/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the loan source and optional cleanup function
type SourceResult struct {
	Source  source.LoanSource
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *SourceResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates loan sources based on configuration
type Factory interface {
	// CreateSource creates a loan source based on the provided config
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// Config holds configuration for source creation
type Config struct {
	Type SourceType

	// JSON file specific
	LoansFile string
	LoansKey  string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// SourceType represents the kind of loan source
type SourceType string

const (
	JSONSource   SourceType = "json"
	SQLiteSource SourceType = "sqlite"
	SheetsSource SourceType = "sheets"
	MemorySource SourceType = "memory"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case JSONSource, SQLiteSource, SheetsSource, MemorySource:
		return true
	default:
		return false
	}
}
