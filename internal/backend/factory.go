package backend

import (
	"context"
	"fmt"
	"time"

	"loanbook/internal/loanbook"
	applog "loanbook/internal/log"
	"loanbook/internal/source"
	"loanbook/internal/source/file"
	"loanbook/internal/source/memory"
	"loanbook/internal/source/sheets"
	"loanbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Default()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentSource),
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONSource:
		return f.createJSONSource(config)
	case SQLiteSource:
		return f.createSQLiteSource(config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	case MemorySource:
		return f.createMemorySource()
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONSource(config Config) (*SourceResult, error) {
	src := file.New(config.LoansFile, config.LoansKey)

	f.logger.Info("Initialized JSON file source",
		"path", src.Path(),
		"key", config.LoansKey)

	return &SourceResult{Source: src}, nil
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite source", "db_path", config.SQLiteDBPath)

	return &SourceResult{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*SourceResult, error) {
	cli, err := sheets.New(ctx, config.GoogleSpreadsheetID, config.GoogleSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets source", "sheet", config.GoogleSheetName)

	return &SourceResult{Source: cli}, nil
}

func (f *DefaultFactory) createMemorySource() (*SourceResult, error) {
	f.logger.Warn("Initialized empty memory source; the loan book will be empty")
	return &SourceResult{Source: memory.New()}, nil
}

// LoadBook reads every entry from src and builds the cleaned loan book.
// Any read or parse failure is returned as is; callers treat it as fatal.
func LoadBook(ctx context.Context, src source.LoanSource, logger *applog.Logger) (*loanbook.Book, error) {
	if logger == nil {
		logger = applog.Default()
	}
	logger = logger.WithComponent(applog.ComponentIngest)

	start := time.Now()
	entries, err := src.ReadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read loan entries: %w", err)
	}

	book, stats, err := loanbook.Build(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("build loan book: %w", err)
	}

	logger.InfoContext(ctx, "Loan book loaded",
		applog.FieldOperation, applog.OpLoad,
		"total", stats.Total,
		"duplicates", stats.Duplicates,
		"invalid_range", stats.InvalidRange,
		applog.FieldBookSize, stats.Kept,
		applog.FieldDuration, time.Since(start).Milliseconds())

	return book, nil
}
