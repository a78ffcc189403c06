package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"loanbook/internal/backend"
	"loanbook/internal/core"
	"loanbook/internal/loanbook"
	"loanbook/internal/metrics"
)

// sourceConfig reads the loan source settings from viper.
func sourceConfig() backend.Config {
	return backend.Config{
		Type:                backend.SourceType(viper.GetString("source.type")),
		LoansFile:           viper.GetString("source.file"),
		LoansKey:            viper.GetString("source.key"),
		SQLiteDBPath:        viper.GetString("sqlite.path"),
		GoogleSpreadsheetID: viper.GetString("sheets.spreadsheet_id"),
		GoogleSheetName:     viper.GetString("sheets.sheet_name"),
	}
}

// loadBook opens the configured source and builds the book from it.
func loadBook(ctx context.Context) (*loanbook.Book, error) {
	cfg := sourceConfig()
	if cfg.Type == backend.MemorySource {
		return nil, fmt.Errorf("the memory source is empty outside the server; use json, sqlite or sheets")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src, err := backend.NewFactory(logger).CreateSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return backend.LoadBook(ctx, src.Source, logger)
}

// newEngine builds a metrics engine, pinned to asOf when it is set.
func newEngine(asOf string) (*metrics.Engine, error) {
	opts := []metrics.Option{metrics.WithLogger(logger)}
	if asOf != "" {
		day, err := time.Parse(time.DateOnly, asOf)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", asOf)
		}
		opts = append(opts, metrics.WithClock(func() time.Time { return day }))
	}
	return metrics.NewEngine(opts...), nil
}

func snapshot(ctx context.Context, asOf string) (core.Snapshot, error) {
	book, err := loadBook(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	engine, err := newEngine(asOf)
	if err != nil {
		return core.Snapshot{}, err
	}
	return engine.Snapshot(ctx, book), nil
}
