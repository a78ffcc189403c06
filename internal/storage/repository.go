package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"loanbook/internal/core"
	"loanbook/internal/loanbook"
	"loanbook/internal/source"

	_ "modernc.org/sqlite"
)

var (
	_ source.LoanSource   = (*SQLiteRepository)(nil)
	_ source.LoanImporter = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadEntries implements source.LoanSource. Rows come back in insertion
// order; NULL columns are left out of the entry.
func (r *SQLiteRepository) ReadEntries(ctx context.Context) ([]core.RawEntry, error) {
	rows, err := r.queries.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	entries := make([]core.RawEntry, 0, len(rows))
	for _, row := range rows {
		e := core.RawEntry{}
		put(e, loanbook.FieldLoanID, row.LoanID)
		put(e, loanbook.FieldStartDate, row.StartDate)
		put(e, loanbook.FieldMaturityDate, row.MaturityDate)
		put(e, loanbook.FieldLoanAmount, row.LoanAmount)
		put(e, loanbook.FieldProfitPercentage, row.ProfitPercentage)
		put(e, loanbook.FieldStatus, row.Status)
		entries = append(entries, e)
	}

	slog.DebugContext(ctx, "Loans read from SQLite", "count", len(entries))
	return entries, nil
}

// Import implements source.LoanImporter. The table is replaced atomically.
func (r *SQLiteRepository) Import(ctx context.Context, entries []core.RawEntry) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteAllLoans(ctx); err != nil {
		return 0, fmt.Errorf("clear loans: %w", err)
	}

	for i, e := range entries {
		err := q.InsertLoan(ctx, InsertLoanParams{
			LoanID:           text(e[loanbook.FieldLoanID]),
			StartDate:        text(e[loanbook.FieldStartDate]),
			MaturityDate:     text(e[loanbook.FieldMaturityDate]),
			LoanAmount:       text(e[loanbook.FieldLoanAmount]),
			ProfitPercentage: text(e[loanbook.FieldProfitPercentage]),
			Status:           text(e[loanbook.FieldStatus]),
		})
		if err != nil {
			return 0, fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Loans imported into SQLite", "count", len(entries))
	return len(entries), nil
}

// Count returns the number of stored rows.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountLoans(ctx)
	if err != nil {
		return 0, fmt.Errorf("count loans: %w", err)
	}
	return int(n), nil
}

func put(e core.RawEntry, key string, v sql.NullString) {
	if v.Valid {
		e[key] = v.String
	}
}

// text renders a raw JSON-ish value as the column text.
func text(v any) sql.NullString {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: x, Valid: true}
	case json.Number:
		return sql.NullString{String: x.String(), Valid: true}
	case float64:
		return sql.NullString{String: strconv.FormatFloat(x, 'f', -1, 64), Valid: true}
	case time.Time:
		return sql.NullString{String: x.Format(time.RFC3339), Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(x), Valid: true}
	}
}
