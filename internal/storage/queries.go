package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// LoanRow mirrors one row of the loans table. Columns are stored as the
// text the source provided; parsing happens at ingestion.
type LoanRow struct {
	Seq              int64
	LoanID           sql.NullString
	StartDate        sql.NullString
	MaturityDate     sql.NullString
	LoanAmount       sql.NullString
	ProfitPercentage sql.NullString
	Status           sql.NullString
}

const listLoans = `-- name: ListLoans :many
SELECT seq, loan_id, start_date, maturity_date, loan_amount, profit_percentage, status
FROM loans
ORDER BY seq
`

func (q *Queries) ListLoans(ctx context.Context) ([]LoanRow, error) {
	rows, err := q.db.QueryContext(ctx, listLoans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LoanRow
	for rows.Next() {
		var i LoanRow
		if err := rows.Scan(
			&i.Seq,
			&i.LoanID,
			&i.StartDate,
			&i.MaturityDate,
			&i.LoanAmount,
			&i.ProfitPercentage,
			&i.Status,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertLoan = `-- name: InsertLoan :exec
INSERT INTO loans (loan_id, start_date, maturity_date, loan_amount, profit_percentage, status)
VALUES (?, ?, ?, ?, ?, ?)
`

type InsertLoanParams struct {
	LoanID           sql.NullString
	StartDate        sql.NullString
	MaturityDate     sql.NullString
	LoanAmount       sql.NullString
	ProfitPercentage sql.NullString
	Status           sql.NullString
}

func (q *Queries) InsertLoan(ctx context.Context, arg InsertLoanParams) error {
	_, err := q.db.ExecContext(ctx, insertLoan,
		arg.LoanID,
		arg.StartDate,
		arg.MaturityDate,
		arg.LoanAmount,
		arg.ProfitPercentage,
		arg.Status,
	)
	return err
}

const deleteAllLoans = `-- name: DeleteAllLoans :exec
DELETE FROM loans
`

func (q *Queries) DeleteAllLoans(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllLoans)
	return err
}

const countLoans = `-- name: CountLoans :one
SELECT COUNT(*) FROM loans
`

func (q *Queries) CountLoans(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countLoans)
	var count int64
	err := row.Scan(&count)
	return count, err
}
