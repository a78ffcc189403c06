package loanbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"loanbook/internal/core"
)

// Field names of a raw loan entry.
const (
	FieldLoanID           = "loan_id"
	FieldStartDate        = "start_date"
	FieldMaturityDate     = "maturity_date"
	FieldLoanAmount       = "loan_amount"
	FieldProfitPercentage = "profit_percentage"
	FieldStatus           = "status"
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidEntry = errors.New("invalid loan entry")
)

// dateLayouts are tried in order when parsing date fields.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// Stats describes what cleaning did to the input.
type Stats struct {
	Total        int
	Duplicates   int
	InvalidRange int
	Kept         int
}

// Build parses, deduplicates and filters raw entries into a Book.
//
// Every entry is parsed before cleaning starts, so a single malformed entry
// fails the whole load. Duplicates by loan_id keep the first occurrence;
// entries whose start date is not strictly before maturity are dropped.
// Deduplication happens before the date-range filter.
func Build(ctx context.Context, entries []core.RawEntry) (*Book, Stats, error) {
	stats := Stats{Total: len(entries)}

	parsed := make([]core.Loan, 0, len(entries))
	for i, e := range entries {
		loan, err := ParseEntry(e)
		if err != nil {
			return nil, stats, fmt.Errorf("entry %d: %w", i, err)
		}
		parsed = append(parsed, loan)
	}

	seen := make(map[string]struct{}, len(parsed))
	unique := parsed[:0]
	for _, l := range parsed {
		if _, dup := seen[l.ID]; dup {
			stats.Duplicates++
			continue
		}
		seen[l.ID] = struct{}{}
		unique = append(unique, l)
	}

	loans := make([]core.Loan, 0, len(unique))
	for _, l := range unique {
		if !l.StartDate.Before(l.MaturityDate.Time) {
			stats.InvalidRange++
			slog.DebugContext(ctx, "Dropping loan with invalid date range",
				"loan_id", l.ID,
				"start_date", l.StartDate.String(),
				"maturity_date", l.MaturityDate.String())
			continue
		}
		loans = append(loans, l)
	}
	stats.Kept = len(loans)

	return newBook(loans), stats, nil
}

// ParseEntry converts one raw entry into a Loan without any cleaning.
func ParseEntry(e core.RawEntry) (core.Loan, error) {
	id, err := parseID(e[FieldLoanID])
	if err != nil {
		return core.Loan{}, err
	}

	start, err := parseDate(e[FieldStartDate])
	if err != nil {
		return core.Loan{}, fmt.Errorf("%s: %w", FieldStartDate, err)
	}
	maturity, err := parseDate(e[FieldMaturityDate])
	if err != nil {
		return core.Loan{}, fmt.Errorf("%s: %w", FieldMaturityDate, err)
	}

	amount, err := core.ParseMoney(e[FieldLoanAmount])
	if err != nil {
		return core.Loan{}, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, FieldLoanAmount, err)
	}
	rate, err := core.ParseFloat(e[FieldProfitPercentage])
	if err != nil {
		return core.Loan{}, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, FieldProfitPercentage, err)
	}

	status, _ := e[FieldStatus].(string)

	return core.Loan{
		ID:               id,
		StartDate:        start,
		MaturityDate:     maturity,
		Amount:           amount,
		ProfitPercentage: rate,
		Status:           core.Status(strings.TrimSpace(status)),
	}, nil
}

func parseID(v any) (string, error) {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return s, nil
		}
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case json.Number:
		return x.String(), nil
	}
	return "", fmt.Errorf("%w: missing %s", ErrInvalidEntry, FieldLoanID)
}

func parseDate(v any) (core.Date, error) {
	s, ok := v.(string)
	if !ok {
		return core.Date{}, fmt.Errorf("%w: expected string, got %T", ErrInvalidDate, v)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
