// Package core provides the loan domain model.
//
// This file contains the Money type and helpers for parsing monetary amounts
// out of loosely typed source values.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Money is a monetary amount kept as an exact decimal so that financed sums
// do not accumulate floating point drift.
type Money struct {
	decimal.Decimal
}

// NewMoney builds Money from a float amount.
func NewMoney(v float64) Money {
	return Money{Decimal: decimal.NewFromFloat(v)}
}

// ZeroMoney returns a zero amount.
func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Float returns the amount as float64 for formulas and JSON output.
func (m Money) Float() float64 {
	return m.Decimal.InexactFloat64()
}

// String formats the amount with a dollar sign and two decimals, e.g. "$1234.50".
func (m Money) String() string {
	if m.Decimal.IsNegative() {
		return "-$" + m.Decimal.Neg().StringFixed(2)
	}
	return "$" + m.Decimal.StringFixed(2)
}

// ParseMoney converts a raw source value into Money.
//
// It accepts JSON numbers (float64, json.Number), Go integer types and
// numeric strings. Negative values are accepted: rejecting them is not the
// job of the parser.
//
// Examples:
//
//	ParseMoney(1000.0)    -> 1000
//	ParseMoney("2500.75") -> 2500.75
//	ParseMoney("abc")     -> ErrInvalidAmount
func ParseMoney(v any) (Money, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

// ParseFloat converts a raw source value into float64 using the same rules
// as ParseMoney.
func ParseFloat(v any) (float64, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return decimalFromString(x.String())
	case string:
		return decimalFromString(x)
	case nil:
		return decimal.Zero, fmt.Errorf("%w: missing value", ErrInvalidAmount)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

func decimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
