// Package file reads loan entries from a JSON document of the form
// {"loans": [ {...}, ... ]}.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"loanbook/internal/core"
	"loanbook/internal/source"
)

// DefaultKey is the top-level key holding the loan array.
const DefaultKey = "loans"

var ErrMissingKey = errors.New("missing loans key")

var _ source.LoanSource = (*Source)(nil)

type Source struct {
	path string
	key  string
}

// New returns a source reading path. An empty key means DefaultKey.
func New(path, key string) *Source {
	if key == "" {
		key = DefaultKey
	}
	return &Source{path: path, key: key}
}

func (s *Source) Path() string { return s.path }

// ReadEntries reads and decodes the whole file on every call.
func (s *Source) ReadEntries(ctx context.Context) ([]core.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read loans file: %w", err)
	}
	entries, err := Decode(bytes.NewReader(data), s.key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return entries, nil
}

// Decode parses a loans document. Numbers are kept as json.Number so
// amounts and identifiers survive without float rounding.
func Decode(r io.Reader, key string) ([]core.RawEntry, error) {
	if key == "" {
		key = DefaultKey
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]json.RawMessage
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode loans document: %w", err)
	}
	raw, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}

	inner := json.NewDecoder(bytes.NewReader(raw))
	inner.UseNumber()
	var entries []core.RawEntry
	if err := inner.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode %q array: %w", key, err)
	}
	return entries, nil
}
