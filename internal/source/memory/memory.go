package memory

import (
	"context"
	"maps"
	"sync"

	"loanbook/internal/core"
	"loanbook/internal/source"
)

var (
	_ source.LoanSource   = (*Store)(nil)
	_ source.LoanImporter = (*Store)(nil)
)

// Store keeps raw entries in process memory. Useful for tests and demos.
type Store struct {
	mu    sync.Mutex
	items []core.RawEntry
}

func New(entries ...core.RawEntry) *Store {
	s := &Store{}
	s.items = cloneAll(entries)
	return s
}

// ReadEntries returns a copy of the stored entries.
func (s *Store) ReadEntries(_ context.Context) ([]core.RawEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.items), nil
}

// Import replaces the stored entries.
func (s *Store) Import(_ context.Context, entries []core.RawEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneAll(entries)
	return len(s.items), nil
}

func cloneAll(in []core.RawEntry) []core.RawEntry {
	out := make([]core.RawEntry, len(in))
	for i, e := range in {
		out[i] = maps.Clone(e)
	}
	return out
}
