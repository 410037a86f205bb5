package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

type Store struct {
	mu    sync.Mutex
	items []core.Spending
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the spending and returns its 1-based position.
func (s *Store) Append(_ context.Context, sp core.Spending) (int64, error) {
	if err := sp.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, sp)
	return int64(len(s.items)), nil
}

func (s *Store) UpdateCategory(_ context.Context, row int64, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return core.ErrNotFound
	}
	if row == ledger.LastRow {
		row = int64(len(s.items))
	}
	if row < 1 || row > int64(len(s.items)) {
		return core.ErrNotFound
	}
	s.items[row-1].Category = category
	return nil
}

func (s *Store) DeleteLast(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return core.ErrNotFound
	}
	s.items = s.items[:len(s.items)-1]
	return nil
}

// AllRows returns a copy so callers cannot mutate the backing slice.
func (s *Store) AllRows(_ context.Context) ([]core.Spending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Spending(nil), s.items...), nil
}

func (s *Store) Total(_ context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, sp := range s.items {
		total = total.Add(sp.Amount.Decimal())
	}
	return total, nil
}
