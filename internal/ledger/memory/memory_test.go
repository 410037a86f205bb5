package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

func spending(t *testing.T, amount, comment string) core.Spending {
	t.Helper()
	m, err := core.ParseMoney(amount)
	if err != nil {
		t.Fatalf("parse %q: %v", amount, err)
	}
	return core.NewSpending(time.Now(), m, comment)
}

func TestAppendAssignsPositions(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i, c := range []string{"coffee", "taxi", "books"} {
		row, err := s.Append(ctx, spending(t, "10", c))
		if err != nil || row != int64(i+1) {
			t.Fatalf("append %d: row=%d err=%v", i, row, err)
		}
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.Append(context.Background(), core.Spending{Date: time.Now(), Comment: "x"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	rows, _ := s.AllRows(context.Background())
	if len(rows) != 0 {
		t.Fatalf("row count changed on failed append: %d", len(rows))
	}
}

func TestUpdateCategoryLastAndByRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.UpdateCategory(ctx, ledger.LastRow, "🛒 Продукты"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("empty store: expected ErrNotFound, got %v", err)
	}
	s.Append(ctx, spending(t, "10.50", "coffee"))
	s.Append(ctx, spending(t, "20", "taxi"))
	if err := s.UpdateCategory(ctx, ledger.LastRow, "🚇 Транспорт"); err != nil {
		t.Fatalf("update last: %v", err)
	}
	if err := s.UpdateCategory(ctx, 1, "🛒 Продукты"); err != nil {
		t.Fatalf("update row 1: %v", err)
	}
	rows, _ := s.AllRows(ctx)
	if rows[0].Category != "🛒 Продукты" || rows[1].Category != "🚇 Транспорт" {
		t.Fatalf("unexpected categories: %q %q", rows[0].Category, rows[1].Category)
	}
	if err := s.UpdateCategory(ctx, 5, "🌎 Прочее"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("out of range: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLast(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.DeleteLast(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("empty store: expected ErrNotFound, got %v", err)
	}
	s.Append(ctx, spending(t, "10", "coffee"))
	if err := s.DeleteLast(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, _ := s.AllRows(ctx)
	if len(rows) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(rows))
	}
}

func TestAllRowsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Append(ctx, spending(t, "10", "coffee"))
	s.Append(ctx, spending(t, "20", "taxi"))
	a, _ := s.AllRows(ctx)
	b, _ := s.AllRows(ctx)
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs between reads", i)
		}
	}
	// Mutating the returned slice must not affect the store
	a[0].Category = "mutated"
	c, _ := s.AllRows(ctx)
	if c[0].Category == "mutated" {
		t.Fatalf("AllRows leaked internal state")
	}
}

func TestTotal(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Append(ctx, spending(t, "10.50", "coffee"))
	s.Append(ctx, spending(t, "20", "taxi"))
	total, err := s.Total(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.String() != "30.5" {
		t.Fatalf("expected 30.5, got %s", total)
	}
}
