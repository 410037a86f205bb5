package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewSpendingStampsDerivedFields(t *testing.T) {
	now := time.Date(2026, 1, 7, 10, 30, 0, 0, time.UTC)
	s := NewSpending(now, Money{Cents: 1050}, "  coffee ")
	if s.Year != "2026" {
		t.Fatalf("year: got %q", s.Year)
	}
	if s.Month != "01 january" {
		t.Fatalf("month: got %q", s.Month)
	}
	if s.Comment != "coffee" {
		t.Fatalf("comment: got %q", s.Comment)
	}
	if s.Category != "" {
		t.Fatalf("category should start empty, got %q", s.Category)
	}
}

func TestSpendingValidate(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		s    Spending
		want error
	}{
		{"valid", NewSpending(now, Money{Cents: 100}, "coffee"), nil},
		{"zero amount", NewSpending(now, Money{}, "coffee"), ErrInvalidAmount},
		{"empty comment", NewSpending(now, Money{Cents: 100}, "   "), ErrEmptyComment},
	}
	for _, tc := range cases {
		err := tc.s.Validate()
		if tc.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestIsCategoryExactMatch(t *testing.T) {
	if !IsCategory("🛒 Продукты") {
		t.Fatalf("known label should match")
	}
	if IsCategory("🛒 Продукты ") {
		t.Fatalf("trailing whitespace must not match")
	}
	if IsCategory("Продукты") {
		t.Fatalf("substring must not match")
	}
}
