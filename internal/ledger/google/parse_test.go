package google

import (
	"testing"
	"time"
)

func TestParseRow(t *testing.T) {
	row := []interface{}{"2026", "01 january", "07.01.2026 10:00:00", "10.50", "coffee", "🛒 Продукты"}
	sp, ok := parseRow(row)
	if !ok {
		t.Fatalf("expected row to parse")
	}
	if sp.Year != "2026" || sp.Month != "01 january" {
		t.Fatalf("unexpected year/month: %q %q", sp.Year, sp.Month)
	}
	want := time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)
	if !sp.Date.Equal(want) {
		t.Fatalf("date: got %v", sp.Date)
	}
	if sp.Amount.Cents != 1050 {
		t.Fatalf("amount cents: got %d", sp.Amount.Cents)
	}
	if sp.Comment != "coffee" || sp.Category != "🛒 Продукты" {
		t.Fatalf("comment/category: %q %q", sp.Comment, sp.Category)
	}
}

func TestParseRowVariants(t *testing.T) {
	cases := []struct {
		name string
		row  []interface{}
		ok   bool
	}{
		{"date only", []interface{}{"2026", "01 january", "07.01.2026", "5", "tea", ""}, true},
		{"iso datetime", []interface{}{"2026", "01 january", "2026-01-07 10:00:00", "5", "tea", ""}, true},
		{"decimal comma", []interface{}{"2026", "01 january", "07.01.2026", "5,50", "tea", ""}, true},
		{"cleared row", []interface{}{"", "", "", "", "", ""}, false},
		{"bad amount", []interface{}{"2026", "01 january", "07.01.2026", "n/a", "tea", ""}, false},
		{"missing category column", []interface{}{"2026", "01 january", "07.01.2026", "5", "tea"}, true},
		{"too short", []interface{}{"2026", "01 january"}, false},
	}
	for _, tc := range cases {
		if _, ok := parseRow(tc.row); ok != tc.ok {
			t.Fatalf("%s: expected ok=%v", tc.name, tc.ok)
		}
	}
}

func TestParseDecimalCell(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1234.56", "1234.56", true},
		{"1234,56", "1234.56", true},
		{"€ 1234.56", "1234.56", true},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := parseDecimalCell(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q: got %s err=%v", tc.in, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}
