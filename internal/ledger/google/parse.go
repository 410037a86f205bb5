package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
)

// dateLayout is how the date column is written. Older rows may carry the
// date-only form, so parsing tries both.
const dateLayout = "02.01.2006 15:04:05"

var dateLayouts = []string{
	dateLayout,
	"02.01.2006",
	"2006-01-02 15:04:05",
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseDecimalCell parses an amount cell, tolerating a decimal comma and a
// currency glyph around the number.
func parseDecimalCell(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "€$ ")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRow converts one sheet data row into a Spending. Rows that do not
// carry a parsable date and amount are reported as not ok.
func parseRow(row []interface{}) (core.Spending, bool) {
	cols := toStrings(row)
	if len(cols) < 5 {
		return core.Spending{}, false
	}
	date, ok := parseDate(safeGet(cols, 2))
	if !ok {
		return core.Spending{}, false
	}
	amount, err := parseDecimalCell(safeGet(cols, 3))
	if err != nil {
		return core.Spending{}, false
	}
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	if cents <= 0 {
		return core.Spending{}, false
	}
	return core.Spending{
		Year:     safeGet(cols, 0),
		Month:    safeGet(cols, 1),
		Date:     date,
		Amount:   core.Money{Cents: cents},
		Comment:  safeGet(cols, 4),
		Category: safeGet(cols, 5),
	}, true
}
