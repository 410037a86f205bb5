// Package report builds the day/week/month/year summaries and the running
// total reply from the ledger's row set. Every report re-reads the full row
// set; there is deliberately no caching in between.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finbot/internal/core"
	"finbot/internal/ledger"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Report trigger labels as they appear on the reply keyboard.
const (
	LabelDay   = "📊 День"
	LabelWeek  = "📊 Неделя"
	LabelMonth = "📊 Месяц"
	LabelYear  = "📊 Год"
)

// NoData is returned for periods without any matching rows.
const NoData = "Нет данных за этот период."

const uncategorized = "(без категории)"

// PeriodFromLabel maps a keyboard label to its period.
func PeriodFromLabel(label string) (Period, bool) {
	switch label {
	case LabelDay:
		return PeriodDay, true
	case LabelWeek:
		return PeriodWeek, true
	case LabelMonth:
		return PeriodMonth, true
	case LabelYear:
		return PeriodYear, true
	}
	return "", false
}

var dayAbbreviations = map[string]string{
	"Monday":    "пн",
	"Tuesday":   "вт",
	"Wednesday": "ср",
	"Thursday":  "чт",
	"Friday":    "пт",
	"Saturday":  "сб",
	"Sunday":    "вс",
}

// DayAbbreviation localizes an English weekday name. Unknown names pass
// through unchanged.
func DayAbbreviation(day string) string {
	if abbrev, ok := dayAbbreviations[day]; ok {
		return abbrev
	}
	return day
}

type Aggregator struct {
	store    ledger.Store
	currency string
	now      func() time.Time
}

func New(store ledger.Store) *Aggregator {
	return NewWithClock(store, time.Now)
}

// NewWithClock injects the clock; reports always aggregate relative to "now".
func NewWithClock(store ledger.Store, now func() time.Time) *Aggregator {
	return &Aggregator{store: store, currency: "€", now: now}
}

// Report renders the summary for the given period.
//
// The week window is the ISO calendar week: Monday through Sunday of the week
// containing today, dates inclusive.
func (a *Aggregator) Report(ctx context.Context, period Period) (string, error) {
	rows, err := a.store.AllRows(ctx)
	if err != nil {
		return "", fmt.Errorf("read rows: %w", err)
	}
	now := a.now()

	switch period {
	case PeriodDay:
		return a.formatRows(filterRows(rows, func(sp core.Spending) bool {
			return sameDay(sp.Date, now)
		})), nil
	case PeriodWeek:
		monday, sunday := weekBounds(now)
		return a.formatRows(filterRows(rows, func(sp core.Spending) bool {
			// Backends hand back dates in their own zone; only the calendar
			// date matters, so pin it in the clock's location before comparing.
			d := dateIn(sp.Date, now.Location())
			return !d.Before(monday) && !d.After(sunday)
		})), nil
	case PeriodMonth:
		matched := filterRows(rows, func(sp core.Spending) bool {
			return sp.Year == now.Format("2006") && sp.Month == strings.ToLower(now.Format("01 January"))
		})
		return a.formatGrouped(now.Format("2006.01"), matched), nil
	case PeriodYear:
		matched := filterRows(rows, func(sp core.Spending) bool {
			return sp.Year == now.Format("2006")
		})
		return a.formatGrouped(now.Format("2006"), matched), nil
	}
	return "", fmt.Errorf("unknown report period: %s", period)
}

// TotalBalance renders the running total of all recorded spendings.
func (a *Aggregator) TotalBalance(ctx context.Context) (string, error) {
	total, err := a.store.Total(ctx)
	if err != nil {
		return "", fmt.Errorf("read total: %w", err)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("💰 Всего потрачено: %s %.2f", a.currency, total.InexactFloat64()), nil
}

func filterRows(rows []core.Spending, keep func(core.Spending) bool) []core.Spending {
	var out []core.Spending
	for _, sp := range rows {
		if keep(sp) {
			out = append(out, sp)
		}
	}
	return out
}

// formatRows renders one line per spending, original bot format:
// "пн. 🛒 Продукты €10.5  coffee".
func (a *Aggregator) formatRows(rows []core.Spending) string {
	if len(rows) == 0 {
		return NoData
	}
	var b strings.Builder
	total := decimal.Zero
	for _, sp := range rows {
		abbrev := DayAbbreviation(sp.Date.Weekday().String())
		fmt.Fprintf(&b, "%s. %-10s %s%-4s %s\n",
			abbrev, sp.Category, a.currency, sp.Amount.String(), sp.Comment)
		total = total.Add(sp.Amount.Decimal())
	}
	fmt.Fprintf(&b, "Total: %s %s", total, a.currency)
	return b.String()
}

// formatGrouped renders per-category sums prefixed with the period label,
// categories in first-seen order.
func (a *Aggregator) formatGrouped(label string, rows []core.Spending) string {
	if len(rows) == 0 {
		return NoData
	}
	byCat := map[string]decimal.Decimal{}
	var order []string
	total := decimal.Zero
	for _, sp := range rows {
		cat := sp.Category
		if strings.TrimSpace(cat) == "" {
			cat = uncategorized
		}
		if _, seen := byCat[cat]; !seen {
			order = append(order, cat)
		}
		byCat[cat] = byCat[cat].Add(sp.Amount.Decimal())
		total = total.Add(sp.Amount.Decimal())
	}

	var b strings.Builder
	b.WriteString(label + "\n")
	for _, cat := range order {
		fmt.Fprintf(&b, "%s %s%s\n", cat, a.currency, byCat[cat])
	}
	fmt.Fprintf(&b, "Total: %s %s", total, a.currency)
	return b.String()
}

func dateOnly(t time.Time) time.Time {
	return dateIn(t, t.Location())
}

// dateIn is t's calendar date at midnight in loc.
func dateIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// weekBounds returns Monday and Sunday of the week containing t.
func weekBounds(t time.Time) (monday, sunday time.Time) {
	d := dateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	monday = d.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}
