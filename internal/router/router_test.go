package router

import (
	"context"
	"strings"
	"testing"
	"time"

	"finbot/internal/core"
	"finbot/internal/ledger"
	"finbot/internal/ledger/memory"
	"finbot/internal/report"
)

var testNow = time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC)

type fakeAssistant struct {
	lastText string
	answer   string
}

func (f *fakeAssistant) Ask(_ context.Context, text string) string {
	f.lastText = text
	return f.answer
}

func newTestRouter(t *testing.T) (*Router, *memory.Store, *fakeAssistant) {
	t.Helper()
	store := memory.New()
	now := func() time.Time { return testNow }
	assistant := &fakeAssistant{answer: "assistant says hi"}
	r := NewWithClock(store, report.NewWithClock(store, now), assistant, now)
	return r, store, assistant
}

const chat = int64(100500)

func TestEmptyAndWhitespaceInput(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()
	if got := r.Handle(ctx, chat, ""); got != replyInvalidMessage {
		t.Fatalf("empty: %q", got)
	}
	if got := r.Handle(ctx, chat, "   "); got != replyEmptyMessage {
		t.Fatalf("whitespace: %q", got)
	}
}

func TestRecordSingleSpending(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	if got := r.Handle(ctx, chat, "10.50 coffee"); got != replySaved {
		t.Fatalf("record: %q", got)
	}
	rows, _ := store.AllRows(ctx)
	if len(rows) != 1 || rows[0].Comment != "coffee" || rows[0].Amount.Cents != 1050 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	// Then assign a category to the most recent row
	if got := r.Handle(ctx, chat, "🛒 Продукты"); got != replyCategoryUpdated {
		t.Fatalf("assign: %q", got)
	}
	rows, _ = store.AllRows(ctx)
	if rows[0].Category != "🛒 Продукты" {
		t.Fatalf("category not applied: %+v", rows[0])
	}
}

func TestRecordValidationErrors(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	if got := r.Handle(ctx, chat, "12abc coffee"); got != replyInvalidAmount {
		t.Fatalf("bad amount: %q", got)
	}
	if got := r.Handle(ctx, chat, "12345"); got != replyMissingComment {
		t.Fatalf("digits only: %q", got)
	}
	if rows, _ := store.AllRows(ctx); len(rows) != 0 {
		t.Fatalf("row count changed on failed record: %d", len(rows))
	}
}

func TestCancelDeletesLast(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	if got := r.Handle(ctx, chat, CancelLabel); got != replyNothingToDelete {
		t.Fatalf("empty cancel: %q", got)
	}
	r.Handle(ctx, chat, "10 coffee")
	r.Handle(ctx, chat, "20 taxi")
	if got := r.Handle(ctx, chat, CancelLabel); got != replyDeleted {
		t.Fatalf("cancel: %q", got)
	}
	rows, _ := store.AllRows(ctx)
	if len(rows) != 1 || rows[0].Comment != "coffee" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestCategoryOnEmptyStore(t *testing.T) {
	r, _, _ := newTestRouter(t)
	if got := r.Handle(context.Background(), chat, "🛒 Продукты"); got != replyNothingToUpdate {
		t.Fatalf("got %q", got)
	}
}

func TestBatchRecording(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	got := r.Handle(ctx, chat, "10 coffee\n20 taxi\n30 books")
	if !strings.Contains(got, "Recorded 3 of 3, total 60 €") {
		t.Fatalf("summary wrong:\n%s", got)
	}
	for _, line := range []string{"✓ 10 coffee", "✓ 20 taxi", "✓ 30 books"} {
		if !strings.Contains(got, line) {
			t.Fatalf("missing annotation %q:\n%s", line, got)
		}
	}
	if !strings.Contains(got, `Choose a category for: "10 coffee"`) {
		t.Fatalf("missing categorization prompt:\n%s", got)
	}
	rows, _ := store.AllRows(ctx)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if r.sessions.size(chat) != 3 {
		t.Fatalf("expected queue of 3, got %d", r.sessions.size(chat))
	}
}

func TestBatchCategorizationDrainsQueue(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()
	r.Handle(ctx, chat, "10 coffee\n20 taxi")

	got := r.Handle(ctx, chat, "🍔 Еда вне дома")
	if !strings.Contains(got, `Category saved for "10 coffee"`) ||
		!strings.Contains(got, `Choose a category for: "20 taxi"`) {
		t.Fatalf("first assignment reply:\n%s", got)
	}
	got = r.Handle(ctx, chat, "🚇 Транспорт")
	if !strings.Contains(got, "All spendings categorized") {
		t.Fatalf("second assignment reply:\n%s", got)
	}

	rows, _ := store.AllRows(ctx)
	if rows[0].Category != "🍔 Еда вне дома" || rows[1].Category != "🚇 Транспорт" {
		t.Fatalf("queue order broken: %+v", rows)
	}
	// Queue drained: the next category goes to the most recent row again
	if got := r.Handle(ctx, chat, "🌎 Прочее"); got != replyCategoryUpdated {
		t.Fatalf("after drain: %q", got)
	}
	rows, _ = store.AllRows(ctx)
	if rows[1].Category != "🌎 Прочее" {
		t.Fatalf("last-row rule not restored: %+v", rows)
	}
}

func TestBatchPartialFailure(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	got := r.Handle(ctx, chat, "10 coffee\n2x taxi\n30")
	if !strings.Contains(got, "Recorded 1 of 3, total 10 €") {
		t.Fatalf("summary wrong:\n%s", got)
	}
	if !strings.Contains(got, "✗ 2x taxi — invalid amount") {
		t.Fatalf("missing invalid-amount annotation:\n%s", got)
	}
	if !strings.Contains(got, "✗ 30 — missing description") {
		t.Fatalf("missing description annotation:\n%s", got)
	}
	rows, _ := store.AllRows(ctx)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if r.sessions.size(chat) != 1 {
		t.Fatalf("expected queue of 1, got %d", r.sessions.size(chat))
	}
}

func TestBatchReplacesPreviousQueue(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	r.Handle(ctx, chat, "10 coffee\n20 taxi")
	r.Handle(ctx, chat, "5 tea\n7 bus")
	if r.sessions.size(chat) != 2 {
		t.Fatalf("queue not replaced: %d", r.sessions.size(chat))
	}
	item, _ := r.sessions.peek(chat)
	if item.Text != "5 tea" {
		t.Fatalf("head should be from the new batch: %q", item.Text)
	}
}

func TestSessionsAreKeyedByChat(t *testing.T) {
	r, store, _ := newTestRouter(t)
	ctx := context.Background()

	r.Handle(ctx, chat, "10 coffee\n20 taxi")
	// A different chat assigns a category: the queue of the first chat must
	// not be consumed; the last-row rule applies instead.
	other := int64(42)
	if got := r.Handle(ctx, other, "🚇 Транспорт"); got != replyCategoryUpdated {
		t.Fatalf("other chat: %q", got)
	}
	if r.sessions.size(chat) != 2 {
		t.Fatalf("first chat queue consumed by another chat")
	}
	rows, _ := store.AllRows(ctx)
	if rows[1].Category != "🚇 Транспорт" {
		t.Fatalf("last-row rule not applied for other chat: %+v", rows)
	}
}

func TestReportDispatch(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	r.Handle(ctx, chat, "10.50 coffee")
	got := r.Handle(ctx, chat, "📊 День")
	if !strings.Contains(got, "coffee") || !strings.Contains(got, "Total: 10.5 €") {
		t.Fatalf("day report:\n%s", got)
	}
	if got := r.Handle(ctx, chat, "📊 Квартал"); got != replyInvalidReport {
		t.Fatalf("unknown label: %q", got)
	}
}

func TestTotalBalanceDispatch(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()
	r.Handle(ctx, chat, "1000 rent")
	got := r.Handle(ctx, chat, TotalLabel)
	if !strings.Contains(got, "€ 1,000.00") {
		t.Fatalf("total: %q", got)
	}
}

func TestAssistantDispatch(t *testing.T) {
	r, _, assistant := newTestRouter(t)
	ctx := context.Background()

	got := r.Handle(ctx, chat, "ChatGPT how are you")
	if got != "assistant says hi" {
		t.Fatalf("assistant reply: %q", got)
	}
	if assistant.lastText != "ChatGPT how are you" {
		t.Fatalf("assistant received: %q", assistant.lastText)
	}
}

func TestAssistantDisabled(t *testing.T) {
	store := memory.New()
	now := func() time.Time { return testNow }
	r := NewWithClock(store, report.NewWithClock(store, now), nil, now)
	if got := r.Handle(context.Background(), chat, "chatgpt hi"); got != replyAssistantDisabled {
		t.Fatalf("got %q", got)
	}
}

func TestUnrecognizedInput(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()
	for _, in := range []string{
		"some random message",
		"🛒 Продукты ", // trailing whitespace: not an exact category match
		"who are you",
	} {
		if got := r.Handle(ctx, chat, in); got != replyHelp {
			t.Fatalf("%q: expected help, got %q", in, got)
		}
	}
}

// Every input lands in exactly one rule; representative inputs per rule.
func TestClassificationIsTotal(t *testing.T) {
	r, _, _ := newTestRouter(t)
	ctx := context.Background()

	cases := []struct {
		in   string
		want func(string) bool
	}{
		{"", func(s string) bool { return s == replyInvalidMessage }},
		{"  \t ", func(s string) bool { return s == replyEmptyMessage }},
		{"10 a\n20 b", func(s string) bool { return strings.Contains(s, "Recorded 2 of 2") }},
		{"7 lunch", func(s string) bool { return s == replySaved }},
		{CancelLabel, func(s string) bool { return s == replyDeleted }},
		// The batch above left a pending queue, so the category feeds it.
		{"🛒 Продукты", func(s string) bool { return strings.Contains(s, `Category saved for "10 a"`) }},
		{"📊 День", func(s string) bool { return strings.Contains(s, "Total:") }},
		{TotalLabel, func(s string) bool { return strings.Contains(s, "€") }},
		{"chatgpt hello", func(s string) bool { return s == "assistant says hi" }},
		{"hello there", func(s string) bool { return s == replyHelp }},
	}
	for _, tc := range cases {
		got := r.Handle(ctx, chat, tc.in)
		if !tc.want(got) {
			t.Fatalf("%q: unexpected reply %q", tc.in, got)
		}
	}
}

type panickyStore struct {
	ledger.Store
}

func (panickyStore) Append(context.Context, core.Spending) (int64, error) {
	panic("backend exploded")
}

func TestPanicRecovery(t *testing.T) {
	store := panickyStore{memory.New()}
	now := func() time.Time { return testNow }
	r := NewWithClock(store, report.NewWithClock(store, now), nil, now)
	if got := r.Handle(context.Background(), chat, "10 coffee"); got != replyPanic {
		t.Fatalf("expected apology, got %q", got)
	}
}
