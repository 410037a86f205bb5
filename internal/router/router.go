// Package router classifies inbound chat messages into intents and
// dispatches them to the ledger, the report aggregator or the assistant
// gateway. Classification is first-match over a fixed rule order, so every
// input lands in exactly one intent.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"finbot/internal/core"
	"finbot/internal/ledger"
	"finbot/internal/report"
)

const (
	// CancelLabel deletes the most recent spending.
	CancelLabel = "❌ Отмена"
	// TotalLabel requests the running total; matching is by the 💰 prefix.
	TotalLabel  = "💰💰💰  Сколько у нас всего денег 💰💰💰"
	totalPrefix = "💰"

	reportPrefix = "📊"

	// assistantKeyword triggers the LLM passthrough, case-insensitive.
	assistantKeyword = "chatgpt"
)

const (
	replyInvalidMessage    = "Please send a valid text message."
	replyEmptyMessage      = "Please send a non-empty message."
	replySaved             = "Spending saved. Don't forget to choose a category."
	replyInvalidAmount     = `Invalid amount. Start the message with a number, e.g. "10.50 coffee".`
	replyMissingComment    = `Please provide both amount and description, e.g. "10.50 coffee".`
	replyDeleted           = "Last spending deleted."
	replyNothingToDelete   = "No spending entries to delete."
	replyCategoryUpdated   = "Category updated for the last spending."
	replyNothingToUpdate   = "No spending entries to update."
	replyInvalidReport     = "Invalid report type."
	replyStoreError        = "Could not save the spending. Please try again."
	replyDeleteError       = "Could not delete the spending. Please try again."
	replyCategoryError     = "Could not update the category. Please try again."
	replyReportError       = "Could not build the report. Please try again."
	replyTotalError        = "Could not read the total. Please try again."
	replyAssistantDisabled = "Assistant is not configured."
	replyPanic             = "Something went wrong. Please try again."

	replyHelp = `I don't understand you. Try:
10.50 coffee — record a spending
❌ Отмена — delete the last spending
📊 День / 📊 Неделя / 📊 Месяц / 📊 Год — reports
💰 — running total
chatgpt <question> — ask the assistant`
)

// Assistant answers free-form questions. Implementations never return an
// error, only user-facing text.
type Assistant interface {
	Ask(ctx context.Context, text string) string
}

type Router struct {
	store     ledger.Store
	reports   *report.Aggregator
	assistant Assistant // nil when the passthrough is disabled
	sessions  *sessions
	now       func() time.Time
}

func New(store ledger.Store, reports *report.Aggregator, assistant Assistant) *Router {
	return NewWithClock(store, reports, assistant, time.Now)
}

func NewWithClock(store ledger.Store, reports *report.Aggregator, assistant Assistant, now func() time.Time) *Router {
	return &Router{
		store:     store,
		reports:   reports,
		assistant: assistant,
		sessions:  newSessions(),
		now:       now,
	}
}

// Handle classifies and dispatches one message, returning the reply text.
// It never panics past this boundary; a single bad message must not take the
// process down.
func (r *Router) Handle(ctx context.Context, chatID int64, text string) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "Recovered from panic while handling message",
				"panic", rec, "chat_id", chatID)
			reply = replyPanic
		}
	}()
	return r.dispatch(ctx, chatID, text)
}

// dispatch applies the classification rules in order; the first match wins.
func (r *Router) dispatch(ctx context.Context, chatID int64, text string) string {
	// 1. Empty input
	if text == "" {
		return replyInvalidMessage
	}
	if strings.TrimSpace(text) == "" {
		return replyEmptyMessage
	}

	// 2. Batch: multi-line where every non-blank line starts with a digit
	if lines, ok := batchLines(text); ok {
		return r.recordBatch(ctx, chatID, lines)
	}

	// 3. Pending categorization queue
	if _, pending := r.sessions.peek(chatID); pending && core.IsCategory(text) {
		return r.assignQueued(ctx, chatID, text)
	}

	// 4. Single spending
	if startsWithDigit(text) {
		reply, _ := r.recordOne(ctx, text)
		return reply
	}

	// 5. Cancel
	if text == CancelLabel {
		return r.deleteLast(ctx)
	}

	// 6. Category for the most recent spending
	if core.IsCategory(text) {
		return r.assignLast(ctx, text)
	}

	// 7. Reports
	if strings.HasPrefix(text, reportPrefix) {
		return r.buildReport(ctx, text)
	}

	// 8. Running total
	if strings.HasPrefix(text, totalPrefix) {
		return r.totalBalance(ctx)
	}

	// 9. Assistant passthrough
	if strings.HasPrefix(strings.ToLower(text), assistantKeyword) {
		if r.assistant == nil {
			return replyAssistantDisabled
		}
		return r.assistant.Ask(ctx, text)
	}

	// 10. Unrecognized
	return replyHelp
}

// batchLines splits text into non-blank lines and reports whether they form
// a batch submission (more than one line, all starting with a digit).
func batchLines(text string) ([]string, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	if len(lines) < 2 {
		return nil, false
	}
	for _, line := range lines {
		if !startsWithDigit(line) {
			return nil, false
		}
	}
	return lines, true
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

// splitAmount separates the leading amount token from the description.
func splitAmount(line string) (amount, comment string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// recordOne parses and appends a single spending line. The returned row is
// zero when nothing was saved.
func (r *Router) recordOne(ctx context.Context, line string) (string, int64) {
	amountTok, comment := splitAmount(line)
	m, err := core.ParseMoney(amountTok)
	if err != nil {
		return replyInvalidAmount, 0
	}
	if comment == "" {
		return replyMissingComment, 0
	}
	row, err := r.store.Append(ctx, core.NewSpending(r.now(), m, comment))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to append spending", "error", err, "comment", comment)
		return replyStoreError, 0
	}
	return replySaved, row
}

// recordBatch appends every line on its own; lines stand alone and there is
// no rollback on partial failure. Successfully saved rows join the pending
// categorization queue, replacing any previous batch for this chat.
func (r *Router) recordBatch(ctx context.Context, chatID int64, lines []string) string {
	r.sessions.clear(chatID)

	var (
		annotations []string
		queue       []pendingItem
		total       = decimal.Zero
		saved       int
	)
	for _, line := range lines {
		amountTok, comment := splitAmount(line)
		m, err := core.ParseMoney(amountTok)
		if err != nil {
			annotations = append(annotations, fmt.Sprintf("✗ %s — invalid amount", line))
			continue
		}
		if comment == "" {
			annotations = append(annotations, fmt.Sprintf("✗ %s — missing description", line))
			continue
		}
		row, err := r.store.Append(ctx, core.NewSpending(r.now(), m, comment))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to append batch line", "error", err, "line", line)
			annotations = append(annotations, fmt.Sprintf("✗ %s — save failed", line))
			continue
		}
		annotations = append(annotations, "✓ "+line)
		queue = append(queue, pendingItem{Text: line, Row: row})
		total = total.Add(m.Decimal())
		saved++
	}
	r.sessions.set(chatID, queue)

	var b strings.Builder
	fmt.Fprintf(&b, "Recorded %d of %d, total %s €\n", saved, len(lines), total)
	b.WriteString(strings.Join(annotations, "\n"))
	if first, ok := r.sessions.peek(chatID); ok {
		fmt.Fprintf(&b, "\n\nChoose a category for: %q", first.Text)
	}
	return b.String()
}

// assignQueued applies the chosen category to the queue's head row.
func (r *Router) assignQueued(ctx context.Context, chatID int64, category string) string {
	item, ok := r.sessions.peek(chatID)
	if !ok {
		return replyNothingToUpdate
	}
	if err := r.store.UpdateCategory(ctx, item.Row, category); err != nil {
		slog.ErrorContext(ctx, "Failed to update queued category",
			"error", err, "row", item.Row, "category", category)
		return replyCategoryError
	}
	if next, ok := r.sessions.pop(chatID); ok {
		return fmt.Sprintf("Category saved for %q. Choose a category for: %q", item.Text, next.Text)
	}
	return fmt.Sprintf("Category saved for %q. All spendings categorized.", item.Text)
}

func (r *Router) assignLast(ctx context.Context, category string) string {
	err := r.store.UpdateCategory(ctx, ledger.LastRow, category)
	if errors.Is(err, core.ErrNotFound) {
		return replyNothingToUpdate
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to update category", "error", err, "category", category)
		return replyCategoryError
	}
	return replyCategoryUpdated
}

func (r *Router) deleteLast(ctx context.Context) string {
	err := r.store.DeleteLast(ctx)
	if errors.Is(err, core.ErrNotFound) {
		return replyNothingToDelete
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to delete last spending", "error", err)
		return replyDeleteError
	}
	return replyDeleted
}

func (r *Router) buildReport(ctx context.Context, label string) string {
	period, ok := report.PeriodFromLabel(label)
	if !ok {
		return replyInvalidReport
	}
	text, err := r.reports.Report(ctx, period)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build report", "error", err, "period", string(period))
		return replyReportError
	}
	return text
}

func (r *Router) totalBalance(ctx context.Context) string {
	text, err := r.reports.TotalBalance(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read total", "error", err)
		return replyTotalError
	}
	return text
}
