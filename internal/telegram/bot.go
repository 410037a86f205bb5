package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"finbot/internal/router"
)

const greeting = `Привет! Я веду учёт расходов.
Отправь сумму и описание, например: 250 продукты
Или выбери действие на клавиатуре ниже.`

const errorBackoff = 3 * time.Second

// Handler turns one inbound message into a reply. *router.Router satisfies it.
type Handler interface {
	Handle(ctx context.Context, chatID int64, text string) string
}

type Bot struct {
	client      *Client
	handler     Handler
	pollTimeout time.Duration
	keyboard    *ReplyKeyboardMarkup
}

func NewBot(client *Client, handler Handler, pollTimeout time.Duration) *Bot {
	return &Bot{
		client:      client,
		handler:     handler,
		pollTimeout: pollTimeout,
		keyboard:    MainKeyboard(),
	}
}

// Run long-polls until the context is cancelled. Poll failures back off and
// retry; a failing Telegram API must not crash the bot.
func (b *Bot) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Telegram bot started", "poll_timeout", b.pollTimeout)

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			slog.InfoContext(ctx, "Telegram bot stopping", "reason", err)
			return err
		}

		updates, err := b.client.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.ErrorContext(ctx, "Failed to fetch updates", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(errorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	chatID := update.Message.Chat.ID

	reply := b.replyFor(ctx, chatID, update.Message.Text)
	if err := b.client.SendMessage(ctx, chatID, reply, b.keyboard); err != nil {
		slog.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

// replyFor translates slash commands into their keyboard equivalents before
// handing the text to the router.
func (b *Bot) replyFor(ctx context.Context, chatID int64, text string) string {
	command, args := splitCommand(text)
	switch command {
	case "/start", "/help":
		return greeting
	case "/add":
		return b.handler.Handle(ctx, chatID, args)
	case "/report":
		return b.handler.Handle(ctx, chatID, "📊 "+args)
	case "/total":
		return b.handler.Handle(ctx, chatID, router.TotalLabel)
	default:
		return b.handler.Handle(ctx, chatID, text)
	}
}

// splitCommand returns the leading slash command and the remainder, or an
// empty command when text does not start with one.
func splitCommand(text string) (command, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	command, args, _ = strings.Cut(text, " ")
	return command, strings.TrimSpace(args)
}
