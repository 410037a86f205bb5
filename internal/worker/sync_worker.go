// Package worker mirrors the local ledger to the spreadsheet by replaying
// sync messages in publish order.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finbot/internal/amqp"
	"finbot/internal/core"
	"finbot/internal/ledger"
)

// Source is the local ledger the worker reads rows from.
type Source interface {
	Row(ctx context.Context, row int64) (core.Spending, error)
	AllRows(ctx context.Context) ([]core.Spending, error)
}

type SyncWorker struct {
	source Source
	mirror ledger.Store
}

func NewSyncWorker(source Source, mirror ledger.Store) *SyncWorker {
	return &SyncWorker{source: source, mirror: mirror}
}

// HandleMessage mirrors one ledger operation. Errors bubble up so the
// consumer can requeue the message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "op", msg.Op, "row", msg.Row)

	switch msg.Op {
	case amqp.OpAppend:
		return w.mirrorAppend(ctx, msg.Row)
	case amqp.OpCategory:
		if err := w.mirror.UpdateCategory(ctx, msg.Row, msg.Category); err != nil {
			return fmt.Errorf("mirror category update: %w", err)
		}
		return nil
	case amqp.OpDelete:
		if err := w.mirror.DeleteLast(ctx); err != nil {
			return fmt.Errorf("mirror delete: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown sync operation: %q", msg.Op)
	}
}

func (w *SyncWorker) mirrorAppend(ctx context.Context, row int64) error {
	spending, err := w.source.Row(ctx, row)
	if err != nil {
		return fmt.Errorf("read row %d from source: %w", row, err)
	}
	mirrorRow, err := w.mirror.Append(ctx, spending)
	if err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}
	if mirrorRow != row {
		// Both sides append in publish order, so positions should line up.
		// A mismatch means the spreadsheet was edited out of band.
		slog.WarnContext(ctx, "Mirror row diverged from source row",
			"source_row", row, "mirror_row", mirrorRow)
	}
	return nil
}

// StartupSyncCheck appends any source rows the mirror is missing. This is a
// recovery path for messages lost while the worker was down; it assumes the
// mirror is a prefix of the source.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	sourceRows, err := w.source.AllRows(ctx)
	if err != nil {
		return fmt.Errorf("read source rows: %w", err)
	}
	mirrorRows, err := w.mirror.AllRows(ctx)
	if err != nil {
		return fmt.Errorf("read mirror rows: %w", err)
	}

	if len(mirrorRows) >= len(sourceRows) {
		slog.InfoContext(ctx, "Mirror is up to date",
			"source", len(sourceRows), "mirror", len(mirrorRows))
		return nil
	}

	missing := sourceRows[len(mirrorRows):]
	slog.InfoContext(ctx, "Mirror is behind, appending missing rows", "count", len(missing))

	appended := 0
	for _, spending := range missing {
		if _, err := w.mirror.Append(ctx, spending); err != nil {
			slog.ErrorContext(ctx, "Failed to append missing row",
				"error", err, "comment", spending.Comment)
			return fmt.Errorf("append missing row: %w", err)
		}
		appended++
	}

	slog.InfoContext(ctx, "Startup sync completed", "appended", appended)
	return nil
}
