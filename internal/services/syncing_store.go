// Package services composes the ledger with the sync pipeline.
package services

import (
	"context"
	"log/slog"

	"finbot/internal/amqp"
	"finbot/internal/core"
	"finbot/internal/ledger"
)

// Publisher is the slice of the AMQP client the store needs.
type Publisher interface {
	PublishSync(ctx context.Context, msg *amqp.SyncMessage) error
}

// SyncingStore decorates a ledger store so every successful write is
// announced to the sync worker. Publish failures are logged and swallowed;
// the local ledger is the source of truth and a broker outage must never
// fail a user operation.
type SyncingStore struct {
	ledger.Store
	publisher Publisher
}

func NewSyncingStore(store ledger.Store, publisher Publisher) *SyncingStore {
	return &SyncingStore{Store: store, publisher: publisher}
}

func (s *SyncingStore) Append(ctx context.Context, spending core.Spending) (int64, error) {
	row, err := s.Store.Append(ctx, spending)
	if err != nil {
		return row, err
	}
	s.publish(ctx, amqp.NewAppendMessage(row))
	return row, nil
}

func (s *SyncingStore) UpdateCategory(ctx context.Context, row int64, category string) error {
	if err := s.Store.UpdateCategory(ctx, row, category); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewCategoryMessage(row, category))
	return nil
}

func (s *SyncingStore) DeleteLast(ctx context.Context) error {
	if err := s.Store.DeleteLast(ctx); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewDeleteMessage())
	return nil
}

func (s *SyncingStore) publish(ctx context.Context, msg *amqp.SyncMessage) {
	if err := s.publisher.PublishSync(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"error", err, "op", msg.Op, "row", msg.Row)
	}
}

var _ ledger.Store = (*SyncingStore)(nil)
