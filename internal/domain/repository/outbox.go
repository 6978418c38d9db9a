package repository

import (
	"context"
	"time"

	"github.com/polkiloo/retailpos/internal/domain/model"
)

// OutboxRepository stores events written together with the state they describe.
type OutboxRepository interface {
	Append(ctx context.Context, event model.OutboxEvent) error
	// ListPending returns unpublished events oldest first, skipping rows locked by other relays.
	ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []string) error
}

// OutboxLeaser is implemented by stores whose transactions exclude every other
// writer. Pending events are claimed for ttl instead of being locked by a
// transaction, so they can be published while other work proceeds.
type OutboxLeaser interface {
	// LeasePending claims up to limit unpublished, unclaimed events oldest first.
	LeasePending(ctx context.Context, limit int, ttl time.Duration) ([]model.OutboxEvent, error)
	// CompleteLease marks published as delivered and returns the rest of leased to the pending pool.
	CompleteLease(ctx context.Context, leased, published []string) error
}
