package postgres

import (
	"context"

	"github.com/polkiloo/retailpos/internal/domain/model"
)

type outboxRepository struct {
	q querier
}

func (r *outboxRepository) Append(ctx context.Context, event model.OutboxEvent) error {
	const query = `INSERT INTO outbox_events (id, topic, event_key, payload, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.q.Exec(ctx, query, event.ID, event.Topic, event.Key, event.Payload, event.CreatedAt)
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	const query = `SELECT id, topic, event_key, payload, created_at FROM outbox_events
        WHERE published_at IS NULL ORDER BY created_at, id LIMIT $1 FOR UPDATE SKIP LOCKED`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.OutboxEvent, 0)
	for rows.Next() {
		var e model.OutboxEvent
		if err := rows.Scan(&e.ID, &e.Topic, &e.Key, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE outbox_events SET published_at=NOW() WHERE id = ANY($1)`, ids)
	return err
}
