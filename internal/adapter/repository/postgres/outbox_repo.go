package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

const createOutboxEvent = `
INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, created_at, published)
VALUES ($1, $2, $3, $4, $5, $6, false)
`

// Create writes an outbox event inside the caller's transaction so the event
// commits or rolls back together with the mutation it describes.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	_, err = txQuerier(tx).Exec(ctx, createOutboxEvent,
		event.ID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		payload,
		timeToPgTimestamptz(event.CreatedAt),
	)

	return err
}

const getUnpublishedEvents = `
SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at, published
FROM outbox_events
WHERE published = false
ORDER BY created_at
LIMIT $1
`

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx, getUnpublishedEvents, int32(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		var (
			e           domain.OutboxEvent
			payload     []byte
			createdAt   pgtype.Timestamptz
			publishedAt pgtype.Timestamptz
		)

		err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType,
			&payload, &createdAt, &publishedAt, &e.Published)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal outbox payload: %w", err)
		}

		e.CreatedAt = createdAt.Time
		e.PublishedAt = pgTimestamptzToPtr(publishedAt)
		events = append(events, &e)
	}

	return events, rows.Err()
}

const markEventPublished = `
UPDATE outbox_events SET published = true, published_at = $2 WHERE id = $1
`

// MarkPublished marks an event as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	_, err := r.pool.Exec(ctx, markEventPublished, id, timeToPgTimestamptz(publishedAt))

	return err
}

const deletePublishedEvents = `
DELETE FROM outbox_events WHERE published = true AND published_at < $1
`

// DeletePublished prunes events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	_, err := r.pool.Exec(ctx, deletePublishedEvents, timeToPgTimestamptz(before))

	return err
}
