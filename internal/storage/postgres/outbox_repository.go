package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

const (
	defaultPullLimit   = 100
	outboxStatusSent   = "sent"
	outboxStatusFailed = "failed"
)

// outboxRepository хранит события сохранения сущностей до публикации в Kafka.
type outboxRepository struct {
	store *Store
}

// NewOutboxRepository создаёт PostgreSQL-реализацию OutboxRepository.
func NewOutboxRepository(store *Store) domain.OutboxStore {
	return &outboxRepository{store: store}
}

func (r *outboxRepository) Enqueue(ctx context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$7)
	`,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now, now,
	)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue outbox message: %w", err)
	}

	return msg, nil
}

func (r *outboxRepository) PullPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	if limit <= 0 {
		limit = defaultPullLimit
	}

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM outbox_messages
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("pull pending outbox messages: %w", err)
	}
	defer rows.Close()

	result := make([]domain.OutboxMessage, 0, limit)
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.Payload,
		); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}

	return result, nil
}

func (r *outboxRepository) Stats(ctx context.Context) (domain.OutboxStats, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)

	if err := r.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at)
		FROM outbox_messages
		WHERE status = 'pending'
	`).Scan(&stats.PendingCount, &oldest); err != nil {
		return domain.OutboxStats{}, fmt.Errorf("outbox stats query failed: %w", err)
	}

	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}

	return stats, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, outboxStatusSent)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, outboxStatusFailed)
}

func (r *outboxRepository) markStatus(ctx context.Context, id, status string) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, `
		UPDATE outbox_messages
		SET status = $2,
		    attempt_count = attempt_count + 1,
		    updated_at = $3
		WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark outbox message as %s: %w", status, err)
	}

	return requireAffected(res, domain.ErrOutboxPublish)
}

// PurgeProcessed удаляет sent и failed сообщения, обновлённые не позже before.
func (r *outboxRepository) PurgeProcessed(ctx context.Context, before time.Time, limit int) (int, error) {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	if limit <= 0 {
		limit = defaultPullLimit
	}

	res, err := r.store.db.ExecContext(ctx, `
		DELETE FROM outbox_messages
		WHERE id IN (
			SELECT id FROM outbox_messages
			WHERE status <> 'pending' AND updated_at <= $1
			ORDER BY updated_at, id
			LIMIT $2
		)
	`, before.UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("purge processed outbox messages: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge processed outbox messages: %w", err)
	}
	return int(affected), nil
}

var (
	_ domain.OutboxRepository = (*outboxRepository)(nil)
	_ domain.OutboxPurger     = (*outboxRepository)(nil)
)
