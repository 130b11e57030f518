package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists outbox messages in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres outbox repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const pgInsertMessage = `
INSERT INTO outbox (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

// Save stores a single message, joining any transaction in context.
func (r *PostgresRepository) Save(ctx context.Context, msg *Message) error {
	exec := persistence.Executor(ctx, r.pool)
	return r.insert(ctx, exec, msg)
}

// SaveBatch stores messages atomically. An ambient transaction is joined;
// otherwise one is opened for the batch.
func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if info, ok := persistence.TxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.insert(ctx, info.Tx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, msg := range msgs {
		if err := r.insert(ctx, tx, msg); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) insert(ctx context.Context, exec persistence.DBExecutor, msg *Message) error {
	var metadata any
	if len(msg.Metadata) > 0 {
		metadata = string(msg.Metadata)
	}
	err := exec.QueryRow(ctx, pgInsertMessage,
		msg.EventID,
		msg.AggregateType,
		msg.AggregateID,
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		msg.CreatedAt.UTC(),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

const pgSelectMessage = `
SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata,
       created_at, published_at, next_retry_at, retry_count, last_error, dead_lettered_at, dead_letter_reason
FROM outbox`

// GetUnpublished returns publishable messages oldest first.
func (r *PostgresRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	exec := persistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, pgSelectMessage+`
WHERE published_at IS NULL
  AND dead_lettered_at IS NULL
  AND (next_retry_at IS NULL OR next_retry_at <= now())
ORDER BY created_at ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished messages: %w", err)
	}
	defer rows.Close()

	return scanPostgresMessages(rows)
}

// MarkPublished records a successful publish.
func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	exec := persistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`UPDATE outbox SET published_at = now(), last_error = NULL WHERE id = $1`, id)
	return err
}

// MarkFailed records a failure and schedules the next attempt.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	exec := persistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = $1, next_retry_at = $2 WHERE id = $3`,
		errMsg, nextRetryAt.UTC(), id)
	return err
}

// MarkDead parks a message that exhausted its retries.
func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	exec := persistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`UPDATE outbox SET dead_lettered_at = now(), dead_letter_reason = $1 WHERE id = $2`,
		reason, id)
	return err
}

// DeleteOld removes published messages past the retention window.
func (r *PostgresRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	exec := persistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < now() - make_interval(days => $1)`,
		olderThanDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPostgresMessages(rows pgx.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		var (
			msg      Message
			eventID  uuid.UUID
			aggID    uuid.UUID
			payload  string
			metadata *string
		)
		err := rows.Scan(
			&msg.ID, &eventID, &msg.AggregateType, &aggID, &msg.EventType, &msg.RoutingKey,
			&payload, &metadata, &msg.CreatedAt, &msg.PublishedAt, &msg.NextRetryAt, &msg.RetryCount,
			&msg.LastError, &msg.DeadLetteredAt, &msg.DeadLetterReason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}

		msg.EventID = eventID
		msg.AggregateID = aggID
		msg.Payload = json.RawMessage(payload)
		if metadata != nil {
			msg.Metadata = json.RawMessage(*metadata)
		}

		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
