package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteRepository persists outbox messages in SQLite. Timestamps are
// stored as RFC 3339 text.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteInsertMessage = `
INSERT INTO outbox (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Save stores a single message, joining any transaction in context.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	return r.insert(ctx, q, msg)
}

// SaveBatch stores messages atomically. An ambient transaction is joined;
// otherwise one is opened for the batch.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if info, ok := persistence.SQLiteTxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.insert(ctx, info.Tx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, msg := range msgs {
		if err := r.insert(ctx, tx, msg); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) insert(ctx context.Context, q persistence.SQLiteQuerier, msg *Message) error {
	metadata := sql.NullString{String: string(msg.Metadata), Valid: len(msg.Metadata) > 0}
	result, err := q.ExecContext(ctx, sqliteInsertMessage,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		metadata,
		msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	msg.ID, err = result.LastInsertId()
	return err
}

const sqliteSelectMessage = `
SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata,
       created_at, published_at, next_retry_at, retry_count, last_error, dead_lettered_at, dead_letter_reason
FROM outbox`

// GetUnpublished returns publishable messages oldest first.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	q := persistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx, sqliteSelectMessage+`
WHERE published_at IS NULL
  AND dead_lettered_at IS NULL
  AND (next_retry_at IS NULL OR next_retry_at <= ?)
ORDER BY created_at ASC
LIMIT ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query unpublished messages: %w", err)
	}
	defer rows.Close()

	return scanSQLiteMessages(rows)
}

// MarkPublished records a successful publish.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox SET published_at = ?, last_error = NULL WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	return err
}

// MarkFailed records a failure and schedules the next attempt.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		errMsg, nextRetryAt.UTC().Format(time.RFC3339Nano), id,
	)
	return err
}

// MarkDead parks a message that exhausted its retries.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox SET dead_lettered_at = ?, dead_letter_reason = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), reason, id,
	)
	return err
}

// DeleteOld removes published messages past the retention window.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	q := persistence.SQLiteExecutor(ctx, r.db)
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339Nano)
	result, err := q.ExecContext(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSQLiteMessages(rows *sql.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		var (
			msg              Message
			eventID          string
			aggregateID      string
			metadata         sql.NullString
			createdAt        string
			publishedAt      sql.NullString
			nextRetryAt      sql.NullString
			lastError        sql.NullString
			deadLetteredAt   sql.NullString
			deadLetterReason sql.NullString
			payload          string
		)
		err := rows.Scan(
			&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType, &msg.RoutingKey,
			&payload, &metadata, &createdAt, &publishedAt, &nextRetryAt, &msg.RetryCount,
			&lastError, &deadLetteredAt, &deadLetterReason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}

		msg.EventID, err = uuid.Parse(eventID)
		if err != nil {
			return nil, fmt.Errorf("parse event id: %w", err)
		}
		msg.AggregateID, err = uuid.Parse(aggregateID)
		if err != nil {
			return nil, fmt.Errorf("parse aggregate id: %w", err)
		}
		msg.Payload = json.RawMessage(payload)
		if metadata.Valid {
			msg.Metadata = json.RawMessage(metadata.String)
		}
		msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		msg.PublishedAt = parseNullTime(publishedAt)
		msg.NextRetryAt = parseNullTime(nextRetryAt)
		msg.DeadLetteredAt = parseNullTime(deadLetteredAt)
		if lastError.Valid {
			msg.LastError = &lastError.String
		}
		if deadLetterReason.Valid {
			msg.DeadLetterReason = &deadLetterReason.String
		}

		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
