package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. Save and SaveBatch join the
// transaction carried in the context when one is present.
type Repository interface {
	// Save stores a single message.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores multiple messages atomically.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns publishable messages oldest first. Messages
	// waiting on a retry backoff are excluded.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished records a successful publish.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a publish failure and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error

	// MarkDead parks a message that exhausted its retries.
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld removes published messages past the retention window.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
