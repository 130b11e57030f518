package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BlockRepository defines persistence operations for time blocks.
// Implementations are transactional per call; FindByID returns nil, nil
// when no block exists.
type BlockRepository interface {
	Save(ctx context.Context, block *TimeBlock) error
	FindByID(ctx context.Context, id uuid.UUID) (*TimeBlock, error)

	// FindByDate returns the blocks whose start falls on date's calendar
	// day, ordered by start time.
	FindByDate(ctx context.Context, date time.Time) ([]*TimeBlock, error)

	// FindByDateRange returns blocks on days in [start, end], inclusive.
	FindByDateRange(ctx context.Context, start, end time.Time) ([]*TimeBlock, error)

	// FindLinked returns every block carrying external calendar linkage.
	FindLinked(ctx context.Context) ([]*TimeBlock, error)

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDate(ctx context.Context, date time.Time) error
}
