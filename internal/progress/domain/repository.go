package domain

import (
	"context"
	"time"
)

// ProgressRepository defines persistence operations for daily progress.
// FindByDate returns nil, nil when no record exists for the date.
type ProgressRepository interface {
	Save(ctx context.Context, progress *DailyProgress) error
	FindByDate(ctx context.Context, date time.Time) (*DailyProgress, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]*DailyProgress, error)
}
