// Package persistence implements daily progress storage for SQLite and
// Postgres.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/progress/domain"
	sharedPersistence "github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const dayLayout = "2006-01-02"

// SQLiteProgressRepository persists daily progress in SQLite, keyed by date.
type SQLiteProgressRepository struct {
	db *sql.DB
}

// NewSQLiteProgressRepository creates a SQLite progress repository.
func NewSQLiteProgressRepository(db *sql.DB) *SQLiteProgressRepository {
	return &SQLiteProgressRepository{db: db}
}

const sqliteUpsertProgress = `
INSERT INTO daily_progress (id, date, total_blocks, completed_blocks, skipped_blocks, in_progress_blocks,
                            total_planned_minutes, completed_minutes, rating, notes, viewed, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
    total_blocks = excluded.total_blocks,
    completed_blocks = excluded.completed_blocks,
    skipped_blocks = excluded.skipped_blocks,
    in_progress_blocks = excluded.in_progress_blocks,
    total_planned_minutes = excluded.total_planned_minutes,
    completed_minutes = excluded.completed_minutes,
    rating = excluded.rating,
    notes = excluded.notes,
    viewed = excluded.viewed,
    updated_at = excluded.updated_at`

// Save upserts the day's progress record.
func (r *SQLiteProgressRepository) Save(ctx context.Context, progress *domain.DailyProgress) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)

	var rating sql.NullInt64
	if v := progress.Rating(); v != nil {
		rating = sql.NullInt64{Int64: int64(*v), Valid: true}
	}

	counts := progress.Counts()
	_, err := q.ExecContext(ctx, sqliteUpsertProgress,
		progress.ID().String(),
		progress.Date().Format(dayLayout),
		counts.TotalBlocks,
		counts.CompletedBlocks,
		counts.SkippedBlocks,
		counts.InProgressBlocks,
		counts.TotalPlannedMinutes,
		counts.CompletedMinutes,
		rating,
		progress.Notes(),
		boolToInt(progress.Viewed()),
		progress.CreatedAt().UTC().Format(time.RFC3339Nano),
		progress.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save daily progress: %w", err)
	}
	return nil
}

const sqliteSelectProgress = `
SELECT id, date, total_blocks, completed_blocks, skipped_blocks, in_progress_blocks,
       total_planned_minutes, completed_minutes, rating, notes, viewed, created_at, updated_at
FROM daily_progress`

// FindByDate returns the day's record, or nil when absent.
func (r *SQLiteProgressRepository) FindByDate(ctx context.Context, date time.Time) (*domain.DailyProgress, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := q.QueryRowContext(ctx,
		sqliteSelectProgress+` WHERE date = ?`,
		time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).Format(dayLayout),
	)

	progress, err := scanSQLiteProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find daily progress: %w", err)
	}
	return progress, nil
}

// FindByDateRange returns records for days in [start, end], oldest first.
func (r *SQLiteProgressRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.DailyProgress, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		sqliteSelectProgress+` WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		start.Format(dayLayout), end.Format(dayLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query daily progress range: %w", err)
	}
	defer rows.Close()

	var records []*domain.DailyProgress
	for rows.Next() {
		progress, err := scanSQLiteProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily progress: %w", err)
		}
		records = append(records, progress)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProgress(row rowScanner) (*domain.DailyProgress, error) {
	var (
		id        string
		date      string
		counts    domain.DayCounts
		rating    sql.NullInt64
		notes     string
		viewed    int
		createdAt string
		updatedAt string
	)
	err := row.Scan(&id, &date,
		&counts.TotalBlocks, &counts.CompletedBlocks, &counts.SkippedBlocks, &counts.InProgressBlocks,
		&counts.TotalPlannedMinutes, &counts.CompletedMinutes,
		&rating, &notes, &viewed, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	progressID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse progress id: %w", err)
	}
	day, err := time.Parse(dayLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	var ratingPtr *int
	if rating.Valid {
		v := int(rating.Int64)
		ratingPtr = &v
	}

	return domain.RehydrateDailyProgress(
		progressID, day, counts, ratingPtr, notes, viewed != 0, created, updated,
	), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
