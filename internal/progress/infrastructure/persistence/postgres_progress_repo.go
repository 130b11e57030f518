package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/progress/domain"
	sharedPersistence "github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProgressRepository persists daily progress in PostgreSQL.
type PostgresProgressRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProgressRepository creates a Postgres progress repository.
func NewPostgresProgressRepository(pool *pgxpool.Pool) *PostgresProgressRepository {
	return &PostgresProgressRepository{pool: pool}
}

const pgUpsertProgress = `
INSERT INTO daily_progress (id, date, total_blocks, completed_blocks, skipped_blocks, in_progress_blocks,
                            total_planned_minutes, completed_minutes, rating, notes, viewed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (date) DO UPDATE SET
    total_blocks = EXCLUDED.total_blocks,
    completed_blocks = EXCLUDED.completed_blocks,
    skipped_blocks = EXCLUDED.skipped_blocks,
    in_progress_blocks = EXCLUDED.in_progress_blocks,
    total_planned_minutes = EXCLUDED.total_planned_minutes,
    completed_minutes = EXCLUDED.completed_minutes,
    rating = EXCLUDED.rating,
    notes = EXCLUDED.notes,
    viewed = EXCLUDED.viewed,
    updated_at = EXCLUDED.updated_at`

// Save upserts the day's progress record.
func (r *PostgresProgressRepository) Save(ctx context.Context, progress *domain.DailyProgress) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	counts := progress.Counts()
	_, err := exec.Exec(ctx, pgUpsertProgress,
		progress.ID(),
		progress.Date(),
		counts.TotalBlocks,
		counts.CompletedBlocks,
		counts.SkippedBlocks,
		counts.InProgressBlocks,
		counts.TotalPlannedMinutes,
		counts.CompletedMinutes,
		progress.Rating(),
		progress.Notes(),
		progress.Viewed(),
		progress.CreatedAt(),
		progress.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save daily progress: %w", err)
	}
	return nil
}

const pgSelectProgress = `
SELECT id, date, total_blocks, completed_blocks, skipped_blocks, in_progress_blocks,
       total_planned_minutes, completed_minutes, rating, notes, viewed, created_at, updated_at
FROM daily_progress`

// FindByDate returns the day's record, or nil when absent.
func (r *PostgresProgressRepository) FindByDate(ctx context.Context, date time.Time) (*domain.DailyProgress, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	row := exec.QueryRow(ctx, pgSelectProgress+` WHERE date = $1`, day)

	progress, err := scanPostgresProgress(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find daily progress: %w", err)
	}
	return progress, nil
}

// FindByDateRange returns records for days in [start, end], oldest first.
func (r *PostgresProgressRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.DailyProgress, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		pgSelectProgress+` WHERE date >= $1 AND date <= $2 ORDER BY date ASC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily progress range: %w", err)
	}
	defer rows.Close()

	var records []*domain.DailyProgress
	for rows.Next() {
		progress, err := scanPostgresProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily progress: %w", err)
		}
		records = append(records, progress)
	}
	return records, rows.Err()
}

func scanPostgresProgress(row pgx.Row) (*domain.DailyProgress, error) {
	var (
		id        uuid.UUID
		date      time.Time
		counts    domain.DayCounts
		rating    *int
		notes     string
		viewed    bool
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&id, &date,
		&counts.TotalBlocks, &counts.CompletedBlocks, &counts.SkippedBlocks, &counts.InProgressBlocks,
		&counts.TotalPlannedMinutes, &counts.CompletedMinutes,
		&rating, &notes, &viewed, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateDailyProgress(id, date, counts, rating, notes, viewed, createdAt, updatedAt), nil
}
