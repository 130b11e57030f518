package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	sharedPersistence "github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBlockRepository persists time blocks in PostgreSQL.
type PostgresBlockRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBlockRepository creates a Postgres block repository.
func NewPostgresBlockRepository(pool *pgxpool.Pool) *PostgresBlockRepository {
	return &PostgresBlockRepository{pool: pool}
}

const pgUpsertBlock = `
INSERT INTO time_blocks (id, title, day, start_time, end_time, status, notes, category, icon,
                         external_event_id, calendar_id, link_last_modified, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    day = EXCLUDED.day,
    start_time = EXCLUDED.start_time,
    end_time = EXCLUDED.end_time,
    status = EXCLUDED.status,
    notes = EXCLUDED.notes,
    category = EXCLUDED.category,
    icon = EXCLUDED.icon,
    external_event_id = EXCLUDED.external_event_id,
    calendar_id = EXCLUDED.calendar_id,
    link_last_modified = EXCLUDED.link_last_modified,
    updated_at = EXCLUDED.updated_at`

// Save upserts the block, joining any transaction in context.
func (r *PostgresBlockRepository) Save(ctx context.Context, block *domain.TimeBlock) error {
	exec := sharedPersistence.Executor(ctx, r.pool)

	var eventID, calendarID *string
	var lastModified *time.Time
	if link := block.Link(); link != nil {
		eventID = &link.EventID
		calendarID = &link.CalendarID
		lastModified = &link.LastModified
	}

	_, err := exec.Exec(ctx, pgUpsertBlock,
		block.ID(),
		block.Title(),
		block.Day(),
		block.StartTime(),
		block.EndTime(),
		block.Status().String(),
		block.Notes(),
		block.Category(),
		block.Icon(),
		eventID,
		calendarID,
		lastModified,
		block.CreatedAt(),
		block.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save time block: %w", err)
	}
	return nil
}

const pgSelectBlock = `
SELECT id, title, start_time, end_time, status, notes, category, icon,
       external_event_id, calendar_id, link_last_modified, created_at, updated_at
FROM time_blocks`

// FindByID returns the block, or nil when absent.
func (r *PostgresBlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeBlock, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	row := exec.QueryRow(ctx, pgSelectBlock+` WHERE id = $1`, id)

	block, err := scanPostgresBlock(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find time block: %w", err)
	}
	return block, nil
}

// FindByDate returns the date's blocks ordered by start time.
func (r *PostgresBlockRepository) FindByDate(ctx context.Context, date time.Time) ([]*domain.TimeBlock, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		pgSelectBlock+` WHERE day = $1 ORDER BY start_time ASC`,
		domain.DayOf(date),
	)
	if err != nil {
		return nil, fmt.Errorf("query blocks by date: %w", err)
	}
	defer rows.Close()

	return scanPostgresBlocks(rows)
}

// FindByDateRange returns blocks on days in [start, end], inclusive.
func (r *PostgresBlockRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.TimeBlock, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		pgSelectBlock+` WHERE day >= $1 AND day <= $2 ORDER BY start_time ASC`,
		domain.DayOf(start), domain.DayOf(end),
	)
	if err != nil {
		return nil, fmt.Errorf("query blocks by date range: %w", err)
	}
	defer rows.Close()

	return scanPostgresBlocks(rows)
}

// FindLinked returns every block carrying external calendar linkage.
func (r *PostgresBlockRepository) FindLinked(ctx context.Context) ([]*domain.TimeBlock, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		pgSelectBlock+` WHERE external_event_id IS NOT NULL ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query linked blocks: %w", err)
	}
	defer rows.Close()

	return scanPostgresBlocks(rows)
}

// Delete removes a block. Deleting an absent block is not an error.
func (r *PostgresBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM time_blocks WHERE id = $1`, id)
	return err
}

// DeleteByDate removes all of a day's blocks.
func (r *PostgresBlockRepository) DeleteByDate(ctx context.Context, date time.Time) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM time_blocks WHERE day = $1`, domain.DayOf(date))
	return err
}

func scanPostgresBlock(row pgx.Row) (*domain.TimeBlock, error) {
	var (
		id           uuid.UUID
		title        string
		startTime    time.Time
		endTime      time.Time
		status       string
		notes        string
		category     string
		icon         string
		eventID      *string
		calendarID   *string
		lastModified *time.Time
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := row.Scan(&id, &title, &startTime, &endTime, &status, &notes, &category, &icon,
		&eventID, &calendarID, &lastModified, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var link *domain.CalendarLink
	if eventID != nil && calendarID != nil && lastModified != nil {
		link = &domain.CalendarLink{
			EventID:      *eventID,
			CalendarID:   *calendarID,
			LastModified: *lastModified,
		}
	}

	return domain.RehydrateTimeBlock(
		id, title, startTime, endTime, notes, category, icon,
		domain.BlockStatus(status), link, createdAt, updatedAt,
	), nil
}

func scanPostgresBlocks(rows pgx.Rows) ([]*domain.TimeBlock, error) {
	var blocks []*domain.TimeBlock
	for rows.Next() {
		block, err := scanPostgresBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time block: %w", err)
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
