// Package persistence implements block storage for SQLite and Postgres.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	sharedPersistence "github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const dayLayout = "2006-01-02"

// SQLiteBlockRepository persists time blocks in SQLite. Times are stored
// as RFC 3339 text; the day column is denormalized from the start time for
// per-day queries.
type SQLiteBlockRepository struct {
	db *sql.DB
}

// NewSQLiteBlockRepository creates a SQLite block repository.
func NewSQLiteBlockRepository(db *sql.DB) *SQLiteBlockRepository {
	return &SQLiteBlockRepository{db: db}
}

const sqliteUpsertBlock = `
INSERT INTO time_blocks (id, title, day, start_time, end_time, status, notes, category, icon,
                         external_event_id, calendar_id, link_last_modified, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    day = excluded.day,
    start_time = excluded.start_time,
    end_time = excluded.end_time,
    status = excluded.status,
    notes = excluded.notes,
    category = excluded.category,
    icon = excluded.icon,
    external_event_id = excluded.external_event_id,
    calendar_id = excluded.calendar_id,
    link_last_modified = excluded.link_last_modified,
    updated_at = excluded.updated_at`

// Save upserts the block, joining any transaction in context.
func (r *SQLiteBlockRepository) Save(ctx context.Context, block *domain.TimeBlock) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)

	var eventID, calendarID, lastModified sql.NullString
	if link := block.Link(); link != nil {
		eventID = sql.NullString{String: link.EventID, Valid: true}
		calendarID = sql.NullString{String: link.CalendarID, Valid: true}
		lastModified = sql.NullString{String: link.LastModified.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := q.ExecContext(ctx, sqliteUpsertBlock,
		block.ID().String(),
		block.Title(),
		block.Day().Format(dayLayout),
		block.StartTime().Format(time.RFC3339Nano),
		block.EndTime().Format(time.RFC3339Nano),
		block.Status().String(),
		block.Notes(),
		block.Category(),
		block.Icon(),
		eventID,
		calendarID,
		lastModified,
		block.CreatedAt().UTC().Format(time.RFC3339Nano),
		block.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save time block: %w", err)
	}
	return nil
}

const sqliteSelectBlock = `
SELECT id, title, start_time, end_time, status, notes, category, icon,
       external_event_id, calendar_id, link_last_modified, created_at, updated_at
FROM time_blocks`

// FindByID returns the block, or nil when absent.
func (r *SQLiteBlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeBlock, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	row := q.QueryRowContext(ctx, sqliteSelectBlock+` WHERE id = ?`, id.String())

	block, err := scanSQLiteBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find time block: %w", err)
	}
	return block, nil
}

// FindByDate returns the date's blocks ordered by start time.
func (r *SQLiteBlockRepository) FindByDate(ctx context.Context, date time.Time) ([]*domain.TimeBlock, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		sqliteSelectBlock+` WHERE day = ? ORDER BY start_time ASC`,
		domain.DayOf(date).Format(dayLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query blocks by date: %w", err)
	}
	defer rows.Close()

	return scanSQLiteBlocks(rows)
}

// FindByDateRange returns blocks on days in [start, end], inclusive.
func (r *SQLiteBlockRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.TimeBlock, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		sqliteSelectBlock+` WHERE day >= ? AND day <= ? ORDER BY start_time ASC`,
		domain.DayOf(start).Format(dayLayout),
		domain.DayOf(end).Format(dayLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query blocks by date range: %w", err)
	}
	defer rows.Close()

	return scanSQLiteBlocks(rows)
}

// FindLinked returns every block carrying external calendar linkage.
func (r *SQLiteBlockRepository) FindLinked(ctx context.Context) ([]*domain.TimeBlock, error) {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		sqliteSelectBlock+` WHERE external_event_id IS NOT NULL ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query linked blocks: %w", err)
	}
	defer rows.Close()

	return scanSQLiteBlocks(rows)
}

// Delete removes a block. Deleting an absent block is not an error.
func (r *SQLiteBlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx, `DELETE FROM time_blocks WHERE id = ?`, id.String())
	return err
}

// DeleteByDate removes all of a day's blocks.
func (r *SQLiteBlockRepository) DeleteByDate(ctx context.Context, date time.Time) error {
	q := sharedPersistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`DELETE FROM time_blocks WHERE day = ?`,
		domain.DayOf(date).Format(dayLayout),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBlock(row rowScanner) (*domain.TimeBlock, error) {
	var (
		id           string
		title        string
		startTime    string
		endTime      string
		status       string
		notes        string
		category     string
		icon         string
		eventID      sql.NullString
		calendarID   sql.NullString
		lastModified sql.NullString
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(&id, &title, &startTime, &endTime, &status, &notes, &category, &icon,
		&eventID, &calendarID, &lastModified, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	blockID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse block id: %w", err)
	}
	start, err := time.Parse(time.RFC3339Nano, startTime)
	if err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	end, err := time.Parse(time.RFC3339Nano, endTime)
	if err != nil {
		return nil, fmt.Errorf("parse end_time: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	var link *domain.CalendarLink
	if eventID.Valid && calendarID.Valid && lastModified.Valid {
		modified, err := time.Parse(time.RFC3339Nano, lastModified.String)
		if err != nil {
			return nil, fmt.Errorf("parse link_last_modified: %w", err)
		}
		link = &domain.CalendarLink{
			EventID:      eventID.String,
			CalendarID:   calendarID.String,
			LastModified: modified,
		}
	}

	return domain.RehydrateTimeBlock(
		blockID, title, start, end, notes, category, icon,
		domain.BlockStatus(status), link, created, updated,
	), nil
}

func scanSQLiteBlocks(rows *sql.Rows) ([]*domain.TimeBlock, error) {
	var blocks []*domain.TimeBlock
	for rows.Next() {
		block, err := scanSQLiteBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time block: %w", err)
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
