package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupBlockTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func blockAt(t *testing.T, title string, hour int) *domain.TimeBlock {
	t.Helper()
	start := time.Date(2026, 8, 24, hour, 0, 0, 0, time.UTC)
	block, err := domain.NewTimeBlock(title, start, start.Add(time.Hour), "notes", "work", "brain")
	require.NoError(t, err)
	return block
}

func TestSQLiteBlockRepository_SaveAndFindByID(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	block := blockAt(t, "Deep work", 9)
	require.NoError(t, repo.Save(ctx, block))

	found, err := repo.FindByID(ctx, block.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, block.ID(), found.ID())
	assert.Equal(t, "Deep work", found.Title())
	assert.True(t, block.StartTime().Equal(found.StartTime()))
	assert.True(t, block.EndTime().Equal(found.EndTime()))
	assert.Equal(t, domain.StatusNotStarted, found.Status())
	assert.Equal(t, "notes", found.Notes())
	assert.Equal(t, "work", found.Category())
	assert.Equal(t, "brain", found.Icon())
	assert.Nil(t, found.Link())
}

func TestSQLiteBlockRepository_FindByID_Absent(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLiteBlockRepository_SaveIsUpsert(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	block := blockAt(t, "Before", 9)
	require.NoError(t, repo.Save(ctx, block))

	require.NoError(t, block.UpdateDetails("After", "", "", ""))
	require.NoError(t, repo.Save(ctx, block))

	found, err := repo.FindByID(ctx, block.ID())
	require.NoError(t, err)
	assert.Equal(t, "After", found.Title())
	assert.Empty(t, found.Notes())
}

func TestSQLiteBlockRepository_FindByDate(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	late := blockAt(t, "Late", 14)
	early := blockAt(t, "Early", 8)
	require.NoError(t, repo.Save(ctx, late))
	require.NoError(t, repo.Save(ctx, early))

	otherDay := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	other, err := domain.NewTimeBlock("Other day", otherDay, otherDay.Add(time.Hour), "", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	blocks, err := repo.FindByDate(ctx, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	// Ordered by start time.
	assert.Equal(t, "Early", blocks[0].Title())
	assert.Equal(t, "Late", blocks[1].Title())
}

func TestSQLiteBlockRepository_FindByDateRange(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	for dayOffset := 0; dayOffset < 3; dayOffset++ {
		start := time.Date(2026, 8, 24+dayOffset, 9, 0, 0, 0, time.UTC)
		block, err := domain.NewTimeBlock("Block", start, start.Add(time.Hour), "", "", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, block))
	}

	blocks, err := repo.FindByDateRange(ctx,
		time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
}

func TestSQLiteBlockRepository_RoundTripsStatusAndLink(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	block := blockAt(t, "Linked", 9)
	require.NoError(t, block.Transition(domain.StatusCompleted, block.StartTime()))
	block.SetLink("evt-1", "cal-1", time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, block))

	found, err := repo.FindByID(ctx, block.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, found.Status())
	link := found.Link()
	require.NotNil(t, link)
	assert.Equal(t, "evt-1", link.EventID)
	assert.Equal(t, "cal-1", link.CalendarID)
	assert.True(t, link.LastModified.Equal(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)))
}

func TestSQLiteBlockRepository_FindLinked(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	linked := blockAt(t, "Linked", 9)
	linked.SetLink("evt-1", "cal-1", time.Now().UTC())
	unlinked := blockAt(t, "Unlinked", 10)
	require.NoError(t, repo.Save(ctx, linked))
	require.NoError(t, repo.Save(ctx, unlinked))

	blocks, err := repo.FindLinked(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, linked.ID(), blocks[0].ID())
}

func TestSQLiteBlockRepository_Delete(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	block := blockAt(t, "Doomed", 9)
	require.NoError(t, repo.Save(ctx, block))
	require.NoError(t, repo.Delete(ctx, block.ID()))

	found, err := repo.FindByID(ctx, block.ID())
	require.NoError(t, err)
	assert.Nil(t, found)

	// Deleting again is not an error.
	assert.NoError(t, repo.Delete(ctx, block.ID()))
}

func TestSQLiteBlockRepository_DeleteByDate(t *testing.T) {
	repo := NewSQLiteBlockRepository(setupBlockTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, blockAt(t, "One", 9)))
	require.NoError(t, repo.Save(ctx, blockAt(t, "Two", 10)))

	require.NoError(t, repo.DeleteByDate(ctx, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)))

	blocks, err := repo.FindByDate(ctx, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, blocks)
}
