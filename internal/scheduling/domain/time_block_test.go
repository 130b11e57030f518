package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 24, hour, minute, 0, 0, time.UTC)
}

func newBlock(t *testing.T, title string, start, end time.Time) *TimeBlock {
	t.Helper()
	block, err := NewTimeBlock(title, start, end, "", "", "")
	require.NoError(t, err)
	return block
}

func TestNewTimeBlock_Success(t *testing.T) {
	block, err := NewTimeBlock("Deep work", at(9, 0), at(11, 0), "notes", "focus", "brain")

	require.NoError(t, err)
	require.NotNil(t, block)
	assert.Equal(t, "Deep work", block.Title())
	assert.Equal(t, at(9, 0), block.StartTime())
	assert.Equal(t, at(11, 0), block.EndTime())
	assert.Equal(t, "notes", block.Notes())
	assert.Equal(t, "focus", block.Category())
	assert.Equal(t, "brain", block.Icon())
	assert.Equal(t, StatusNotStarted, block.Status())
	assert.False(t, block.IsLinked())
	assert.Equal(t, 120, block.DurationMinutes())
	assert.Len(t, block.DomainEvents(), 1) // BlockCreated
}

func TestNewTimeBlock_TrimsTitle(t *testing.T) {
	block := newBlock(t, "  Standup  ", at(9, 0), at(9, 15))
	assert.Equal(t, "Standup", block.Title())
}

func TestNewTimeBlock_Validation(t *testing.T) {
	tests := []struct {
		name  string
		title string
		start time.Time
		end   time.Time
		err   error
	}{
		{"empty title", "", at(9, 0), at(10, 0), ErrEmptyTitle},
		{"whitespace title", "   ", at(9, 0), at(10, 0), ErrEmptyTitle},
		{"end before start", "x", at(10, 0), at(9, 0), ErrInvalidTimeRange},
		{"zero length", "x", at(9, 0), at(9, 0), ErrInvalidTimeRange},
		{"too short", "x", at(9, 0), at(9, 0).Add(30 * time.Second), ErrBlockTooShort},
		{"crosses midnight", "x", at(23, 0), at(23, 0).Add(2 * time.Hour), ErrCrossesDayBoundary},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTimeBlock(tc.title, tc.start, tc.end, "", "", "")
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestNewTimeBlock_EndsExactlyAtMidnight(t *testing.T) {
	midnight := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	block, err := NewTimeBlock("Late shift", at(22, 0), midnight, "", "", "")

	require.NoError(t, err)
	assert.Equal(t, at(0, 0), block.Day())
}

func TestNewTimeBlock_FullDay(t *testing.T) {
	start := at(0, 0)
	block, err := NewTimeBlock("Offsite", start, start.Add(24*time.Hour), "", "", "")

	require.NoError(t, err)
	assert.Equal(t, 24*60, block.DurationMinutes())
}

func TestTimeBlock_Day(t *testing.T) {
	block := newBlock(t, "x", at(14, 30), at(15, 30))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), block.Day())
}

func TestTimeBlock_IsActiveAt(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))

	assert.False(t, block.IsActiveAt(at(8, 59)))
	assert.True(t, block.IsActiveAt(at(9, 0)))
	assert.True(t, block.IsActiveAt(at(9, 59)))
	assert.False(t, block.IsActiveAt(at(10, 0))) // half-open
}

func TestTimeBlock_ProgressAt(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))

	assert.Equal(t, 0.0, block.ProgressAt(at(8, 0)))
	assert.InDelta(t, 0.5, block.ProgressAt(at(9, 30)), 1e-9)
	assert.Equal(t, 1.0, block.ProgressAt(at(10, 0)))
	assert.Equal(t, 1.0, block.ProgressAt(at(11, 0)))
}

func TestTimeBlock_StatusAt(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))

	assert.Equal(t, StatusNotStarted, block.StatusAt(at(8, 0)))
	assert.Equal(t, StatusInProgress, block.StatusAt(at(9, 30)))
	assert.Equal(t, StatusNotStarted, block.Status()) // stored status unchanged

	require.NoError(t, block.Transition(StatusSkipped, at(9, 30)))
	assert.Equal(t, StatusSkipped, block.StatusAt(at(9, 45)))
}

func TestTimeBlock_Transition(t *testing.T) {
	tests := []struct {
		name   string
		from   BlockStatus
		target BlockStatus
		now    time.Time
		err    error
	}{
		{"not started to completed", StatusNotStarted, StatusCompleted, at(12, 0), nil},
		{"not started to skipped", StatusNotStarted, StatusSkipped, at(12, 0), nil},
		{"not started to in progress inside interval", StatusNotStarted, StatusInProgress, at(9, 30), nil},
		{"not started to in progress before interval", StatusNotStarted, StatusInProgress, at(8, 0), ErrNotWithinInterval},
		{"not started to in progress after interval", StatusNotStarted, StatusInProgress, at(10, 0), ErrNotWithinInterval},
		{"in progress to completed", StatusInProgress, StatusCompleted, at(12, 0), nil},
		{"in progress to skipped", StatusInProgress, StatusSkipped, at(12, 0), nil},
		{"completed to in progress", StatusCompleted, StatusInProgress, at(9, 30), ErrTerminalStatus},
		{"completed to skipped", StatusCompleted, StatusSkipped, at(12, 0), nil},
		{"skipped to completed", StatusSkipped, StatusCompleted, at(12, 0), nil},
		{"back to not started", StatusCompleted, StatusNotStarted, at(12, 0), ErrTerminalStatus},
		{"invalid target", StatusNotStarted, BlockStatus("paused"), at(12, 0), ErrInvalidStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			block := RehydrateTimeBlock(uuid.New(), "x", at(9, 0), at(10, 0),
				"", "", "", tc.from, nil, at(8, 0), at(8, 0))

			err := block.Transition(tc.target, tc.now)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Equal(t, tc.from, block.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.target, block.Status())
		})
	}
}

func TestTimeBlock_Transition_SameStatusIsNoOp(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))
	block.ClearDomainEvents()

	require.NoError(t, block.Transition(StatusNotStarted, at(12, 0)))
	assert.Empty(t, block.DomainEvents())
}

func TestTimeBlock_Transition_EmitsStatusChanged(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))
	block.ClearDomainEvents()

	require.NoError(t, block.Transition(StatusCompleted, at(12, 0)))

	events := block.DomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*BlockStatusChanged)
	require.True(t, ok)
	assert.Equal(t, StatusNotStarted, changed.From)
	assert.Equal(t, StatusCompleted, changed.To)
	assert.Equal(t, block.Day(), changed.Day)
}

func TestTimeBlock_StartEarly(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))

	require.NoError(t, block.StartEarly())
	assert.Equal(t, StatusInProgress, block.Status())

	assert.ErrorIs(t, block.StartEarly(), ErrTerminalStatus)
}

func TestTimeBlock_ResetForDay(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))
	require.NoError(t, block.Transition(StatusCompleted, at(12, 0)))

	block.ResetForDay()
	assert.Equal(t, StatusNotStarted, block.Status())
}

func TestTimeBlock_ResetForDay_NoOpWhenNotStarted(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))
	block.ClearDomainEvents()

	block.ResetForDay()
	assert.Empty(t, block.DomainEvents())
}

func TestTimeBlock_UpdateDetails(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))

	require.NoError(t, block.UpdateDetails("Renamed", "new notes", "work", "pen"))
	assert.Equal(t, "Renamed", block.Title())
	assert.Equal(t, "new notes", block.Notes())
	assert.Equal(t, "work", block.Category())
	assert.Equal(t, "pen", block.Icon())

	assert.ErrorIs(t, block.UpdateDetails("", "", "", ""), ErrEmptyTitle)
}

func TestTimeBlock_Reschedule(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))

	require.NoError(t, block.Reschedule(at(14, 0), at(15, 30)))
	assert.Equal(t, at(14, 0), block.StartTime())
	assert.Equal(t, at(15, 30), block.EndTime())
}

func TestTimeBlock_Reschedule_RejectsDayChange(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))

	nextDay := at(9, 0).AddDate(0, 0, 1)
	err := block.Reschedule(nextDay, nextDay.Add(time.Hour))
	assert.ErrorIs(t, err, ErrDayChanged)
	assert.Equal(t, at(9, 0), block.StartTime())
}

func TestTimeBlock_Reschedule_KeepsStatus(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))
	require.NoError(t, block.StartEarly())

	require.NoError(t, block.Reschedule(at(11, 0), at(12, 0)))
	assert.Equal(t, StatusInProgress, block.Status())
}

func TestTimeBlock_Linkage(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))
	modified := at(9, 5)

	block.SetLink("evt-1", "cal-1", modified)
	require.True(t, block.IsLinked())
	link := block.Link()
	require.NotNil(t, link)
	assert.Equal(t, "evt-1", link.EventID)
	assert.Equal(t, "cal-1", link.CalendarID)
	assert.Equal(t, modified, link.LastModified)

	// Link returns a copy; mutating it must not affect the block.
	link.EventID = "tampered"
	assert.Equal(t, "evt-1", block.Link().EventID)

	block.RefreshLink(at(9, 10))
	assert.Equal(t, at(9, 10), block.Link().LastModified)

	block.ClearLink()
	assert.False(t, block.IsLinked())
	assert.Nil(t, block.Link())
}

func TestTimeBlock_ClearLink_NoOpWhenUnlinked(t *testing.T) {
	block := newBlock(t, "x", at(9, 0), at(10, 0))
	block.ClearDomainEvents()

	block.ClearLink()
	block.RefreshLink(at(9, 10))
	assert.Empty(t, block.DomainEvents())
}

func TestDayOf(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ts := time.Date(2026, 8, 24, 23, 30, 0, 0, loc)
	day := DayOf(ts)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, loc), day)
	assert.Equal(t, loc, day.Location())
}

func TestSameCalendarDay(t *testing.T) {
	assert.True(t, SameCalendarDay(at(0, 0), at(23, 59)))
	assert.False(t, SameCalendarDay(at(23, 59), at(23, 59).Add(time.Minute)))
}
