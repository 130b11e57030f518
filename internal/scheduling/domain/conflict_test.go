package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConflicts(t *testing.T) {
	existing := newBlock(t, "Existing", at(9, 0), at(10, 0))
	blocks := []*TimeBlock{existing}

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		conflicts int
	}{
		{"identical interval", at(9, 0), at(10, 0), 1},
		{"overlaps start", at(8, 30), at(9, 30), 1},
		{"overlaps end", at(9, 30), at(10, 30), 1},
		{"contained", at(9, 15), at(9, 45), 1},
		{"contains", at(8, 0), at(11, 0), 1},
		{"touches end", at(10, 0), at(11, 0), 0},
		{"touches start", at(8, 0), at(9, 0), 0},
		{"disjoint before", at(7, 0), at(8, 0), 0},
		{"disjoint after", at(11, 0), at(12, 0), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FindConflicts(tc.start, tc.end, blocks, uuid.Nil)
			assert.Len(t, got, tc.conflicts)
			assert.Equal(t, tc.conflicts > 0, HasConflict(tc.start, tc.end, blocks, uuid.Nil))
		})
	}
}

func TestFindConflicts_ExcludesBlockByID(t *testing.T) {
	block := newBlock(t, "Edited", at(9, 0), at(10, 0))
	other := newBlock(t, "Other", at(10, 0), at(11, 0))
	blocks := []*TimeBlock{block, other}

	// The edited block overlaps its own prior interval but is excluded.
	got := FindConflicts(at(9, 30), at(10, 30), blocks, block.ID())
	require.Len(t, got, 1)
	assert.Equal(t, other.ID(), got[0].ID())
}

func TestFindConflicts_IgnoresOtherDays(t *testing.T) {
	existing := newBlock(t, "Existing", at(9, 0), at(10, 0))

	nextDay := at(9, 0).AddDate(0, 0, 1)
	got := FindConflicts(nextDay, nextDay.Add(time.Hour), []*TimeBlock{existing}, uuid.Nil)
	assert.Empty(t, got)
}

func TestFindConflicts_ReturnsAllOverlaps(t *testing.T) {
	first := newBlock(t, "First", at(9, 0), at(10, 0))
	second := newBlock(t, "Second", at(10, 0), at(11, 0))
	third := newBlock(t, "Third", at(13, 0), at(14, 0))

	got := FindConflicts(at(9, 30), at(10, 30), []*TimeBlock{first, second, third}, uuid.Nil)
	assert.Len(t, got, 2)
}

func TestConflictError_Message(t *testing.T) {
	block := newBlock(t, "Deep work", at(9, 0), at(10, 0))

	err := &ConflictError{Conflicts: []*TimeBlock{block}}
	assert.Contains(t, err.Error(), `"Deep work"`)
	assert.Contains(t, err.Error(), "09:00-10:00")

	empty := &ConflictError{}
	assert.Equal(t, "time block conflict", empty.Error())
}

func TestBlockStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, BlockStatus("paused").IsValid())
	assert.False(t, BlockStatus("").IsValid())
}

func TestBlockStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusSkipped.IsTerminal())
	assert.False(t, StatusNotStarted.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}
