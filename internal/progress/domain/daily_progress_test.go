package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDailyProgress_NormalizesDate(t *testing.T) {
	noon := time.Date(2026, 8, 24, 12, 34, 56, 0, time.UTC)
	progress := NewDailyProgress(noon)

	assert.Equal(t, day(2026, 8, 24), progress.Date())
	assert.Equal(t, 0, progress.TotalBlocks())
	assert.Nil(t, progress.Rating())
	assert.False(t, progress.Viewed())
}

func TestDailyProgress_CompletionPercentage(t *testing.T) {
	tests := []struct {
		name     string
		counts   DayCounts
		expected float64
	}{
		{"no blocks", DayCounts{}, 0},
		{"none completed", DayCounts{TotalBlocks: 4}, 0},
		{"half completed", DayCounts{TotalBlocks: 4, CompletedBlocks: 2}, 0.5},
		{"all completed", DayCounts{TotalBlocks: 3, CompletedBlocks: 3}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			progress := NewDailyProgress(day(2026, 8, 24))
			progress.SetCounts(tc.counts)
			assert.InDelta(t, tc.expected, progress.CompletionPercentage(), 1e-9)
		})
	}
}

func TestDailyProgress_Performance(t *testing.T) {
	tests := []struct {
		name     string
		counts   DayCounts
		expected PerformanceLevel
	}{
		{"no blocks", DayCounts{}, PerformanceNone},
		{"poor", DayCounts{TotalBlocks: 10, CompletedBlocks: 2}, PerformancePoor},
		{"fair", DayCounts{TotalBlocks: 10, CompletedBlocks: 4}, PerformanceFair},
		{"good", DayCounts{TotalBlocks: 10, CompletedBlocks: 7}, PerformanceGood},
		{"excellent", DayCounts{TotalBlocks: 10, CompletedBlocks: 9}, PerformanceExcellent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			progress := NewDailyProgress(day(2026, 8, 24))
			progress.SetCounts(tc.counts)
			assert.Equal(t, tc.expected, progress.Performance())
		})
	}
}

func TestDailyProgress_IsDayComplete(t *testing.T) {
	progress := NewDailyProgress(day(2026, 8, 24))
	assert.False(t, progress.IsDayComplete()) // empty day is never complete

	progress.SetCounts(DayCounts{TotalBlocks: 3, CompletedBlocks: 2, SkippedBlocks: 1})
	assert.True(t, progress.IsDayComplete())

	progress.SetCounts(DayCounts{TotalBlocks: 3, CompletedBlocks: 2})
	assert.False(t, progress.IsDayComplete())
}

func TestDailyProgress_SetRating(t *testing.T) {
	progress := NewDailyProgress(day(2026, 8, 24))

	for _, invalid := range []int{0, -1, 6} {
		assert.ErrorIs(t, progress.SetRating(invalid), ErrInvalidRating)
	}
	assert.Nil(t, progress.Rating())

	require.NoError(t, progress.SetRating(4))
	rating := progress.Rating()
	require.NotNil(t, rating)
	assert.Equal(t, 4, *rating)

	// Rating returns a copy.
	*rating = 1
	assert.Equal(t, 4, *progress.Rating())
}

func TestDailyProgress_SetCountsKeepsUserFields(t *testing.T) {
	progress := NewDailyProgress(day(2026, 8, 24))
	require.NoError(t, progress.SetRating(5))
	progress.SetNotes("great day")
	progress.MarkViewed()

	progress.SetCounts(DayCounts{TotalBlocks: 2, CompletedBlocks: 1})

	require.NotNil(t, progress.Rating())
	assert.Equal(t, 5, *progress.Rating())
	assert.Equal(t, "great day", progress.Notes())
	assert.True(t, progress.Viewed())
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"monday stays", day(2026, 8, 24), day(2026, 8, 24)},
		{"wednesday", day(2026, 8, 26), day(2026, 8, 24)},
		{"sunday belongs to prior monday", day(2026, 8, 30), day(2026, 8, 24)},
		{"with time of day", time.Date(2026, 8, 27, 18, 45, 0, 0, time.UTC), day(2026, 8, 24)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StartOfWeek(tc.input))
		})
	}
}

func TestComputeWeeklyStats(t *testing.T) {
	monday := day(2026, 8, 24)

	good := NewDailyProgress(monday)
	good.SetCounts(DayCounts{TotalBlocks: 4, CompletedBlocks: 4, TotalPlannedMinutes: 240, CompletedMinutes: 240})

	poor := NewDailyProgress(monday.AddDate(0, 0, 1))
	poor.SetCounts(DayCounts{TotalBlocks: 4, CompletedBlocks: 1, TotalPlannedMinutes: 200, CompletedMinutes: 50})

	empty := NewDailyProgress(monday.AddDate(0, 0, 2))

	stats := ComputeWeeklyStats(monday, []*DailyProgress{good, poor, empty, nil})

	assert.Equal(t, monday, stats.WeekStart)
	assert.Equal(t, monday.AddDate(0, 0, 6), stats.WeekEnd)
	assert.Equal(t, 2, stats.DaysWithData) // empty day excluded
	assert.Equal(t, 1, stats.GoodDays)
	assert.InDelta(t, 0.625, stats.AverageCompletion, 1e-9)
	assert.Equal(t, 8, stats.TotalBlocks)
	assert.Equal(t, 5, stats.CompletedBlocks)
	assert.Equal(t, 440, stats.TotalPlannedMinutes)
	assert.Equal(t, 290, stats.CompletedMinutes)
}

func TestComputeWeeklyStats_EmptyWeek(t *testing.T) {
	stats := ComputeWeeklyStats(day(2026, 8, 26), nil)

	assert.Equal(t, day(2026, 8, 24), stats.WeekStart)
	assert.Equal(t, 0, stats.DaysWithData)
	assert.Equal(t, 0.0, stats.AverageCompletion)
}
