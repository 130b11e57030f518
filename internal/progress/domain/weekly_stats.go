package domain

import "time"

// GoodDayThreshold is the completion percentage at or above which a day
// counts as a good day in weekly rollups.
const GoodDayThreshold = 0.7

// WeeklyStats is a read-only rollup over the 7 calendar days of a week.
// It is never persisted; it is recomputed from the week's DailyProgress
// records on demand.
type WeeklyStats struct {
	WeekStart time.Time // Monday
	WeekEnd   time.Time // Sunday

	DaysWithData      int
	GoodDays          int
	AverageCompletion float64

	TotalBlocks         int
	CompletedBlocks     int
	TotalPlannedMinutes int
	CompletedMinutes    int
}

// StartOfWeek returns the Monday of the week containing t, at start of day.
func StartOfWeek(t time.Time) time.Time {
	daysBack := int(t.Weekday()) - 1
	if daysBack < 0 {
		daysBack = 6 // Sunday
	}
	monday := t.AddDate(0, 0, -daysBack)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

// ComputeWeeklyStats rolls up the given days into weekly statistics.
// Days without blocks contribute nothing to the completion average.
func ComputeWeeklyStats(weekStart time.Time, days []*DailyProgress) WeeklyStats {
	weekStart = StartOfWeek(weekStart)
	stats := WeeklyStats{
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 6),
	}

	var completionSum float64
	for _, day := range days {
		if day == nil || day.TotalBlocks() == 0 {
			continue
		}
		stats.DaysWithData++
		pct := day.CompletionPercentage()
		completionSum += pct
		if pct >= GoodDayThreshold {
			stats.GoodDays++
		}
		stats.TotalBlocks += day.TotalBlocks()
		stats.CompletedBlocks += day.CompletedBlocks()
		stats.TotalPlannedMinutes += day.TotalPlannedMinutes()
		stats.CompletedMinutes += day.CompletedMinutes()
	}

	if stats.DaysWithData > 0 {
		stats.AverageCompletion = completionSum / float64(stats.DaysWithData)
	}
	return stats
}
