package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/progress/domain"
	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
)

// Aggregator derives DailyProgress and WeeklyStats from a day's blocks.
// Aggregation is a read-modify-write: the persisted record is loaded (or
// created lazily) so the user's rating, notes and viewed flag survive every
// recomputation.
type Aggregator struct {
	progressRepo domain.ProgressRepository
	logger       *slog.Logger
}

// NewAggregator creates a progress aggregator.
func NewAggregator(progressRepo domain.ProgressRepository, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		progressRepo: progressRepo,
		logger:       logger,
	}
}

// Aggregate recomputes the date's progress from blocks and persists it.
func (a *Aggregator) Aggregate(ctx context.Context, date time.Time, blocks []*schedulingDomain.TimeBlock) (*domain.DailyProgress, error) {
	progress, err := a.progressRepo.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load daily progress: %w", err)
	}
	if progress == nil {
		progress = domain.NewDailyProgress(date)
	}

	progress.SetCounts(CountBlocks(blocks))

	if err := a.progressRepo.Save(ctx, progress); err != nil {
		return nil, fmt.Errorf("save daily progress: %w", err)
	}

	a.logger.Debug("daily progress recomputed",
		"date", progress.Date().Format("2006-01-02"),
		"total", progress.TotalBlocks(),
		"completed", progress.CompletedBlocks(),
		"performance", progress.Performance(),
	)
	return progress, nil
}

// AggregateWeek rolls the week's persisted records into weekly statistics.
func (a *Aggregator) AggregateWeek(ctx context.Context, weekContaining time.Time) (*domain.WeeklyStats, error) {
	weekStart := domain.StartOfWeek(weekContaining)
	weekEnd := weekStart.AddDate(0, 0, 6)

	days, err := a.progressRepo.FindByDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("load weekly progress: %w", err)
	}

	stats := domain.ComputeWeeklyStats(weekStart, days)
	return &stats, nil
}

// CountBlocks partitions blocks by status and sums planned and completed
// minutes. It is pure and deterministic.
func CountBlocks(blocks []*schedulingDomain.TimeBlock) domain.DayCounts {
	counts := domain.DayCounts{TotalBlocks: len(blocks)}
	for _, b := range blocks {
		minutes := b.DurationMinutes()
		counts.TotalPlannedMinutes += minutes
		switch b.Status() {
		case schedulingDomain.StatusCompleted:
			counts.CompletedBlocks++
			counts.CompletedMinutes += minutes
		case schedulingDomain.StatusSkipped:
			counts.SkippedBlocks++
		case schedulingDomain.StatusInProgress:
			counts.InProgressBlocks++
		}
	}
	return counts
}
