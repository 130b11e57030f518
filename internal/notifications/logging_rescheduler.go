package notifications

import (
	"context"
	"log/slog"
	"time"

	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
)

// LoggingRescheduler is the local-mode rescheduler: it derives the day's
// reminder set and logs it instead of handing it to a delivery channel.
type LoggingRescheduler struct {
	leadTime time.Duration
	logger   *slog.Logger
}

// NewLoggingRescheduler creates a logging rescheduler.
func NewLoggingRescheduler(leadTime time.Duration, logger *slog.Logger) *LoggingRescheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingRescheduler{
		leadTime: leadTime,
		logger:   logger,
	}
}

// RescheduleAll replaces the day's reminders.
func (r *LoggingRescheduler) RescheduleAll(ctx context.Context, date time.Time, blocks []*schedulingDomain.TimeBlock) error {
	reminders := DeriveReminders(blocks, r.leadTime)
	r.logger.Debug("reminders rescheduled",
		"date", date.Format("2006-01-02"),
		"blocks", len(blocks),
		"reminders", len(reminders),
	)
	return nil
}
