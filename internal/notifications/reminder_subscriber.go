package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/eventbus"
)

// ReminderSubscriber consumes reminder replacement events on the worker
// side. Delivery here is log-based; a desktop or push notifier would hook
// in at this point.
type ReminderSubscriber struct {
	logger *slog.Logger
}

// NewReminderSubscriber creates a reminder subscriber.
func NewReminderSubscriber(logger *slog.Logger) *ReminderSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderSubscriber{logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *ReminderSubscriber) EventTypes() []string {
	return []string{RoutingKeyRemindersRescheduled}
}

// Handle replaces the day's scheduled reminders with the published set.
func (s *ReminderSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload RemindersRescheduled
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		// Malformed reminder sets are dropped; the next reschedule
		// replaces them anyway.
		s.logger.Error("failed to unmarshal reminder payload",
			"event_id", event.EventID,
			"error", err,
		)
		return nil
	}

	s.logger.Info("reminders replaced",
		"date", payload.Date,
		"count", len(payload.Reminders),
	)
	for _, reminder := range payload.Reminders {
		s.logger.Info("reminder scheduled",
			"block_id", reminder.BlockID,
			"title", reminder.Title,
			"fire_at", reminder.FireAt,
		)
	}
	return nil
}
