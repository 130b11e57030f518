package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// RoutingKeyRemindersRescheduled routes reminder replacement events to the
// delivery worker.
const RoutingKeyRemindersRescheduled = "notifications.reminders.rescheduled"

// RemindersRescheduled is the bus payload for a day's replaced reminders.
type RemindersRescheduled struct {
	Date      string     `json:"date"`
	Reminders []Reminder `json:"reminders"`
}

// PublishingRescheduler emits the day's derived reminder set on the event
// bus so a delivery worker can atomically swap scheduled notifications.
type PublishingRescheduler struct {
	publisher eventbus.Publisher
	leadTime  time.Duration
	logger    *slog.Logger
}

// NewPublishingRescheduler creates an event-publishing rescheduler.
func NewPublishingRescheduler(publisher eventbus.Publisher, leadTime time.Duration, logger *slog.Logger) *PublishingRescheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingRescheduler{
		publisher: publisher,
		leadTime:  leadTime,
		logger:    logger,
	}
}

// RescheduleAll replaces the day's reminders by publishing the full set.
func (r *PublishingRescheduler) RescheduleAll(ctx context.Context, date time.Time, blocks []*schedulingDomain.TimeBlock) error {
	payload, err := json.Marshal(RemindersRescheduled{
		Date:      date.Format("2006-01-02"),
		Reminders: DeriveReminders(blocks, r.leadTime),
	})
	if err != nil {
		return fmt.Errorf("marshal reminders: %w", err)
	}

	body, err := json.Marshal(eventbus.ConsumedEvent{
		EventID:       uuid.New(),
		AggregateType: "notifications",
		RoutingKey:    RoutingKeyRemindersRescheduled,
		OccurredAt:    time.Now().UTC(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder event: %w", err)
	}

	if err := r.publisher.Publish(ctx, RoutingKeyRemindersRescheduled, body); err != nil {
		return fmt.Errorf("publish reminders: %w", err)
	}
	return nil
}
