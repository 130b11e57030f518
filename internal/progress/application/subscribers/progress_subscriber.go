// Package subscribers keeps the progress projection current on the worker
// side by reacting to scheduling events from the bus.
package subscribers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	progressApp "github.com/felixgeelhaar/dayblock/internal/progress/application"
	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/eventbus"
)

// ProgressSubscriber recomputes a day's progress whenever that day's block
// set or statuses change. Recomputation is idempotent, so at-least-once
// delivery from the broker is safe.
type ProgressSubscriber struct {
	blocks     schedulingDomain.BlockRepository
	aggregator *progressApp.Aggregator
	logger     *slog.Logger
}

// NewProgressSubscriber creates a progress subscriber.
func NewProgressSubscriber(blocks schedulingDomain.BlockRepository, aggregator *progressApp.Aggregator, logger *slog.Logger) *ProgressSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressSubscriber{
		blocks:     blocks,
		aggregator: aggregator,
		logger:     logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *ProgressSubscriber) EventTypes() []string {
	return []string{
		schedulingDomain.RoutingKeyBlockCreated,
		schedulingDomain.RoutingKeyBlockUpdated,
		schedulingDomain.RoutingKeyBlockRescheduled,
		schedulingDomain.RoutingKeyBlockStatusChanged,
		schedulingDomain.RoutingKeyBlockDeleted,
		schedulingDomain.RoutingKeyDayReset,
	}
}

// dayFields is the subset of event payload fields that locate the day.
type dayFields struct {
	Day          time.Time `json:"day"`
	StartTime    time.Time `json:"start_time"`
	NewStartTime time.Time `json:"new_start_time"`
}

// Handle recomputes the affected day's progress record.
func (s *ProgressSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var fields dayFields
	if err := json.Unmarshal(event.Payload, &fields); err != nil {
		s.logger.Error("failed to unmarshal scheduling payload",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", err,
		)
		return nil
	}

	day := fields.Day
	if day.IsZero() {
		day = fields.NewStartTime
	}
	if day.IsZero() {
		day = fields.StartTime
	}
	if day.IsZero() {
		// Nothing to recompute without a day; drop rather than retry.
		s.logger.Warn("scheduling event without a day, skipping",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
		)
		return nil
	}

	blocks, err := s.blocks.FindByDate(ctx, day)
	if err != nil {
		return err
	}
	if _, err := s.aggregator.Aggregate(ctx, day, blocks); err != nil {
		return err
	}

	s.logger.Debug("progress recomputed",
		"day", schedulingDomain.DayOf(day).Format("2006-01-02"),
		"routing_key", event.RoutingKey,
	)
	return nil
}
