package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingPublisher keeps the last published message.
type capturingPublisher struct {
	mu         sync.Mutex
	routingKey string
	body       []byte
	err        error
}

func (p *capturingPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.routingKey = routingKey
	p.body = payload
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func testDate() time.Time {
	return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
}

func blockAt(t *testing.T, title string, hour int) *schedulingDomain.TimeBlock {
	t.Helper()
	start := testDate().Add(time.Duration(hour) * time.Hour)
	block, err := schedulingDomain.NewTimeBlock(title, start, start.Add(time.Hour), "", "", "")
	require.NoError(t, err)
	return block
}

func TestDeriveReminders(t *testing.T) {
	open := blockAt(t, "Open", 9)
	done := blockAt(t, "Done", 10)
	require.NoError(t, done.Transition(schedulingDomain.StatusCompleted, testDate()))
	skipped := blockAt(t, "Skipped", 11)
	require.NoError(t, skipped.Transition(schedulingDomain.StatusSkipped, testDate()))
	running := blockAt(t, "Running", 12)
	require.NoError(t, running.StartEarly())

	reminders := DeriveReminders([]*schedulingDomain.TimeBlock{open, done, skipped, running}, 10*time.Minute)

	// Terminal blocks stay silent; open and running blocks get reminders.
	require.Len(t, reminders, 2)
	assert.Equal(t, "Open", reminders[0].Title)
	assert.Equal(t, open.StartTime().Add(-10*time.Minute), reminders[0].FireAt)
	assert.Equal(t, open.EndTime(), reminders[0].BlockEnd)
	assert.Equal(t, "Running", reminders[1].Title)
}

func TestDeriveReminders_DefaultLeadTime(t *testing.T) {
	block := blockAt(t, "Open", 9)

	reminders := DeriveReminders([]*schedulingDomain.TimeBlock{block}, 0)

	require.Len(t, reminders, 1)
	assert.Equal(t, block.StartTime().Add(-DefaultLeadTime), reminders[0].FireAt)
}

func TestDeriveReminders_Empty(t *testing.T) {
	assert.Empty(t, DeriveReminders(nil, time.Minute))
}

func TestPublishingRescheduler_PublishesEnvelope(t *testing.T) {
	publisher := &capturingPublisher{}
	rescheduler := NewPublishingRescheduler(publisher, 5*time.Minute, nil)

	block := blockAt(t, "Open", 9)
	require.NoError(t, rescheduler.RescheduleAll(context.Background(), testDate(), []*schedulingDomain.TimeBlock{block}))

	assert.Equal(t, RoutingKeyRemindersRescheduled, publisher.routingKey)

	var envelope eventbus.ConsumedEvent
	require.NoError(t, json.Unmarshal(publisher.body, &envelope))
	assert.Equal(t, RoutingKeyRemindersRescheduled, envelope.RoutingKey)
	assert.Equal(t, "notifications", envelope.AggregateType)

	var payload RemindersRescheduled
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "2026-08-24", payload.Date)
	require.Len(t, payload.Reminders, 1)
	assert.Equal(t, block.ID().String(), payload.Reminders[0].BlockID)
}

func TestPublishingRescheduler_PublishFailure(t *testing.T) {
	publisher := &capturingPublisher{err: errors.New("broker down")}
	rescheduler := NewPublishingRescheduler(publisher, 0, nil)

	err := rescheduler.RescheduleAll(context.Background(), testDate(), nil)
	assert.ErrorContains(t, err, "publish reminders")
}

func TestLoggingRescheduler(t *testing.T) {
	rescheduler := NewLoggingRescheduler(0, nil)
	assert.NoError(t, rescheduler.RescheduleAll(context.Background(), testDate(), []*schedulingDomain.TimeBlock{blockAt(t, "Open", 9)}))
}

func TestReminderSubscriber_Handle(t *testing.T) {
	subscriber := NewReminderSubscriber(nil)
	assert.Equal(t, []string{RoutingKeyRemindersRescheduled}, subscriber.EventTypes())

	payload, err := json.Marshal(RemindersRescheduled{
		Date:      "2026-08-24",
		Reminders: []Reminder{{BlockID: "b1", Title: "Open", FireAt: testDate()}},
	})
	require.NoError(t, err)

	event := &eventbus.ConsumedEvent{RoutingKey: RoutingKeyRemindersRescheduled, Payload: payload}
	assert.NoError(t, subscriber.Handle(context.Background(), event))

	// Malformed payloads are dropped, not retried.
	bad := &eventbus.ConsumedEvent{RoutingKey: RoutingKeyRemindersRescheduled, Payload: []byte(`not json`)}
	assert.NoError(t, subscriber.Handle(context.Background(), bad))
}
