package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConsumer records every event it handles.
type recordingConsumer struct {
	types  []string
	events []*ConsumedEvent
	err    error
}

func (c *recordingConsumer) EventTypes() []string { return c.types }

func (c *recordingConsumer) Handle(_ context.Context, event *ConsumedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

func TestConsumerRegistry_Register(t *testing.T) {
	registry := NewConsumerRegistry(nil)
	consumer := &recordingConsumer{types: []string{"scheduling.block.created", "scheduling.day.reset"}}

	registry.Register(consumer)

	assert.Len(t, registry.Consumers("scheduling.block.created"), 1)
	assert.Len(t, registry.Consumers("scheduling.day.reset"), 1)
	assert.Empty(t, registry.Consumers("scheduling.block.deleted"))
	assert.ElementsMatch(t, []string{"scheduling.block.created", "scheduling.day.reset"}, registry.EventTypes())
	assert.Equal(t, 2, registry.ConsumerCount())
}

func TestConsumerRegistry_DispatchFansOut(t *testing.T) {
	registry := NewConsumerRegistry(nil)
	first := &recordingConsumer{types: []string{"scheduling.block.created"}}
	second := &recordingConsumer{types: []string{"scheduling.block.created"}}
	registry.Register(first)
	registry.Register(second)

	event := &ConsumedEvent{EventID: uuid.New(), RoutingKey: "scheduling.block.created"}
	require.NoError(t, registry.Dispatch(context.Background(), event))

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestConsumerRegistry_DispatchContinuesPastFailure(t *testing.T) {
	registry := NewConsumerRegistry(nil)
	failing := &recordingConsumer{types: []string{"scheduling.block.created"}, err: errors.New("boom")}
	healthy := &recordingConsumer{types: []string{"scheduling.block.created"}}
	registry.Register(failing)
	registry.Register(healthy)

	err := registry.Dispatch(context.Background(), &ConsumedEvent{RoutingKey: "scheduling.block.created"})

	assert.ErrorContains(t, err, "boom")
	assert.Len(t, healthy.events, 1)
}

func TestConsumerRegistry_DispatchWithoutConsumers(t *testing.T) {
	registry := NewConsumerRegistry(nil)
	assert.NoError(t, registry.Dispatch(context.Background(), &ConsumedEvent{RoutingKey: "scheduling.block.created"}))
}

func TestInProcessBus_PublishEnvelope(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	consumer := &recordingConsumer{types: []string{"scheduling.block.created"}}
	bus.RegisterConsumer(consumer)

	eventID := uuid.New()
	body, err := json.Marshal(ConsumedEvent{
		EventID:    eventID,
		RoutingKey: "scheduling.block.created",
		OccurredAt: time.Now().UTC(),
		Payload:    json.RawMessage(`{"title":"Deep work"}`),
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "scheduling.block.created", body))

	require.Len(t, consumer.events, 1)
	assert.Equal(t, eventID, consumer.events[0].EventID)
	assert.JSONEq(t, `{"title":"Deep work"}`, string(consumer.events[0].Payload))
}

func TestInProcessBus_PublishBareBody(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	consumer := &recordingConsumer{types: []string{"scheduling.block.created"}}
	bus.RegisterConsumer(consumer)

	// A bare event body has no envelope; the routing key and payload
	// come from the message itself.
	body := []byte(`{"block_id":"b1","title":"Deep work"}`)
	require.NoError(t, bus.Publish(context.Background(), "scheduling.block.created", body))

	require.Len(t, consumer.events, 1)
	got := consumer.events[0]
	assert.Equal(t, "scheduling.block.created", got.RoutingKey)
	assert.JSONEq(t, string(body), string(got.Payload))
}

func TestInProcessBus_PublishSwallowsConsumerError(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	bus.RegisterConsumer(&recordingConsumer{types: []string{"scheduling.block.created"}, err: errors.New("boom")})

	assert.NoError(t, bus.Publish(context.Background(), "scheduling.block.created", []byte(`{}`)))
}

func TestInProcessBus_PublishMalformedPayload(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	consumer := &recordingConsumer{types: []string{"scheduling.block.created"}}
	bus.RegisterConsumer(consumer)

	assert.NoError(t, bus.Publish(context.Background(), "scheduling.block.created", []byte(`not json`)))
	assert.Empty(t, consumer.events)
}
