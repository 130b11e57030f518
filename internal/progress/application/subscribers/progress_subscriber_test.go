package subscribers

import (
	"context"
	"errors"
	"testing"
	"time"

	progressApp "github.com/felixgeelhaar/dayblock/internal/progress/application"
	progressDomain "github.com/felixgeelhaar/dayblock/internal/progress/domain"
	schedulingDomain "github.com/felixgeelhaar/dayblock/internal/scheduling/domain"
	"github.com/felixgeelhaar/dayblock/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBlockRepo struct {
	mock.Mock
}

func (m *mockBlockRepo) Save(ctx context.Context, block *schedulingDomain.TimeBlock) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *mockBlockRepo) FindByID(ctx context.Context, id uuid.UUID) (*schedulingDomain.TimeBlock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedulingDomain.TimeBlock), args.Error(1)
}

func (m *mockBlockRepo) FindByDate(ctx context.Context, date time.Time) ([]*schedulingDomain.TimeBlock, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedulingDomain.TimeBlock), args.Error(1)
}

func (m *mockBlockRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]*schedulingDomain.TimeBlock, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedulingDomain.TimeBlock), args.Error(1)
}

func (m *mockBlockRepo) FindLinked(ctx context.Context) ([]*schedulingDomain.TimeBlock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedulingDomain.TimeBlock), args.Error(1)
}

func (m *mockBlockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBlockRepo) DeleteByDate(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

type mockProgressRepo struct {
	mock.Mock
}

func (m *mockProgressRepo) Save(ctx context.Context, progress *progressDomain.DailyProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *mockProgressRepo) FindByDate(ctx context.Context, date time.Time) (*progressDomain.DailyProgress, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progressDomain.DailyProgress), args.Error(1)
}

func (m *mockProgressRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]*progressDomain.DailyProgress, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*progressDomain.DailyProgress), args.Error(1)
}

func testDay() time.Time {
	return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
}

func testBlock(t *testing.T) *schedulingDomain.TimeBlock {
	t.Helper()
	start := testDay().Add(9 * time.Hour)
	block, err := schedulingDomain.NewTimeBlock("Deep work", start, start.Add(time.Hour), "", "", "")
	require.NoError(t, err)
	return block
}

func newSubscriber(blocks *mockBlockRepo, progress *mockProgressRepo) *ProgressSubscriber {
	return NewProgressSubscriber(blocks, progressApp.NewAggregator(progress, nil), nil)
}

func TestProgressSubscriber_EventTypes(t *testing.T) {
	subscriber := newSubscriber(new(mockBlockRepo), new(mockProgressRepo))
	assert.Contains(t, subscriber.EventTypes(), schedulingDomain.RoutingKeyBlockCreated)
	assert.Contains(t, subscriber.EventTypes(), schedulingDomain.RoutingKeyBlockStatusChanged)
	assert.Contains(t, subscriber.EventTypes(), schedulingDomain.RoutingKeyDayReset)
}

func TestProgressSubscriber_RecomputesDay(t *testing.T) {
	blocks := new(mockBlockRepo)
	progress := new(mockProgressRepo)

	blocks.On("FindByDate", mock.Anything, testDay()).
		Return([]*schedulingDomain.TimeBlock{testBlock(t)}, nil)
	progress.On("FindByDate", mock.Anything, testDay()).Return(nil, nil)
	progress.On("Save", mock.Anything, mock.AnythingOfType("*domain.DailyProgress")).Return(nil)

	subscriber := newSubscriber(blocks, progress)
	event := &eventbus.ConsumedEvent{
		RoutingKey: schedulingDomain.RoutingKeyDayReset,
		Payload:    []byte(`{"day":"2026-08-24T00:00:00Z"}`),
	}

	require.NoError(t, subscriber.Handle(context.Background(), event))
	blocks.AssertExpectations(t)
	progress.AssertExpectations(t)
}

func TestProgressSubscriber_FallsBackToStartTime(t *testing.T) {
	day := testDay().Add(9 * time.Hour)

	blocks := new(mockBlockRepo)
	progress := new(mockProgressRepo)
	blocks.On("FindByDate", mock.Anything, day).Return([]*schedulingDomain.TimeBlock{}, nil)
	progress.On("FindByDate", mock.Anything, day).Return(nil, nil)
	progress.On("Save", mock.Anything, mock.Anything).Return(nil)

	subscriber := newSubscriber(blocks, progress)
	event := &eventbus.ConsumedEvent{
		RoutingKey: schedulingDomain.RoutingKeyBlockCreated,
		Payload:    []byte(`{"start_time":"2026-08-24T09:00:00Z"}`),
	}

	require.NoError(t, subscriber.Handle(context.Background(), event))
	blocks.AssertExpectations(t)
}

func TestProgressSubscriber_PrefersNewStartTimeOnReschedule(t *testing.T) {
	newStart := testDay().Add(14 * time.Hour)

	blocks := new(mockBlockRepo)
	progress := new(mockProgressRepo)
	blocks.On("FindByDate", mock.Anything, newStart).Return([]*schedulingDomain.TimeBlock{}, nil)
	progress.On("FindByDate", mock.Anything, newStart).Return(nil, nil)
	progress.On("Save", mock.Anything, mock.Anything).Return(nil)

	subscriber := newSubscriber(blocks, progress)
	event := &eventbus.ConsumedEvent{
		RoutingKey: schedulingDomain.RoutingKeyBlockRescheduled,
		Payload:    []byte(`{"new_start_time":"2026-08-24T14:00:00Z"}`),
	}

	require.NoError(t, subscriber.Handle(context.Background(), event))
	blocks.AssertExpectations(t)
}

func TestProgressSubscriber_SkipsEventWithoutDay(t *testing.T) {
	blocks := new(mockBlockRepo)
	subscriber := newSubscriber(blocks, new(mockProgressRepo))

	event := &eventbus.ConsumedEvent{
		RoutingKey: schedulingDomain.RoutingKeyBlockDeleted,
		Payload:    []byte(`{}`),
	}

	assert.NoError(t, subscriber.Handle(context.Background(), event))
	blocks.AssertNotCalled(t, "FindByDate", mock.Anything, mock.Anything)
}

func TestProgressSubscriber_DropsMalformedPayload(t *testing.T) {
	subscriber := newSubscriber(new(mockBlockRepo), new(mockProgressRepo))

	event := &eventbus.ConsumedEvent{
		RoutingKey: schedulingDomain.RoutingKeyBlockCreated,
		Payload:    []byte(`not json`),
	}
	assert.NoError(t, subscriber.Handle(context.Background(), event))
}

func TestProgressSubscriber_ReturnsRepoErrorForRetry(t *testing.T) {
	blocks := new(mockBlockRepo)
	blocks.On("FindByDate", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	subscriber := newSubscriber(blocks, new(mockProgressRepo))
	event := &eventbus.ConsumedEvent{
		RoutingKey: schedulingDomain.RoutingKeyDayReset,
		Payload:    []byte(`{"day":"2026-08-24T00:00:00Z"}`),
	}

	assert.ErrorContains(t, subscriber.Handle(context.Background(), event), "db down")
}
