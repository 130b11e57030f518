package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around the external provider.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are
// configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerProvider wraps a Provider with a circuit breaker so a flapping or
// unreachable calendar store stops being called for a cooldown period. An
// open circuit surfaces as an ordinary provider error, which callers
// already treat as non-fatal.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerProvider wraps provider with circuit-breaker protection.
func NewBreakerProvider(provider Provider, cfg BreakerConfig, logger *slog.Logger) *BreakerProvider {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        "calendar-provider",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return &BreakerProvider{
		inner:   provider,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (p *BreakerProvider) CreateEvent(ctx context.Context, calendarID string, data EventData) (*EventRef, error) {
	result, err := p.breaker.Execute(func() (any, error) {
		return p.inner.CreateEvent(ctx, calendarID, data)
	})
	if err != nil {
		return nil, err
	}
	return result.(*EventRef), nil
}

func (p *BreakerProvider) UpdateEvent(ctx context.Context, calendarID, eventID string, data EventData) (time.Time, error) {
	result, err := p.breaker.Execute(func() (any, error) {
		return p.inner.UpdateEvent(ctx, calendarID, eventID, data)
	})
	if err != nil {
		return time.Time{}, err
	}
	return result.(time.Time), nil
}

func (p *BreakerProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.inner.DeleteEvent(ctx, calendarID, eventID)
	})
	return err
}

func (p *BreakerProvider) EventExists(ctx context.Context, calendarID, eventID string) (bool, error) {
	result, err := p.breaker.Execute(func() (any, error) {
		return p.inner.EventExists(ctx, calendarID, eventID)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (p *BreakerProvider) ListCalendars(ctx context.Context) ([]Calendar, error) {
	result, err := p.breaker.Execute(func() (any, error) {
		return p.inner.ListCalendars(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Calendar), nil
}
