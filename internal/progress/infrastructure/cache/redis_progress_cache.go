// Package cache adds a Redis read-through layer over the progress
// repository. The cache is an optimization only: every miss or Redis error
// falls through to the underlying repository.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/dayblock/internal/progress/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds staleness if an invalidation is ever missed.
const DefaultTTL = 15 * time.Minute

// RedisProgressCache decorates a ProgressRepository with per-day caching.
type RedisProgressCache struct {
	inner  domain.ProgressRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisProgressCache creates the caching decorator.
func NewRedisProgressCache(inner domain.ProgressRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisProgressCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisProgressCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(date time.Time) string {
	return fmt.Sprintf("dayblock:progress:%s", date.Format("2006-01-02"))
}

// progressDTO is the cached wire form of a DailyProgress.
type progressDTO struct {
	ID        uuid.UUID        `json:"id"`
	Date      time.Time        `json:"date"`
	Counts    domain.DayCounts `json:"counts"`
	Rating    *int             `json:"rating,omitempty"`
	Notes     string           `json:"notes"`
	Viewed    bool             `json:"viewed"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func toDTO(p *domain.DailyProgress) progressDTO {
	return progressDTO{
		ID:        p.ID(),
		Date:      p.Date(),
		Counts:    p.Counts(),
		Rating:    p.Rating(),
		Notes:     p.Notes(),
		Viewed:    p.Viewed(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func fromDTO(dto progressDTO) *domain.DailyProgress {
	return domain.RehydrateDailyProgress(
		dto.ID, dto.Date, dto.Counts, dto.Rating, dto.Notes, dto.Viewed,
		dto.CreatedAt, dto.UpdatedAt,
	)
}

// Save writes through to the repository and refreshes the cached day.
func (c *RedisProgressCache) Save(ctx context.Context, progress *domain.DailyProgress) error {
	if err := c.inner.Save(ctx, progress); err != nil {
		return err
	}
	c.store(ctx, progress)
	return nil
}

// FindByDate serves the day from cache when possible.
func (c *RedisProgressCache) FindByDate(ctx context.Context, date time.Time) (*domain.DailyProgress, error) {
	key := cacheKey(time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()))

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var dto progressDTO
		if jsonErr := json.Unmarshal(raw, &dto); jsonErr == nil {
			return fromDTO(dto), nil
		}
		// Unreadable entry; drop it and fall through.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("progress cache read failed", "key", key, "error", err)
	}

	progress, err := c.inner.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		c.store(ctx, progress)
	}
	return progress, nil
}

// FindByDateRange always hits the repository; range scans are rare and
// caching them per-day buys little.
func (c *RedisProgressCache) FindByDateRange(ctx context.Context, start, end time.Time) ([]*domain.DailyProgress, error) {
	return c.inner.FindByDateRange(ctx, start, end)
}

func (c *RedisProgressCache) store(ctx context.Context, progress *domain.DailyProgress) {
	raw, err := json.Marshal(toDTO(progress))
	if err != nil {
		c.logger.Warn("progress cache marshal failed", "error", err)
		return
	}
	key := cacheKey(progress.Date())
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("progress cache write failed", "key", key, "error", err)
	}
}
