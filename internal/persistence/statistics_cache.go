package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/employee-service/internal/domain"
)

// StatisticsCacheKey is the Redis key holding the cached employee statistics.
const StatisticsCacheKey = "employees:statistics"

var errNilStatistics = errors.New("nil statistics")

// StatisticsCache stores employee statistics in Redis as JSON.
type StatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatisticsCache builds the cache. A nil client or zero ttl yields a cache that always misses.
func NewStatisticsCache(r *Redis, ttl time.Duration) *StatisticsCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &StatisticsCache{client: client, ttl: ttl}
}

func (c *StatisticsCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached statistics; ok is false on a miss.
func (c *StatisticsCache) Get(ctx context.Context) (*domain.EmployeeStatistics, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, StatisticsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var stats domain.EmployeeStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

// Set stores stats with the configured ttl.
func (c *StatisticsCache) Set(ctx context.Context, stats *domain.EmployeeStatistics) error {
	if !c.enabled() {
		return nil
	}
	if stats == nil {
		return errNilStatistics
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, StatisticsCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the cached statistics.
func (c *StatisticsCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, StatisticsCacheKey).Err()
}
