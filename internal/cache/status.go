// Package cache holds the Redis-backed read cache for the schedule status.
// The status is recomputed on every read otherwise; a short TTL keeps the
// landing page cheap without letting the open/closed flag go stale.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anish-yen/barber-app/internal/schedule"
)

const statusKey = "barber:schedule_status"

// StatusCache caches the computed schedule status in Redis with a TTL.
type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatusCache wires the cache. A nil client or non-positive TTL yields a
// cache that always misses.
func NewStatusCache(rdb *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{rdb: rdb, ttl: ttl}
}

func (c *StatusCache) Get(ctx context.Context) (*schedule.Status, bool) {
	if c.rdb == nil || c.ttl <= 0 {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, statusKey).Result()
	if err != nil {
		return nil, false
	}
	var st schedule.Status
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return nil, false
	}
	return &st, true
}

func (c *StatusCache) Set(ctx context.Context, st schedule.Status) {
	if c.rdb == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, statusKey, data, c.ttl).Err()
}

// Invalidate drops the cached status after a schedule mutation.
func (c *StatusCache) Invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, statusKey).Err()
}
