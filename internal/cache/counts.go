// Package cache memoizes per-session attendance counts in Redis. The memo is
// a pure read-through layer; every new submission invalidates the session's
// entry, so reports never serve counts older than the configured TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/harrysonduke/bsc-project/internal/analytics"
)

type CountCache struct {
	redis  *redis.Client
	source analytics.CountSource
	ttl    time.Duration
}

// NewCountCache wraps source with a Redis memo. A nil client disables
// memoization and passes every call through.
func NewCountCache(client *redis.Client, source analytics.CountSource, ttl time.Duration) *CountCache {
	return &CountCache{redis: client, source: source, ttl: ttl}
}

func (c *CountCache) CountBySession(ctx context.Context, sessionID uuid.UUID) (analytics.SessionCounts, error) {
	if c.redis == nil {
		return c.source.CountBySession(ctx, sessionID)
	}
	key := countsKey(sessionID)
	if value, err := c.redis.Get(ctx, key).Result(); err == nil {
		var counts analytics.SessionCounts
		if err := json.Unmarshal([]byte(value), &counts); err == nil {
			return counts, nil
		}
		// Unreadable entries are dropped and recomputed.
		_ = c.redis.Del(ctx, key).Err()
	}
	counts, err := c.source.CountBySession(ctx, sessionID)
	if err != nil {
		return analytics.SessionCounts{}, err
	}
	if data, err := json.Marshal(counts); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Printf("count cache set failed for %s: %v", sessionID, err)
		}
	}
	return counts, nil
}

// Invalidate drops the memoized counts after a new submission. Best effort:
// a failed delete only means a stale read until the TTL expires.
func (c *CountCache) Invalidate(ctx context.Context, sessionID uuid.UUID) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, countsKey(sessionID)).Err(); err != nil {
		log.Printf("count cache invalidation failed for %s: %v", sessionID, err)
	}
}

func countsKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("attendance_counts:%s", sessionID)
}
