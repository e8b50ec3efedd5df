package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps counters in Redis so several instances share one
// budget. INCR is atomic per key; the TTL set on the first hit of a window
// makes the window roll.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a RedisLimiter allowing limit attempts per window.
func NewRedisLimiter(client redis.UniversalClient, limit int, windowSize time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: windowSize,
	}
}

// Allow increments the shared counter for {operation, key}. Counters need no
// durability, so a Redis failure logs and fails open rather than locking
// every caller out.
func (l *RedisLimiter) Allow(ctx context.Context, operation, key string) bool {
	k := "ratelimit:" + operation + ":" + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		slog.WarnContext(ctx, "rate limit counter unavailable, failing open", "operation", operation, "error", err)
		return true
	}

	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			slog.WarnContext(ctx, "rate limit window expiry not set", "operation", operation, "error", err)
		}
	}

	return count <= int64(l.limit)
}
