// Package ratelimit bounds sensitive operations per identifying key within a
// rolling window. Counters are ephemeral: losing them on restart fails open,
// which is acceptable for brute-force throttling.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Policy defaults: 10 attempts per 3-minute window per {operation, key}.
const (
	DefaultLimit  = 10
	DefaultWindow = 3 * time.Minute
)

// Limiter reports whether another attempt of operation for key is allowed.
// The window restarts from the first attempt observed for the pair.
type Limiter interface {
	Allow(ctx context.Context, operation, key string) bool
}

type window struct {
	count int
	start time.Time
}

// MemoryLimiter keeps counters in-process behind a mutex. Suitable for a
// single instance; use RedisLimiter when counters must be shared.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	entries map[string]*window
}

// NewMemoryLimiter creates a MemoryLimiter allowing limit attempts per
// window for each {operation, key} pair.
func NewMemoryLimiter(limit int, windowSize time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	return &MemoryLimiter{
		limit:   limit,
		window:  windowSize,
		now:     time.Now,
		entries: make(map[string]*window),
	}
}

// Allow increments the counter for {operation, key} and reports whether the
// attempt is within budget. The first attempt after a window elapses resets
// the counter.
func (l *MemoryLimiter) Allow(_ context.Context, operation, key string) bool {
	k := operation + ":" + key

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.entries[k]
	if !ok || now.Sub(w.start) >= l.window {
		if len(l.entries) >= 4096 {
			l.sweep(now)
		}
		l.entries[k] = &window{count: 1, start: now}
		return true
	}

	w.count++
	return w.count <= l.limit
}

// sweep drops expired windows. Caller holds the mutex.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.entries {
		if now.Sub(w.start) >= l.window {
			delete(l.entries, k)
		}
	}
}
