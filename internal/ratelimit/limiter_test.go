package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter(10, 3*time.Minute)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if !l.Allow(ctx, "signin", "user@example.com|192.0.2.1") {
			t.Fatalf("attempt %d rejected, want allowed", i)
		}
	}

	if l.Allow(ctx, "signin", "user@example.com|192.0.2.1") {
		t.Error("11th attempt allowed, want rejected")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(10, 3*time.Minute)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		l.Allow(ctx, "signin", "a@example.com|192.0.2.1")
	}

	if !l.Allow(ctx, "signin", "b@example.com|192.0.2.1") {
		t.Error("different key rejected, want allowed")
	}
}

func TestMemoryLimiterOperationsAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(10, 3*time.Minute)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		l.Allow(ctx, "signin", "user@example.com")
	}

	if !l.Allow(ctx, "signup", "user@example.com") {
		t.Error("same key under a different operation rejected, want allowed")
	}
}

func TestMemoryLimiterWindowRolls(t *testing.T) {
	l := NewMemoryLimiter(10, 3*time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		l.Allow(ctx, "signin", "key")
	}
	if l.Allow(ctx, "signin", "key") {
		t.Fatal("over-limit attempt allowed inside the window")
	}

	// Just short of the window: still rejected.
	now = now.Add(3*time.Minute - time.Second)
	if l.Allow(ctx, "signin", "key") {
		t.Error("attempt allowed before the window elapsed")
	}

	// Window elapsed: counter restarts from this attempt.
	now = now.Add(2 * time.Second)
	if !l.Allow(ctx, "signin", "key") {
		t.Error("first attempt of a fresh window rejected")
	}
}

func TestMemoryLimiterDefaults(t *testing.T) {
	l := NewMemoryLimiter(0, 0)
	if l.limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", l.limit, DefaultLimit)
	}
	if l.window != DefaultWindow {
		t.Errorf("window = %v, want %v", l.window, DefaultWindow)
	}
}
