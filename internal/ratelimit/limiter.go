package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/shortloop/shortloop/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CounterStore is the shared counter backend, typically Redis. Incr must be
// atomic across instances; Expire is advisory cleanup.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Result is a single admission decision plus the header-facing metadata.
type Result struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	// ResetSeconds is how long until the current window rolls over, in
	// whole seconds, at least 1.
	ResetSeconds int64
}

// FixedWindowLimiter counts requests per bucket key in fixed wall-clock
// windows. All instances sharing the store agree on window boundaries because
// the window start is derived from Unix time, not from process start.
//
// The count can briefly exceed limit+1 when concurrent requests race past the
// threshold; each such request still sees its own INCR result and is denied,
// so the limit holds per decision.
type FixedWindowLimiter struct {
	store CounterStore
	now   func() time.Time
}

func NewFixedWindowLimiter(store CounterStore) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store: store,
		now:   time.Now,
	}
}

// Allow records one request against key and reports whether it fits within
// limit for the current window. A store failure is returned to the caller,
// which owns the fail-open versus fail-closed decision.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (Result, error) {
	windowSeconds := int64(window.Seconds())
	if windowSeconds < 1 {
		windowSeconds = 1
	}

	nowSec := l.now().Unix()
	windowStart := nowSec - nowSec%windowSeconds
	storageKey := fmt.Sprintf("%s:%d", key, windowStart)

	count, err := l.store.Incr(ctx, storageKey)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit counter incr: %w", err)
	}

	if count == 1 {
		// First hit in the window sets the TTL so stale counters expire on
		// their own. Losing this is harmless: the key is scoped to the
		// window start, so a leaked counter is never read again.
		ttl := time.Duration(windowSeconds) * time.Second
		if err := l.store.Expire(ctx, storageKey, ttl); err != nil {
			logger.Warn("rate limit counter expire failed",
				zap.Error(err), zap.String("key", storageKey))
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:      count <= limit,
		Limit:        limit,
		Remaining:    remaining,
		ResetSeconds: windowStart + windowSeconds - nowSec,
	}, nil
}
