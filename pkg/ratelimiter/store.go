package ratelimiter

import (
	"context"
	"time"
)

// Store keeps per-key counters that expire with their window.
type Store interface {
	// Increment adds one attempt to key, opening a window of the given length
	// if none is active, and returns the new count and when the window ends.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)

	// Count returns the attempts recorded in the active window, or zero.
	Count(ctx context.Context, key string) (count int, resetAt time.Time, err error)

	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}
