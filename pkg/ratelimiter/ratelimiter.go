package ratelimiter

import (
	"context"
	"time"
)

// Limiter enforces Config on top of a Store.
type Limiter struct {
	store  Store
	config Config
}

// New creates a fixed-window limiter.
func New(store Store, config Config) (*Limiter, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: config}, nil
}

// Allow records an attempt for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	count, resetAt, err := l.store.Increment(ctx, key, l.config.Window)
	if err != nil {
		return nil, err
	}
	return l.result(count, resetAt), nil
}

// Status returns the state of key without recording an attempt.
func (l *Limiter) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	count, resetAt, err := l.store.Count(ctx, key)
	if err != nil {
		return nil, err
	}
	return l.result(count, resetAt), nil
}

// Reset clears the attempts recorded for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return l.store.Reset(ctx, key)
}

func (l *Limiter) result(count int, resetAt time.Time) *Result {
	return &Result{
		Limit:     l.config.MaxAttempts,
		Remaining: l.config.MaxAttempts - count,
		ResetAt:   resetAt,
	}
}
