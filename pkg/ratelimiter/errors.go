package ratelimiter

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrEmptyKey         = errors.New("empty rate limit key")
	ErrStoreUnavailable = errors.New("store unavailable")
)
