package auth

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mfagate/pkg/logger"
	"github.com/dmitrymomot/mfagate/pkg/ratelimiter"
)

// attemptLimiter counts attempts per key. A nil limiter admits everything.
type attemptLimiter struct {
	limiter *ratelimiter.Limiter
	scope   string
	logger  *slog.Logger
}

func (a *attemptLimiter) key(parts ...string) string {
	return ratelimiter.JoinKey(append([]string{a.scope}, parts...)...)
}

// hit records one attempt and fails with a rate limited error when the
// window is exhausted. Store outages admit the attempt.
func (a *attemptLimiter) hit(ctx context.Context, op string, parts ...string) error {
	if a == nil || a.limiter == nil {
		return nil
	}
	res, err := a.limiter.Allow(ctx, a.key(parts...))
	if err != nil {
		a.logger.WarnContext(ctx, "attempt limiter unavailable",
			logger.Component("limiter"),
			slog.String("scope", a.scope),
			logger.Error(err),
		)
		return nil
	}
	if !res.Allowed() {
		return rateLimited(op, res.RetryAfter())
	}
	return nil
}

func (a *attemptLimiter) reset(ctx context.Context, parts ...string) {
	if a == nil || a.limiter == nil {
		return
	}
	if err := a.limiter.Reset(ctx, a.key(parts...)); err != nil {
		a.logger.WarnContext(ctx, "failed to reset attempt counter",
			logger.Component("limiter"),
			slog.String("scope", a.scope),
			logger.Error(err),
		)
	}
}
