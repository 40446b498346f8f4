// Package ratelimiter counts attempts per key in fixed windows.
//
// A Limiter allows at most Config.MaxAttempts calls to Allow for a key within
// Config.Window; the window starts with the first attempt and the counter
// disappears when it ends. Reset clears a key early, for example after a
// successful login.
//
//	limiter, err := ratelimiter.New(ratelimiter.NewRedisStore(client, "mfagate:rl"), ratelimiter.Config{
//		MaxAttempts: 5,
//		Window:      15 * time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	res, err := limiter.Allow(ctx, "login:"+ip)
//	if err != nil {
//		return err
//	}
//	if !res.Allowed() {
//		// reject, retry after res.RetryAfter()
//	}
//
// Two stores ship with the package: RedisStore for deployments with more than
// one instance and MemoryStore for single-process use and tests. Middleware
// applies a Limiter to whole routes keyed by a KeyFunc.
package ratelimiter
