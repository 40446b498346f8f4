// Package logger builds *slog.Logger instances for the gateway and provides
// attribute constructors so that keys stay consistent across packages.
//
// New applies functional options (format, level, static attributes) and
// wraps the resulting handler with a decorator that pulls request-scoped
// values, such as the request id, out of context.Context on every record.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "mfagate"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "user logged in", logger.UserID(id), logger.Strategy("totp"))
//
// Never pass passwords, one-time codes, TOTP secrets or tokens to a logger.
package logger
