// Command server runs the MFA gateway HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mfagate/handler"
	"github.com/dmitrymomot/mfagate/modules/account"
	"github.com/dmitrymomot/mfagate/pkg/clientip"
	"github.com/dmitrymomot/mfagate/pkg/config"
	"github.com/dmitrymomot/mfagate/pkg/email"
	"github.com/dmitrymomot/mfagate/pkg/environment"
	"github.com/dmitrymomot/mfagate/pkg/httpserver"
	"github.com/dmitrymomot/mfagate/pkg/logger"
	"github.com/dmitrymomot/mfagate/pkg/pg"
	"github.com/dmitrymomot/mfagate/pkg/ratelimiter"
	"github.com/dmitrymomot/mfagate/pkg/redis"
	"github.com/dmitrymomot/mfagate/pkg/requestid"
	"github.com/dmitrymomot/mfagate/svc/auth"
	"github.com/dmitrymomot/mfagate/svc/auth/pgstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}
	env := environment.Parse(app.Env)
	log := logger.New(
		logger.WithEnvironment(env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	var (
		authCfg auth.Config
		mailCfg email.Config
		httpCfg httpserver.Config
	)
	if err := config.Load(&authCfg); err != nil {
		return err
	}
	if err := config.Load(&mailCfg); err != nil {
		return err
	}
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	sender, err := email.NewFromConfig(mailCfg)
	if err != nil {
		return err
	}

	var readiness []func(context.Context) error

	storage, closeStorage, check, err := openStorage(ctx, app.StorageDriver, log)
	if err != nil {
		return err
	}
	defer closeStorage()
	if check != nil {
		readiness = append(readiness, check)
	}

	limits, closeLimits, check, err := openLimiterStore(ctx, app.LimiterStore)
	if err != nil {
		return err
	}
	defer closeLimits()
	if check != nil {
		readiness = append(readiness, check)
	}

	svc, err := auth.NewService(authCfg, storage, sender,
		auth.WithLogger(log),
		auth.WithAttemptStore(limits),
	)
	if err != nil {
		return err
	}

	registerLimiter, err := ratelimiter.New(limits, ratelimiter.Config{
		MaxAttempts: app.RegisterMax,
		Window:      app.RegisterWindow,
	})
	if err != nil {
		return err
	}

	resolver, err := clientip.NewResolver(app.TrustedProxies...)
	if err != nil {
		return err
	}

	errorHandler := handler.NewErrorHandler(log, account.ErrorClassifier)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, resolver.Middleware)
	r.Mount("/", account.Router(account.RouterOptions{
		Auth: account.NewAuthHandler(svc, errorHandler,
			account.WithRegisterLimiter(registerLimiter),
			account.WithLogger(log),
		),
		Health: map[string]http.Handler{
			"/live":  httpserver.HealthCheckHandler(log),
			"/ready": httpserver.HealthCheckHandler(log, readiness...),
		},
	}))

	srv := httpserver.New(httpCfg, r, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error {
		svc.RunPurger(ctx)
		return nil
	})

	log.InfoContext(ctx, "server starting",
		slog.String("addr", httpCfg.Addr),
		slog.String("storage", app.StorageDriver),
		slog.String("limiter", app.LimiterStore),
		slog.String("mail", mailCfg.Provider),
	)
	return g.Wait()
}

func openStorage(ctx context.Context, driver string, log *slog.Logger) (auth.Storage, func(), func(context.Context) error, error) {
	switch driver {
	case storageMemory:
		log.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		return auth.NewMemoryStorage(), func() {}, nil, nil

	case storagePostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, nil, nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg.MigrationsTable, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		db := stdlib.OpenDBFromPool(pool)
		closeFn := func() {
			_ = db.Close()
			pool.Close()
		}
		return pgstore.New(db), closeFn, pg.Healthcheck(pool), nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

func openLimiterStore(ctx context.Context, kind string) (ratelimiter.Store, func(), func(context.Context) error, error) {
	switch kind {
	case limiterMemory:
		store := ratelimiter.NewMemoryStore()
		return store, store.Close, nil, nil

	case limiterRedis:
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, nil, nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Close() }
		return ratelimiter.NewRedisStore(client, "mfagate:limits"), closeFn, redis.Healthcheck(client), nil

	default:
		return nil, nil, nil, errors.New("unknown RATE_LIMIT_STORE " + kind)
	}
}
