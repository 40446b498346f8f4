// Package httpserver runs an http.Handler with configured timeouts and shuts
// it down gracefully when the context passed to Run is cancelled. It also
// provides the liveness and readiness probe handlers.
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.New(cfg, router, log)
//	if err := srv.Run(ctx); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
