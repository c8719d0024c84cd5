// Package httpserver runs the billing API with configurable timeouts,
// graceful shutdown and health endpoints.
//
// Run binds the listener before serving, so address errors are returned
// synchronously and start hooks observe a bound address (see Addr). It
// blocks until the context is cancelled, an interrupt or TERM signal
// arrives, or Shutdown is called, and then drains in-flight requests within
// the shutdown timeout.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Get("/livez", httpserver.LivenessHandler())
//	r.Get("/readyz", httpserver.ReadinessHandler(log, 2*time.Second,
//		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	))
//
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run joins listen and serve failures with ErrStart; Shutdown joins drain
// failures with ErrShutdown.
package httpserver
