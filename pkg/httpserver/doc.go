// Package httpserver runs the public HTTP listener with graceful shutdown.
//
//	srv := httpserver.New(cfg,
//		httpserver.WithLogger(log),
//		httpserver.OnShutdown(func(context.Context) error { return hub.Close() }),
//	)
//	err := srv.Run(ctx, router)
//
// Run returns after the listener has drained and every OnShutdown hook has
// run. HealthHandler exposes named dependency probes as JSON.
package httpserver
