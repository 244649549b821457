// Package middleware provides net/http middleware for the ripple server.
//
// This package includes:
//   - OpenTelemetry request tracing
//   - Prometheus request metrics
//   - Structured request logging through slog
//
// All three wrap a plain http.Handler, so they plug into chi or any other
// router:
//
//	r := chi.NewRouter()
//	r.Use(chimw.RequestID)
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("ripple/http")))
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Use(middleware.Logger(logger))
//
// # Route Labels
//
// Metrics and span names use the chi route pattern ("/ws") when one is
// available and fall back to the request path. Label cardinality therefore
// stays bounded by the number of registered routes.
package middleware
