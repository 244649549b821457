package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/ripple/internal/config"
	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/hook"
	"github.com/vango-dev/ripple/pkg/metrics"
	"github.com/vango-dev/ripple/pkg/middleware"
	"github.com/vango-dev/ripple/pkg/reactive"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a ticking counter over HTTP and WebSocket",
		Long: `Serve the counter app. The count is incremented every tick interval and
every re-render is streamed to WebSocket clients on /ws.

Endpoints:
  /         current render of every component
  /ws       WebSocket stream of render events (JSON)
  /metrics  Prometheus metrics
  /healthz  liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printBanner(cmd.OutOrStdout())
			success(cmd.OutOrStdout(), "listening on http://%s", cfg.Serve.Addr)
			return newServer(cfg, logger).run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from "+config.ConfigFileName+")")

	return cmd
}

// server wires the counter app to HTTP.
type server struct {
	cfg      *config.Config
	logger   *slog.Logger
	app      *counterApp
	hub      *hub
	registry *prometheus.Registry
	router   chi.Router
}

func newServer(cfg *config.Config, logger *slog.Logger) *server {
	s := &server{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	s.hub = newHub(logger, s.snapshot)

	graphOpts := []reactive.GraphOption{reactive.WithLogger(logger)}
	treeOpts := []hook.TreeOption{
		hook.WithTracer(otel.Tracer(cfg.Tracing.TracerName)),
		hook.WithPatcher(s.hub),
	}
	if cfg.Metrics.Enabled {
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		c := metrics.New(
			metrics.WithRegistry(s.registry),
			metrics.WithNamespace(cfg.Metrics.Namespace),
		)
		graphOpts = append(graphOpts, reactive.WithRecorder(c))
		treeOpts = append(treeOpts, hook.WithRecorder(c))
	}

	s.app = newCounterApp(reactive.NewGraph(graphOpts...), logger, treeOpts...)
	s.app.mount()
	s.router = s.routes()
	return s
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.OpenTelemetry(middleware.WithTracerName(s.cfg.Tracing.TracerName + "/http")))
	if s.cfg.Metrics.Enabled {
		r.Use(middleware.Prometheus(
			middleware.WithRegistry(s.registry),
			middleware.WithNamespace(s.cfg.Metrics.Namespace),
		))
	}
	r.Use(middleware.Logger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Method(http.MethodGet, "/ws", s.hub)
	r.Get("/", s.handleIndex)
	return r
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!doctype html>\n<ul>\n")
	for _, ev := range s.snapshot() {
		fmt.Fprintf(w, "<li data-component=%q>%s</li>\n", ev.Component, ev.HTML)
	}
	fmt.Fprint(w, "</ul>\n")
}

// snapshot returns the current output of every mounted instance.
func (s *server) snapshot() []renderEvent {
	var events []renderEvent
	for _, inst := range s.app.instances() {
		events = append(events, newRenderEvent(inst, inst.Output()))
	}
	return events
}

// tickLoop increments the count every interval until ctx is done. All
// writes to the app happen on this goroutine.
func (s *server) tickLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.app.increment()
		}
	}
}

// run serves until ctx is canceled, then shuts down gracefully.
func (s *server) run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Serve.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.tickLoop(ctx, s.cfg.Serve.TickInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("R020").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("R020").Wrap(err)
	}
	return nil
}
