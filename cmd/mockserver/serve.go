package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vitalvas/faux/fixtures"
	"github.com/vitalvas/faux/mock"
	"github.com/vitalvas/faux/mockhttp"
	"github.com/vitalvas/faux/mockmetrics"
	"github.com/vitalvas/faux/mockstore"
)

type serveOptions struct {
	addr         string
	files        []string
	collections  []string
	redisAddr    string
	redisPrefix  string
	metricsPath  string
	adminPrefix  string
	corsOrigins  []string
	maxBodyBytes int64
	emulateHTTP  bool
	latencyMin   time.Duration
	latencyMax   time.Duration
	shutdownWait time.Duration
}

func serveCmd(global *globalOptions) *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock HTTP server",
		Long: `Start an HTTP server answering requests from the mock routes.

Requests matching no route get a 404 response. The admin API under
--admin-prefix lists the routes and toggles the server.

Examples:
  mockserver serve -f books.yaml
  mockserver serve -f books.yaml --latency-min 50ms --latency-max 300ms
  mockserver serve --collection books --redis-addr localhost:6379`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, opts, global.logger())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.addr, "addr", "a", ":8080", "Listen address")
	flags.StringArrayVarP(&opts.files, "fixtures", "f", nil, "Fixture file (repeatable)")
	flags.StringArrayVarP(&opts.collections, "collection", "c", nil, "Collection served from the record store (repeatable)")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address of the record store (default: in-memory)")
	flags.StringVar(&opts.redisPrefix, "redis-prefix", mockstore.DefaultRedisPrefix, "Redis key prefix")
	flags.StringVar(&opts.metricsPath, "metrics-path", "/metrics", "Prometheus metrics path (empty to disable)")
	flags.StringVar(&opts.adminPrefix, "admin-prefix", mockhttp.DefaultAdminPrefix, "Admin API path prefix")
	flags.StringArrayVar(&opts.corsOrigins, "cors-origin", nil, "Origin allowed for cross-origin requests (repeatable, \"*\" for any)")
	flags.Int64Var(&opts.maxBodyBytes, "max-body-bytes", 1<<20, "Maximum request body size (0 for no limit)")
	flags.BoolVar(&opts.emulateHTTP, "emulate-http", false, "Route every verb but GET as POST")
	flags.DurationVar(&opts.latencyMin, "latency-min", 0, "Minimum emulated latency")
	flags.DurationVar(&opts.latencyMax, "latency-max", 0, "Maximum emulated latency (0 for a fixed latency)")
	flags.DurationVar(&opts.shutdownWait, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	return cmd
}

// buildServer assembles the mock server described by opts.
func buildServer(opts serveOptions, logger zerolog.Logger, reg prometheus.Registerer) (*mock.Server, error) {
	srv := mock.New(mockhttp.Passthrough,
		mock.WithLogger(logger),
		mock.WithObserver(mockmetrics.New(mockmetrics.WithRegistry(reg))),
		mock.WithEmulateHTTP(opts.emulateHTTP),
	)

	if len(opts.collections) > 0 {
		var store mockstore.Store = mockstore.NewMemoryStore()
		if opts.redisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
			store = mockstore.NewRedisStore(client, mockstore.WithRedisPrefix(opts.redisPrefix))
		}

		for _, name := range opts.collections {
			if err := mockstore.Register(srv, name, store); err != nil {
				return nil, err
			}
		}
	}

	if err := applyFixtures(srv, opts.files); err != nil {
		return nil, err
	}

	if opts.latencyMin > 0 || opts.latencyMax > 0 {
		srv.SetLatency(opts.latencyMin, opts.latencyMax)
	}

	return srv, nil
}

func applyFixtures(srv *mock.Server, files []string) error {
	for _, path := range files {
		f, err := fixtures.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := f.Apply(srv); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// newHTTPHandler mounts the mock handler and, when enabled, the metrics
// endpoint.
func newHTTPHandler(srv *mock.Server, opts serveOptions, logger zerolog.Logger, gatherer prometheus.Gatherer) (http.Handler, error) {
	cfg := mockhttp.HandlerConfig{
		AdminPrefix:  opts.adminPrefix,
		MaxBodyBytes: opts.maxBodyBytes,
		Logger:       &logger,
	}
	if len(opts.corsOrigins) > 0 {
		cfg.CORS = &mockhttp.CORSConfig{
			AllowedOrigins: opts.corsOrigins,
			ExposeHeaders:  []string{"X-Request-ID"},
		}
	}

	handler, err := mockhttp.NewHandler(srv, cfg)
	if err != nil {
		return nil, err
	}

	if opts.metricsPath == "" {
		return handler, nil
	}

	mux := http.NewServeMux()
	mux.Handle(opts.metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", handler)
	return mux, nil
}

func runServe(ctx context.Context, opts serveOptions, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()

	srv, err := buildServer(opts, logger, reg)
	if err != nil {
		return err
	}

	handler, err := newHTTPHandler(srv, opts, logger, reg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", opts.addr).
			Int("routes", len(srv.Routes())).
			Msg("mock server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownWait)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
