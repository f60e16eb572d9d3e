// Package mockmetrics records mock server activity as Prometheus metrics.
//
//	obs := mockmetrics.New(mockmetrics.WithRegistry(reg))
//	srv := mock.New(native, mock.WithObserver(obs))
//
// Metrics collected:
//   - faux_dispatch_total: operations handled by a route, by route, method and result
//   - faux_dispatch_duration_seconds: time from dispatch to handler completion, latency included
//   - faux_fallback_total: operations passed to the native sync function, by op
package mockmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vitalvas/faux/mock"
)

// Result label values.
const (
	ResultOK   = "ok"
	ResultFail = "fail"
)

// defaultRouteLabel labels operations served by the default handler.
const defaultRouteLabel = "default"

// Config configures the observer.
type Config struct {
	// Namespace is the metrics namespace (default: "faux").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "faux",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer implements mock.Observer.
type Observer struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	fallbackTotal    *prometheus.CounterVec
}

var _ mock.Observer = (*Observer)(nil)

// New creates an Observer and registers its metrics. It panics if the
// metrics are already registered with the registry.
func New(opts ...Option) *Observer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Observer{
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "dispatch_total",
			Help:        "Total number of operations handled by a mock route",
			ConstLabels: cfg.ConstLabels,
		}, []string{"route", "method", "result"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Time from dispatch to handler completion in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"route"}),

		fallbackTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "fallback_total",
			Help:        "Total number of operations passed to the native sync function",
			ConstLabels: cfg.ConstLabels,
		}, []string{"op"}),
	}
}

// ObserveDispatch implements mock.Observer.
func (o *Observer) ObserveDispatch(c *mock.Context, r mock.Result, elapsed time.Duration) {
	route := defaultRouteLabel
	if c.Route != nil {
		route = c.Route.Name
	}

	result := ResultOK
	if r.Failed() {
		result = ResultFail
	}

	o.dispatchTotal.WithLabelValues(route, c.TrueMethod(), result).Inc()
	o.dispatchDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveFallback implements mock.Observer.
func (o *Observer) ObserveFallback(op mock.Op, _ string) {
	o.fallbackTotal.WithLabelValues(string(op)).Inc()
}
