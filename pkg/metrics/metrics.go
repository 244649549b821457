// Package metrics exports reactive graph and component lifecycle events as
// Prometheus metrics.
//
// A Collector implements both reactive.Recorder and hook.Recorder:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.New(metrics.WithRegistry(reg))
//	graph := reactive.NewGraph(reactive.WithRecorder(c))
//	tree := hook.NewTree(hook.WithRecorder(c))
//
// Metrics collected:
//   - ripple_nodes_created_total: Counter of nodes constructed
//   - ripple_dispatches_total: Counter of node dispatches
//   - ripple_notifications_total: Counter of subscriber notifications
//   - ripple_renders_total: Counter of renders by component
//   - ripple_render_duration_seconds: Histogram of render duration by component
//   - ripple_skipped_updates_total: Counter of updates refused by shouldUpdate
//   - ripple_destroyed_total: Counter of destroyed instances by component
//   - ripple_live_instances: Gauge of instances not yet destroyed
//   - ripple_subscriptions: Gauge of subscriptions owned by instances
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/ripple/pkg/hook"
	"github.com/vango-dev/ripple/pkg/reactive"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "ripple").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
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
		Namespace: "ripple",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records reactive and component events.
type Collector struct {
	nodesCreated   prometheus.Counter
	dispatches     prometheus.Counter
	notifications  prometheus.Counter
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	skippedUpdates *prometheus.CounterVec
	destroyed      *prometheus.CounterVec
	liveInstances  prometheus.Gauge
	subscriptions  prometheus.Gauge
}

var (
	_ reactive.Recorder = (*Collector)(nil)
	_ hook.Recorder     = (*Collector)(nil)
)

// New registers the metrics and returns a Collector. Registering twice on
// the same registry panics, as promauto does.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		nodesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_created_total",
			Help:        "Total number of reactive nodes constructed",
			ConstLabels: config.ConstLabels,
		}),

		dispatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of node dispatches",
			ConstLabels: config.ConstLabels,
		}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of subscriber notifications",
			ConstLabels: config.ConstLabels,
		}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		skippedUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "skipped_updates_total",
			Help:        "Total number of updates refused by shouldUpdate",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		destroyed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "destroyed_total",
			Help:        "Total number of destroyed component instances",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		liveInstances: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_instances",
			Help:        "Number of component instances not yet destroyed",
			ConstLabels: config.ConstLabels,
		}),

		subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions",
			Help:        "Number of subscriptions owned by component instances",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// NodeCreated implements reactive.Recorder.
func (c *Collector) NodeCreated() {
	c.nodesCreated.Inc()
}

// Dispatched implements reactive.Recorder.
func (c *Collector) Dispatched(subscribers int) {
	c.dispatches.Inc()
	c.notifications.Add(float64(subscribers))
}

// Rendered implements hook.Recorder.
func (c *Collector) Rendered(component string, d time.Duration) {
	c.renders.WithLabelValues(component).Inc()
	c.renderDuration.WithLabelValues(component).Observe(d.Seconds())
}

// UpdateSkipped implements hook.Recorder.
func (c *Collector) UpdateSkipped(component string) {
	c.skippedUpdates.WithLabelValues(component).Inc()
}

// Destroyed implements hook.Recorder.
func (c *Collector) Destroyed(component string) {
	c.destroyed.WithLabelValues(component).Inc()
}

// InstancesChanged implements hook.Recorder.
func (c *Collector) InstancesChanged(delta int) {
	c.liveInstances.Add(float64(delta))
}

// SubscriptionsChanged implements hook.Recorder.
func (c *Collector) SubscriptionsChanged(delta int) {
	c.subscriptions.Add(float64(delta))
}
