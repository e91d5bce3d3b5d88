package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xy-planning-network/signpost/filecache"
)

const DefaultNamespace = "signpost"

// Config configures a Collector.
type Config struct {
	Namespace   string
	ConstLabels prometheus.Labels
	Buckets     []float64

	// Registry receives the collectors and serves Handler.
	// Default: a fresh prometheus.Registry
	Registry *prometheus.Registry
}

// OptFn configures a Collector.
type OptFn func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(ns string) OptFn {
	return func(c *Config) {
		c.Namespace = ns
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) OptFn {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets for dispatch duration.
func WithBuckets(buckets []float64) OptFn {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(reg *prometheus.Registry) OptFn {
	return func(c *Config) {
		c.Registry = reg
	}
}

// A Collector holds the dispatcher's Prometheus metrics.
type Collector struct {
	reg        *prometheus.Registry
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	lookups    *prometheus.CounterVec
}

// New constructs a Collector and registers its metrics.
func New(opts ...OptFn) *Collector {
	cfg := Config{
		Namespace: DefaultNamespace,
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)

	return &Collector{
		reg: cfg.Registry,
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "dispatches_total",
			Help:        "Total number of dispatched requests",
			ConstLabels: cfg.ConstLabels,
		}, []string{"ext", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "dispatch_duration_seconds",
			Help:        "Dispatch duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"ext"}),

		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "cache_lookups_total",
			Help:        "Total number of view cache lookups",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind", "outcome"}),
	}
}

// Dispatched records one completed request.
// An empty ext is recorded as "html".
func (c *Collector) Dispatched(ext string, status int, elapsed time.Duration) {
	if ext == "" {
		ext = "html"
	}
	c.dispatches.WithLabelValues(ext, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(ext).Observe(elapsed.Seconds())
}

// Observe records one cache lookup.
func (c *Collector) Observe(kind string, o filecache.Outcome) {
	c.lookups.WithLabelValues(kind, string(o)).Inc()
}

// Registry returns the registry c's metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves c's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
