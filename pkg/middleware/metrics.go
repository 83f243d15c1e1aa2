package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/deeplink/pkg/deeplink"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace prefixes every metric name (default: "deeplink").
	Namespace string

	// Registry receives the collectors (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// dispatchBuckets span 100µs to roughly 1.6s.
var dispatchBuckets = prometheus.ExponentialBuckets(0.0001, 4, 8)

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "deeplink",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects dispatch and navigation metrics. It is a
// deeplink.Middleware; RecordReplay is a deeplink.ReplayHook.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	navigationTotal  *prometheus.CounterVec
	deferredTotal    *prometheus.CounterVec
}

// Prometheus creates the metrics middleware and registers its collectors.
//
// Metrics collected:
//   - deeplink_dispatch_total: deliveries by outcome and source
//   - deeplink_dispatch_duration_seconds: dispatch latency by outcome
//   - deeplink_navigation_total: navigation attempts by result
//   - deeplink_deferred_total: links parked until sign-in, by route label
//
// Example:
//
//	m := middleware.Prometheus(middleware.WithRegistry(reg))
//	engine := deeplink.NewEngine(parser, nav, auth,
//	    deeplink.WithMiddleware(m),
//	    deeplink.WithReplayHook(m.RecordReplay),
//	)
//
// Registering twice against the same registry panics, as with promauto.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "dispatch_total",
			Help:      "Total number of deep link deliveries by outcome",
		}, []string{"outcome", "source"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Deep link dispatch duration in seconds",
			Buckets:   dispatchBuckets,
		}, []string{"outcome"}),

		navigationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "navigation_total",
			Help:      "Total number of navigation attempts by result",
		}, []string{"result"}),

		deferredTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "deferred_total",
			Help:      "Total number of deep links deferred until sign-in",
		}, []string{"label"}),
	}
}

// Handle implements deeplink.Middleware.
func (m *Metrics) Handle(ctx context.Context, d deeplink.Delivery, next deeplink.Handler) deeplink.Outcome {
	start := time.Now()
	out := next(ctx, d)
	outcome := out.Kind.String()

	m.dispatchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	m.dispatchTotal.WithLabelValues(outcome, string(out.Source)).Inc()

	switch out.Kind {
	case deeplink.OutcomeDispatched:
		m.navigationTotal.WithLabelValues(out.Nav.Status.String()).Inc()
	case deeplink.OutcomeDeferred:
		m.deferredTotal.WithLabelValues(routeLabel(out.Link)).Inc()
	}
	return out
}

// RecordReplay counts the result of a replayed pending link.
func (m *Metrics) RecordReplay(_ *deeplink.ParsedLink, res deeplink.NavResult) {
	m.navigationTotal.WithLabelValues(res.Status.String()).Inc()
}

// routeLabel returns the matched route label, or "unmatched".
func routeLabel(link *deeplink.ParsedLink) string {
	if link == nil || link.Label == "" {
		return "unmatched"
	}
	return link.Label
}
