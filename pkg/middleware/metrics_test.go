package middleware

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/deeplink/pkg/deeplink"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusMiddleware_CountsOutcomes(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))
	te := newTestEngine(true, deeplink.WithMiddleware(m))
	ctx := context.Background()

	te.HandleDelivery(ctx, deeplink.Delivery{RawURL: "movieclub://p/abc123", Source: deeplink.SourcePush})
	te.HandleDelivery(ctx, deeplink.Delivery{RawURL: "movieclub://p/abc123", Source: deeplink.SourcePush})
	te.HandleDeepLink(ctx, "ftp://movieclub.app/p/abc123")

	tests := []struct {
		outcome, source string
		want            float64
	}{
		{"dispatched", "push", 1},
		{"duplicate", "push", 1},
		{"unparseable", "unknown", 1},
		{"deferred", "push", 0},
	}
	for _, tt := range tests {
		got := metricCounterValue(t, m.dispatchTotal.WithLabelValues(tt.outcome, tt.source))
		if got != tt.want {
			t.Errorf("dispatch_total(%s, %s) = %v, want %v", tt.outcome, tt.source, got, tt.want)
		}
	}

	if got := metricCounterValue(t, m.navigationTotal.WithLabelValues("navigated")); got != 1 {
		t.Errorf("navigation_total(navigated) = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.dispatchDuration.WithLabelValues("dispatched")); got != 1 {
		t.Errorf("dispatch_duration_seconds(dispatched) count = %d, want 1", got)
	}
}

func TestPrometheusMiddleware_DeferredAndReplay(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()), WithNamespace("movieclub"))
	te := newTestEngine(false,
		deeplink.WithMiddleware(m),
		deeplink.WithReplayHook(m.RecordReplay),
	)
	ctx := context.Background()

	out := te.HandleDeepLink(ctx, "https://movieclub.app/e/launch-party")
	if out.Kind != deeplink.OutcomeDeferred {
		t.Fatalf("Kind = %v, want deferred", out.Kind)
	}
	if got := metricCounterValue(t, m.deferredTotal.WithLabelValues("event-detail")); got != 1 {
		t.Errorf("deferred_total(event-detail) = %v, want 1", got)
	}

	te.auth.Set(true)
	if !te.ReplayPendingLink(ctx) {
		t.Fatal("ReplayPendingLink() = false with a pending link")
	}
	te.clock.Advance(deeplink.DefaultSettleDelay)

	if got := metricCounterValue(t, m.navigationTotal.WithLabelValues("navigated")); got != 1 {
		t.Errorf("navigation_total(navigated) after replay = %v, want 1", got)
	}
}

func TestPrometheusMiddleware_NavigationFailure(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))
	te := newTestEngine(true, deeplink.WithMiddleware(m))
	te.nav.FailPush = true

	te.HandleDeepLink(context.Background(), "movieclub://story/xyz")

	if got := metricCounterValue(t, m.navigationTotal.WithLabelValues("recovered")); got != 1 {
		t.Errorf("navigation_total(recovered) = %v, want 1", got)
	}
}

func TestPrometheusMiddleware_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))

	defer func() {
		if recover() == nil {
			t.Fatal("expected second registration against the same registry to panic")
		}
	}()
	Prometheus(WithRegistry(reg))
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		link *deeplink.ParsedLink
		want string
	}{
		{nil, "unmatched"},
		{&deeplink.ParsedLink{}, "unmatched"},
		{&deeplink.ParsedLink{Label: "chat"}, "chat"},
	}
	for _, tt := range tests {
		if got := routeLabel(tt.link); got != tt.want {
			t.Errorf("routeLabel(%v) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
