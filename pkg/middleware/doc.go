// Package middleware provides observability middleware for the deep link
// engine.
//
// # OpenTelemetry Middleware
//
// OpenTelemetry opens one span per delivery. Spans carry the delivery
// source, the dispatch outcome and, for dispatched links, the destination
// and navigation result.
//
//	engine := deeplink.NewEngine(parser, nav, auth,
//	    deeplink.WithMiddleware(middleware.OpenTelemetry()),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("movieclub-links"),
//	    middleware.WithDeliveryFilter(func(d deeplink.Delivery) bool {
//	        return d.Source != deeplink.SourceUnknown
//	    }),
//	)
//
// # Prometheus Metrics
//
// Prometheus counts deliveries by outcome and source, times dispatch, and
// counts navigation results. Pass RecordReplay as a replay hook so that
// navigations started by ReplayPendingLink are counted too.
//
//	m := middleware.Prometheus()
//	engine := deeplink.NewEngine(parser, nav, auth,
//	    deeplink.WithMiddleware(m),
//	    deeplink.WithReplayHook(m.RecordReplay),
//	)
//
// Then expose the metrics endpoint:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
