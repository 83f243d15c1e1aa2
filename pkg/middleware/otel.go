package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/deeplink/pkg/deeplink"
)

// Default tracer name for deep link dispatch.
const defaultTracerName = "deeplink"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "deeplink").
	TracerName string

	// TracerProvider supplies the tracer (default: the global provider).
	TracerProvider trace.TracerProvider

	// IncludeURL records the raw URL on the span. Links can carry tokens
	// (password reset, invites), so this is disabled by default.
	IncludeURL bool

	// Filter determines which deliveries to trace.
	// Return true to trace the delivery, false to skip.
	// If nil, all deliveries are traced.
	Filter func(d deeplink.Delivery) bool

	// AttributeExtractor adds custom attributes for each traced delivery.
	AttributeExtractor func(d deeplink.Delivery) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeURL enables recording the raw URL on spans.
func WithIncludeURL(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeURL = include
	}
}

// WithDeliveryFilter sets a filter function for deliveries.
func WithDeliveryFilter(filter func(d deeplink.Delivery) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(d deeplink.Delivery) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that opens one span per delivery.
//
// The span carries the delivery source and, once dispatch finishes, the
// outcome, canonical path, route label, router path and navigation result.
// A navigator failure is recorded on the span and sets its status to Error,
// even though the engine recovered from it.
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure it in main() before building the engine:
//
//	otel.SetTracerProvider(tp)
//	engine := deeplink.NewEngine(parser, nav, auth,
//	    deeplink.WithMiddleware(middleware.OpenTelemetry()),
//	)
func OpenTelemetry(opts ...OTelOption) deeplink.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return deeplink.MiddlewareFunc(func(ctx context.Context, d deeplink.Delivery, next deeplink.Handler) deeplink.Outcome {
		if config.Filter != nil && !config.Filter(d) {
			return next(ctx, d)
		}

		attrs := []attribute.KeyValue{
			attribute.String("deeplink.source", string(d.Source)),
		}
		if config.IncludeURL {
			attrs = append(attrs, attribute.String("deeplink.url", d.RawURL))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(d)...)
		}

		spanCtx, span := tracer.Start(ctx, "deeplink.dispatch",
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		out := next(spanCtx, d)

		span.SetAttributes(attribute.String("deeplink.outcome", out.Kind.String()))
		if out.Link != nil {
			span.SetAttributes(
				attribute.String("deeplink.link_id", out.Link.ID.String()),
				attribute.String("deeplink.path", out.Link.Path),
				attribute.String("deeplink.label", out.Link.Label),
				attribute.Bool("deeplink.requires_auth", out.Link.RequiresAuth),
			)
		}
		if out.Kind == deeplink.OutcomeDispatched {
			span.SetAttributes(
				attribute.String("deeplink.router_path", out.Nav.Target.Path),
				attribute.String("deeplink.nav_result", out.Nav.Status.String()),
			)
		}

		if out.Nav.Err != nil {
			span.RecordError(out.Nav.Err)
			span.SetStatus(codes.Error, out.Nav.Err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return out
	})
}

// SpanFromContext returns the dispatch span carried by ctx, or nil when ctx
// holds no recording span. Middleware and navigators running inside the
// OpenTelemetry middleware can use it to add their own attributes.
func SpanFromContext(ctx context.Context) trace.Span {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}
	return span
}
