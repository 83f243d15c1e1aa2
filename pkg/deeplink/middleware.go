package deeplink

import "context"

// Handler processes one delivery.
type Handler func(ctx context.Context, d Delivery) Outcome

// Middleware wraps dispatch. Handle must call next exactly once unless it
// decides to short-circuit, in which case it returns its own Outcome.
type Middleware interface {
	Handle(ctx context.Context, d Delivery, next Handler) Outcome
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, d Delivery, next Handler) Outcome

// Handle calls f.
func (f MiddlewareFunc) Handle(ctx context.Context, d Delivery, next Handler) Outcome {
	return f(ctx, d, next)
}

// chain wraps h so that mw[0] runs first.
func chain(h Handler, mw []Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		m, next := mw[i], h
		h = func(ctx context.Context, d Delivery) Outcome {
			return m.Handle(ctx, d, next)
		}
	}
	return h
}
