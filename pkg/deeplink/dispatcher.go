package deeplink

import "context"

// HandleDeepLink is the single ingestion point for an inbound URL.
// Each externally delivered URL should be passed here exactly once.
func (e *Engine) HandleDeepLink(ctx context.Context, rawURL string) Outcome {
	return e.HandleDelivery(ctx, Delivery{RawURL: rawURL, Source: SourceUnknown})
}

// HandleDelivery dispatches d through the middleware chain.
func (e *Engine) HandleDelivery(ctx context.Context, d Delivery) Outcome {
	if d.Source == "" {
		d.Source = SourceUnknown
	}
	return e.handler(ctx, d)
}

// dispatch runs replay check, parse, record, auth check and then defers or
// navigates. Everything up to the deferral decision holds dispatchMu;
// navigation does not.
func (e *Engine) dispatch(ctx context.Context, d Delivery) Outcome {
	out := Outcome{Source: d.Source, RawURL: d.RawURL}
	log := e.logger.With("url", d.RawURL, "source", string(d.Source))

	e.dispatchMu.Lock()

	now := e.clock.Now()
	if e.state.SeenRecently(d.RawURL, now) {
		e.dispatchMu.Unlock()
		out.Kind = OutcomeDuplicate
		log.Debug("deep link dropped", "outcome", out.Kind.String())
		return out
	}

	link := e.parser.ParseIncomingURL(d.RawURL)
	if link == nil {
		e.dispatchMu.Unlock()
		out.Kind = OutcomeUnparseable
		log.Debug("deep link dropped", "outcome", out.Kind.String())
		return out
	}
	out.Link = link

	// Recorded before the auth check so a retry is suppressed while the
	// link waits in the pending slot.
	e.state.Record(d.RawURL, now)

	if link.RequiresAuth && !e.isAuthenticated() {
		displaced := e.state.SetPending(link)
		e.dispatchMu.Unlock()

		out.Kind = OutcomeDeferred
		log.Info("deep link deferred until sign-in",
			"link_id", link.ID.String(),
			"path", link.Path,
			"outcome", out.Kind.String(),
		)
		if displaced != nil {
			log.Info("pending deep link replaced",
				"link_id", displaced.ID.String(),
				"path", displaced.Path,
			)
		}
		return out
	}
	e.dispatchMu.Unlock()

	out.Kind = OutcomeDispatched
	out.Nav = e.NavigateOnce(ctx, link)
	log.Debug("deep link dispatched",
		"link_id", link.ID.String(),
		"path", link.Path,
		"router_path", out.Nav.Target.Path,
		"outcome", out.Kind.String(),
		"result", out.Nav.Status.String(),
	)
	return out
}
