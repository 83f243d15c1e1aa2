package deeplink

import "context"

// ReplayPendingLink consumes the pending link, if any, and schedules its
// navigation after the settle delay. The auth collaborator calls it once
// after a successful login or session restore.
//
// It reports whether a replay was scheduled. The timer does not block the
// caller or further dispatch.
func (e *Engine) ReplayPendingLink(ctx context.Context) bool {
	e.timersMu.Lock()
	closed := e.closed
	e.timersMu.Unlock()
	if closed {
		return false
	}

	link := e.state.TakePending()
	if link == nil {
		e.logger.Debug("no pending deep link to replay")
		return false
	}

	ctx = context.WithoutCancel(ctx)
	if !e.schedule(func() { e.firePending(ctx, link) }) {
		e.state.RestorePending(link)
		return false
	}
	e.logger.Info("pending deep link scheduled",
		"link_id", link.ID.String(),
		"path", link.Path,
		"delay", e.settleDelay,
	)
	return true
}

// firePending navigates a replayed link, re-checking auth first.
func (e *Engine) firePending(ctx context.Context, link *ParsedLink) {
	var res NavResult
	if link.RequiresAuth && !e.isAuthenticated() {
		res.Status = NavDropped
		if e.state.RestorePending(link) {
			res.Status = NavRequeued
		}
		e.logger.Info("signed out before replay; link not navigated",
			"link_id", link.ID.String(),
			"path", link.Path,
			"result", res.Status.String(),
		)
	} else {
		res = e.NavigateOnce(ctx, link)
	}

	for _, h := range e.replayHooks {
		h(link, res)
	}
}

// schedule runs f after the settle delay unless the engine is closed.
func (e *Engine) schedule(f func()) bool {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	if e.closed {
		return false
	}

	id := e.nextTimer
	e.nextTimer++
	e.timers[id] = e.clock.AfterFunc(e.settleDelay, func() {
		e.timersMu.Lock()
		_, live := e.timers[id]
		delete(e.timers, id)
		e.timersMu.Unlock()
		if live {
			f()
		}
	})
	return true
}

// ScheduledReplays returns the number of replay timers not yet fired.
func (e *Engine) ScheduledReplays() int {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	return len(e.timers)
}

// Close stops outstanding replay timers. Links whose timers are stopped are
// dropped. Dispatch keeps working after Close; replays do not.
func (e *Engine) Close() error {
	e.timersMu.Lock()
	defer e.timersMu.Unlock()
	e.closed = true
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	return nil
}
