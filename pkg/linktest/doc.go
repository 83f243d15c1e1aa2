// Package linktest provides test doubles for the deep link engine: a
// manually advanced clock, a recording navigator with failure modes, a
// settable auth provider and a recording share sheet.
//
//	clock := linktest.NewFakeClock()
//	nav := &linktest.RecordingNavigator{}
//	auth := linktest.NewStaticAuth(false)
//	engine := deeplink.NewEngine(parser, nav, auth, deeplink.WithClock(clock))
//
//	engine.HandleDeepLink(ctx, "movieclub://p/abc123") // deferred
//	auth.Set(true)
//	engine.ReplayPendingLink(ctx)
//	clock.Advance(deeplink.DefaultSettleDelay)
//	// nav.Calls() == [{push /(protected)/post/abc123}]
package linktest
