// Package deeplink is the entry point for deep link routing in the
// MovieClub mobile client.
//
// One App turns an inbound URL (universal link, custom scheme, push payload
// or development tool URI) into a navigation call. Links to auth-gated
// screens are held until sign-in and then replayed once.
//
//	app, err := deeplink.New(deeplink.Options{Navigator: nav, Auth: session})
//	if err != nil {
//	    return err
//	}
//	app.HandleDelivery(ctx, deeplink.Delivery{
//	    RawURL: "movieclub://p/abc123?ref=push",
//	    Source: deeplink.SourcePush,
//	})
//
// The engine itself lives in pkg/deeplink; this package re-exports its
// common types.
package deeplink

import (
	coredeeplink "github.com/vango-dev/deeplink/pkg/deeplink"
)

// Core types, re-exported from pkg/deeplink.
type (
	ParsedLink       = coredeeplink.ParsedLink
	Delivery         = coredeeplink.Delivery
	Source           = coredeeplink.Source
	Outcome          = coredeeplink.Outcome
	OutcomeKind      = coredeeplink.OutcomeKind
	NavResult        = coredeeplink.NavResult
	NavStatus        = coredeeplink.NavStatus
	NavigationTarget = coredeeplink.NavigationTarget
	Navigator        = coredeeplink.Navigator
	AuthProvider     = coredeeplink.AuthProvider
	AuthFunc         = coredeeplink.AuthFunc
	Middleware       = coredeeplink.Middleware
	MiddlewareFunc   = coredeeplink.MiddlewareFunc
	Handler          = coredeeplink.Handler
	ReplayHook       = coredeeplink.ReplayHook
	Clock            = coredeeplink.Clock
)

// Delivery sources.
const (
	SourceOSLink  = coredeeplink.SourceOSLink
	SourcePush    = coredeeplink.SourcePush
	SourceShare   = coredeeplink.SourceShare
	SourceUnknown = coredeeplink.SourceUnknown
)

// Outcome kinds.
const (
	OutcomeDuplicate   = coredeeplink.OutcomeDuplicate
	OutcomeUnparseable = coredeeplink.OutcomeUnparseable
	OutcomeDeferred    = coredeeplink.OutcomeDeferred
	OutcomeDispatched  = coredeeplink.OutcomeDispatched
)

// ParseSource maps a free-form source name to a Source.
func ParseSource(s string) Source {
	return coredeeplink.ParseSource(s)
}
