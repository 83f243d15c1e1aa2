// Package deeplink turns incoming URIs into exactly-once navigation.
//
// A link reaches the engine from the OS link listener, a push notification
// tap or a share extension. The engine parses it, drops replays, defers
// auth-gated links until the user signs in, and then drives the injected
// Navigator with duplicate suppression and a fallback on failure.
//
// # Parsing
//
// Parser accepts four input forms and reduces them to one canonical path
// plus a flat query map:
//
//	movieclub://p/abc123?ref=push           private app scheme
//	https://movieclub.app/p/abc123?ref=push universal link (allowlisted hosts only)
//	exp://192.168.1.5:8081/--/p/abc123      development tool URI
//	p/abc123?ref=push                       bare path
//
// All four produce Path "/p/abc123" and Params {"ref": "push", "id": "abc123"}.
// ParseIncomingURL never panics; a rejected link yields nil and a log line.
//
// # Dispatch
//
// Engine.HandleDeepLink is the single ingestion point. For one raw URL it
// runs, in order:
//
//  1. replay check (same raw URL within the dedup window is dropped)
//  2. parse (nil is dropped)
//  3. record the raw URL in the replay log
//  4. read the auth state
//  5. defer to the pending slot, or navigate
//
// Steps 1 to 5 are serialized, so two goroutines delivering the same URL
// at the same time produce one navigation.
//
// # Pending links
//
// The pending slot holds at most one link; a newer deferred link replaces an
// older one. After a successful login the auth collaborator calls
// Engine.ReplayPendingLink once. The link is taken from the slot and
// navigated after a settle delay. Auth is checked again when the timer
// fires; a link that still needs auth goes back to the slot instead.
//
// # Navigation
//
// Engine.NavigateOnce resolves the destination, suppresses a repeat of the
// same destination inside the debounce window, and uses Replace for the
// sign-in flow and Push for everything else. If the Navigator fails or
// panics, one Replace to the fallback path is attempted. Navigation errors
// are never returned to the host.
package deeplink
