package deeplink

import "strings"

// Source identifies where a delivery came from.
type Source string

const (
	SourceOSLink  Source = "os-link"
	SourcePush    Source = "push"
	SourceShare   Source = "share"
	SourceUnknown Source = "unknown"
)

// ParseSource maps a free-form source name to a Source. Unrecognized names
// become SourceUnknown so metric labels stay bounded.
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceOSLink, "os", "link", "universal-link":
		return SourceOSLink
	case SourcePush, "notification":
		return SourcePush
	case SourceShare, "share-extension":
		return SourceShare
	default:
		return SourceUnknown
	}
}

// Delivery is one inbound link event.
type Delivery struct {
	RawURL string
	Source Source
}

// OutcomeKind is the terminal state of one dispatch.
type OutcomeKind int

const (
	// OutcomeDuplicate means the raw URL was handled within the dedup window.
	OutcomeDuplicate OutcomeKind = iota

	// OutcomeUnparseable means the parser rejected the URL.
	OutcomeUnparseable

	// OutcomeDeferred means the link needs auth and was stored as pending.
	OutcomeDeferred

	// OutcomeDispatched means the link was handed to the executor.
	OutcomeDispatched
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeUnparseable:
		return "unparseable"
	case OutcomeDeferred:
		return "deferred"
	case OutcomeDispatched:
		return "dispatched"
	default:
		return "unknown"
	}
}

// Outcome describes what HandleDelivery did with one delivery.
type Outcome struct {
	Kind   OutcomeKind
	Source Source
	RawURL string

	// Link is nil for duplicate and unparseable deliveries.
	Link *ParsedLink

	// Nav is set only when Kind is OutcomeDispatched.
	Nav NavResult
}

// NavStatus is the result of one navigation attempt.
type NavStatus int

const (
	// NavNavigated means the Navigator accepted the target.
	NavNavigated NavStatus = iota

	// NavDebounced means the same target was navigated to moments ago.
	NavDebounced

	// NavRecovered means the target failed and the fallback succeeded.
	NavRecovered

	// NavFailed means both the target and the fallback failed.
	NavFailed

	// NavRequeued means a replayed link found the user signed out and
	// went back to the pending slot.
	NavRequeued

	// NavDropped means a replayed link found the user signed out and a
	// newer link already held the pending slot.
	NavDropped
)

func (s NavStatus) String() string {
	switch s {
	case NavNavigated:
		return "navigated"
	case NavDebounced:
		return "debounced"
	case NavRecovered:
		return "recovered"
	case NavFailed:
		return "failed"
	case NavRequeued:
		return "requeued"
	case NavDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Method names the Navigator call used.
type Method string

const (
	MethodPush    Method = "push"
	MethodReplace Method = "replace"
)

// NavigationTarget is the resolved internal destination of a link.
type NavigationTarget struct {
	// Path is the internal router path, or the fallback when Valid is false.
	Path string

	// Valid is false when no route matched and Path is the fallback.
	Valid bool

	// Reason explains an invalid target.
	Reason string

	// Label is the matched route's label.
	Label string
}

// NavResult reports what NavigateOnce did.
type NavResult struct {
	Status NavStatus
	Target NavigationTarget

	// Method is the call made for the target; empty when nothing was called.
	Method Method

	// Err is the navigator failure, if any. It is reported, never returned
	// to the delivery's caller.
	Err error
}
