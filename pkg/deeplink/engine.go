package deeplink

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/deeplink/pkg/routes"
)

// DefaultSettleDelay is how long ReplayPendingLink waits before navigating,
// letting auth state and the navigation stack settle after login.
const DefaultSettleDelay = 300 * time.Millisecond

// AuthProvider reports whether a user session is active.
type AuthProvider interface {
	IsAuthenticated() bool
}

// AuthFunc adapts a function to AuthProvider.
type AuthFunc func() bool

// IsAuthenticated calls f.
func (f AuthFunc) IsAuthenticated() bool { return f() }

// Navigator drives the host's navigation stack.
type Navigator interface {
	// Push adds path on top of the history.
	Push(path string) error

	// Replace swaps the current history entry for path.
	Replace(path string) error
}

// ReplayHook observes the result of every replayed pending link.
type ReplayHook func(link *ParsedLink, result NavResult)

// Option configures an Engine.
type Option func(*Engine)

// WithState injects shared router state. By default each engine creates
// its own with DefaultStateConfig.
func WithState(s *State) Option {
	return func(e *Engine) {
		e.state = s
	}
}

// WithClock sets the clock for windows and timers.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFallbackPath sets the destination used for unmatched links and after
// a navigator failure.
func WithFallbackPath(path string) Option {
	return func(e *Engine) {
		e.fallback = path
	}
}

// WithAuthFlowPrefixes sets the router path prefixes navigated with
// Replace instead of Push.
func WithAuthFlowPrefixes(prefixes ...string) Option {
	return func(e *Engine) {
		e.authFlow = append([]string(nil), prefixes...)
	}
}

// WithSettleDelay sets the delay before a replayed link is navigated.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.settleDelay = d
	}
}

// WithMiddleware appends dispatch middleware. The first one added runs
// outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(e *Engine) {
		e.middleware = append(e.middleware, mw...)
	}
}

// WithReplayHook registers a hook called after each replay timer fires.
func WithReplayHook(h ReplayHook) Option {
	return func(e *Engine) {
		e.replayHooks = append(e.replayHooks, h)
	}
}

// Engine is the deep link dispatcher and navigation executor.
// It is safe for concurrent use.
type Engine struct {
	parser   *Parser
	registry *routes.Registry
	nav      Navigator
	auth     AuthProvider

	state       *State
	clock       Clock
	logger      *slog.Logger
	fallback    string
	authFlow    []string
	settleDelay time.Duration
	middleware  []Middleware
	replayHooks []ReplayHook

	handler Handler

	// dispatchMu serializes the check-then-act steps of dispatch.
	dispatchMu sync.Mutex

	timersMu  sync.Mutex
	timers    map[uint64]Timer
	nextTimer uint64
	closed    bool
}

// NewEngine creates an engine that parses with parser and drives nav.
func NewEngine(parser *Parser, nav Navigator, auth AuthProvider, opts ...Option) *Engine {
	e := &Engine{
		parser:      parser,
		registry:    parser.Registry(),
		nav:         nav,
		auth:        auth,
		clock:       SystemClock{},
		logger:      slog.Default(),
		fallback:    routes.HomePath,
		authFlow:    []string{routes.AuthGroupPrefix},
		settleDelay: DefaultSettleDelay,
		timers:      make(map[uint64]Timer),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.state == nil {
		e.state = NewState(DefaultStateConfig())
	}
	e.handler = chain(e.dispatch, e.middleware)
	return e
}

// Parser returns the engine's parser.
func (e *Engine) Parser() *Parser {
	return e.parser
}

// State returns the engine's router state.
func (e *Engine) State() *State {
	return e.state
}

// FallbackPath returns the fallback destination.
func (e *Engine) FallbackPath() string {
	return e.fallback
}

// PendingLink returns the deferred link without consuming it.
func (e *Engine) PendingLink() *ParsedLink {
	return e.state.PeekPending()
}

// isAuthenticated asks the auth provider, treating a panic as signed out.
func (e *Engine) isAuthenticated() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("auth provider panicked", "panic", r)
			ok = false
		}
	}()
	return e.auth.IsAuthenticated()
}
