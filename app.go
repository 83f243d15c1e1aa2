package deeplink

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/deeplink/internal/config"
	"github.com/vango-dev/deeplink/internal/wellknown"
	"github.com/vango-dev/deeplink/pkg/auth"
	coredeeplink "github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/middleware"
	"github.com/vango-dev/deeplink/pkg/navstack"
	"github.com/vango-dev/deeplink/pkg/routes"
	"github.com/vango-dev/deeplink/pkg/share"
)

// =============================================================================
// Options
// =============================================================================

// Options configures an App. Every field is optional.
type Options struct {
	// Config is the loaded configuration. Defaults to config.New().
	Config *config.Config

	// Navigator receives push/replace calls. Defaults to an in-memory
	// navstack.Stack rooted at the fallback path.
	Navigator Navigator

	// Auth reports the signed-in state. Defaults to an auth.Session that
	// replays the pending link on login.
	Auth AuthProvider

	// ShareSheet presents outbound links. Defaults to one that only logs.
	ShareSheet share.ShareSheet

	// Clock drives timestamps and replay timers. Defaults to the system clock.
	Clock Clock

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// MetricsRegistry enables Prometheus metrics when set.
	MetricsRegistry prometheus.Registerer

	// TracerProvider enables OpenTelemetry spans when set.
	TracerProvider trace.TracerProvider

	// Middleware runs inside the metrics and tracing middleware.
	Middleware []Middleware

	// ReplayHooks are called after each replay timer fires.
	ReplayHooks []ReplayHook

	// HistoryObservers are notified of changes to the default navigator.
	HistoryObservers []func(navstack.Change)
}

// =============================================================================
// App Type
// =============================================================================

// App wires the route table, parser, engine and share builder from one
// configuration.
//
//	cfg, _ := config.LoadFromWorkingDir()
//	app, err := deeplink.New(deeplink.Options{Config: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	app.HandleDeepLink(ctx, "https://movieclub.app/u/mikevocalz")
type App struct {
	config   *config.Config
	registry *routes.Registry
	parser   *coredeeplink.Parser
	engine   *coredeeplink.Engine
	builder  *share.Builder
	sharer   *share.Sharer
	metrics  *middleware.Metrics
	logger   *slog.Logger

	// Set only when the App created the default collaborators.
	history *navstack.Stack
	session *auth.Session
}

// New creates an App. The configuration is validated first.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = coredeeplink.SystemClock{}
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	app := &App{config: cfg, registry: registry, logger: logger}

	app.parser = coredeeplink.NewParser(registry,
		coredeeplink.WithParserConfig(cfg.ParserConfig()),
		coredeeplink.WithParserLogger(logger),
		coredeeplink.WithParserClock(clock),
	)

	nav := opts.Navigator
	if nav == nil {
		stackOpts := []navstack.Option{navstack.WithRoot(cfg.FallbackPath)}
		for _, fn := range opts.HistoryObservers {
			stackOpts = append(stackOpts, navstack.WithObserver(fn))
		}
		app.history = navstack.New(stackOpts...)
		nav = app.history
	}

	authProvider := opts.Auth
	if authProvider == nil {
		app.session = auth.NewSession(auth.WithNow(clock.Now), auth.WithLogger(logger))
		authProvider = app.session
	}

	engineOpts := []coredeeplink.Option{
		coredeeplink.WithState(coredeeplink.NewState(cfg.StateConfig())),
		coredeeplink.WithClock(clock),
		coredeeplink.WithLogger(logger),
	}
	engineOpts = append(engineOpts, cfg.EngineOptions()...)

	if opts.MetricsRegistry != nil {
		app.metrics = middleware.Prometheus(middleware.WithRegistry(opts.MetricsRegistry))
		engineOpts = append(engineOpts,
			coredeeplink.WithMiddleware(app.metrics),
			coredeeplink.WithReplayHook(app.metrics.RecordReplay),
		)
	}
	if opts.TracerProvider != nil {
		engineOpts = append(engineOpts, coredeeplink.WithMiddleware(
			middleware.OpenTelemetry(middleware.WithTracerProvider(opts.TracerProvider)),
		))
	}
	engineOpts = append(engineOpts, coredeeplink.WithMiddleware(opts.Middleware...))
	for _, h := range opts.ReplayHooks {
		engineOpts = append(engineOpts, coredeeplink.WithReplayHook(h))
	}

	app.engine = coredeeplink.NewEngine(app.parser, nav, authProvider, engineOpts...)
	if app.session != nil {
		app.session.SetReplayer(app.engine)
	}

	app.builder = share.NewBuilder(cfg.Domain, share.WithParser(app.parser))
	sheet := opts.ShareSheet
	if sheet == nil {
		sheet = logSheet(logger)
	}
	app.sharer = share.NewSharer(app.builder, sheet, share.WithLogger(logger))

	return app, nil
}

// logSheet is a share sheet that only logs what would be shared.
func logSheet(logger *slog.Logger) share.ShareSheet {
	return share.ShareSheetFunc(func(ctx context.Context, c share.Content) error {
		logger.InfoContext(ctx, "share", "url", c.URL, "title", c.Title)
		return nil
	})
}

// =============================================================================
// Entry points
// =============================================================================

// ParseIncomingURL parses raw without dispatching it. It returns nil for a
// URL the app does not handle.
func (a *App) ParseIncomingURL(raw string) *ParsedLink {
	return a.parser.ParseIncomingURL(raw)
}

// HandleDeepLink dispatches an inbound URL of unknown origin.
func (a *App) HandleDeepLink(ctx context.Context, raw string) Outcome {
	return a.engine.HandleDeepLink(ctx, raw)
}

// HandleDelivery dispatches an inbound URL with its source.
func (a *App) HandleDelivery(ctx context.Context, d Delivery) Outcome {
	return a.engine.HandleDelivery(ctx, d)
}

// ReplayPendingLink schedules the pending link, if any.
func (a *App) ReplayPendingLink(ctx context.Context) bool {
	return a.engine.ReplayPendingLink(ctx)
}

// WellKnownFiles renders apple-app-site-association and assetlinks.json
// for the configured apps.
func (a *App) WellKnownFiles() ([]wellknown.File, error) {
	s := a.config.Serve
	return wellknown.Render(a.registry, wellknown.Site{
		AppleTeamID:         s.AppleTeamID,
		BundleID:            s.BundleID,
		AndroidPackage:      s.AndroidPackage,
		AndroidFingerprints: s.AndroidFingerprints,
	})
}

// Close stops scheduled replays.
func (a *App) Close() error {
	return a.engine.Close()
}

// =============================================================================
// Getters
// =============================================================================

// Config returns the app's configuration.
func (a *App) Config() *config.Config { return a.config }

// Registry returns the compiled route table.
func (a *App) Registry() *routes.Registry { return a.registry }

// Parser returns the URL parser.
func (a *App) Parser() *coredeeplink.Parser { return a.parser }

// Engine returns the dispatch engine.
func (a *App) Engine() *coredeeplink.Engine { return a.engine }

// Builder returns the outbound link builder.
func (a *App) Builder() *share.Builder { return a.builder }

// Sharer returns the share-sheet helper.
func (a *App) Sharer() *share.Sharer { return a.sharer }

// Metrics returns the metrics middleware, or nil when metrics are off.
func (a *App) Metrics() *middleware.Metrics { return a.metrics }

// History returns the default navigator, or nil when Options.Navigator
// was set.
func (a *App) History() *navstack.Stack { return a.history }

// Session returns the default auth session, or nil when Options.Auth
// was set.
func (a *App) Session() *auth.Session { return a.session }
