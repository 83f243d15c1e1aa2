package devserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/internal/wellknown"
	"github.com/vango-dev/deeplink/pkg/auth"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/navstack"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Options configures the dev server.
type Options struct {
	// Addr is the listen address, e.g. "localhost:8787".
	Addr string

	// Engine handles dispatched links.
	Engine *deeplink.Engine

	// Session is the simulated sign-in state behind /api/login.
	Session *auth.Session

	// History is the simulated navigation stack the engine drives.
	History *navstack.Stack

	// Feed broadcasts outcomes on /ws/outcomes. It should also be installed
	// as engine middleware for dispatches to appear on it.
	Feed *Feed

	// Files are the well-known files served under /.well-known/.
	Files []wellknown.File

	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler

	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the development server: a JSON API over the engine plus the
// well-known files and a live outcome feed.
type Server struct {
	options    Options
	router     chi.Router
	logger     *slog.Logger
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// New creates a dev server. Engine, Session and History are required.
func New(options Options) *Server {
	if options.Feed == nil {
		options.Feed = NewFeed()
	}
	if options.Metrics == nil {
		options.Metrics = promhttp.Handler()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{options: options, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Feed returns the outcome feed.
func (s *Server) Feed() *Feed {
	return s.options.Feed
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
		r.Post("/dispatch", s.handleDispatch)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/history", s.handleHistory)
		r.Get("/routes", s.handleRoutes)
	})

	r.Get("/.well-known/{name}", s.handleWellKnown)
	r.Get("/ws/outcomes", s.options.Feed.HandleWebSocket)
	r.Handle("/metrics", s.options.Metrics)

	return r
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.options.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("dev server listening", "addr", s.options.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		return err
	}
}

// Stop shuts the server down and disconnects feed clients.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.httpServer
	s.running = false
	s.httpServer = nil
	s.mu.Unlock()

	s.options.Feed.Close()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// logRequests logs each request at Debug.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ============================================================================
// Handlers
// ============================================================================

type resolveResponse struct {
	Link   *LinkView  `json:"link"`
	Target TargetView `json:"target"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, errors.Newf(errors.CategoryParse, "missing url query parameter"))
		return
	}

	link, err := s.options.Engine.Parser().Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Link:   NewLinkView(link),
		Target: NewTargetView(s.options.Engine.ResolveTarget(link)),
	})
}

type dispatchRequest struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, errors.Newf(errors.CategoryParse, "missing url"))
		return
	}

	out := s.options.Engine.HandleDelivery(r.Context(), deeplink.Delivery{
		RawURL: req.URL,
		Source: deeplink.ParseSource(req.Source),
	})
	writeJSON(w, http.StatusOK, NewOutcomeView(out))
}

type sessionResponse struct {
	Authenticated    bool            `json:"authenticated"`
	Principal        *auth.Principal `json:"principal,omitempty"`
	ScheduledReplays int             `json:"scheduledReplays"`
}

func (s *Server) sessionState() sessionResponse {
	resp := sessionResponse{
		Authenticated:    s.options.Session.IsAuthenticated(),
		ScheduledReplays: s.options.Engine.ScheduledReplays(),
	}
	if p, ok := s.options.Session.Principal(); ok {
		resp.Principal = &p
	}
	return resp
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var p auth.Principal
	if !decodeBody(w, r, &p) {
		return
	}
	if err := s.options.Session.Login(r.Context(), p); err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.options.Session.Logout()
	writeJSON(w, http.StatusOK, s.sessionState())
}

type historyResponse struct {
	Current       string    `json:"current"`
	Entries       []string  `json:"entries"`
	Pending       *LinkView `json:"pending"`
	Authenticated bool      `json:"authenticated"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResponse{
		Current:       s.options.History.Current(),
		Entries:       s.options.History.History(),
		Pending:       NewLinkView(s.options.Engine.PendingLink()),
		Authenticated: s.options.Session.IsAuthenticated(),
	})
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewRouteViews(s.options.Engine.Parser().Registry()))
}

func (s *Server) handleWellKnown(w http.ResponseWriter, r *http.Request) {
	path := ".well-known/" + chi.URLParam(r, "name")
	for _, f := range s.options.Files {
		if f.Path == path {
			w.Header().Set("Content-Type", f.ContentType)
			w.WriteHeader(http.StatusOK)
			w.Write(f.Body)
			return
		}
	}
	http.NotFound(w, r)
}

// ============================================================================
// Helpers
// ============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.Code(err)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.Newf(errors.CategoryParse, "invalid request body: %v", err))
		return false
	}
	return true
}
