package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/deeplink/internal/wellknown"
	"github.com/vango-dev/deeplink/pkg/auth"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/linktest"
	"github.com/vango-dev/deeplink/pkg/middleware"
	"github.com/vango-dev/deeplink/pkg/navstack"
	"github.com/vango-dev/deeplink/pkg/routes"
)

type testServer struct {
	*Server
	clock   *linktest.FakeClock
	history *navstack.Stack
	session *auth.Session
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := linktest.NewFakeClock()
	feed := NewFeed()

	reg := prometheus.NewRegistry()
	metrics := middleware.Prometheus(middleware.WithRegistry(reg))

	history := navstack.New(navstack.WithRoot(routes.HomePath), navstack.WithObserver(feed.ObserveNavigation))
	session := auth.NewSession(auth.WithNow(clock.Now), auth.WithLogger(logger))
	parser := deeplink.NewParser(routes.Default(), deeplink.WithParserClock(clock), deeplink.WithParserLogger(logger))
	engine := deeplink.NewEngine(parser, history, session,
		deeplink.WithClock(clock),
		deeplink.WithLogger(logger),
		deeplink.WithMiddleware(metrics, feed),
		deeplink.WithReplayHook(metrics.RecordReplay),
		deeplink.WithReplayHook(feed.RecordReplay),
	)
	session.SetReplayer(engine)
	t.Cleanup(func() { engine.Close() })

	files, err := wellknown.Render(parser.Registry(), wellknown.Site{
		AppleTeamID: "ABCDE12345",
		BundleID:    "app.movieclub",
	})
	if err != nil {
		t.Fatal(err)
	}

	srv := New(Options{
		Engine:  engine,
		Session: session,
		History: history,
		Feed:    feed,
		Files:   files,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:  logger,
	})
	return &testServer{Server: srv, clock: clock, history: history, session: session}
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestResolve(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		status int
		path   string
		code   string
	}{
		{"profile", "url=https://movieclub.app/u/mikevocalz", http.StatusOK, "/(protected)/profile/mikevocalz", ""},
		{"foreign host", "url=https://evil.example.com/u/mikevocalz", http.StatusUnprocessableEntity, "", "DL102"},
		{"root path", "url=https://movieclub.app/", http.StatusUnprocessableEntity, "", "DL103"},
		{"missing url", "", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/resolve?"+tt.query, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK {
				resp := decode[resolveResponse](t, rec)
				if resp.Target.Path != tt.path || !resp.Target.Valid {
					t.Errorf("target = %+v, want valid %q", resp.Target, tt.path)
				}
				if !resp.Link.RequiresAuth || resp.Link.Label != routes.LabelProfile {
					t.Errorf("link = %+v", resp.Link)
				}
				return
			}
			if tt.code != "" {
				if got := decode[errorResponse](t, rec).Code; got != tt.code {
					t.Errorf("code = %q, want %q", got, tt.code)
				}
			}
		})
	}

	// Resolving does not navigate.
	if ts.history.Depth() != 1 {
		t.Errorf("history depth = %d after resolve, want 1", ts.history.Depth())
	}
}

func TestDispatchDeferredUntilLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/dispatch", `{"url": "movieclub://p/abc123?ref=push", "source": "push"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("dispatch status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decode[OutcomeView](t, rec)
	if out.Kind != "deferred" || out.Source != "push" || out.Nav != nil {
		t.Errorf("outcome = %+v, want deferred from push", out)
	}

	hist := decode[historyResponse](t, ts.do(t, http.MethodGet, "/api/history", ""))
	if hist.Pending == nil || hist.Pending.Path != "/p/abc123" {
		t.Fatalf("pending = %+v, want /p/abc123", hist.Pending)
	}
	if hist.Authenticated {
		t.Error("authenticated before login")
	}

	rec = ts.do(t, http.MethodPost, "/api/login", `{"id": "u1", "username": "mikevocalz"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	sess := decode[sessionResponse](t, rec)
	if !sess.Authenticated || sess.ScheduledReplays != 1 {
		t.Errorf("session = %+v, want authenticated with one scheduled replay", sess)
	}

	ts.clock.Advance(deeplink.DefaultSettleDelay)

	hist = decode[historyResponse](t, ts.do(t, http.MethodGet, "/api/history", ""))
	if hist.Current != "/(protected)/post/abc123" {
		t.Errorf("current = %q, want the replayed post", hist.Current)
	}
	if hist.Pending != nil {
		t.Errorf("pending = %+v after replay, want none", hist.Pending)
	}

	rec = ts.do(t, http.MethodPost, "/api/logout", "")
	if decode[sessionResponse](t, rec).Authenticated {
		t.Error("still authenticated after logout")
	}
}

func TestDispatchDuplicate(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/login", `{"id": "u1"}`)

	body := `{"url": "https://movieclub.app/e/launch-party"}`
	first := decode[OutcomeView](t, ts.do(t, http.MethodPost, "/api/dispatch", body))
	second := decode[OutcomeView](t, ts.do(t, http.MethodPost, "/api/dispatch", body))

	if first.Kind != "dispatched" || first.Nav == nil || first.Nav.Status != "navigated" {
		t.Errorf("first = %+v", first)
	}
	if first.Nav != nil && first.Nav.Method != "push" {
		t.Errorf("first.Nav.Method = %q, want push", first.Nav.Method)
	}
	if second.Kind != "duplicate" || second.Link != nil {
		t.Errorf("second = %+v, want duplicate without link", second)
	}
	if first.Source != "unknown" {
		t.Errorf("source = %q, want unknown", first.Source)
	}
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"dispatch invalid json", "/api/dispatch", `{"url":`, http.StatusBadRequest},
		{"dispatch unknown field", "/api/dispatch", `{"href": "movieclub://p/1"}`, http.StatusBadRequest},
		{"dispatch empty url", "/api/dispatch", `{"url": "  "}`, http.StatusBadRequest},
		{"login without id", "/api/login", `{"username": "mike"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := ts.do(t, http.MethodPost, tt.target, tt.body); rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestWellKnownAndRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/.well-known/apple-app-site-association", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("AASA status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	doc := decode[wellknown.AppleAppSiteAssociation](t, rec)
	if got := doc.AppLinks.Details[0].AppIDs[0]; got != "ABCDE12345.app.movieclub" {
		t.Errorf("appID = %q", got)
	}

	if rec := ts.do(t, http.MethodGet, "/.well-known/assetlinks.json", ""); rec.Code != http.StatusNotFound {
		t.Errorf("assetlinks status = %d without Android config, want 404", rec.Code)
	}

	views := decode[[]RouteView](t, ts.do(t, http.MethodGet, "/api/routes", ""))
	if len(views) != len(routes.DefaultTable()) {
		t.Errorf("routes = %d, want %d", len(views), len(routes.DefaultTable()))
	}
	if views[0].URLPattern != "/login" || views[0].Auth != "public" {
		t.Errorf("first route = %+v", views[0])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/dispatch", `{"url": "movieclub://terms", "source": "os-link"}`)

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	want := `deeplink_dispatch_total{outcome="dispatched",source="os-link"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics output missing %q", want)
	}
}

func TestOutcomeFeed(t *testing.T) {
	ts := newTestServer(t)
	httpSrv := httptest.NewServer(ts.Handler())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/outcomes"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ts.Feed().ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("feed client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	body := bytes.NewBufferString(`{"url": "movieclub://login", "source": "share"}`)
	resp, err := http.Post(httpSrv.URL+"/api/dispatch", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var types []MessageType
	var outcome *OutcomeView
	for outcome == nil {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error: %v (got %v)", err, types)
		}
		types = append(types, msg.Type)
		if msg.Type == MessageOutcome {
			outcome = msg.Outcome
		}
	}

	if want := []MessageType{MessageNavigation, MessageOutcome}; len(types) != 2 || types[0] != want[0] {
		t.Errorf("message types = %v, want %v", types, want)
	}
	if outcome.Kind != "dispatched" || outcome.Nav == nil || outcome.Nav.Method != "replace" {
		t.Errorf("outcome = %+v, want dispatched with replace", outcome)
	}
}

func TestStartStop(t *testing.T) {
	ts := newTestServer(t)
	ts.options.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error: %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
