package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/vango-dev/deeplink/pkg/auth"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/linktest"
	"github.com/vango-dev/deeplink/pkg/routes"
)

type countingReplayer struct{ calls int }

func (r *countingReplayer) ReplayPendingLink(context.Context) bool {
	r.calls++
	return false
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginReplaysOnce(t *testing.T) {
	r := &countingReplayer{}
	s := auth.NewSession(auth.WithLogger(quietLogger()))
	s.SetReplayer(r)
	ctx := context.Background()

	if s.IsAuthenticated() {
		t.Fatal("new session is authenticated")
	}
	if err := s.Login(ctx, auth.Principal{ID: "u1", Username: "mikevocalz"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after Login")
	}
	if r.calls != 1 {
		t.Errorf("replay calls = %d, want 1", r.calls)
	}

	p, ok := s.Principal()
	if !ok || p.Username != "mikevocalz" {
		t.Errorf("Principal() = (%+v, %v)", p, ok)
	}

	s.Logout()
	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after Logout")
	}
	if err := s.Restore(ctx, auth.Principal{ID: "u1"}); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if r.calls != 2 {
		t.Errorf("replay calls = %d, want 2", r.calls)
	}
}

func TestLoginRefused(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	r := &countingReplayer{}
	s := auth.NewSession(auth.WithLogger(quietLogger()), auth.WithNow(func() time.Time { return now }))
	s.SetReplayer(r)
	ctx := context.Background()

	if err := s.Login(ctx, auth.Principal{}); !errors.Is(err, auth.ErrUnauthorized) {
		t.Errorf("Login(no id) error = %v, want ErrUnauthorized", err)
	}
	expired := auth.Principal{ID: "u1", ExpiresAtUnixMs: now.Add(-time.Minute).UnixMilli()}
	if err := s.Restore(ctx, expired); !errors.Is(err, auth.ErrSessionExpired) {
		t.Errorf("Restore(expired) error = %v, want ErrSessionExpired", err)
	}
	if r.calls != 0 {
		t.Errorf("replay calls = %d, want 0", r.calls)
	}
}

func TestSessionExpiresInPlace(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := auth.NewSession(auth.WithLogger(quietLogger()), auth.WithNow(func() time.Time { return now }))

	_ = s.Login(context.Background(), auth.Principal{ID: "u1", ExpiresAtUnixMs: now.Add(time.Hour).UnixMilli()})
	if !s.IsAuthenticated() {
		t.Fatal("IsAuthenticated() = false before expiry")
	}
	now = now.Add(time.Hour)
	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() = true at expiry")
	}
}

func TestSessionDrivesEngine(t *testing.T) {
	clock := linktest.NewFakeClock()
	nav := &linktest.RecordingNavigator{}
	s := auth.NewSession(auth.WithLogger(quietLogger()))
	parser := deeplink.NewParser(routes.Default(), deeplink.WithParserLogger(quietLogger()))
	engine := deeplink.NewEngine(parser, nav, s,
		deeplink.WithClock(clock),
		deeplink.WithLogger(quietLogger()),
	)
	s.SetReplayer(engine)
	ctx := context.Background()

	engine.HandleDeepLink(ctx, "https://movieclub.app/u/mikevocalz")
	if err := s.Login(ctx, auth.Principal{ID: "u1"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	clock.Advance(deeplink.DefaultSettleDelay)

	want := []linktest.Call{{Method: deeplink.MethodPush, Path: "/(protected)/profile/mikevocalz"}}
	if got := nav.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}
