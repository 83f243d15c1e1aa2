package share_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	dlerrors "github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/linktest"
	"github.com/vango-dev/deeplink/pkg/routes"
	"github.com/vango-dev/deeplink/pkg/share"
)

func newBuilder() *share.Builder {
	parser := deeplink.NewParser(routes.Default(),
		deeplink.WithParserLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return share.NewBuilder("movieclub.app", share.WithParser(parser))
}

func TestBuilderURLs(t *testing.T) {
	b := newBuilder()

	tests := []struct {
		name  string
		build func(string) (string, error)
		id    string
		want  string
	}{
		{"profile", b.ProfileURL, "mikevocalz", "https://movieclub.app/u/mikevocalz"},
		{"profile with @", b.ProfileURL, "@mikevocalz", "https://movieclub.app/u/mikevocalz"},
		{"post", b.PostURL, "abc123", "https://movieclub.app/p/abc123"},
		{"event", b.EventURL, "launch-party", "https://movieclub.app/e/launch-party"},
		{"story", b.StoryURL, "s1", "https://movieclub.app/story/s1"},
		{"ticket", b.TicketURL, "t-9", "https://movieclub.app/ticket/t-9"},
		{"chat", b.ChatURL, "c1", "https://movieclub.app/chat/c1"},
		{"room", b.RoomURL, "r42", "https://movieclub.app/room/r42"},
		{"escaped id", b.PostURL, "a/b c", "https://movieclub.app/p/a%2Fb%20c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.build(tc.id)
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuilderEmptyID(t *testing.T) {
	b := newBuilder()
	for _, id := range []string{"", "   "} {
		if _, err := b.PostURL(id); dlerrors.Code(err) != "DL401" {
			t.Errorf("PostURL(%q) error = %v, want DL401", id, err)
		}
	}
	if _, err := b.ProfileURL("@"); dlerrors.Code(err) != "DL401" {
		t.Errorf("ProfileURL(@) error = %v, want DL401", err)
	}
}

func TestBuiltURLsRoundTrip(t *testing.T) {
	b := newBuilder()
	parser := deeplink.NewParser(routes.Default(),
		deeplink.WithParserLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	u, _ := b.ProfileURL("mikevocalz")
	link := parser.ParseIncomingURL(u)
	if link == nil || link.Label != routes.LabelProfile {
		t.Fatalf("ParseIncomingURL(%q) = %+v, want the profile route", u, link)
	}

	u, _ = b.RoomURL("r42")
	link = parser.ParseIncomingURL(u)
	if link == nil || link.Label != routes.LabelRoom {
		t.Fatalf("ParseIncomingURL(%q) = %+v, want the room route", u, link)
	}
}

func TestCanonical(t *testing.T) {
	b := newBuilder()

	tests := []struct {
		raw  string
		want string
	}{
		{"movieclub://p/abc123?ref=push", "https://movieclub.app/p/abc123"},
		{"settings/blocked", "https://movieclub.app/settings/blocked"},
		{"https://www.movieclub.app/u/mikevocalz/#top", "https://movieclub.app/u/mikevocalz"},
		{"exp://10.0.0.5:8081/--/e/launch", "https://movieclub.app/e/launch"},
	}
	for _, tc := range tests {
		got, err := b.Canonical(tc.raw)
		if err != nil {
			t.Errorf("Canonical(%q) error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Canonical(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		if strings.HasPrefix(got, "movieclub://") {
			t.Errorf("Canonical(%q) emitted the private scheme", tc.raw)
		}
	}

	if _, err := b.Canonical("https://evil.example.com/u/x"); dlerrors.Code(err) != "DL102" {
		t.Errorf("Canonical(evil) error = %v, want DL102", err)
	}
	if _, err := share.NewBuilder("movieclub.app").Canonical("p/1"); err == nil {
		t.Error("Canonical without a parser succeeded")
	}
}

func TestCanonicalKeepsDeclaredQuery(t *testing.T) {
	reg := routes.MustRegistry(routes.Entry{
		Pattern:    "/e/:id",
		RouterPath: "/(protected)/events/:id",
		Auth:       routes.AuthRequired,
		Query:      []string{"tab", "id"},
		Label:      routes.LabelEventDetail,
	})
	parser := deeplink.NewParser(reg,
		deeplink.WithParserLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	b := share.NewBuilder("movieclub.app", share.WithParser(parser))

	tests := []struct {
		raw  string
		want string
	}{
		{"movieclub://e/42?tab=tickets&ref=push&utm_source=dm", "https://movieclub.app/e/42?tab=tickets"},
		{"movieclub://e/42?ref=push", "https://movieclub.app/e/42"},
		{"movieclub://e/42?id=99", "https://movieclub.app/e/42"},
	}
	for _, tc := range tests {
		got, err := b.Canonical(tc.raw)
		if err != nil {
			t.Errorf("Canonical(%q) error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Canonical(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSharer(t *testing.T) {
	sheet := &linktest.RecordingShareSheet{}
	s := share.NewSharer(newBuilder(), sheet,
		share.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	if err := s.ShareProfile(ctx, "mikevocalz"); err != nil {
		t.Fatalf("ShareProfile() error: %v", err)
	}
	got := sheet.Last()
	if got.URL != "https://movieclub.app/u/mikevocalz" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Title != "@mikevocalz on MovieClub" {
		t.Errorf("Title = %q", got.Title)
	}
	if !strings.Contains(got.Message, got.URL) {
		t.Errorf("Message %q does not contain the URL", got.Message)
	}

	if err := s.ShareEvent(ctx, "launch", "Launch Party"); err != nil {
		t.Fatalf("ShareEvent() error: %v", err)
	}
	if got := sheet.Last(); got.Title != "Launch Party" || got.URL != "https://movieclub.app/e/launch" {
		t.Errorf("ShareEvent content = %+v", got)
	}

	calls := []func() error{
		func() error { return s.SharePost(ctx, "abc123") },
		func() error { return s.ShareStory(ctx, "s1") },
		func() error { return s.ShareTicket(ctx, "t1", "") },
		func() error { return s.ShareChat(ctx, "c1") },
		func() error { return s.ShareRoom(ctx, "r1", "") },
		func() error { return s.ShareURL(ctx, "movieclub://p/abc123", "") },
	}
	for i, call := range calls {
		if err := call(); err != nil {
			t.Errorf("share call %d error: %v", i, err)
		}
	}

	for _, c := range sheet.Shared() {
		if !strings.HasPrefix(c.URL, "https://movieclub.app/") {
			t.Errorf("shared %q, want the https form", c.URL)
		}
		if c.Title == "" {
			t.Errorf("shared %q without a title", c.URL)
		}
	}
	if n := len(sheet.Shared()); n != 8 {
		t.Errorf("shared %d items, want 8", n)
	}
}

func TestSharerErrors(t *testing.T) {
	sheet := &linktest.RecordingShareSheet{Fail: true}
	s := share.NewSharer(newBuilder(), sheet,
		share.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	err := s.SharePost(ctx, "abc123")
	if dlerrors.Code(err) != "DL403" {
		t.Errorf("SharePost() error = %v, want DL403", err)
	}
	if !errors.Is(err, linktest.ErrShareCancelled) {
		t.Error("DL403 does not wrap the share sheet error")
	}

	sheet.Fail = false
	if err := s.SharePost(ctx, ""); dlerrors.Code(err) != "DL401" {
		t.Errorf("SharePost(\"\") error = %v, want DL401", err)
	}
	if n := len(sheet.Shared()); n != 1 {
		t.Errorf("share sheet called %d times, want 1", n)
	}
}
