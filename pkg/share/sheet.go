package share

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/deeplink/internal/errors"
)

// DefaultAppName is the product name used in share titles.
const DefaultAppName = "MovieClub"

// Content is what the OS share sheet shows.
type Content struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ShareSheet presents content to the user's share targets.
type ShareSheet interface {
	Share(ctx context.Context, c Content) error
}

// ShareSheetFunc adapts a function to ShareSheet.
type ShareSheetFunc func(ctx context.Context, c Content) error

// Share calls f.
func (f ShareSheetFunc) Share(ctx context.Context, c Content) error { return f(ctx, c) }

// Sharer builds share URLs and hands them to a ShareSheet.
type Sharer struct {
	builder *Builder
	sheet   ShareSheet
	appName string
	logger  *slog.Logger
}

// SharerOption configures a Sharer.
type SharerOption func(*Sharer)

// WithAppName sets the product name used in titles and messages.
func WithAppName(name string) SharerOption {
	return func(s *Sharer) {
		s.appName = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SharerOption {
	return func(s *Sharer) {
		s.logger = logger
	}
}

// NewSharer creates a Sharer.
func NewSharer(builder *Builder, sheet ShareSheet, opts ...SharerOption) *Sharer {
	s := &Sharer{
		builder: builder,
		sheet:   sheet,
		appName: DefaultAppName,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Builder returns the underlying URL builder.
func (s *Sharer) Builder() *Builder {
	return s.builder
}

// ShareProfile shares a user profile.
func (s *Sharer) ShareProfile(ctx context.Context, username string) error {
	u, err := s.builder.ProfileURL(username)
	if err != nil {
		return err
	}
	handle := "@" + trimAt(strings.TrimSpace(username))
	return s.present(ctx, Content{
		URL:     u,
		Title:   fmt.Sprintf("%s on %s", handle, s.appName),
		Message: fmt.Sprintf("Check out %s on %s: %s", handle, s.appName, u),
	})
}

// SharePost shares a post.
func (s *Sharer) SharePost(ctx context.Context, id string) error {
	return s.shareEntity(ctx, s.builder.PostURL, id, "post", "")
}

// ShareEvent shares an event. title may be empty.
func (s *Sharer) ShareEvent(ctx context.Context, id, title string) error {
	return s.shareEntity(ctx, s.builder.EventURL, id, "event", title)
}

// ShareStory shares a story.
func (s *Sharer) ShareStory(ctx context.Context, id string) error {
	return s.shareEntity(ctx, s.builder.StoryURL, id, "story", "")
}

// ShareTicket shares a ticket. title is usually the event name.
func (s *Sharer) ShareTicket(ctx context.Context, id, title string) error {
	return s.shareEntity(ctx, s.builder.TicketURL, id, "ticket", title)
}

// ShareChat shares a chat invite.
func (s *Sharer) ShareChat(ctx context.Context, id string) error {
	return s.shareEntity(ctx, s.builder.ChatURL, id, "chat", "")
}

// ShareRoom shares a live room.
func (s *Sharer) ShareRoom(ctx context.Context, id, title string) error {
	return s.shareEntity(ctx, s.builder.RoomURL, id, "room", title)
}

// ShareURL shares any link the app accepts, rewritten to its https form.
func (s *Sharer) ShareURL(ctx context.Context, raw, title string) error {
	u, err := s.builder.Canonical(raw)
	if err != nil {
		return err
	}
	if title == "" {
		title = s.appName
	}
	return s.present(ctx, Content{URL: u, Title: title, Message: u})
}

func (s *Sharer) shareEntity(ctx context.Context, build func(string) (string, error), id, kind, title string) error {
	u, err := build(id)
	if err != nil {
		return err
	}
	if title == "" {
		title = fmt.Sprintf("Check out this %s on %s", kind, s.appName)
	}
	return s.present(ctx, Content{
		URL:     u,
		Title:   title,
		Message: fmt.Sprintf("%s: %s", title, u),
	})
}

func (s *Sharer) present(ctx context.Context, c Content) error {
	if err := s.sheet.Share(ctx, c); err != nil {
		s.logger.Warn("share sheet failed", "url", c.URL, "error", err)
		return errors.New("DL403").WithDetail(c.URL).Wrap(err)
	}
	s.logger.Debug("shared link", "url", c.URL)
	return nil
}

func trimAt(username string) string {
	for len(username) > 0 && (username[0] == '@' || username[0] == ' ') {
		username = username[1:]
	}
	return username
}
