package share

import (
	"net/url"
	"strings"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/deeplink"
)

// Entity path prefixes of the canonical share URLs.
const (
	PrefixProfile = "u"
	PrefixPost    = "p"
	PrefixEvent   = "e"
	PrefixStory   = "story"
	PrefixTicket  = "ticket"
	PrefixChat    = "chat"
	PrefixRoom    = "room"
)

// Builder builds canonical https share URLs. It never emits the private
// app scheme, which does not resolve outside the app.
type Builder struct {
	domain string
	parser *deeplink.Parser
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithParser lets Canonical accept app-scheme and bare-path inputs.
func WithParser(p *deeplink.Parser) BuilderOption {
	return func(b *Builder) {
		b.parser = p
	}
}

// NewBuilder creates a builder for domain, e.g. "movieclub.app".
func NewBuilder(domain string, opts ...BuilderOption) *Builder {
	b := &Builder{domain: strings.ToLower(strings.TrimSpace(domain))}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Domain returns the domain URLs are built on.
func (b *Builder) Domain() string {
	return b.domain
}

// URL builds https://<domain>/<prefix>/<id>. The id is path-escaped, so it
// stays one segment.
func (b *Builder) URL(prefix, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("DL401").WithDetailf("%s link", prefix)
	}
	return b.base() + "/" + prefix + "/" + url.PathEscape(id), nil
}

// ProfileURL builds the share URL for a user profile.
// Leading "@" characters on the username are dropped.
func (b *Builder) ProfileURL(username string) (string, error) {
	return b.URL(PrefixProfile, trimAt(strings.TrimSpace(username)))
}

// PostURL builds the share URL for a post.
func (b *Builder) PostURL(id string) (string, error) { return b.URL(PrefixPost, id) }

// EventURL builds the share URL for an event.
func (b *Builder) EventURL(id string) (string, error) { return b.URL(PrefixEvent, id) }

// StoryURL builds the share URL for a story.
func (b *Builder) StoryURL(id string) (string, error) { return b.URL(PrefixStory, id) }

// TicketURL builds the share URL for a ticket.
func (b *Builder) TicketURL(id string) (string, error) { return b.URL(PrefixTicket, id) }

// ChatURL builds the share URL for a chat.
func (b *Builder) ChatURL(id string) (string, error) { return b.URL(PrefixChat, id) }

// RoomURL builds the share URL for a room.
func (b *Builder) RoomURL(id string) (string, error) { return b.URL(PrefixRoom, id) }

// Canonical rewrites any link the app accepts (app scheme, universal link,
// dev URI or bare path) to its https form on the builder's domain. Only
// query parameters the matched route lists in Entry.Query are kept, so
// tracking parameters such as ref are not re-shared. The fragment is
// dropped. Links the parser rejects are returned as an error.
func (b *Builder) Canonical(raw string) (string, error) {
	if b.parser == nil {
		return "", errors.Newf(errors.CategoryShare, "canonical links need a parser")
	}
	link, err := b.parser.Parse(raw)
	if err != nil {
		return "", err
	}

	out := b.base() + link.Path
	m, ok := b.parser.Registry().Match(link.Path)
	if !ok {
		return out, nil
	}
	keep := url.Values{}
	for _, name := range m.Entry.Query {
		if _, captured := m.Params[name]; captured {
			continue
		}
		if v := link.Param(name); v != "" {
			keep.Set(name, v)
		}
	}
	if len(keep) > 0 {
		out += "?" + keep.Encode()
	}
	return out, nil
}

func (b *Builder) base() string {
	return "https://" + b.domain
}
