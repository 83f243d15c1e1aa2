package deeplink

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ParsedLink is the result of parsing one incoming URI.
// It is created once by the Parser and must be treated as read-only.
type ParsedLink struct {
	// ID correlates log lines for one delivery.
	ID uuid.UUID

	// OriginalURL is the raw input, untrimmed.
	OriginalURL string

	// Path is the canonical path: leading slash, no trailing slash.
	Path string

	// Params merges query parameters and route captures.
	// Captures win over same-named query parameters.
	Params map[string]string

	// RouterPath is the internal destination. For an unmatched path it is
	// Path itself.
	RouterPath string

	// RequiresAuth is true for auth-gated routes and for unmatched paths.
	RequiresAuth bool

	// Label is the matched route's label, or "" when nothing matched.
	Label string

	// Timestamp is when the link was parsed.
	Timestamp time.Time
}

// Param returns a parameter value, or "" if absent.
func (l *ParsedLink) Param(name string) string {
	return l.Params[name]
}

// Matched reports whether a route entry matched the link's path.
func (l *ParsedLink) Matched() bool {
	return l.Label != ""
}

// LogValue implements slog.LogValuer.
func (l *ParsedLink) LogValue() slog.Value {
	if l == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("link_id", l.ID.String()),
		slog.String("path", l.Path),
		slog.String("router_path", l.RouterPath),
		slog.String("label", l.Label),
		slog.Bool("requires_auth", l.RequiresAuth),
	)
}

func copyParams(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
