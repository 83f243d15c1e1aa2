package routes

import (
	"fmt"
	"strings"
)

// Auth classifies whether a destination may be opened without a session.
type Auth string

const (
	// Public destinations are reachable while signed out.
	Public Auth = "public"

	// AuthRequired destinations are deferred until the user signs in.
	AuthRequired Auth = "auth-required"
)

// ParseAuth parses the route-table spelling of an auth classification.
// An empty string means AuthRequired.
func ParseAuth(s string) (Auth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return Public, nil
	case "", "auth-required", "auth", "private":
		return AuthRequired, nil
	default:
		return "", fmt.Errorf("unknown auth classification %q", s)
	}
}

// ParamsValidator accepts or rejects the parameters extracted by a pattern.
// A rejection is not an error for the caller: the matcher skips the entry
// and keeps looking.
type ParamsValidator func(params map[string]string) error

// Entry is one row of the route table.
type Entry struct {
	// Pattern is the external URL pattern, e.g. "/u/:username".
	Pattern string `json:"urlPattern" yaml:"urlPattern"`

	// RouterPath is the internal destination template,
	// e.g. "/(protected)/profile/:username".
	RouterPath string `json:"routerPath" yaml:"routerPath"`

	// Auth is the destination's auth classification.
	Auth Auth `json:"auth" yaml:"auth"`

	// Query lists query parameter names RouterPath may reference
	// in addition to the pattern's captures.
	Query []string `json:"query,omitempty" yaml:"query,omitempty"`

	// Validate optionally vets the extracted parameters.
	Validate ParamsValidator `json:"-" yaml:"-"`

	// Label names the entry in logs and metrics.
	Label string `json:"label" yaml:"label"`
}

// IsPublic reports whether the entry is reachable while signed out.
func (e *Entry) IsPublic() bool {
	return e.Auth == Public
}

// Match is the result of matching a path against the registry.
type Match struct {
	// Entry is the winning route entry.
	Entry *Entry

	// Params holds the decoded captures, keyed by capture name.
	Params map[string]string
}

// Policy is the auth classification of a path.
type Policy struct {
	IsPublic     bool
	RequiresAuth bool

	// Entry is the matched entry, or nil when nothing matched.
	Entry *Entry
}
