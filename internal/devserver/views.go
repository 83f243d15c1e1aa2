package devserver

import (
	"time"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/routes"
)

// LinkView is the JSON form of a ParsedLink.
type LinkView struct {
	ID           string            `json:"id"`
	OriginalURL  string            `json:"originalUrl"`
	Path         string            `json:"path"`
	Params       map[string]string `json:"params"`
	RouterPath   string            `json:"routerPath"`
	RequiresAuth bool              `json:"requiresAuth"`
	Label        string            `json:"label,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// NewLinkView converts link; nil stays nil.
func NewLinkView(link *deeplink.ParsedLink) *LinkView {
	if link == nil {
		return nil
	}
	params := make(map[string]string, len(link.Params))
	for k, v := range link.Params {
		params[k] = v
	}
	return &LinkView{
		ID:           link.ID.String(),
		OriginalURL:  link.OriginalURL,
		Path:         link.Path,
		Params:       params,
		RouterPath:   link.RouterPath,
		RequiresAuth: link.RequiresAuth,
		Label:        link.Label,
		Timestamp:    link.Timestamp,
	}
}

// TargetView is the JSON form of a NavigationTarget.
type TargetView struct {
	Path   string `json:"path"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Label  string `json:"label,omitempty"`
}

// NewTargetView converts t.
func NewTargetView(t deeplink.NavigationTarget) TargetView {
	return TargetView{Path: t.Path, Valid: t.Valid, Reason: t.Reason, Label: t.Label}
}

// NavView is the JSON form of a navigation result or history change.
type NavView struct {
	Status string      `json:"status,omitempty"`
	Method string      `json:"method,omitempty"`
	Path   string      `json:"path,omitempty"`
	Target *TargetView `json:"target,omitempty"`
	Depth  int         `json:"depth,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// NewNavView converts res.
func NewNavView(res deeplink.NavResult) NavView {
	target := NewTargetView(res.Target)
	v := NavView{
		Status: res.Status.String(),
		Method: string(res.Method),
		Path:   res.Target.Path,
		Target: &target,
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
		v.Code = errors.Code(res.Err)
	}
	return v
}

// OutcomeView is the JSON form of an Outcome.
type OutcomeView struct {
	Kind   string    `json:"kind"`
	Source string    `json:"source"`
	RawURL string    `json:"url"`
	Link   *LinkView `json:"link,omitempty"`
	Nav    *NavView  `json:"navigation,omitempty"`
}

// NewOutcomeView converts out. Nav is only set for dispatched links.
func NewOutcomeView(out deeplink.Outcome) OutcomeView {
	v := OutcomeView{
		Kind:   out.Kind.String(),
		Source: string(out.Source),
		RawURL: out.RawURL,
		Link:   NewLinkView(out.Link),
	}
	if out.Kind == deeplink.OutcomeDispatched {
		nav := NewNavView(out.Nav)
		v.Nav = &nav
	}
	return v
}

// RouteView is the JSON form of a route table entry.
type RouteView struct {
	URLPattern string   `json:"urlPattern"`
	RouterPath string   `json:"routerPath"`
	Auth       string   `json:"auth"`
	Query      []string `json:"query,omitempty"`
	Label      string   `json:"label"`
}

// NewRouteViews converts the registry's entries in match order.
func NewRouteViews(r *routes.Registry) []RouteView {
	entries := r.Entries()
	out := make([]RouteView, 0, len(entries))
	for _, e := range entries {
		out = append(out, RouteView{
			URLPattern: e.Pattern,
			RouterPath: e.RouterPath,
			Auth:       string(e.Auth),
			Query:      e.Query,
			Label:      e.Label,
		})
	}
	return out
}
