package routes

import (
	"net/url"
	"strings"
)

// BuildRouterPath fills a destination template with parameter values.
//
// Substitution is per segment: a segment that is exactly ":name" is replaced
// by the path-escaped value of params[name]. Literal segments and segments
// merely containing a capture-like prefix are left alone, so ":id" never
// clobbers ":idSuffix". A capture with no value is left as written.
// A query string on the template is carried over unchanged.
func BuildRouterPath(template string, params map[string]string) string {
	path, query, hasQuery := strings.Cut(template, "?")

	segs := strings.Split(path, "/")
	for i, s := range segs {
		name, ok := captureName(s)
		if !ok || name == "" {
			continue
		}
		if v, ok := params[name]; ok {
			segs[i] = url.PathEscape(v)
		}
	}

	out := strings.Join(segs, "/")
	if hasQuery {
		out += "?" + query
	}
	return out
}
