// Package routes holds the deep link route table and its matcher.
//
// A route entry maps an external URL pattern to an internal destination
// template:
//
//	{Pattern: "/u/:username", RouterPath: "/(protected)/profile/:username",
//	 Auth: routes.AuthRequired, Label: "profile"}
//
// Patterns are "/"-separated segments. A segment starting with ":" captures
// exactly one path segment; every other segment must match literally,
// ignoring case.
//
// # Matching
//
// Entries are tried in declaration order. The first entry whose pattern
// matches and whose validator (if any) accepts the captures wins. A failed
// validation is not an error: the entry is skipped and matching continues,
// which lets a strict entry sit in front of a looser fallback.
//
//	r := routes.Default()
//	m, ok := r.Match("/u/mikevocalz")
//	// m.Entry.Label == "profile", m.Params["username"] == "mikevocalz"
//
// # Policy
//
// Policy classifies a path as public or auth-required. A path that matches
// nothing requires auth.
//
// # Templates
//
// BuildRouterPath substitutes whole segments only, so a capture name that is
// a prefix of another (":id" and ":idSuffix") cannot corrupt the result.
package routes
