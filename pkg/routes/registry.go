package routes

import (
	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/routepath"
)

type compiledEntry struct {
	entry    Entry
	segments []segment
}

// Registry is an ordered, immutable route table.
// It is safe for concurrent use because nothing mutates it after NewRegistry.
type Registry struct {
	entries []compiledEntry
}

// NewRegistry compiles entries in declaration order.
// Declaration order is significant: the first matching entry wins.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make([]compiledEntry, 0, len(entries))}
	for _, e := range entries {
		segs, err := compilePattern(e.Pattern)
		if err != nil {
			return nil, err
		}
		if err := checkTemplate(e, segs); err != nil {
			return nil, err
		}
		if e.Auth == "" {
			e.Auth = AuthRequired
		}
		if e.Label == "" {
			e.Label = e.Pattern
		}
		e.Query = append([]string(nil), e.Query...)
		r.entries = append(r.entries, compiledEntry{entry: e, segments: segs})
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// checkTemplate verifies every capture in the router path is fed by the
// pattern or by a declared query parameter.
func checkTemplate(e Entry, segs []segment) error {
	known := make(map[string]bool, len(segs)+len(e.Query))
	for _, s := range segs {
		if s.isCapture() {
			known[s.capture] = true
		}
	}
	for _, q := range e.Query {
		known[q] = true
	}

	path, _ := routepath.SplitPathAndQuery(e.RouterPath)
	if path == "" {
		return errors.New("DL201").WithDetailf("entry %q has an empty routerPath", e.Pattern)
	}
	for _, s := range routepath.Segments(path) {
		name, ok := captureName(s)
		if !ok {
			continue
		}
		if !known[name] {
			return errors.New("DL203").WithDetailf("routerPath %q references :%s", e.RouterPath, name)
		}
	}
	return nil
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the table in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, c := range r.entries {
		out[i] = c.entry
	}
	return out
}

// Match finds the first entry whose pattern matches path and whose
// validator, if any, accepts the extracted parameters. A validator
// rejection skips to the next entry so a looser entry later in the table
// can still catch the path.
func (r *Registry) Match(path string) (Match, bool) {
	canonical, err := routepath.Canonicalize(path)
	if err != nil {
		return Match{}, false
	}
	segs := routepath.Segments(canonical)

	for i := range r.entries {
		c := &r.entries[i]
		params, ok := matchSegments(c.segments, segs)
		if !ok {
			continue
		}
		if c.entry.Validate != nil && c.entry.Validate(params) != nil {
			continue
		}
		e := c.entry
		return Match{Entry: &e, Params: params}, true
	}
	return Match{}, false
}

// Policy classifies a path. Unmatched paths require auth so that private
// content is never reachable through an unrecognized link.
func (r *Registry) Policy(path string) Policy {
	m, ok := r.Match(path)
	if !ok {
		return Policy{RequiresAuth: true}
	}
	public := m.Entry.IsPublic()
	return Policy{
		IsPublic:     public,
		RequiresAuth: !public,
		Entry:        m.Entry,
	}
}
