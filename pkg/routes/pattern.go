package routes

import (
	"strings"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/routepath"
)

// CaptureMarker prefixes a capture segment in patterns and templates.
const CaptureMarker = ':'

// segment is one compiled pattern segment: either a literal or a capture.
type segment struct {
	literal string
	capture string
}

func (s segment) isCapture() bool {
	return s.capture != ""
}

// compilePattern splits a pattern into segments and validates captures.
func compilePattern(pattern string) ([]segment, error) {
	p, err := routepath.Canonicalize(pattern)
	if err != nil {
		return nil, errors.New("DL201").WithDetailf("pattern %q: %v", pattern, err)
	}
	raw := routepath.Segments(p)
	if len(raw) == 0 {
		return nil, errors.New("DL201").WithDetailf("pattern %q has no segments", pattern)
	}

	segs := make([]segment, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, s := range raw {
		name, ok := captureName(s)
		if !ok {
			segs = append(segs, segment{literal: s})
			continue
		}
		if name == "" {
			return nil, errors.New("DL201").WithDetailf("pattern %q has an unnamed capture", pattern)
		}
		if seen[name] {
			return nil, errors.New("DL202").WithDetailf("pattern %q repeats :%s", pattern, name)
		}
		seen[name] = true
		segs = append(segs, segment{capture: name})
	}
	return segs, nil
}

// captureName returns the capture name of a segment like ":id".
func captureName(s string) (string, bool) {
	if len(s) == 0 || s[0] != CaptureMarker {
		return "", false
	}
	return s[1:], true
}

// matchSegments matches path segments against a compiled pattern.
// Literals compare case-insensitively; a capture takes exactly one segment.
func matchSegments(pattern []segment, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range pattern {
		if !seg.isCapture() {
			if !strings.EqualFold(seg.literal, path[i]) {
				return nil, false
			}
			continue
		}

		value, err := routepath.DecodeSegment(path[i])
		if err != nil || value == "" {
			return nil, false
		}
		if params == nil {
			params = make(map[string]string, len(pattern))
		}
		params[seg.capture] = value
	}
	if params == nil {
		params = map[string]string{}
	}
	return params, true
}
