// Package routepath canonicalizes deep link paths.
//
// A canonical path always begins with "/", never ends with "/" unless it is
// exactly the root, contains no empty, "." or ".." segments, and carries no
// query string or fragment. Every component of the engine compares paths in
// this form.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path canonicalization errors.
var (
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in segment")
)

// Root is the canonical root path.
const Root = "/"

// Canonicalize normalizes a raw path:
//   - trim surrounding whitespace
//   - force a leading slash
//   - collapse duplicate slashes (/u//bob → /u/bob)
//   - drop "." segments and resolve ".." segments
//   - strip a trailing slash unless the result is the root
//
// Paths containing a backslash, a NUL byte (literal or %00), an invalid
// percent escape, or a ".." that would climb above the root are rejected.
// The input must not include a query string; use SplitPathAndQuery first.
func Canonicalize(input string) (string, error) {
	path := strings.TrimSpace(input)
	if path == "" {
		return Root, nil
	}

	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", err
		}
	}

	var out []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", ErrPathEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	return "/" + strings.Join(out, "/"), nil
}

// MustCanonicalize is like Canonicalize but panics on error.
// Intended for static route tables.
func MustCanonicalize(input string) string {
	p, err := Canonicalize(input)
	if err != nil {
		panic("routepath: " + err.Error() + ": " + input)
	}
	return p
}

// IsRoot reports whether a canonical path is the root.
func IsRoot(path string) bool {
	return path == Root
}

// Segments splits a canonical path into its segments.
// The root yields nil.
func Segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Join builds a canonical path from segments.
func Join(segments []string) string {
	return "/" + strings.Join(segments, "/")
}

// validatePercentEscapes checks that all percent-escapes are %XX with hex digits.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment percent-decodes a single captured segment.
// A segment that decodes to something containing "/" is rejected so that a
// capture can never span two path segments.
func DecodeSegment(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// SplitPathAndQuery splits "path?query#fragment" into path and raw query.
// The fragment is discarded; the query is returned without the leading "?".
func SplitPathAndQuery(input string) (path, query string) {
	input, _, _ = strings.Cut(input, "#")
	path, query, _ = strings.Cut(input, "?")
	return path, query
}
