package deeplink

import (
	"net/url"
	"strings"
)

// parseQuery decodes a raw query string into a flat map.
//
// Pairs split on "&" and key from value on the first "=". "+" means space.
// A component that fails to percent-decode is kept as written. Empty keys
// are skipped and a repeated key keeps its last value.
func parseQuery(raw string) map[string]string {
	params := make(map[string]string)
	if raw == "" {
		return params
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		k = decodeComponent(k)
		if k == "" {
			continue
		}
		params[k] = decodeComponent(v)
	}
	return params
}

func decodeComponent(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
