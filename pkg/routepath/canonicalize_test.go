package routepath

import (
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "root", input: "/", want: "/"},
		{name: "empty string", input: "", want: "/"},
		{name: "whitespace only", input: "   ", want: "/"},
		{name: "no leading slash", input: "settings/blocked", want: "/settings/blocked"},
		{name: "trailing slash", input: "/u/mikevocalz/", want: "/u/mikevocalz"},
		{name: "surrounding whitespace", input: "  /p/abc123  ", want: "/p/abc123"},
		{name: "collapse slashes", input: "//chat///42", want: "/chat/42"},
		{name: "single dot", input: "/settings/./blocked", want: "/settings/blocked"},
		{name: "double dot", input: "/u/bob/../alice", want: "/u/alice"},
		{name: "double dot to root", input: "/u/..", want: "/"},
		{name: "valid percent escape kept", input: "/tag/caf%C3%A9", want: "/tag/caf%C3%A9"},
		{name: "case preserved", input: "/U/MikeVocalz", want: "/U/MikeVocalz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Canonicalize(tc.input)
			if err != nil {
				t.Fatalf("Canonicalize(%q) unexpected error = %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCanonicalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "backslash", input: "/u\\bob", wantErr: ErrBackslashInPath},
		{name: "null byte literal", input: "/u/\x00", wantErr: ErrNullByteInPath},
		{name: "null byte encoded", input: "/u/%00", wantErr: ErrNullByteInPath},
		{name: "incomplete escape", input: "/u/%2", wantErr: ErrInvalidPercentEscape},
		{name: "bad hex", input: "/u/%GG", wantErr: ErrInvalidPercentEscape},
		{name: "escape root", input: "/../secret", wantErr: ErrPathEscapesRoot},
		{name: "deep escape root", input: "/a/../../secret", wantErr: ErrPathEscapesRoot},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Canonicalize(tc.input)
			if err != tc.wantErr {
				t.Errorf("Canonicalize(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestMustCanonicalizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustCanonicalize to panic on invalid input")
		}
	}()
	MustCanonicalize("/../x")
}

func TestSegmentsAndJoin(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{path: "/", want: nil},
		{path: "/u/bob", want: []string{"u", "bob"}},
		{path: "/settings/blocked", want: []string{"settings", "blocked"}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got := Segments(tc.path)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Segments(%q) = %v, want %v", tc.path, got, tc.want)
			}
			if back := Join(got); back != tc.path {
				t.Errorf("Join(Segments(%q)) = %q", tc.path, back)
			}
		})
	}
	if !IsRoot("/") || IsRoot("/u") {
		t.Error("IsRoot mismatch")
	}
}

func TestDecodeSegment(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    string
		wantErr error
	}{
		{name: "plain", segment: "mikevocalz", want: "mikevocalz"},
		{name: "encoded space", segment: "hello%20world", want: "hello world"},
		{name: "utf8", segment: "caf%C3%A9", want: "café"},
		{name: "encoded slash", segment: "a%2Fb", wantErr: ErrEncodedSlashInSegment},
		{name: "invalid escape", segment: "a%ZZ", wantErr: ErrInvalidPercentEscape},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeSegment(tc.segment)
			if tc.wantErr != nil {
				if err != tc.wantErr {
					t.Errorf("DecodeSegment(%q) error = %v, want %v", tc.segment, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeSegment(%q) unexpected error = %v", tc.segment, err)
			}
			if got != tc.want {
				t.Errorf("DecodeSegment(%q) = %q, want %q", tc.segment, got, tc.want)
			}
		})
	}
}

func TestSplitPathAndQuery(t *testing.T) {
	tests := []struct {
		input     string
		wantPath  string
		wantQuery string
	}{
		{input: "/p/abc?ref=push", wantPath: "/p/abc", wantQuery: "ref=push"},
		{input: "/p/abc", wantPath: "/p/abc"},
		{input: "/p/abc?", wantPath: "/p/abc"},
		{input: "/p/abc?a=1&b=2#top", wantPath: "/p/abc", wantQuery: "a=1&b=2"},
		{input: "/p/abc#frag?not=query", wantPath: "/p/abc"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			gotPath, gotQuery := SplitPathAndQuery(tc.input)
			if gotPath != tc.wantPath {
				t.Errorf("SplitPathAndQuery(%q) path = %q, want %q", tc.input, gotPath, tc.wantPath)
			}
			if gotQuery != tc.wantQuery {
				t.Errorf("SplitPathAndQuery(%q) query = %q, want %q", tc.input, gotQuery, tc.wantQuery)
			}
		})
	}
}
