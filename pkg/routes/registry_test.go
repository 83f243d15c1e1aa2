package routes

import (
	"errors"
	"reflect"
	"testing"

	dlerrors "github.com/vango-dev/deeplink/internal/errors"
)

func TestDefaultRegistryMatch(t *testing.T) {
	r := Default()

	tests := []struct {
		name       string
		path       string
		wantLabel  string
		wantParams map[string]string
	}{
		{
			name:       "username profile",
			path:       "/u/mikevocalz",
			wantLabel:  LabelProfile,
			wantParams: map[string]string{"username": "mikevocalz"},
		},
		{
			name:       "post detail",
			path:       "/p/abc123",
			wantLabel:  LabelPostDetail,
			wantParams: map[string]string{"id": "abc123"},
		},
		{
			name:       "blocked accounts",
			path:       "/settings/blocked",
			wantLabel:  LabelBlockedAccounts,
			wantParams: map[string]string{},
		},
		{
			name:       "literal segments ignore case",
			path:       "/SETTINGS/Blocked",
			wantLabel:  LabelBlockedAccounts,
			wantParams: map[string]string{},
		},
		{
			name:       "capture keeps case",
			path:       "/U/MikeVocalz",
			wantLabel:  LabelProfile,
			wantParams: map[string]string{"username": "MikeVocalz"},
		},
		{
			name:       "validator rejection falls through",
			path:       "/u/mike%20vocalz",
			wantLabel:  LabelProfileSearch,
			wantParams: map[string]string{"query": "mike vocalz"},
		},
		{
			name:       "non-canonical input",
			path:       "p/abc123/",
			wantLabel:  LabelPostDetail,
			wantParams: map[string]string{"id": "abc123"},
		},
		{
			name:       "two captures",
			path:       "/p/abc/comments/c9",
			wantLabel:  "comment-thread",
			wantParams: map[string]string{"id": "abc", "commentId": "c9"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := r.Match(tc.path)
			if !ok {
				t.Fatalf("Match(%q) found nothing", tc.path)
			}
			if m.Entry.Label != tc.wantLabel {
				t.Errorf("Match(%q).Label = %q, want %q", tc.path, m.Entry.Label, tc.wantLabel)
			}
			if !reflect.DeepEqual(m.Params, tc.wantParams) {
				t.Errorf("Match(%q).Params = %v, want %v", tc.path, m.Params, tc.wantParams)
			}
		})
	}
}

func TestMatchMisses(t *testing.T) {
	r := Default()
	for _, path := range []string{
		"/",
		"/nowhere",
		"/u",
		"/u/a/b/c",
		"/p/a%2Fb",
		"/p/../../etc",
		"/p/bad%zz",
	} {
		if m, ok := r.Match(path); ok {
			t.Errorf("Match(%q) = %q, want no match", path, m.Entry.Label)
		}
	}
}

func TestFirstMatchWins(t *testing.T) {
	r := MustRegistry(
		Entry{Pattern: "/x/:id", RouterPath: "/first/:id", Label: "first"},
		Entry{Pattern: "/x/:other", RouterPath: "/second/:other", Label: "second"},
		Entry{Pattern: "/x/literal", RouterPath: "/third", Label: "third"},
	)

	for i := 0; i < 10; i++ {
		m, ok := r.Match("/x/literal")
		if !ok || m.Entry.Label != "first" {
			t.Fatalf("Match = %+v, want the earliest declared entry", m.Entry)
		}
	}
}

func TestValidatorSkipsToLooserEntry(t *testing.T) {
	r := MustRegistry(
		Entry{Pattern: "/n/:id", RouterPath: "/numeric/:id", Label: "numeric",
			Validate: Schema{"id": "int"}.MustValidator()},
		Entry{Pattern: "/n/:id", RouterPath: "/any/:id", Label: "any"},
	)

	m, _ := r.Match("/n/42")
	if m.Entry.Label != "numeric" {
		t.Errorf("Match(/n/42) = %q, want numeric", m.Entry.Label)
	}
	m, _ = r.Match("/n/forty-two")
	if m.Entry.Label != "any" {
		t.Errorf("Match(/n/forty-two) = %q, want any", m.Entry.Label)
	}
}

func TestPolicyFailsClosed(t *testing.T) {
	r := Default()

	tests := []struct {
		path       string
		wantPublic bool
		wantAuth   bool
		wantEntry  bool
	}{
		{path: "/login", wantPublic: true, wantAuth: false, wantEntry: true},
		{path: "/terms", wantPublic: true, wantAuth: false, wantEntry: true},
		{path: "/u/mikevocalz", wantPublic: false, wantAuth: true, wantEntry: true},
		{path: "/totally/unknown", wantPublic: false, wantAuth: true, wantEntry: false},
		{path: "/admin", wantPublic: false, wantAuth: true, wantEntry: false},
		{path: "/", wantPublic: false, wantAuth: true, wantEntry: false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			p := r.Policy(tc.path)
			if p.IsPublic != tc.wantPublic {
				t.Errorf("Policy(%q).IsPublic = %v, want %v", tc.path, p.IsPublic, tc.wantPublic)
			}
			if p.RequiresAuth != tc.wantAuth {
				t.Errorf("Policy(%q).RequiresAuth = %v, want %v", tc.path, p.RequiresAuth, tc.wantAuth)
			}
			if (p.Entry != nil) != tc.wantEntry {
				t.Errorf("Policy(%q).Entry = %v, want present=%v", tc.path, p.Entry, tc.wantEntry)
			}
		})
	}
}

func TestNewRegistryErrors(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		wantCode string
	}{
		{
			name:     "empty pattern",
			entry:    Entry{Pattern: "/", RouterPath: "/x"},
			wantCode: "DL201",
		},
		{
			name:     "unnamed capture",
			entry:    Entry{Pattern: "/u/:", RouterPath: "/x"},
			wantCode: "DL201",
		},
		{
			name:     "duplicate capture",
			entry:    Entry{Pattern: "/a/:id/b/:id", RouterPath: "/x/:id"},
			wantCode: "DL202",
		},
		{
			name:     "unknown template capture",
			entry:    Entry{Pattern: "/a/:id", RouterPath: "/x/:other"},
			wantCode: "DL203",
		},
		{
			name:     "empty router path",
			entry:    Entry{Pattern: "/a"},
			wantCode: "DL201",
		},
		{
			name:     "escaping pattern",
			entry:    Entry{Pattern: "/../a", RouterPath: "/x"},
			wantCode: "DL201",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.entry)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := dlerrors.Code(err); got != tc.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", got, tc.wantCode, err)
			}
		})
	}
}

func TestNewRegistryDefaults(t *testing.T) {
	r := MustRegistry(
		Entry{Pattern: "/reset/:token", RouterPath: "/(auth)/reset/:token"},
		Entry{Pattern: "/q", RouterPath: "/query/:ref", Query: []string{"ref"}},
	)
	entries := r.Entries()
	if len(entries) != 2 || r.Len() != 2 {
		t.Fatalf("Entries() len = %d, want 2", len(entries))
	}
	if entries[0].Auth != AuthRequired {
		t.Errorf("default Auth = %q, want %q", entries[0].Auth, AuthRequired)
	}
	if entries[0].Label != "/reset/:token" {
		t.Errorf("default Label = %q, want the pattern", entries[0].Label)
	}

	entries[0].Label = "mutated"
	if r.Entries()[0].Label == "mutated" {
		t.Error("Entries() must return a copy")
	}
}

func TestMustRegistryPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, dlerrors.New("DL203")) {
			t.Errorf("recover() = %v, want DL203 error", r)
		}
	}()
	MustRegistry(Entry{Pattern: "/a", RouterPath: "/b/:missing"})
}

func TestParseAuth(t *testing.T) {
	tests := []struct {
		in      string
		want    Auth
		wantErr bool
	}{
		{in: "public", want: Public},
		{in: "PUBLIC", want: Public},
		{in: "auth-required", want: AuthRequired},
		{in: "", want: AuthRequired},
		{in: "sometimes", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseAuth(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseAuth(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAuth(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultTableCompiles(t *testing.T) {
	r, err := NewRegistry(DefaultTable()...)
	if err != nil {
		t.Fatalf("DefaultTable() does not compile: %v", err)
	}
	labels := make(map[string]bool)
	for _, e := range r.Entries() {
		if labels[e.Label] {
			t.Errorf("duplicate label %q", e.Label)
		}
		labels[e.Label] = true
	}
}
