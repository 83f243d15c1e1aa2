package wellknown

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/routepath"
	"github.com/vango-dev/deeplink/pkg/routes"
)

// Object paths, relative to the site root.
const (
	AASAPath       = ".well-known/apple-app-site-association"
	AssetLinksPath = ".well-known/assetlinks.json"
)

// HandleAllURLs is the Digital Asset Links relation for app links.
const HandleAllURLs = "delegate_permission/common.handle_all_urls"

// Site identifies the native apps allowed to open the domain's links.
type Site struct {
	AppleTeamID         string
	BundleID            string
	AndroidPackage      string
	AndroidFingerprints []string
}

// AppleAppID returns TEAMID.bundle.id, or "" when either half is missing.
func (s Site) AppleAppID() string {
	if s.AppleTeamID == "" || s.BundleID == "" {
		return ""
	}
	return s.AppleTeamID + "." + s.BundleID
}

// HasAndroid reports whether Android asset links can be generated.
func (s Site) HasAndroid() bool {
	return s.AndroidPackage != "" && len(s.AndroidFingerprints) > 0
}

// ============================================================================
// Apple
// ============================================================================

// AppleAppSiteAssociation is the apple-app-site-association document.
type AppleAppSiteAssociation struct {
	AppLinks AppLinks `json:"applinks"`
}

// AppLinks is the applinks section.
type AppLinks struct {
	Details []AppLinkDetail `json:"details"`
}

// AppLinkDetail lists the components one set of apps handles.
type AppLinkDetail struct {
	AppIDs     []string    `json:"appIDs"`
	Components []Component `json:"components"`
}

// Component is one URL path rule.
type Component struct {
	Path    string `json:"/"`
	Exclude bool   `json:"exclude,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// AASA builds the association document for entries. Captures become "*"
// wildcards; entries that reduce to the same path are listed once.
func AASA(entries []routes.Entry, site Site) (*AppleAppSiteAssociation, error) {
	appID := site.AppleAppID()
	if appID == "" {
		return nil, errors.New("DL303").WithDetail("serve.appleTeamID and serve.bundleID are required for apple-app-site-association")
	}

	seen := make(map[string]bool, len(entries))
	components := make([]Component, 0, len(entries))
	for _, e := range entries {
		p := ComponentPath(e.Pattern)
		if seen[p] {
			continue
		}
		seen[p] = true
		components = append(components, Component{Path: p, Comment: e.Label})
	}

	return &AppleAppSiteAssociation{
		AppLinks: AppLinks{
			Details: []AppLinkDetail{{AppIDs: []string{appID}, Components: components}},
		},
	}, nil
}

// ComponentPath converts a route pattern into an AASA path rule.
func ComponentPath(pattern string) string {
	segs := routepath.Segments(pattern)
	for i, s := range segs {
		if len(s) > 0 && s[0] == routes.CaptureMarker {
			segs[i] = "*"
		}
	}
	return routepath.Join(segs)
}

// ============================================================================
// Android
// ============================================================================

// AssetLink is one statement of assetlinks.json.
type AssetLink struct {
	Relation []string    `json:"relation"`
	Target   AssetTarget `json:"target"`
}

// AssetTarget identifies the Android app.
type AssetTarget struct {
	Namespace              string   `json:"namespace"`
	PackageName            string   `json:"package_name"`
	SHA256CertFingerprints []string `json:"sha256_cert_fingerprints"`
}

var fingerprintRegex = regexp.MustCompile(`^([0-9A-F]{2}:){31}[0-9A-F]{2}$`)

// AssetLinks builds the statement list for site. Fingerprints are
// upper-cased before validation.
func AssetLinks(site Site) ([]AssetLink, error) {
	if !site.HasAndroid() {
		return nil, errors.New("DL303").WithDetail("serve.androidPackage and serve.androidFingerprints are required for assetlinks.json")
	}

	prints := make([]string, 0, len(site.AndroidFingerprints))
	for _, fp := range site.AndroidFingerprints {
		fp = strings.ToUpper(strings.TrimSpace(fp))
		if !fingerprintRegex.MatchString(fp) {
			return nil, errors.New("DL303").WithDetailf("%q is not a SHA-256 certificate fingerprint", fp)
		}
		prints = append(prints, fp)
	}

	return []AssetLink{{
		Relation: []string{HandleAllURLs},
		Target: AssetTarget{
			Namespace:              "android_app",
			PackageName:            site.AndroidPackage,
			SHA256CertFingerprints: prints,
		},
	}}, nil
}

// ============================================================================
// Rendering
// ============================================================================

// File is a rendered well-known file.
type File struct {
	Path        string
	ContentType string
	Body        []byte
}

// Render produces every file site has enough information for. It returns
// no files, and no error, for a site with neither platform configured.
func Render(registry *routes.Registry, site Site) ([]File, error) {
	var files []File

	if site.AppleAppID() != "" {
		doc, err := AASA(registry.Entries(), site)
		if err != nil {
			return nil, err
		}
		body, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.New("DL501").Wrap(err)
		}
		files = append(files, File{Path: AASAPath, ContentType: "application/json", Body: body})
	}

	if site.HasAndroid() {
		links, err := AssetLinks(site)
		if err != nil {
			return nil, err
		}
		body, err := json.MarshalIndent(links, "", "  ")
		if err != nil {
			return nil, errors.New("DL501").Wrap(err)
		}
		files = append(files, File{Path: AssetLinksPath, ContentType: "application/json", Body: body})
	}

	return files, nil
}
