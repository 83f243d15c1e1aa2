package deeplink

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/routepath"
	"github.com/vango-dev/deeplink/pkg/routes"
)

// Defaults for ParserConfig.
const (
	DefaultDomain = "movieclub.app"
	DefaultScheme = "movieclub"

	// devPathMarker separates the dev server address from the app path in
	// development tool URIs: exp://192.168.1.5:8081/--/u/mikevocalz.
	devPathMarker = "/--/"
)

// DefaultDevSchemes are the development tool schemes accepted by default.
var DefaultDevSchemes = []string{"exp", "exps"}

// DefaultDevHosts are the local hosts accepted for http(s) links by default.
// 10.0.2.2 is the Android emulator's alias for the host machine.
var DefaultDevHosts = []string{"localhost", "127.0.0.1", "10.0.2.2"}

// ParserConfig configures which URI forms a Parser accepts.
type ParserConfig struct {
	// Domain is the production domain for universal links. Its "www."
	// alias is accepted as well.
	Domain string

	// Scheme is the private app scheme, without "://".
	Scheme string

	// DevSchemes are development tool schemes that embed the app path
	// after a "/--/" marker.
	DevSchemes []string

	// DevHosts are extra hosts accepted for http and https links.
	DevHosts []string
}

// DefaultParserConfig returns the production defaults.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Domain:     DefaultDomain,
		Scheme:     DefaultScheme,
		DevSchemes: append([]string(nil), DefaultDevSchemes...),
		DevHosts:   append([]string(nil), DefaultDevHosts...),
	}
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithParserConfig replaces the accepted URI forms.
func WithParserConfig(cfg ParserConfig) ParserOption {
	return func(p *Parser) {
		p.config = cfg
	}
}

// WithParserLogger sets the logger used for parse diagnostics.
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithParserClock sets the clock that stamps ParsedLink.Timestamp.
func WithParserClock(c Clock) ParserOption {
	return func(p *Parser) {
		p.clock = c
	}
}

// Parser normalizes incoming URIs and matches them against a registry.
// It is safe for concurrent use.
type Parser struct {
	registry *routes.Registry
	config   ParserConfig
	logger   *slog.Logger
	clock    Clock

	scheme     string
	devSchemes map[string]bool
	hosts      map[string]bool
}

// NewParser creates a parser over registry.
func NewParser(registry *routes.Registry, opts ...ParserOption) *Parser {
	p := &Parser{
		registry: registry,
		config:   DefaultParserConfig(),
		logger:   slog.Default(),
		clock:    SystemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}

	p.scheme = strings.ToLower(p.config.Scheme)
	p.devSchemes = make(map[string]bool, len(p.config.DevSchemes))
	for _, s := range p.config.DevSchemes {
		p.devSchemes[strings.ToLower(s)] = true
	}
	p.hosts = make(map[string]bool, len(p.config.DevHosts)+2)
	if d := strings.ToLower(p.config.Domain); d != "" {
		p.hosts[d] = true
		p.hosts["www."+d] = true
	}
	for _, h := range p.config.DevHosts {
		p.hosts[strings.ToLower(h)] = true
	}
	return p
}

// Registry returns the route registry the parser matches against.
func (p *Parser) Registry() *routes.Registry {
	return p.registry
}

// Config returns the parser's configuration.
func (p *Parser) Config() ParserConfig {
	return p.config
}

// ParseIncomingURL parses raw and returns nil if it is not a navigable link.
// It never panics; every rejection is logged.
func (p *Parser) ParseIncomingURL(raw string) *ParsedLink {
	link, err := p.Parse(raw)
	if err != nil {
		level := slog.LevelDebug
		switch errors.Code(err) {
		case "DL102":
			level = slog.LevelWarn
		case "DL105":
			level = slog.LevelError
		}
		p.logger.Log(context.Background(), level, "deep link rejected",
			"url", raw,
			"code", errors.Code(err),
			"error", err,
		)
		return nil
	}
	return link
}

// Parse is like ParseIncomingURL but reports why a link was rejected.
// Errors carry codes DL101 through DL105.
func (p *Parser) Parse(raw string) (link *ParsedLink, err error) {
	defer func() {
		if r := recover(); r != nil {
			link = nil
			err = errors.New("DL105").WithDetail(fmt.Sprint(r))
		}
	}()

	rawPath, rawQuery, err := p.split(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}

	path, err := routepath.Canonicalize(rawPath)
	if err != nil {
		return nil, errors.New("DL104").WithDetailf("%q", rawPath).Wrap(err)
	}
	if routepath.IsRoot(path) {
		return nil, errors.New("DL103")
	}

	params := parseQuery(rawQuery)
	link = &ParsedLink{
		ID:           uuid.New(),
		OriginalURL:  raw,
		Path:         path,
		RouterPath:   path,
		RequiresAuth: true,
		Timestamp:    p.clock.Now(),
	}

	if m, ok := p.registry.Match(path); ok {
		for k, v := range m.Params {
			params[k] = v
		}
		link.RequiresAuth = !m.Entry.IsPublic()
		link.RouterPath = routes.BuildRouterPath(m.Entry.RouterPath, params)
		link.Label = m.Entry.Label
	}
	link.Params = copyParams(params)
	return link, nil
}

// split extracts the raw path and raw query from any accepted form.
func (p *Parser) split(s string) (path, query string, err error) {
	scheme, rest, ok := cutScheme(s)
	if !ok {
		path, query = routepath.SplitPathAndQuery(s)
		return path, query, nil
	}

	switch {
	case scheme == p.scheme:
		// The authority slot is the first path segment: movieclub://p/abc.
		path, query = routepath.SplitPathAndQuery(rest)
		return path, query, nil

	case scheme == "https" || scheme == "http":
		hostPart, query := routepath.SplitPathAndQuery(rest)
		host, path, _ := strings.Cut(hostPart, "/")
		if !p.allowedHost(host) {
			return "", "", errors.New("DL102").WithDetailf("%q", host)
		}
		return "/" + path, query, nil

	case p.devSchemes[scheme]:
		all, query := routepath.SplitPathAndQuery(rest)
		_, path, found := strings.Cut(all, devPathMarker)
		if !found {
			return "", "", errors.New("DL103").WithDetail("dev URI has no /--/ marker")
		}
		return path, query, nil
	}

	return "", "", errors.New("DL101").WithDetailf("%q", scheme)
}

// allowedHost reports whether a URL authority names an accepted host.
// Userinfo is never accepted; ports are ignored.
func (p *Parser) allowedHost(authority string) bool {
	if authority == "" || strings.Contains(authority, "@") {
		return false
	}
	host := authority
	if h, _, err := net.SplitHostPort(authority); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return p.hosts[host]
}

// cutScheme splits "scheme://rest". It reports false when s has no scheme,
// including strings whose "://" appears after a path separator.
func cutScheme(s string) (scheme, rest string, ok bool) {
	i := strings.Index(s, "://")
	if i <= 0 {
		return "", "", false
	}
	scheme = s[:i]
	for j := 0; j < len(scheme); j++ {
		c := scheme[j]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return "", "", false
		}
	}
	return strings.ToLower(scheme), s[i+3:], true
}
