package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/deeplink/internal/errors"
	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/routepath"
	"github.com/vango-dev/deeplink/pkg/routes"
)

const (
	// JSONFileName is the name of the JSON configuration file.
	JSONFileName = "deeplink.json"

	// TOMLFileName is the name of the TOML configuration file.
	TOMLFileName = "deeplink.toml"

	// DefaultPort is the default dev server port.
	DefaultPort = 8787

	// DefaultHost is the default dev server host.
	DefaultHost = "localhost"

	// DefaultSettleDelay is how long a replay waits for the auth flow's own
	// navigation to finish.
	DefaultSettleDelay = deeplink.DefaultSettleDelay
)

// Positions for extra routes relative to the default table.
const (
	RoutesAppend  = "append"
	RoutesPrepend = "prepend"
)

// FileNames lists the configuration files Load looks for, in order.
var FileNames = []string{JSONFileName, TOMLFileName}

// Config is the deeplink.json / deeplink.toml configuration.
type Config struct {
	// Domain is the production universal-link domain.
	Domain string `json:"domain,omitempty" toml:"domain,omitempty"`

	// Scheme is the private app scheme, without "://".
	Scheme string `json:"scheme,omitempty" toml:"scheme,omitempty"`

	// DevSchemes are development tool schemes (exp, exps).
	DevSchemes []string `json:"devSchemes,omitempty" toml:"devSchemes,omitempty"`

	// DevHosts are extra hosts accepted for http(s) links.
	DevHosts []string `json:"devHosts,omitempty" toml:"devHosts,omitempty"`

	// FallbackPath is where unmatched links and failed navigations land.
	FallbackPath string `json:"fallbackPath,omitempty" toml:"fallbackPath,omitempty"`

	// AuthFlowPrefixes mark destinations navigated with replace.
	AuthFlowPrefixes []string `json:"authFlowPrefixes,omitempty" toml:"authFlowPrefixes,omitempty"`

	// DedupWindow is how long a raw URL counts as already handled. Must be
	// positive; leave it out for the default.
	DedupWindow Duration `json:"dedupWindow,omitempty" toml:"dedupWindow,omitempty"`

	// DedupCapacity bounds the replay protection log.
	DedupCapacity int `json:"dedupCapacity,omitempty" toml:"dedupCapacity,omitempty"`

	// DebounceWindow suppresses repeated navigation to the same path. Must
	// be positive; leave it out for the default.
	DebounceWindow Duration `json:"debounceWindow,omitempty" toml:"debounceWindow,omitempty"`

	// SettleDelay is the delay before a pending link is replayed. Zero
	// replays as soon as the session is established.
	SettleDelay Duration `json:"settleDelay" toml:"settleDelay"`

	// Routes are extra route entries.
	Routes []RouteConfig `json:"routes,omitempty" toml:"routes,omitempty"`

	// RoutesPosition places Routes before ("prepend") or after ("append")
	// the default table.
	RoutesPosition string `json:"routesPosition,omitempty" toml:"routesPosition,omitempty"`

	// Serve contains dev server configuration.
	Serve ServeConfig `json:"serve" toml:"serve"`

	// Publish contains well-known file publishing configuration.
	Publish PublishConfig `json:"publish" toml:"publish"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RouteConfig is one route entry in the configuration file.
//
// A route whose label names a built-in entry and that captures the same
// names, e.g. "/people/:username" labelled "profile", keeps that entry's
// parameter validation; its own paramsSchema must pass as well.
type RouteConfig struct {
	URLPattern   string            `json:"urlPattern" toml:"urlPattern"`
	RouterPath   string            `json:"routerPath" toml:"routerPath"`
	Auth         string            `json:"auth,omitempty" toml:"auth,omitempty"`
	ParamsSchema map[string]string `json:"paramsSchema,omitempty" toml:"paramsSchema,omitempty"`
	Query        []string          `json:"query,omitempty" toml:"query,omitempty"`
	Label        string            `json:"label,omitempty" toml:"label,omitempty"`
}

// ServeConfig contains dev server and well-known file settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" toml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" toml:"port,omitempty"`

	// AppleTeamID and BundleID form the iOS app ID (TEAMID.bundle.id).
	AppleTeamID string `json:"appleTeamID,omitempty" toml:"appleTeamID,omitempty"`
	BundleID    string `json:"bundleID,omitempty" toml:"bundleID,omitempty"`

	// AndroidPackage is the Android application ID.
	AndroidPackage string `json:"androidPackage,omitempty" toml:"androidPackage,omitempty"`

	// AndroidFingerprints are SHA-256 signing certificate fingerprints.
	AndroidFingerprints []string `json:"androidFingerprints,omitempty" toml:"androidFingerprints,omitempty"`
}

// PublishConfig contains S3 publishing settings.
type PublishConfig struct {
	// Bucket is the S3 bucket serving the domain's well-known files.
	Bucket string `json:"bucket,omitempty" toml:"bucket,omitempty"`

	// Region is the bucket's AWS region.
	Region string `json:"region,omitempty" toml:"region,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty" toml:"prefix,omitempty"`
}

// Duration is a time.Duration written as a string ("2s", "500ms") in
// configuration files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Domain:           deeplink.DefaultDomain,
		Scheme:           deeplink.DefaultScheme,
		DevSchemes:       append([]string(nil), deeplink.DefaultDevSchemes...),
		DevHosts:         append([]string(nil), deeplink.DefaultDevHosts...),
		FallbackPath:     routes.HomePath,
		AuthFlowPrefixes: []string{routes.AuthGroupPrefix},
		DedupWindow:      Duration(deeplink.DefaultDedupWindow),
		DedupCapacity:    deeplink.DefaultDedupCapacity,
		DebounceWindow:   Duration(deeplink.DefaultDebounceWindow),
		SettleDelay:      Duration(DefaultSettleDelay),
		RoutesPosition:   RoutesAppend,
		Serve: ServeConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for deeplink.json, then deeplink.toml.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("DL301").
		WithDetail("No deeplink.json or deeplink.toml found in " + dir)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .toml are decoded as TOML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("DL301").WithDetail("No config file at " + path)
		}
		return nil, errors.New("DL302").Wrap(err)
	}

	cfg := New()
	if err := cfg.decode(path, data); err != nil {
		return nil, errors.New("DL302").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file's syntax and that durations are strings such as \"2s\"")
	}

	cfg.configPath = path
	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

// Parse decodes configuration from data in the given format ("json" or
// "toml") without touching the filesystem.
func Parse(format string, data []byte) (*Config, error) {
	cfg := New()
	if err := cfg.decode("config."+strings.ToLower(format), data); err != nil {
		return nil, errors.New("DL302").WithDetail(err.Error())
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	if isTOML(path) {
		_, err := toml.Decode(string(data), c)
		return err
	}
	return json.Unmarshal(data, c)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path in the format its
// extension names.
func (c *Config) SaveTo(path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New("DL302").Wrap(err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("DL302").Wrap(err)
		}
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("DL302").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("DEEPLINK_DOMAIN"); v != "" {
		c.Domain = v
	}
	if v := os.Getenv("DEEPLINK_SCHEME"); v != "" {
		c.Scheme = v
	}
	if v := os.Getenv("DEEPLINK_HOST"); v != "" {
		c.Serve.Host = v
	}
	if v := os.Getenv("DEEPLINK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Serve.Port = port
		}
	}
	if v := os.Getenv("DEEPLINK_PUBLISH_BUCKET"); v != "" {
		c.Publish.Bucket = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" && c.Publish.Region == "" {
		c.Publish.Region = v
	}
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Domain == "" {
		c.Domain = deeplink.DefaultDomain
	}
	if c.Scheme == "" {
		c.Scheme = deeplink.DefaultScheme
	}
	if c.FallbackPath == "" {
		c.FallbackPath = routes.HomePath
	}
	if c.RoutesPosition == "" {
		c.RoutesPosition = RoutesAppend
	}

	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
}

var (
	schemeRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*$`)
	domainRegex = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)+$`)
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !domainRegex.MatchString(c.Domain) {
		return invalid("domain %q must be a bare host name such as movieclub.app", c.Domain)
	}
	if !schemeRegex.MatchString(c.Scheme) {
		return invalid("scheme %q must start with a letter and contain only letters, digits, '+', '-' or '.'", c.Scheme)
	}
	for _, s := range c.DevSchemes {
		if !schemeRegex.MatchString(s) {
			return invalid("dev scheme %q is not a valid scheme", s)
		}
	}
	if !strings.HasPrefix(c.FallbackPath, "/") {
		return invalid("fallbackPath %q must start with /", c.FallbackPath)
	}
	for _, p := range c.AuthFlowPrefixes {
		if !strings.HasPrefix(p, "/") {
			return invalid("auth flow prefix %q must start with /", p)
		}
	}
	if c.DedupWindow <= 0 {
		return invalid("dedupWindow must be positive, got %s", c.DedupWindow)
	}
	if c.DebounceWindow <= 0 {
		return invalid("debounceWindow must be positive, got %s", c.DebounceWindow)
	}
	if c.DedupCapacity <= 0 {
		return invalid("dedupCapacity must be positive, got %d", c.DedupCapacity)
	}
	if c.SettleDelay < 0 {
		return invalid("settleDelay must not be negative, got %s", c.SettleDelay)
	}
	if c.RoutesPosition != RoutesAppend && c.RoutesPosition != RoutesPrepend {
		return invalid("routesPosition %q must be %q or %q", c.RoutesPosition, RoutesAppend, RoutesPrepend)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return invalid("serve.port must be between 0 and 65535")
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New("DL303").WithDetailf(format, args...)
}

// Entry converts r into a route table entry.
func (r RouteConfig) Entry() (routes.Entry, error) {
	auth, err := routes.ParseAuth(r.Auth)
	if err != nil {
		return routes.Entry{}, invalid("route %q: %v", r.URLPattern, err)
	}
	e := routes.Entry{
		Pattern:    r.URLPattern,
		RouterPath: r.RouterPath,
		Auth:       auth,
		Query:      append([]string(nil), r.Query...),
		Label:      r.Label,
	}
	if e.Label == "" {
		e.Label = r.URLPattern
	}
	if len(r.ParamsSchema) > 0 {
		v, err := routes.Schema(r.ParamsSchema).Validator()
		if err != nil {
			return routes.Entry{}, err
		}
		e.Validate = v
	}
	return e, nil
}

// sameCaptures reports whether two patterns capture the same names.
func sameCaptures(a, b string) bool {
	names := func(p string) map[string]bool {
		m := make(map[string]bool)
		for _, seg := range routepath.Segments(p) {
			if len(seg) > 1 && seg[0] == routes.CaptureMarker {
				m[seg[1:]] = true
			}
		}
		return m
	}
	na, nb := names(a), names(b)
	if len(na) != len(nb) {
		return false
	}
	for n := range na {
		if !nb[n] {
			return false
		}
	}
	return true
}

// Entries returns the full route table: the default table with the
// configured routes placed per RoutesPosition.
func (c *Config) Entries() ([]routes.Entry, error) {
	builtin := routes.DefaultTable()
	byLabel := make(map[string]routes.Entry, len(builtin))
	for _, e := range builtin {
		if _, ok := byLabel[e.Label]; !ok && e.Validate != nil {
			byLabel[e.Label] = e
		}
	}

	extra := make([]routes.Entry, 0, len(c.Routes))
	for _, r := range c.Routes {
		e, err := r.Entry()
		if err != nil {
			return nil, err
		}
		if b, ok := byLabel[e.Label]; ok && sameCaptures(b.Pattern, e.Pattern) {
			e.Validate = routes.All(b.Validate, e.Validate)
		}
		extra = append(extra, e)
	}

	if c.RoutesPosition == RoutesPrepend {
		return append(extra, builtin...), nil
	}
	return append(builtin, extra...), nil
}

// Registry compiles the route table.
func (c *Config) Registry() (*routes.Registry, error) {
	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}
	return routes.NewRegistry(entries...)
}

// ParserConfig returns the parser settings.
func (c *Config) ParserConfig() deeplink.ParserConfig {
	return deeplink.ParserConfig{
		Domain:     c.Domain,
		Scheme:     c.Scheme,
		DevSchemes: append([]string(nil), c.DevSchemes...),
		DevHosts:   append([]string(nil), c.DevHosts...),
	}
}

// StateConfig returns the router state sizing.
func (c *Config) StateConfig() deeplink.StateConfig {
	return deeplink.StateConfig{
		DedupWindow:    c.DedupWindow.Duration(),
		DedupCapacity:  c.DedupCapacity,
		DebounceWindow: c.DebounceWindow.Duration(),
	}
}

// EngineOptions returns the engine options the configuration controls.
func (c *Config) EngineOptions() []deeplink.Option {
	return []deeplink.Option{
		deeplink.WithFallbackPath(c.FallbackPath),
		deeplink.WithAuthFlowPrefixes(c.AuthFlowPrefixes...),
		deeplink.WithSettleDelay(c.SettleDelay.Duration()),
	}
}

// ServeAddress returns the address string for the dev server.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// ServeURL returns the full URL for the dev server.
func (c *Config) ServeURL() string {
	return "http://" + c.ServeAddress()
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("DL301").
				WithDetail("No deeplink.json or deeplink.toml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
