package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Parse Errors (DL100-DL199)
	// ============================================

	"DL101": {
		Category:   CategoryParse,
		Message:    "Unsupported URL scheme",
		Suggestion: "Use the app scheme, an https universal link, or a bare path",
	},
	"DL102": {
		Category:   CategoryParse,
		Message:    "Host is not allowed",
		Suggestion: "Only the production domain, its www alias, and configured dev hosts are accepted",
	},
	"DL103": {
		Category: CategoryParse,
		Message:  "Link has no navigable path",
	},
	"DL104": {
		Category: CategoryParse,
		Message:  "Invalid link path",
	},
	"DL105": {
		Category: CategoryParse,
		Message:  "Link parser panicked",
	},

	// ============================================
	// Route Table Errors (DL200-DL299)
	// ============================================

	"DL201": {
		Category:   CategoryRoute,
		Message:    "Invalid route pattern",
		Suggestion: "Patterns are /-separated segments; captures look like :name",
	},
	"DL202": {
		Category: CategoryRoute,
		Message:  "Duplicate capture name in route pattern",
	},
	"DL203": {
		Category:   CategoryRoute,
		Message:    "Router path references an unknown capture",
		Suggestion: "Every :name in routerPath must also appear in urlPattern",
	},
	"DL204": {
		Category:   CategoryRoute,
		Message:    "Unknown parameter schema type",
		Suggestion: "Supported types: string, int, uint, uuid, id, username, slug",
	},

	// ============================================
	// Config Errors (DL300-DL399)
	// ============================================

	"DL301": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create deeplink.json or deeplink.toml, or pass --config",
	},
	"DL302": {
		Category: CategoryConfig,
		Message:  "Failed to parse configuration",
	},
	"DL303": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// Navigation / Share Errors (DL400-DL499)
	// ============================================

	"DL401": {
		Category: CategoryShare,
		Message:  "Share target has an empty identifier",
	},
	"DL402": {
		Category: CategoryNavigate,
		Message:  "Navigator call failed",
	},
	"DL403": {
		Category: CategoryShare,
		Message:  "Share sheet failed",
	},

	// ============================================
	// Publish Errors (DL500-DL599)
	// ============================================

	"DL501": {
		Category:   CategoryPublish,
		Message:    "Failed to upload well-known file",
		Suggestion: "Check the bucket name, region and AWS credentials",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
