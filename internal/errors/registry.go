package errors

import "slices"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The config file could not be parsed as TOML.",
	},
	"R002": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "The log level must name a slog level.",
	},
	"R003": {
		Category: CategoryConfig,
		Message:  "Invalid server address",
		Detail:   "The server address must be a host:port pair accepted by net.Listen.",
	},
	"R004": {
		Category: CategoryConfig,
		Message:  "Invalid tick interval",
		Detail:   "The demo tick interval must be a positive duration such as \"1s\" or \"250ms\".",
	},
	"R005": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "A RIPPLE_* environment variable could not be parsed into its config field.",
	},
	"R006": {
		Category: CategoryConfig,
		Message:  "Invalid metrics namespace",
		Detail:   "Metric namespaces may only contain letters, digits and underscores, and must not start with a digit.",
	},
	"R007": {
		Category: CategoryConfig,
		Message:  "Config file not readable",
		Detail:   "The config file exists but could not be read.",
	},

	// ============================================
	// CLI Errors (R020-R039)
	// ============================================

	"R020": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"R021": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command-line flag has a value the command cannot use.",
	},

	// ============================================
	// Runtime Errors (R040-R059)
	// ============================================

	"R040": {
		Category: CategoryRuntime,
		Message:  "Unsupported mutation",
		Detail:   "An array operation was applied to a node that does not hold an array.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
