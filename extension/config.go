package extension

// Config holds the ability extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.ability" or "ability" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for ability routes (default: "/ability").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// LogDecisions controls decision-log writes. Nil means enabled.
	LogDecisions *bool `json:"log_decisions" mapstructure:"log_decisions" yaml:"log_decisions"`

	// LogDenialsOnly restricts decision logging to denials.
	LogDenialsOnly *bool `json:"log_denials_only" mapstructure:"log_denials_only" yaml:"log_denials_only"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the appropriate store based on the driver type (pg/sqlite/mongo).
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
