package ability

// Config holds configuration for the ability engine.
type Config struct {
	// LogDecisions records every check outcome in the decision log.
	// Defaults to true.
	LogDecisions *bool `json:"log_decisions,omitempty"`

	// LogDenialsOnly restricts decision logging to denied checks.
	// Defaults to false. Ignored when LogDecisions is false.
	LogDenialsOnly *bool `json:"log_denials_only,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	f := false
	return Config{
		LogDecisions:   &t,
		LogDenialsOnly: &f,
	}
}

func (c Config) logDecisions() bool   { return c.LogDecisions == nil || *c.LogDecisions }
func (c Config) logDenialsOnly() bool { return c.LogDenialsOnly != nil && *c.LogDenialsOnly }
