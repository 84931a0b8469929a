package extension

import "time"

// Config holds the Rally extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.rally" or "rally" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Currency is the ISO currency code journals are denominated in
	// (default: "idr"). All amounts are integer minor units.
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// BalanceTolerance is the maximum allowed absolute difference, in minor
	// units, between total debits and total credits of a journal entry
	// (default: 1).
	BalanceTolerance int64 `json:"balance_tolerance" mapstructure:"balance_tolerance" yaml:"balance_tolerance"`

	// CallTimeout bounds each individual store call. Zero disables the
	// per-call deadline and relies on the caller's context.
	CallTimeout time.Duration `json:"call_timeout" mapstructure:"call_timeout" yaml:"call_timeout"`

	// CASRetries is how many times an inventory mutation is retried after
	// losing an optimistic-concurrency race (default: 5).
	CASRetries int `json:"cas_retries" mapstructure:"cas_retries" yaml:"cas_retries"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Currency:         "idr",
		BalanceTolerance: 1,
		CASRetries:       5,
	}
}
