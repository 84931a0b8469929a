package extension

import (
	"time"

	rally "github.com/xraph/rally"
	"github.com/xraph/rally/plugin"
	"github.com/xraph/rally/store"
)

// Option configures the Rally Forge extension.
type Option func(*Extension)

// WithStore sets the store for the rally engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a rally.Option through to the underlying engine.
func WithEngineOption(opt rally.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a rally plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, rally.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithCurrency sets the ISO currency code journals are denominated in.
func WithCurrency(code string) Option {
	return func(e *Extension) { e.config.Currency = code }
}

// WithBalanceTolerance sets the maximum debit/credit imbalance, in minor
// units, a journal entry may carry.
func WithBalanceTolerance(t int64) Option {
	return func(e *Extension) { e.config.BalanceTolerance = t }
}

// WithCallTimeout bounds each individual store call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.CallTimeout = d }
}

// WithCASRetries sets how many times inventory mutations retry after losing
// an optimistic-concurrency race.
func WithCASRetries(n int) Option {
	return func(e *Extension) { e.config.CASRetries = n }
}
