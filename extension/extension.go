// Package extension provides the Forge extension adapter for Rally.
//
// It implements the forge.Extension interface to integrate Rally
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.rally" or "rally" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	rally "github.com/xraph/rally"
	"github.com/xraph/rally/store"
	"github.com/xraph/rally/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "rally"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Embedded accounting and inventory costing engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Rally as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *rally.Engine
	store      store.Store
	engineOpts []rally.Option
}

// New creates a new Rally Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Rally instance.
// This is nil until Register is called.
func (e *Extension) Engine() *rally.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the rally engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := rally.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*rally.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("rally: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("rally: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs rally.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []rally.Option {
	opts := make([]rally.Option, 0, len(e.engineOpts)+4)

	if e.config.Currency != "" {
		opts = append(opts, rally.WithCurrency(e.config.Currency))
	}
	if e.config.BalanceTolerance > 0 {
		opts = append(opts, rally.WithBalanceTolerance(e.config.BalanceTolerance))
	}
	if e.config.CallTimeout > 0 {
		opts = append(opts, rally.WithCallTimeout(e.config.CallTimeout))
	}
	if e.config.CASRetries > 0 {
		opts = append(opts, rally.WithCASRetries(e.config.CASRetries))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("rally: configuration is required but not found in config files; " +
				"ensure 'extensions.rally' or 'rally' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("rally: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("currency", e.config.Currency),
		forge.F("balance_tolerance", e.config.BalanceTolerance),
		forge.F("call_timeout", e.config.CallTimeout),
		forge.F("cas_retries", e.config.CASRetries),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.rally" first (namespaced pattern).
	if cm.IsSet("extensions.rally") {
		if err := cm.Bind("extensions.rally", &cfg); err == nil {
			e.Logger().Debug("rally: loaded config from file",
				forge.F("key", "extensions.rally"),
			)
			return cfg, true
		}
		e.Logger().Warn("rally: failed to bind extensions.rally config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "rally" key.
	if cm.IsSet("rally") {
		if err := cm.Bind("rally", &cfg); err == nil {
			e.Logger().Debug("rally: loaded config from file",
				forge.F("key", "rally"),
			)
			return cfg, true
		}
		e.Logger().Warn("rally: failed to bind rally config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.BalanceTolerance == 0 {
		cfg.BalanceTolerance = defaults.BalanceTolerance
	}
	if cfg.CASRetries == 0 {
		cfg.CASRetries = defaults.CASRetries
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Currency == "" && programmaticConfig.Currency != "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.BalanceTolerance == 0 && programmaticConfig.BalanceTolerance != 0 {
		yamlConfig.BalanceTolerance = programmaticConfig.BalanceTolerance
	}
	if yamlConfig.CallTimeout == 0 && programmaticConfig.CallTimeout != 0 {
		yamlConfig.CallTimeout = programmaticConfig.CallTimeout
	}
	if yamlConfig.CASRetries == 0 && programmaticConfig.CASRetries != 0 {
		yamlConfig.CASRetries = programmaticConfig.CASRetries
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
