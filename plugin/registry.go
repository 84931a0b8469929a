package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onJournalPosted     []OnJournalPosted
	onJournalRejected   []OnJournalRejected
	onItemCreated       []OnItemCreated
	onRestocked         []OnRestocked
	onStockConsumed     []OnStockConsumed
	onInsufficientStock []OnInsufficientStock
	onSessionClosed     []OnSessionClosed
	onBookingRecorded   []OnBookingRecorded
	reportFormatters    map[string]ReportFormatter
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:           slog.Default(),
		reportFormatters: make(map[string]ReportFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnJournalPosted); ok {
		r.onJournalPosted = append(r.onJournalPosted, v)
	}
	if v, ok := p.(OnJournalRejected); ok {
		r.onJournalRejected = append(r.onJournalRejected, v)
	}
	if v, ok := p.(OnItemCreated); ok {
		r.onItemCreated = append(r.onItemCreated, v)
	}
	if v, ok := p.(OnRestocked); ok {
		r.onRestocked = append(r.onRestocked, v)
	}
	if v, ok := p.(OnStockConsumed); ok {
		r.onStockConsumed = append(r.onStockConsumed, v)
	}
	if v, ok := p.(OnInsufficientStock); ok {
		r.onInsufficientStock = append(r.onInsufficientStock, v)
	}
	if v, ok := p.(OnSessionClosed); ok {
		r.onSessionClosed = append(r.onSessionClosed, v)
	}
	if v, ok := p.(OnBookingRecorded); ok {
		r.onBookingRecorded = append(r.onBookingRecorded, v)
	}
	if v, ok := p.(ReportFormatter); ok {
		r.reportFormatters[v.Format()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnJournalPosted)(nil)).Elem(), "OnJournalPosted")
	checkInterface(reflect.TypeOf((*OnJournalRejected)(nil)).Elem(), "OnJournalRejected")
	checkInterface(reflect.TypeOf((*OnItemCreated)(nil)).Elem(), "OnItemCreated")
	checkInterface(reflect.TypeOf((*OnRestocked)(nil)).Elem(), "OnRestocked")
	checkInterface(reflect.TypeOf((*OnStockConsumed)(nil)).Elem(), "OnStockConsumed")
	checkInterface(reflect.TypeOf((*OnInsufficientStock)(nil)).Elem(), "OnInsufficientStock")
	checkInterface(reflect.TypeOf((*OnSessionClosed)(nil)).Elem(), "OnSessionClosed")
	checkInterface(reflect.TypeOf((*OnBookingRecorded)(nil)).Elem(), "OnBookingRecorded")
	checkInterface(reflect.TypeOf((*ReportFormatter)(nil)).Elem(), "ReportFormatter")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// GetReportFormatter returns a report formatter by format name.
func (r *Registry) GetReportFormatter(format string) ReportFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reportFormatters[format]
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitJournalPosted emits a journal posted event.
func (r *Registry) EmitJournalPosted(ctx context.Context, txn interface{}) {
	r.mu.RLock()
	plugins := r.onJournalPosted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnJournalPosted(ctx, txn)
		}); err != nil {
			r.logger.Warn("plugin OnJournalPosted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitJournalRejected emits a journal rejected event.
func (r *Registry) EmitJournalRejected(ctx context.Context, txn interface{}, reason string) {
	r.mu.RLock()
	plugins := r.onJournalRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnJournalRejected(ctx, txn, reason)
		}); err != nil {
			r.logger.Warn("plugin OnJournalRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitItemCreated emits an item created event.
func (r *Registry) EmitItemCreated(ctx context.Context, item interface{}) {
	r.mu.RLock()
	plugins := r.onItemCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnItemCreated(ctx, item)
		}); err != nil {
			r.logger.Warn("plugin OnItemCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRestocked emits a restocked event.
func (r *Registry) EmitRestocked(ctx context.Context, item interface{}, record interface{}) {
	r.mu.RLock()
	plugins := r.onRestocked
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRestocked(ctx, item, record)
		}); err != nil {
			r.logger.Warn("plugin OnRestocked failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitStockConsumed emits a stock consumed event.
func (r *Registry) EmitStockConsumed(ctx context.Context, item interface{}, qty int64, cost interface{}) {
	r.mu.RLock()
	plugins := r.onStockConsumed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStockConsumed(ctx, item, qty, cost)
		}); err != nil {
			r.logger.Warn("plugin OnStockConsumed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInsufficientStock emits an insufficient stock event.
func (r *Registry) EmitInsufficientStock(ctx context.Context, itemName string, requested, available int64) {
	r.mu.RLock()
	plugins := r.onInsufficientStock
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInsufficientStock(ctx, itemName, requested, available)
		}); err != nil {
			r.logger.Warn("plugin OnInsufficientStock failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionClosed emits a session closed event.
func (r *Registry) EmitSessionClosed(ctx context.Context, session interface{}, txn interface{}) {
	r.mu.RLock()
	plugins := r.onSessionClosed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionClosed(ctx, session, txn)
		}); err != nil {
			r.logger.Warn("plugin OnSessionClosed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBookingRecorded emits a booking recorded event.
func (r *Registry) EmitBookingRecorded(ctx context.Context, txn interface{}) {
	r.mu.RLock()
	plugins := r.onBookingRecorded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBookingRecorded(ctx, txn)
		}); err != nil {
			r.logger.Warn("plugin OnBookingRecorded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the costing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
