// Package plugin provides an extensible plugin system for Rally.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalPosted is called after a balanced transaction is durably stored.
type OnJournalPosted interface {
	Plugin
	OnJournalPosted(ctx context.Context, txn interface{}) error
}

// OnJournalRejected is called when a transaction fails balance validation.
type OnJournalRejected interface {
	Plugin
	OnJournalRejected(ctx context.Context, txn interface{}, reason string) error
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnItemCreated is called when a new inventory item is registered.
type OnItemCreated interface {
	Plugin
	OnItemCreated(ctx context.Context, item interface{}) error
}

// OnRestocked is called after a restock is applied to an item.
type OnRestocked interface {
	Plugin
	OnRestocked(ctx context.Context, item interface{}, record interface{}) error
}

// OnStockConsumed is called after stock is consumed from an item.
type OnStockConsumed interface {
	Plugin
	OnStockConsumed(ctx context.Context, item interface{}, qty int64, cost interface{}) error
}

// OnInsufficientStock is called when a consumption request exceeds available
// stock. Useful for low-stock alerting.
type OnInsufficientStock interface {
	Plugin
	OnInsufficientStock(ctx context.Context, itemName string, requested, available int64) error
}

// ──────────────────────────────────────────────────
// Costing hooks
// ──────────────────────────────────────────────────

// OnSessionClosed is called after a session's finances close. The txn
// argument is nil when the session produced no costs.
type OnSessionClosed interface {
	Plugin
	OnSessionClosed(ctx context.Context, session interface{}, txn interface{}) error
}

// OnBookingRecorded is called after a booking revenue journal is posted.
type OnBookingRecorded interface {
	Plugin
	OnBookingRecorded(ctx context.Context, txn interface{}) error
}

// ──────────────────────────────────────────────────
// Report formatters
// ──────────────────────────────────────────────────

// ReportFormatter renders posted transactions for export.
type ReportFormatter interface {
	Plugin
	Format() string                                                    // "csv", "html", etc.
	Render(ctx context.Context, txns []interface{}, w interface{}) error // w is io.Writer
}
