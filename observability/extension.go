// Package observability provides a metrics extension for Rally that records
// lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnJournalPosted     = (*MetricsExtension)(nil)
	_ plugin.OnJournalRejected   = (*MetricsExtension)(nil)
	_ plugin.OnItemCreated       = (*MetricsExtension)(nil)
	_ plugin.OnRestocked         = (*MetricsExtension)(nil)
	_ plugin.OnStockConsumed     = (*MetricsExtension)(nil)
	_ plugin.OnInsufficientStock = (*MetricsExtension)(nil)
	_ plugin.OnSessionClosed     = (*MetricsExtension)(nil)
	_ plugin.OnBookingRecorded   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Rally plugin to automatically track costing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Journal metrics
	JournalPosted   Counter
	JournalRejected Counter
	JournalTotal    Histogram

	// Inventory metrics
	ItemsCreated      Counter
	Restocks          Counter
	Consumptions      Counter
	InsufficientStock Counter
	RestockQty        Histogram
	ConsumptionQty    Histogram

	// Costing metrics
	SessionsClosed   Counter
	BookingsRecorded Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Journal metrics
		JournalPosted:   factory.Counter("rally.journal.posted"),
		JournalRejected: factory.Counter("rally.journal.rejected"),
		JournalTotal:    factory.Histogram("rally.journal.total_amount"),

		// Inventory metrics
		ItemsCreated:      factory.Counter("rally.inventory.items.created"),
		Restocks:          factory.Counter("rally.inventory.restocks"),
		Consumptions:      factory.Counter("rally.inventory.consumptions"),
		InsufficientStock: factory.Counter("rally.inventory.insufficient_stock"),
		RestockQty:        factory.Histogram("rally.inventory.restock.qty"),
		ConsumptionQty:    factory.Histogram("rally.inventory.consumption.qty"),

		// Costing metrics
		SessionsClosed:   factory.Counter("rally.session.closed"),
		BookingsRecorded: factory.Counter("rally.booking.recorded"),

		// Error metrics
		StoreErrors:  factory.Counter("rally.store.errors"),
		PluginErrors: factory.Counter("rally.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalPosted implements plugin.OnJournalPosted.
func (m *MetricsExtension) OnJournalPosted(_ context.Context, txn interface{}) error {
	m.JournalPosted.Inc()
	if t, ok := txn.(*journal.Transaction); ok {
		m.JournalTotal.Observe(float64(t.TotalAmount.Amount))
	}
	return nil
}

// OnJournalRejected implements plugin.OnJournalRejected.
func (m *MetricsExtension) OnJournalRejected(_ context.Context, _ interface{}, _ string) error {
	m.JournalRejected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnItemCreated implements plugin.OnItemCreated.
func (m *MetricsExtension) OnItemCreated(_ context.Context, _ interface{}) error {
	m.ItemsCreated.Inc()
	return nil
}

// OnRestocked implements plugin.OnRestocked.
func (m *MetricsExtension) OnRestocked(_ context.Context, _ interface{}, record interface{}) error {
	m.Restocks.Inc()
	if r, ok := record.(inventory.RestockRecord); ok {
		m.RestockQty.Observe(float64(r.Qty))
	}
	return nil
}

// OnStockConsumed implements plugin.OnStockConsumed.
func (m *MetricsExtension) OnStockConsumed(_ context.Context, _ interface{}, qty int64, _ interface{}) error {
	m.Consumptions.Inc()
	m.ConsumptionQty.Observe(float64(qty))
	return nil
}

// OnInsufficientStock implements plugin.OnInsufficientStock.
func (m *MetricsExtension) OnInsufficientStock(_ context.Context, _ string, _, _ int64) error {
	m.InsufficientStock.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Costing hooks
// ──────────────────────────────────────────────────

// OnSessionClosed implements plugin.OnSessionClosed.
func (m *MetricsExtension) OnSessionClosed(_ context.Context, _ interface{}, _ interface{}) error {
	m.SessionsClosed.Inc()
	return nil
}

// OnBookingRecorded implements plugin.OnBookingRecorded.
func (m *MetricsExtension) OnBookingRecorded(_ context.Context, _ interface{}) error {
	m.BookingsRecorded.Inc()
	return nil
}
