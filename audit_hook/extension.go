// Package audithook bridges Rally lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/rally/event"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnJournalPosted     = (*Extension)(nil)
	_ plugin.OnJournalRejected   = (*Extension)(nil)
	_ plugin.OnItemCreated       = (*Extension)(nil)
	_ plugin.OnRestocked         = (*Extension)(nil)
	_ plugin.OnStockConsumed     = (*Extension)(nil)
	_ plugin.OnInsufficientStock = (*Extension)(nil)
	_ plugin.OnSessionClosed     = (*Extension)(nil)
	_ plugin.OnBookingRecorded   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Rally lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalPosted implements plugin.OnJournalPosted.
func (e *Extension) OnJournalPosted(ctx context.Context, txn interface{}) error {
	var resourceID, refID string
	if t, ok := txn.(*journal.Transaction); ok {
		resourceID = t.ID.String()
		refID = t.RefID
	}
	return e.record(ctx, ActionJournalPosted, SeverityInfo, OutcomeSuccess,
		ResourceJournal, resourceID, CategoryAccounting, nil,
		"ref_id", refID,
	)
}

// OnJournalRejected implements plugin.OnJournalRejected.
func (e *Extension) OnJournalRejected(ctx context.Context, txn interface{}, reason string) error {
	var refID string
	if t, ok := txn.(*journal.Transaction); ok {
		refID = t.RefID
	}
	return e.record(ctx, ActionJournalRejected, SeverityWarning, OutcomeFailure,
		ResourceJournal, "", CategoryAccounting, nil,
		"ref_id", refID,
		"reject_reason", reason,
	)
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnItemCreated implements plugin.OnItemCreated.
func (e *Extension) OnItemCreated(ctx context.Context, item interface{}) error {
	var resourceID, sku string
	if i, ok := item.(*inventory.Item); ok {
		resourceID = i.ID.String()
		sku = i.SKU
	}
	return e.record(ctx, ActionItemCreated, SeverityInfo, OutcomeSuccess,
		ResourceItem, resourceID, CategoryInventory, nil,
		"sku", sku,
	)
}

// OnRestocked implements plugin.OnRestocked.
func (e *Extension) OnRestocked(ctx context.Context, item interface{}, record interface{}) error {
	var resourceID string
	var stock int64
	if i, ok := item.(*inventory.Item); ok {
		resourceID = i.ID.String()
		stock = i.Stock
	}
	var qty int64
	if r, ok := record.(inventory.RestockRecord); ok {
		qty = r.Qty
	}
	return e.record(ctx, ActionRestocked, SeverityInfo, OutcomeSuccess,
		ResourceItem, resourceID, CategoryInventory, nil,
		"qty", qty,
		"new_stock", stock,
	)
}

// OnStockConsumed implements plugin.OnStockConsumed.
func (e *Extension) OnStockConsumed(ctx context.Context, item interface{}, qty int64, _ interface{}) error {
	var resourceID string
	var remaining int64
	if i, ok := item.(*inventory.Item); ok {
		resourceID = i.ID.String()
		remaining = i.Stock
	}
	return e.record(ctx, ActionStockConsumed, SeverityInfo, OutcomeSuccess,
		ResourceItem, resourceID, CategoryInventory, nil,
		"qty", qty,
		"remaining", remaining,
	)
}

// OnInsufficientStock implements plugin.OnInsufficientStock.
func (e *Extension) OnInsufficientStock(ctx context.Context, itemName string, requested, available int64) error {
	return e.record(ctx, ActionInsufficientStock, SeverityWarning, OutcomeFailure,
		ResourceItem, "", CategoryInventory, nil,
		"item", itemName,
		"requested", requested,
		"available", available,
	)
}

// ──────────────────────────────────────────────────
// Costing hooks
// ──────────────────────────────────────────────────

// OnSessionClosed implements plugin.OnSessionClosed.
func (e *Extension) OnSessionClosed(ctx context.Context, session interface{}, txn interface{}) error {
	var resourceID, name string
	if s, ok := session.(*event.Session); ok {
		resourceID = s.ID.String()
		name = s.Name
	}
	var journalID string
	if t, ok := txn.(*journal.Transaction); ok && t != nil {
		journalID = t.ID.String()
	}
	return e.record(ctx, ActionSessionClosed, SeverityInfo, OutcomeSuccess,
		ResourceSession, resourceID, CategoryCosting, nil,
		"session", name,
		"journal_id", journalID,
	)
}

// OnBookingRecorded implements plugin.OnBookingRecorded.
func (e *Extension) OnBookingRecorded(ctx context.Context, txn interface{}) error {
	var journalID, bookingCode string
	if t, ok := txn.(*journal.Transaction); ok {
		journalID = t.ID.String()
		bookingCode = t.RefID
	}
	return e.record(ctx, ActionBookingRecorded, SeverityInfo, OutcomeSuccess,
		ResourceBooking, bookingCode, CategoryCosting, nil,
		"journal_id", journalID,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
