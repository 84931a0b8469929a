package audithook

// Action constants for audit events.
const (
	// Journal actions
	ActionJournalPosted   = "journal.posted"
	ActionJournalRejected = "journal.rejected"

	// Inventory actions
	ActionItemCreated       = "inventory.item_created"
	ActionRestocked         = "inventory.restocked"
	ActionStockConsumed     = "inventory.consumed"
	ActionInsufficientStock = "inventory.insufficient_stock"

	// Costing actions
	ActionSessionClosed   = "session.closed"
	ActionBookingRecorded = "booking.recorded"
)

// Resource constants for audit events.
const (
	ResourceJournal = "journal"
	ResourceItem    = "inventory_item"
	ResourceSession = "session"
	ResourceBooking = "booking"
)

// Category constants for audit events.
const (
	CategoryAccounting = "accounting"
	CategoryInventory  = "inventory"
	CategoryCosting    = "costing"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
