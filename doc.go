// Package rally provides an embeddable double-entry accounting and
// inventory-costing engine for Go applications.
//
// Rally is designed as a library, not a service. Import it directly into your
// Go application; the host owns HTTP handlers, authentication and reporting.
// It provides:
//
//   - A balanced journal engine: every transaction's debits and credits must
//     agree before it is stored, and stored transactions are immutable
//   - Weighted-average inventory costing with landed costs (purchase price
//     plus shipping blended into the moving average)
//   - Session cost closing: shuttlecocks, court rental and coach fees realized
//     as cost of goods sold in one journal
//   - Booking revenue journals with per-transaction gateway and platform fees
//   - Pluggable storage (memory, SQLite, Postgres, MongoDB)
//   - Lifecycle plugins for audit trails and metrics
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/rally"
//	    "github.com/xraph/rally/store/sqlite"
//	)
//
//	// Initialize store
//	store, err := sqlite.New("file:rally.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create engine
//	e := rally.New(store)
//
//	// Start the engine (runs store migrations)
//	if err := e.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Stop()
//
// # Core Concepts
//
// Journal transactions are sets of debit/credit lines against the chart of
// accounts in package coa:
//
//	_, err := e.RecordJournalEntry(ctx, &journal.Transaction{
//	    Description: "Court rental June",
//	    Category:    journal.CategoryExpense,
//	    Entries: []journal.Entry{
//	        {Account: coa.COGS.CourtRental, Debit: rally.IDR(150_000)},
//	        {Account: coa.Assets.CashBank, Credit: rally.IDR(150_000)},
//	    },
//	})
//
// Inventory items carry stock at a weighted-average unit cost. Restocking
// blends the landed cost of the purchase into the average and posts the
// matching journal; consumption decrements stock at the current average:
//
//	item, err := e.AddItem(ctx, rally.AddItemParams{
//	    Name: "Mavis 350", Unit: "piece",
//	    InitialStock: 12, InitialAvgCost: rally.IDR(25_000),
//	})
//
//	_, err = e.RestockWithJournal(ctx, rally.RestockParams{
//	    ItemID: item.ID, Qty: 10,
//	    UnitPrice: rally.IDR(28_000), Shipping: rally.IDR(20_000),
//	})
//
// Closing a session's finances consumes the shuttlecocks used and posts the
// session's full cost of goods sold in one balanced journal:
//
//	_, err = e.CloseSessionFinance(ctx, rally.CloseSessionParams{
//	    EventID:           sess.ID,
//	    ShuttlecockItemID: item.ID,
//	    ShuttlecockQty:    10,
//	    CourtFee:          rally.IDR(150_000),
//	    CoachFee:          rally.IDR(100_000),
//	    CoachName:         "Coach Ardi",
//	})
//
// # Precision
//
// All journal amounts use integer arithmetic in the smallest currency unit
// (whole rupiah for IDR, cents for USD). Weighted-average unit costs keep
// fractional precision internally and round only when a consumption is
// valued, so repeated restock/consume cycles do not drift.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	jrnl_01h2xcejqtf2nbrexx3vqjhp41  // Journal transaction ID
//	item_01h2xcejqtf2nbrexx3vqjhp41  // Inventory item ID
//	evt_01h455vb4pex5vsknk084sn02q   // Event ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package rally
