// Package store defines the unified storage interface for all Rally entities.
package store

import (
	"context"
	"time"

	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
)

// Store is the unified storage interface for all Rally entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Backends must provide durable single-document inserts for journals and
// conditional (version-guarded) single-document updates for inventory items;
// that is the entire consistency contract the engine relies on.
type Store interface {
	// Journal methods. Journals are append-only: no update, no delete.
	CreateJournal(ctx context.Context, txn *journal.Transaction) error
	GetJournal(ctx context.Context, jrnlID id.JournalID) (*journal.Transaction, error)
	ListJournals(ctx context.Context, opts journal.ListOpts) ([]*journal.Transaction, error)

	// Inventory methods.
	CreateItem(ctx context.Context, item *inventory.Item) error
	GetItem(ctx context.Context, itemID id.ItemID) (*inventory.Item, error)
	ListItems(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error)
	UpdateItemCAS(ctx context.Context, item *inventory.Item, expectedVersion int64) error
	DeleteItem(ctx context.Context, itemID id.ItemID) error

	// Event methods.
	CreateEvent(ctx context.Context, s *event.Session) error
	GetEvent(ctx context.Context, eventID id.EventID) (*event.Session, error)
	CloseEventFinance(ctx context.Context, eventID id.EventID, closedAt time.Time) error
	ReopenEventFinance(ctx context.Context, eventID id.EventID) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
