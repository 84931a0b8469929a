package inventory

import (
	"context"

	"github.com/xraph/rally/id"
)

// Store is the persistence contract for inventory items.
type Store interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, itemID id.ItemID) (*Item, error)
	List(ctx context.Context, opts ListOpts) ([]*Item, error)

	// UpdateCAS writes the item only if the stored version still equals
	// expectedVersion (the item itself carries the incremented version).
	// A version mismatch or missing item leaves the store untouched.
	UpdateCAS(ctx context.Context, item *Item, expectedVersion int64) error
}

// ListOpts filters and pages item listings.
type ListOpts struct {
	Category Category
	Limit    int
	Offset   int
}
