package journal

import (
	"context"
	"time"

	"github.com/xraph/rally/id"
)

// Store is the persistence contract for journal transactions.
// Transactions are append-only: there is no update or delete path.
type Store interface {
	Create(ctx context.Context, txn *Transaction) error
	Get(ctx context.Context, jrnlID id.JournalID) (*Transaction, error)
	List(ctx context.Context, opts ListOpts) ([]*Transaction, error)
}

// ListOpts filters and pages journal listings.
type ListOpts struct {
	Category Category
	RefID    string
	Start    time.Time
	End      time.Time
	Limit    int
	Offset   int
}
