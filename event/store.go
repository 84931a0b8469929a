package event

import (
	"context"
	"time"

	"github.com/xraph/rally/id"
)

// Store is the persistence contract for club sessions.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, eventID id.EventID) (*Session, error)

	// CloseFinance atomically marks the session completed and financially
	// closed. It must only match a session that is not yet closed, so a
	// second close observes "no match" rather than flipping twice.
	CloseFinance(ctx context.Context, eventID id.EventID, closedAt time.Time) error

	// ReopenFinance reverts a close. It exists only as saga compensation:
	// the engine claims the close first, then records cost of goods sold,
	// and reopens if a later step fails.
	ReopenFinance(ctx context.Context, eventID id.EventID) error
}
