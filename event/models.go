// Package event defines club sessions (drilling, open play, tournaments)
// and their financial-close lifecycle.
package event

import (
	"time"

	"github.com/xraph/rally/id"
	"github.com/xraph/rally/types"
)

// Type is the kind of session a club runs.
type Type string

// Session types.
const (
	TypeDrilling   Type = "drilling"
	TypeOpenPlay   Type = "mabar" // community open play
	TypeTournament Type = "tournament"
)

// Status is the lifecycle state of a session.
type Status string

// Session statuses. A session becomes completed when its finances close.
const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Session is one scheduled club event. FinancialClosed flips exactly once,
// when cost of goods sold is realized for the session.
type Session struct {
	types.Entity
	ID                id.EventID `json:"id"`
	Name              string     `json:"name"`
	Type              Type       `json:"type"`
	Status            Status     `json:"status"`
	StartsAt          time.Time  `json:"starts_at"`
	FinancialClosed   bool       `json:"financial_closed"`
	FinancialClosedAt *time.Time `json:"financial_closed_at,omitempty"`
}
