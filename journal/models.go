// Package journal defines the double-entry journal transaction model.
//
// A Transaction is an immutable, append-only record: it is created once by
// the engine, never updated, never deleted. Corrections are made by posting
// an offsetting transaction.
package journal

import (
	"time"

	"github.com/xraph/rally/coa"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/types"
)

// Category classifies a transaction by its dominant side.
type Category string

// Transaction categories.
const (
	CategoryRevenue   Category = "revenue"
	CategoryExpense   Category = "expense"
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
	CategoryEquity    Category = "equity"
)

// Status is the lifecycle state of a transaction.
type Status string

// Transaction statuses. Posted transactions are final.
const (
	StatusPosted Status = "posted"
	StatusDraft  Status = "draft"
)

// Entry is a single debit/credit line of a journal transaction.
// By convention exactly one of Debit/Credit is non-zero per line; the engine
// enforces only the aggregate balance across all lines.
type Entry struct {
	Account     coa.Code    `json:"account"`
	Debit       types.Money `json:"debit"`
	Credit      types.Money `json:"credit"`
	Description string      `json:"description,omitempty"`
}

// CostKind tags a breakdown line with the cost component it describes.
type CostKind string

// Breakdown cost kinds.
const (
	CostShuttlecockUsage CostKind = "shuttlecock_usage"
	CostCourtRental      CostKind = "court_rental"
	CostCoachFee         CostKind = "coach_fee"
	CostBasePrice        CostKind = "base_price"
	CostShipping         CostKind = "shipping"
	CostGatewayFee       CostKind = "gateway_fee"
	CostPlatformFee      CostKind = "platform_fee"
)

// CostLine is one component of a transaction's cost breakdown. The journal
// entries may combine several components into one debit; the breakdown keeps
// them reportable separately.
type CostLine struct {
	Kind      CostKind    `json:"kind"`
	Qty       int64       `json:"qty,omitempty"`
	Cost      types.Money `json:"cost"`
	Recipient string      `json:"recipient,omitempty"`
	Note      string      `json:"note,omitempty"`
}

// Metadata carries optional reporting context attached to a transaction.
type Metadata struct {
	Breakdown []CostLine `json:"breakdown,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	ProofRef  string     `json:"proof_ref,omitempty"`
}

// Transaction is one balanced set of journal entries.
type Transaction struct {
	types.Entity
	ID          id.JournalID `json:"id"`
	Date        time.Time    `json:"date"`
	RefID       string       `json:"ref_id,omitempty"` // booking code, restock batch, session id
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Entries     []Entry      `json:"entries"`
	Metadata    *Metadata    `json:"metadata,omitempty"`
	Status      Status       `json:"status"`
	CreatedBy   string       `json:"created_by,omitempty"`

	// TotalAmount is the denormalized total debit, stored for fast
	// aggregate queries without walking entries.
	TotalAmount types.Money `json:"total_amount"`
}

// Totals returns the summed debit and credit across all entries.
func (t *Transaction) Totals() (debit, credit types.Money) {
	debit = types.Zero(currencyOf(t.Entries))
	credit = debit

	for _, e := range t.Entries {
		if !e.Debit.IsZero() {
			debit = debit.Add(e.Debit)
		}
		if !e.Credit.IsZero() {
			credit = credit.Add(e.Credit)
		}
	}
	return debit, credit
}

// Balanced reports whether total debit and total credit agree within
// tolerance minor units. The tolerance absorbs rounding from upstream
// division (e.g. per-unit cost allocation).
func (t *Transaction) Balanced(tolerance int64) bool {
	debit, credit := t.Totals()
	diff := debit.Subtract(credit).Abs()
	return diff.Amount <= tolerance
}

// currencyOf picks the currency of the first non-zero entry so that zero
// totals carry a sensible currency even before validation.
func currencyOf(entries []Entry) string {
	for _, e := range entries {
		if e.Debit.Currency != "" {
			return e.Debit.Currency
		}
		if e.Credit.Currency != "" {
			return e.Credit.Currency
		}
	}
	return "idr"
}
