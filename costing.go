package rally

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/rally/coa"
	"github.com/xraph/rally/event"
	"github.com/xraph/rally/id"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/types"
)

// AddItemParams creates a new inventory item. InitialAvgCost is the per-unit
// valuation for opening stock; when both InitialStock and InitialAvgCost are
// positive, an opening-balance journal is posted alongside the item.
type AddItemParams struct {
	Name           string
	Category       inventory.Category
	Unit           string
	InitialStock   int64
	InitialAvgCost types.Money
}

// AddItem registers an inventory item and, for valued opening stock, posts
// the opening valuation (debit inventory asset, credit owner capital).
// If the journal fails the item is removed again, so the item and its
// opening balance appear together or not at all.
func (e *Engine) AddItem(ctx context.Context, p AddItemParams) (*inventory.Item, error) {
	if p.Name == "" {
		return nil, ValidationError{Field: "name", Message: "must not be empty"}
	}
	if p.Unit == "" {
		return nil, ValidationError{Field: "unit", Message: "must not be empty"}
	}
	if p.Category == "" {
		p.Category = inventory.CategoryConsumable
	}
	if p.Category != inventory.CategoryConsumable && p.Category != inventory.CategoryAsset {
		return nil, ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", p.Category)}
	}
	if p.InitialStock < 0 {
		return nil, ValidationError{Field: "initial_stock", Message: "must not be negative"}
	}
	avgCost, err := e.money(p.InitialAvgCost, "initial_avg_cost")
	if err != nil {
		return nil, err
	}

	item := &inventory.Item{
		ID:       id.NewItemID(),
		Entity:   types.NewEntity(),
		Name:     p.Name,
		Category: p.Category,
		Stock:    p.InitialStock,
		Unit:     p.Unit,
		AvgCost:  decimal.NewFromInt(avgCost.Amount),
		Version:  1,
	}
	item.SKU = inventory.MakeSKU(p.Name, item.ID)

	if err := e.storeCall(ctx, func(ctx context.Context) error {
		return e.store.CreateItem(ctx, item)
	}); err != nil {
		return nil, err
	}

	if p.InitialStock > 0 && avgCost.IsPositive() {
		opening := avgCost.Multiply(p.InitialStock)
		txn := &journal.Transaction{
			Date:        item.CreatedAt,
			RefID:       item.ID.String(),
			Description: "Opening stock valuation: " + item.Name,
			Category:    journal.CategoryEquity,
			Entries: []journal.Entry{
				{Account: coa.Assets.Inventory, Debit: opening, Description: item.Name + " opening stock"},
				{Account: coa.Equity.OwnerCapital, Credit: opening, Description: "Owner capital contribution"},
			},
		}
		if _, err := e.RecordJournalEntry(ctx, txn); err != nil {
			delErr := e.storeCall(ctx, func(ctx context.Context) error {
				return e.store.DeleteItem(ctx, item.ID)
			})
			if delErr != nil {
				return nil, MultiError{Errors: []error{err, delErr}}
			}
			return nil, err
		}
	}

	e.plugins.EmitItemCreated(ctx, item)

	e.logger.Debug("item created",
		"item_id", item.ID.String(),
		"sku", item.SKU,
		"stock", item.Stock,
	)

	return item, nil
}

// GetItem retrieves an inventory item by ID.
func (e *Engine) GetItem(ctx context.Context, itemID id.ItemID) (*inventory.Item, error) {
	var item *inventory.Item
	err := e.storeCall(ctx, func(ctx context.Context) error {
		var err error
		item, err = e.store.GetItem(ctx, itemID)
		return err
	})
	return item, err
}

// ListItems lists inventory items.
func (e *Engine) ListItems(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	var items []*inventory.Item
	err := e.storeCall(ctx, func(ctx context.Context) error {
		var err error
		items, err = e.store.ListItems(ctx, opts)
		return err
	})
	return items, err
}

// RestockParams describes one purchase of an existing item.
type RestockParams struct {
	ItemID    id.ItemID
	Qty       int64
	UnitPrice types.Money
	Shipping  types.Money
	Source    string
}

// RestockResult reports the item state after a restock.
type RestockResult struct {
	ItemName   string
	NewStock   int64
	NewAvgCost decimal.Decimal
	TotalCost  types.Money
	Record     inventory.RestockRecord
	JournalID  id.JournalID // zero for silent restocks
}

// RestockWithJournal applies a purchase and posts the matching journal:
// debit inventory asset, credit cash for the full landed cost, with the
// base price and shipping kept as separate breakdown lines.
func (e *Engine) RestockWithJournal(ctx context.Context, p RestockParams) (*RestockResult, error) {
	return e.restock(ctx, p, true)
}

// RestockSilent applies a purchase without posting a journal. Meant for
// stock corrections and donated goods where the cash movement is recorded
// elsewhere or does not exist.
func (e *Engine) RestockSilent(ctx context.Context, p RestockParams) (*RestockResult, error) {
	return e.restock(ctx, p, false)
}

func (e *Engine) restock(ctx context.Context, p RestockParams, withJournal bool) (*RestockResult, error) {
	if p.Qty <= 0 {
		return nil, ValidationError{Field: "qty", Message: "must be positive"}
	}
	unitPrice, err := e.money(p.UnitPrice, "unit_price")
	if err != nil {
		return nil, err
	}
	shipping, err := e.money(p.Shipping, "shipping")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var rec inventory.RestockRecord
	item, err := e.mutateItem(ctx, p.ItemID, func(item *inventory.Item) error {
		rec = item.Restock(p.Qty, unitPrice, shipping, p.Source, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &RestockResult{
		ItemName:   item.Name,
		NewStock:   item.Stock,
		NewAvgCost: item.AvgCost,
		TotalCost:  rec.TotalCost,
		Record:     rec,
	}

	if withJournal {
		breakdown := []journal.CostLine{
			{Kind: journal.CostBasePrice, Qty: p.Qty, Cost: unitPrice.Multiply(p.Qty)},
		}
		if shipping.IsPositive() {
			breakdown = append(breakdown, journal.CostLine{Kind: journal.CostShipping, Cost: shipping})
		}

		txn := &journal.Transaction{
			Date:        now,
			RefID:       rec.ID.String(),
			Description: fmt.Sprintf("Restock %s: %d %s", item.Name, p.Qty, item.Unit),
			Category:    journal.CategoryAsset,
			Entries: []journal.Entry{
				{Account: coa.Assets.Inventory, Debit: rec.TotalCost, Description: item.Name + " purchase"},
				{Account: coa.Assets.CashBank, Credit: rec.TotalCost, Description: "Payment to " + sourceOrSupplier(p.Source)},
			},
			Metadata: &journal.Metadata{Breakdown: breakdown},
		}

		jrnlID, err := e.RecordJournalEntry(ctx, txn)
		if err != nil {
			if revErr := e.revertRestock(ctx, p.ItemID, rec); revErr != nil {
				return nil, MultiError{Errors: []error{err, revErr}}
			}
			return nil, err
		}
		result.JournalID = jrnlID
	}

	e.plugins.EmitRestocked(ctx, item, rec)

	e.logger.Debug("item restocked",
		"item_id", item.ID.String(),
		"qty", p.Qty,
		"new_stock", item.Stock,
		"new_avg_cost", item.AvgCost.String(),
		"journaled", withJournal,
	)

	return result, nil
}

// ConsumeResult reports a stock consumption valued at the weighted-average
// cost in effect when it happened.
type ConsumeResult struct {
	ItemName string
	Qty      int64
	Cost     types.Money
}

// Consume decrements an item's stock by qty and returns the consumption cost
// at the current average. Consuming more than the available stock fails with
// InsufficientStockError and writes nothing.
func (e *Engine) Consume(ctx context.Context, itemID id.ItemID, qty int64) (*ConsumeResult, error) {
	if qty <= 0 {
		return nil, ValidationError{Field: "qty", Message: "must be positive"}
	}

	var cost types.Money
	item, err := e.mutateItem(ctx, itemID, func(item *inventory.Item) error {
		if item.Stock < qty {
			e.plugins.EmitInsufficientStock(ctx, item.Name, qty, item.Stock)
			return InsufficientStockError{ItemName: item.Name, Requested: qty, Available: item.Stock}
		}
		cost = types.New(item.CostOf(qty), e.currency)
		item.Consume(qty)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.plugins.EmitStockConsumed(ctx, item, qty, cost)

	e.logger.Debug("stock consumed",
		"item_id", item.ID.String(),
		"qty", qty,
		"cost", cost.String(),
		"remaining", item.Stock,
	)

	return &ConsumeResult{ItemName: item.Name, Qty: qty, Cost: cost}, nil
}

// CloseSessionParams closes the finances of one club session.
type CloseSessionParams struct {
	EventID           id.EventID
	ShuttlecockItemID id.ItemID
	ShuttlecockQty    int64
	CourtFee          types.Money
	CoachFee          types.Money
	CoachName         string
}

// CloseSessionResult reports the realized session costs.
type CloseSessionResult struct {
	JournalID       id.JournalID
	ShuttlecockCost types.Money
	TotalCost       types.Money
}

// CloseSessionFinance realizes the cost of goods sold for a finished session:
// shuttlecocks consumed at weighted-average cost, court rental paid in cash,
// and an optional coach fee accrued as a payable. The close is claimed on the
// event first so it can happen at most once; if consumption or the journal
// fails afterwards, stock is restored and the event reopened.
func (e *Engine) CloseSessionFinance(ctx context.Context, p CloseSessionParams) (*CloseSessionResult, error) {
	if p.ShuttlecockQty < 0 {
		return nil, ValidationError{Field: "shuttlecock_qty", Message: "must not be negative"}
	}
	courtFee, err := e.money(p.CourtFee, "court_fee")
	if err != nil {
		return nil, err
	}
	coachFee, err := e.money(p.CoachFee, "coach_fee")
	if err != nil {
		return nil, err
	}

	sess, err := e.GetEvent(ctx, p.EventID)
	if err != nil {
		return nil, err
	}

	closedAt := time.Now().UTC()
	if err := e.storeCall(ctx, func(ctx context.Context) error {
		return e.store.CloseEventFinance(ctx, p.EventID, closedAt)
	}); err != nil {
		return nil, err
	}

	shuttleCost := types.Zero(e.currency)
	if p.ShuttlecockQty > 0 {
		consumed, err := e.Consume(ctx, p.ShuttlecockItemID, p.ShuttlecockQty)
		if err != nil {
			return nil, e.compensateClose(ctx, err, p, false)
		}
		shuttleCost = consumed.Cost
	}

	var entries []journal.Entry
	var breakdown []journal.CostLine

	if shuttleCost.IsPositive() {
		entries = append(entries,
			journal.Entry{Account: coa.COGS.Shuttlecock, Debit: shuttleCost, Description: "Shuttlecocks used"},
			journal.Entry{Account: coa.Assets.Inventory, Credit: shuttleCost, Description: "Inventory consumed"},
		)
		breakdown = append(breakdown, journal.CostLine{
			Kind: journal.CostShuttlecockUsage,
			Qty:  p.ShuttlecockQty,
			Cost: shuttleCost,
		})
	}
	if courtFee.IsPositive() {
		entries = append(entries,
			journal.Entry{Account: coa.COGS.CourtRental, Debit: courtFee, Description: "Court rental"},
			journal.Entry{Account: coa.Assets.CashBank, Credit: courtFee, Description: "Court rental payment"},
		)
		breakdown = append(breakdown, journal.CostLine{Kind: journal.CostCourtRental, Cost: courtFee})
	}
	if coachFee.IsPositive() {
		entries = append(entries,
			journal.Entry{Account: coa.COGS.CoachFee, Debit: coachFee, Description: "Coach fee"},
			journal.Entry{Account: coa.Liabilities.PayableCommission, Credit: coachFee, Description: "Payable to coach"},
		)
		breakdown = append(breakdown, journal.CostLine{
			Kind:      journal.CostCoachFee,
			Cost:      coachFee,
			Recipient: p.CoachName,
		})
	}

	result := &CloseSessionResult{
		ShuttlecockCost: shuttleCost,
		TotalCost:       types.Sum(shuttleCost, courtFee, coachFee),
	}

	var txn *journal.Transaction
	if len(entries) > 0 {
		txn = &journal.Transaction{
			Date:        closedAt,
			RefID:       p.EventID.String(),
			Description: "Session close: " + sess.Name,
			Category:    journal.CategoryExpense,
			Entries:     entries,
			Metadata:    &journal.Metadata{Breakdown: breakdown},
		}
		jrnlID, err := e.RecordJournalEntry(ctx, txn)
		if err != nil {
			return nil, e.compensateClose(ctx, err, p, p.ShuttlecockQty > 0)
		}
		result.JournalID = jrnlID
	}

	e.plugins.EmitSessionClosed(ctx, sess, txn)

	e.logger.Info("session finances closed",
		"event_id", p.EventID.String(),
		"shuttlecock_cost", shuttleCost.String(),
		"total_cost", result.TotalCost.String(),
	)

	return result, nil
}

// BookingParams records the revenue side of a paid court booking.
// Amount and GatewayFee come from the booking platform per transaction;
// there are no built-in fee constants.
type BookingParams struct {
	BookingCode string
	EventType   event.Type
	Amount      types.Money
	GatewayFee  types.Money
	PlatformFee types.Money
	PaidAt      time.Time
}

// CreateBookingJournal posts the gross revenue and fee expense for one paid
// booking: gross cash into the gateway balance, gross revenue by session
// type, and each fee moved from the gateway balance into expense. Tournament
// bookings book to open-play revenue until they earn their own account.
func (e *Engine) CreateBookingJournal(ctx context.Context, p BookingParams) (id.JournalID, error) {
	if p.BookingCode == "" {
		return id.Nil, ValidationError{Field: "booking_code", Message: "must not be empty"}
	}
	amount, err := e.money(p.Amount, "amount")
	if err != nil {
		return id.Nil, err
	}
	if !amount.IsPositive() {
		return id.Nil, ValidationError{Field: "amount", Message: "must be positive"}
	}
	gatewayFee, err := e.money(p.GatewayFee, "gateway_fee")
	if err != nil {
		return id.Nil, err
	}
	platformFee, err := e.money(p.PlatformFee, "platform_fee")
	if err != nil {
		return id.Nil, err
	}

	var revenueAccount coa.Code
	switch p.EventType {
	case event.TypeDrilling:
		revenueAccount = coa.Revenue.Drilling
	case event.TypeOpenPlay, event.TypeTournament:
		revenueAccount = coa.Revenue.OpenPlay
	default:
		return id.Nil, ValidationError{Field: "event_type", Message: fmt.Sprintf("unknown event type %q", p.EventType)}
	}

	entries := []journal.Entry{
		{Account: coa.Assets.GatewayCash, Debit: amount, Description: "Booking " + p.BookingCode + " gross"},
		{Account: revenueAccount, Credit: amount, Description: "Booking " + p.BookingCode + " revenue"},
	}
	var breakdown []journal.CostLine
	if gatewayFee.IsPositive() {
		entries = append(entries,
			journal.Entry{Account: coa.Opex.GatewayFee, Debit: gatewayFee, Description: "Payment gateway fee"},
			journal.Entry{Account: coa.Assets.GatewayCash, Credit: gatewayFee, Description: "Gateway fee withheld"},
		)
		breakdown = append(breakdown, journal.CostLine{Kind: journal.CostGatewayFee, Cost: gatewayFee})
	}
	if platformFee.IsPositive() {
		entries = append(entries,
			journal.Entry{Account: coa.Opex.PlatformFee, Debit: platformFee, Description: "Booking platform fee"},
			journal.Entry{Account: coa.Assets.GatewayCash, Credit: platformFee, Description: "Platform fee withheld"},
		)
		breakdown = append(breakdown, journal.CostLine{Kind: journal.CostPlatformFee, Cost: platformFee})
	}

	date := p.PaidAt
	if date.IsZero() {
		date = time.Now().UTC()
	}

	txn := &journal.Transaction{
		Date:        date,
		RefID:       p.BookingCode,
		Description: "Booking " + p.BookingCode,
		Category:    journal.CategoryRevenue,
		Entries:     entries,
	}
	if len(breakdown) > 0 {
		txn.Metadata = &journal.Metadata{Breakdown: breakdown}
	}

	jrnlID, err := e.RecordJournalEntry(ctx, txn)
	if err != nil {
		return id.Nil, err
	}

	e.plugins.EmitBookingRecorded(ctx, txn)

	return jrnlID, nil
}

// ──────────────────────────────────────────────────
// Internal saga helpers
// ──────────────────────────────────────────────────

// mutateItem runs a read-modify-write on an item under optimistic
// concurrency, retrying on version conflicts up to the configured bound.
// Errors returned by fn abort without retrying.
func (e *Engine) mutateItem(ctx context.Context, itemID id.ItemID, fn func(*inventory.Item) error) (*inventory.Item, error) {
	for attempt := 0; attempt < e.casRetries; attempt++ {
		var item *inventory.Item
		if err := e.storeCall(ctx, func(ctx context.Context) error {
			var err error
			item, err = e.store.GetItem(ctx, itemID)
			return err
		}); err != nil {
			return nil, err
		}

		expected := item.Version
		if err := fn(item); err != nil {
			return nil, err
		}
		item.Version = expected + 1

		err := e.storeCall(ctx, func(ctx context.Context) error {
			return e.store.UpdateItemCAS(ctx, item, expected)
		})
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return item, nil
	}

	return nil, ErrConcurrentUpdate
}

// revertRestock undoes a just-applied restock: stock comes back out and the
// average is recomputed by removing the landed total, restoring the
// pre-restock value when no other write interleaved.
func (e *Engine) revertRestock(ctx context.Context, itemID id.ItemID, rec inventory.RestockRecord) error {
	_, err := e.mutateItem(ctx, itemID, func(item *inventory.Item) error {
		prevStock := item.Stock - rec.Qty
		if prevStock > 0 {
			item.AvgCost = item.AvgCost.
				Mul(decimal.NewFromInt(item.Stock)).
				Sub(decimal.NewFromInt(rec.TotalCost.Amount)).
				Div(decimal.NewFromInt(prevStock))
		} else {
			item.AvgCost = decimal.Zero
		}
		item.Stock = prevStock
		if n := len(item.History); n > 0 && item.History[n-1].ID == rec.ID {
			item.History = item.History[:n-1]
		}
		item.Touch()
		return nil
	})
	return err
}

// compensateClose rolls back a partially applied session close: restores
// consumed stock when restoreStock is set, then reopens the event's
// financial close so the whole operation can be retried.
func (e *Engine) compensateClose(ctx context.Context, cause error, p CloseSessionParams, restoreStock bool) error {
	multi := MultiError{Errors: []error{cause}}

	if restoreStock {
		_, err := e.mutateItem(ctx, p.ShuttlecockItemID, func(item *inventory.Item) error {
			item.Stock += p.ShuttlecockQty
			item.Touch()
			return nil
		})
		multi.Add(err)
	}

	multi.Add(e.storeCall(ctx, func(ctx context.Context) error {
		return e.store.ReopenEventFinance(ctx, p.EventID)
	}))

	if len(multi.Errors) == 1 {
		return cause
	}

	e.logger.Error("session close compensation incomplete",
		"event_id", p.EventID.String(),
		"error", multi.Error(),
	)
	return multi
}

func sourceOrSupplier(source string) string {
	if source == "" {
		return "supplier"
	}
	return source
}
