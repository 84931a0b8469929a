package rally_test

import (
	"context"
	"errors"
	"testing"

	rally "github.com/xraph/rally"
	"github.com/xraph/rally/coa"
	"github.com/xraph/rally/event"
	"github.com/xraph/rally/inventory"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/types"
)

func TestAddItemPostsOpeningJournal(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{
		Name:           "Shuttlecock AS-30",
		Unit:           "piece",
		InitialStock:   12,
		InitialAvgCost: types.IDR(25000),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.Stock != 12 {
		t.Errorf("stock: got %d, want 12", item.Stock)
	}
	if item.Category != inventory.CategoryConsumable {
		t.Errorf("category: got %q, want consumable default", item.Category)
	}
	if item.AvgCost.String() != "25000" {
		t.Errorf("avg cost: got %s, want 25000", item.AvgCost)
	}
	if item.SKU == "" {
		t.Error("expected a derived SKU")
	}

	// Opening valuation: 12 x 25000 against owner capital.
	txns, err := e.ListJournals(ctx, journal.ListOpts{RefID: item.ID.String()})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 opening journal, got %d", len(txns))
	}
	opening := txns[0]
	if opening.Category != journal.CategoryEquity {
		t.Errorf("category: got %q, want equity", opening.Category)
	}
	if !opening.TotalAmount.Equal(types.IDR(300000)) {
		t.Errorf("total: got %v, want Rp300000", opening.TotalAmount)
	}
	if opening.Entries[0].Account != coa.Assets.Inventory {
		t.Errorf("debit account: got %q", opening.Entries[0].Account)
	}
	if opening.Entries[1].Account != coa.Equity.OwnerCapital {
		t.Errorf("credit account: got %q", opening.Entries[1].Account)
	}
}

func TestAddItemWithoutOpeningStock(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{
		Name: "Grip Tape",
		Unit: "roll",
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	txns, err := e.ListJournals(ctx, journal.ListOpts{RefID: item.ID.String()})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("zero-stock item must not post a journal, got %d", len(txns))
	}
}

func TestAddItemValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	tests := []struct {
		name   string
		params rally.AddItemParams
	}{
		{"missing name", rally.AddItemParams{Unit: "piece"}},
		{"missing unit", rally.AddItemParams{Name: "Shuttlecock"}},
		{"unknown category", rally.AddItemParams{Name: "Net", Unit: "piece", Category: inventory.Category("weird")}},
		{"negative stock", rally.AddItemParams{Name: "Net", Unit: "piece", InitialStock: -1}},
		{"negative cost", rally.AddItemParams{Name: "Net", Unit: "piece", InitialAvgCost: types.IDR(-100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr rally.ValidationError
			if _, err := e.AddItem(ctx, tt.params); !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRestockWithJournalBlendsAverage(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{
		Name:           "Shuttlecock AS-30",
		Unit:           "piece",
		InitialStock:   12,
		InitialAvgCost: types.IDR(25000),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// 10 pieces at 28000 plus 20000 shipping: landed total 300000.
	// New average: (12*25000 + 300000) / 22.
	res, err := e.RestockWithJournal(ctx, rally.RestockParams{
		ItemID:    item.ID,
		Qty:       10,
		UnitPrice: types.IDR(28000),
		Shipping:  types.IDR(20000),
		Source:    "Tokopedia",
	})
	if err != nil {
		t.Fatalf("RestockWithJournal: %v", err)
	}

	if res.NewStock != 22 {
		t.Errorf("stock: got %d, want 22", res.NewStock)
	}
	if !res.TotalCost.Equal(types.IDR(300000)) {
		t.Errorf("total cost: got %v, want Rp300000", res.TotalCost)
	}
	wantAvg := "27272.7272727272727273"
	if got := res.NewAvgCost.StringFixed(16); got != wantAvg {
		t.Errorf("avg cost: got %s, want %s", got, wantAvg)
	}
	if res.JournalID.IsNil() {
		t.Fatal("expected a purchase journal")
	}

	txn, err := e.GetJournal(ctx, res.JournalID)
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if !txn.TotalAmount.Equal(types.IDR(300000)) {
		t.Errorf("journal total: got %v", txn.TotalAmount)
	}
	if txn.Metadata == nil || len(txn.Metadata.Breakdown) != 2 {
		t.Fatalf("expected base price + shipping breakdown, got %+v", txn.Metadata)
	}
	if txn.Metadata.Breakdown[0].Kind != journal.CostBasePrice {
		t.Errorf("breakdown[0]: got %q", txn.Metadata.Breakdown[0].Kind)
	}
	if txn.Metadata.Breakdown[1].Kind != journal.CostShipping {
		t.Errorf("breakdown[1]: got %q", txn.Metadata.Breakdown[1].Kind)
	}

	// Item state persisted with the restock record.
	got, err := e.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(got.History) != 1 {
		t.Fatalf("history: got %d records, want 1", len(got.History))
	}
	if got.History[0].Source != "Tokopedia" {
		t.Errorf("source: got %q", got.History[0].Source)
	}
}

func TestRestockSilentSkipsJournal(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{Name: "Grip Tape", Unit: "roll"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	res, err := e.RestockSilent(ctx, rally.RestockParams{
		ItemID:    item.ID,
		Qty:       5,
		UnitPrice: types.IDR(10000),
	})
	if err != nil {
		t.Fatalf("RestockSilent: %v", err)
	}
	if !res.JournalID.IsNil() {
		t.Error("silent restock must not post a journal")
	}
	if res.NewStock != 5 {
		t.Errorf("stock: got %d, want 5", res.NewStock)
	}

	txns, err := e.ListJournals(ctx, journal.ListOpts{Category: journal.CategoryAsset})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("expected no purchase journals, got %d", len(txns))
	}
}

func TestConsumeValuesAtAverage(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{
		Name:           "Shuttlecock AS-30",
		Unit:           "piece",
		InitialStock:   12,
		InitialAvgCost: types.IDR(25000),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := e.RestockSilent(ctx, rally.RestockParams{
		ItemID:    item.ID,
		Qty:       10,
		UnitPrice: types.IDR(28000),
		Shipping:  types.IDR(20000),
	}); err != nil {
		t.Fatalf("RestockSilent: %v", err)
	}

	// 10 x 27272.72... rounds half-up to 272727.
	res, err := e.Consume(ctx, item.ID, 10)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !res.Cost.Equal(types.IDR(272727)) {
		t.Errorf("cost: got %v, want Rp272727", res.Cost)
	}

	got, err := e.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Stock != 12 {
		t.Errorf("stock: got %d, want 12", got.Stock)
	}
	// Consumption never moves the average.
	if got.AvgCost.StringFixed(16) != "27272.7272727272727273" {
		t.Errorf("avg cost changed on consumption: %s", got.AvgCost)
	}
}

func TestConsumeInsufficientStock(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{
		Name:           "Shuttlecock AS-30",
		Unit:           "piece",
		InitialStock:   3,
		InitialAvgCost: types.IDR(25000),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	_, err = e.Consume(ctx, item.ID, 5)
	var stockErr rally.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 5 || stockErr.Available != 3 {
		t.Errorf("unexpected error detail: %+v", stockErr)
	}

	// Nothing was written.
	got, err := e.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Stock != 3 {
		t.Errorf("stock: got %d, want 3", got.Stock)
	}
}

func TestCloseSessionFinance(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{
		Name:           "Shuttlecock AS-30",
		Unit:           "piece",
		InitialStock:   20,
		InitialAvgCost: types.IDR(25000),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	sess := &event.Session{Name: "Tuesday Drilling", Type: event.TypeDrilling}
	if err := e.CreateEvent(ctx, sess); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	res, err := e.CloseSessionFinance(ctx, rally.CloseSessionParams{
		EventID:           sess.ID,
		ShuttlecockItemID: item.ID,
		ShuttlecockQty:    10,
		CourtFee:          types.IDR(150000),
		CoachFee:          types.IDR(100000),
		CoachName:         "Coach Budi",
	})
	if err != nil {
		t.Fatalf("CloseSessionFinance: %v", err)
	}

	if !res.ShuttlecockCost.Equal(types.IDR(250000)) {
		t.Errorf("shuttlecock cost: got %v, want Rp250000", res.ShuttlecockCost)
	}
	if !res.TotalCost.Equal(types.IDR(500000)) {
		t.Errorf("total cost: got %v, want Rp500000", res.TotalCost)
	}

	txn, err := e.GetJournal(ctx, res.JournalID)
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if len(txn.Entries) != 6 {
		t.Fatalf("entries: got %d, want 6", len(txn.Entries))
	}
	if !txn.Balanced(0) {
		t.Error("close journal must balance exactly")
	}
	if txn.RefID != sess.ID.String() {
		t.Errorf("ref: got %q, want event ID", txn.RefID)
	}

	// The coach fee accrues as a payable, not a cash payment.
	var payable bool
	for _, entry := range txn.Entries {
		if entry.Account == coa.Liabilities.PayableCommission && entry.Credit.Equal(types.IDR(100000)) {
			payable = true
		}
	}
	if !payable {
		t.Error("expected coach fee credited to payable commission")
	}

	// Stock went down and the event closed.
	gotItem, err := e.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if gotItem.Stock != 10 {
		t.Errorf("stock: got %d, want 10", gotItem.Stock)
	}
	gotSess, err := e.GetEvent(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !gotSess.FinancialClosed {
		t.Error("expected event financially closed")
	}
	if gotSess.Status != event.StatusCompleted {
		t.Errorf("status: got %q, want completed", gotSess.Status)
	}
}

func TestCloseSessionFinanceTwice(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	sess := &event.Session{Name: "Friday Mabar", Type: event.TypeOpenPlay}
	if err := e.CreateEvent(ctx, sess); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	params := rally.CloseSessionParams{
		EventID:  sess.ID,
		CourtFee: types.IDR(150000),
	}
	if _, err := e.CloseSessionFinance(ctx, params); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if _, err := e.CloseSessionFinance(ctx, params); !errors.Is(err, rally.ErrSessionClosed) {
		t.Fatalf("second close: got %v, want ErrSessionClosed", err)
	}

	// Only one journal exists for the event.
	txns, err := e.ListJournals(ctx, journal.ListOpts{RefID: sess.ID.String()})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("expected 1 close journal, got %d", len(txns))
	}
}

func TestCloseSessionFinanceNoCosts(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	sess := &event.Session{Name: "Free Community Play", Type: event.TypeOpenPlay}
	if err := e.CreateEvent(ctx, sess); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	res, err := e.CloseSessionFinance(ctx, rally.CloseSessionParams{EventID: sess.ID})
	if err != nil {
		t.Fatalf("CloseSessionFinance: %v", err)
	}
	if !res.JournalID.IsNil() {
		t.Error("zero-cost close must not post a journal")
	}

	gotSess, err := e.GetEvent(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !gotSess.FinancialClosed {
		t.Error("expected event financially closed")
	}
}

func TestCloseSessionFinanceInsufficientStockReopens(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	item, err := e.AddItem(ctx, rally.AddItemParams{
		Name:           "Shuttlecock AS-30",
		Unit:           "piece",
		InitialStock:   2,
		InitialAvgCost: types.IDR(25000),
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	sess := &event.Session{Name: "Tuesday Drilling", Type: event.TypeDrilling}
	if err := e.CreateEvent(ctx, sess); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	_, err = e.CloseSessionFinance(ctx, rally.CloseSessionParams{
		EventID:           sess.ID,
		ShuttlecockItemID: item.ID,
		ShuttlecockQty:    10,
	})
	var stockErr rally.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	// The claimed close was rolled back, so the close can be retried.
	gotSess, err := e.GetEvent(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if gotSess.FinancialClosed {
		t.Error("failed close must leave the event open")
	}

	if _, err := e.CloseSessionFinance(ctx, rally.CloseSessionParams{
		EventID:           sess.ID,
		ShuttlecockItemID: item.ID,
		ShuttlecockQty:    2,
	}); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestCreateBookingJournal(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	jrnlID, err := e.CreateBookingJournal(ctx, rally.BookingParams{
		BookingCode: "AYO-12345",
		EventType:   event.TypeDrilling,
		Amount:      types.IDR(100000),
		GatewayFee:  types.IDR(2000),
		PlatformFee: types.IDR(1000),
	})
	if err != nil {
		t.Fatalf("CreateBookingJournal: %v", err)
	}

	txn, err := e.GetJournal(ctx, jrnlID)
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if len(txn.Entries) != 6 {
		t.Fatalf("entries: got %d, want 6", len(txn.Entries))
	}
	if !txn.Balanced(0) {
		t.Error("booking journal must balance exactly")
	}
	if txn.Category != journal.CategoryRevenue {
		t.Errorf("category: got %q, want revenue", txn.Category)
	}
	if txn.RefID != "AYO-12345" {
		t.Errorf("ref: got %q", txn.RefID)
	}
	if txn.Entries[1].Account != coa.Revenue.Drilling {
		t.Errorf("revenue account: got %q, want drilling", txn.Entries[1].Account)
	}
	if txn.Metadata == nil || len(txn.Metadata.Breakdown) != 2 {
		t.Fatalf("expected gateway + platform fee breakdown, got %+v", txn.Metadata)
	}
}

func TestCreateBookingJournalNoFees(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	jrnlID, err := e.CreateBookingJournal(ctx, rally.BookingParams{
		BookingCode: "CASH-001",
		EventType:   event.TypeOpenPlay,
		Amount:      types.IDR(35000),
	})
	if err != nil {
		t.Fatalf("CreateBookingJournal: %v", err)
	}

	txn, err := e.GetJournal(ctx, jrnlID)
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if len(txn.Entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(txn.Entries))
	}
	if txn.Entries[1].Account != coa.Revenue.OpenPlay {
		t.Errorf("revenue account: got %q, want open play", txn.Entries[1].Account)
	}
	if txn.Metadata != nil {
		t.Error("fee-free booking must not carry a breakdown")
	}
}

func TestCreateBookingJournalValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	tests := []struct {
		name   string
		params rally.BookingParams
	}{
		{"missing code", rally.BookingParams{EventType: event.TypeDrilling, Amount: types.IDR(100000)}},
		{"zero amount", rally.BookingParams{BookingCode: "X", EventType: event.TypeDrilling}},
		{"unknown event type", rally.BookingParams{BookingCode: "X", EventType: event.Type("spa"), Amount: types.IDR(100000)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr rally.ValidationError
			if _, err := e.CreateBookingJournal(ctx, tt.params); !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}
