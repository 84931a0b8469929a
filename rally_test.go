package rally_test

import (
	"context"
	"errors"
	"testing"

	rally "github.com/xraph/rally"
	"github.com/xraph/rally/coa"
	"github.com/xraph/rally/event"
	"github.com/xraph/rally/journal"
	"github.com/xraph/rally/store/memory"
	"github.com/xraph/rally/types"
)

func newTestEngine(t *testing.T, opts ...rally.Option) *rally.Engine {
	t.Helper()
	return rally.New(memory.New(), opts...)
}

func TestRecordJournalEntry(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	txn := &journal.Transaction{
		RefID:       "manual-1",
		Description: "Court rental paid in cash",
		Category:    journal.CategoryExpense,
		Entries: []journal.Entry{
			{Account: coa.COGS.CourtRental, Debit: types.IDR(150000)},
			{Account: coa.Assets.CashBank, Credit: types.IDR(150000)},
		},
	}

	jrnlID, err := e.RecordJournalEntry(ctx, txn)
	if err != nil {
		t.Fatalf("RecordJournalEntry: %v", err)
	}
	if jrnlID.IsNil() {
		t.Fatal("expected a journal ID")
	}

	got, err := e.GetJournal(ctx, jrnlID)
	if err != nil {
		t.Fatalf("GetJournal: %v", err)
	}
	if !got.TotalAmount.Equal(types.IDR(150000)) {
		t.Errorf("total: got %v, want %v", got.TotalAmount, types.IDR(150000))
	}
	if got.Status != journal.StatusPosted {
		t.Errorf("status: got %q, want %q", got.Status, journal.StatusPosted)
	}
	if got.Date.IsZero() {
		t.Error("expected date to default to creation time")
	}
	if len(got.Entries) != 2 {
		t.Errorf("entries: got %d, want 2", len(got.Entries))
	}
}

func TestRecordJournalEntryRejectsUnbalanced(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	txn := &journal.Transaction{
		Category: journal.CategoryExpense,
		Entries: []journal.Entry{
			{Account: coa.COGS.CourtRental, Debit: types.IDR(150000)},
			{Account: coa.Assets.CashBank, Credit: types.IDR(100000)},
		},
	}

	_, err := e.RecordJournalEntry(ctx, txn)
	var unbalanced rally.UnbalancedError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedError, got %v", err)
	}
	if !unbalanced.Debit.Equal(types.IDR(150000)) || !unbalanced.Credit.Equal(types.IDR(100000)) {
		t.Errorf("unexpected totals in error: %v", unbalanced)
	}

	// Nothing was written.
	txns, err := e.ListJournals(ctx, journal.ListOpts{})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("expected no journals, got %d", len(txns))
	}
}

func TestRecordJournalEntryTolerance(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	// One minor unit of rounding drift is accepted.
	txn := &journal.Transaction{
		Category: journal.CategoryExpense,
		Entries: []journal.Entry{
			{Account: coa.COGS.Shuttlecock, Debit: types.IDR(1000)},
			{Account: coa.Assets.Inventory, Credit: types.IDR(999)},
		},
	}
	if _, err := e.RecordJournalEntry(ctx, txn); err != nil {
		t.Fatalf("within tolerance: %v", err)
	}

	// Two units is a real imbalance.
	txn = &journal.Transaction{
		Category: journal.CategoryExpense,
		Entries: []journal.Entry{
			{Account: coa.COGS.Shuttlecock, Debit: types.IDR(1000)},
			{Account: coa.Assets.Inventory, Credit: types.IDR(998)},
		},
	}
	var unbalanced rally.UnbalancedError
	if _, err := e.RecordJournalEntry(ctx, txn); !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedError, got %v", err)
	}
}

func TestRecordJournalEntryNoEntries(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.RecordJournalEntry(ctx, nil); !errors.Is(err, rally.ErrNoEntries) {
		t.Errorf("nil transaction: got %v, want ErrNoEntries", err)
	}
	if _, err := e.RecordJournalEntry(ctx, &journal.Transaction{}); !errors.Is(err, rally.ErrNoEntries) {
		t.Errorf("empty entries: got %v, want ErrNoEntries", err)
	}
}

func TestListJournalsFilters(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	post := func(category journal.Category, refID string, amount int64) {
		t.Helper()
		txn := &journal.Transaction{
			RefID:    refID,
			Category: category,
			Entries: []journal.Entry{
				{Account: coa.Assets.Inventory, Debit: types.IDR(amount)},
				{Account: coa.Assets.CashBank, Credit: types.IDR(amount)},
			},
		}
		if _, err := e.RecordJournalEntry(ctx, txn); err != nil {
			t.Fatalf("RecordJournalEntry: %v", err)
		}
	}

	post(journal.CategoryAsset, "restock-1", 100000)
	post(journal.CategoryAsset, "restock-2", 200000)
	post(journal.CategoryExpense, "session-1", 50000)

	byCategory, err := e.ListJournals(ctx, journal.ListOpts{Category: journal.CategoryAsset})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("category filter: got %d journals, want 2", len(byCategory))
	}

	byRef, err := e.ListJournals(ctx, journal.ListOpts{RefID: "session-1"})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(byRef) != 1 {
		t.Fatalf("ref filter: got %d journals, want 1", len(byRef))
	}
	if !byRef[0].TotalAmount.Equal(types.IDR(50000)) {
		t.Errorf("ref filter total: got %v", byRef[0].TotalAmount)
	}

	limited, err := e.ListJournals(ctx, journal.ListOpts{Limit: 2})
	if err != nil {
		t.Fatalf("ListJournals: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: got %d journals, want 2", len(limited))
	}
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	sess := &event.Session{
		Name: "Tuesday Drilling",
		Type: event.TypeDrilling,
	}
	if err := e.CreateEvent(ctx, sess); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if sess.ID.IsNil() {
		t.Fatal("expected an event ID")
	}
	if sess.Status != event.StatusOpen {
		t.Errorf("status: got %q, want %q", sess.Status, event.StatusOpen)
	}

	got, err := e.GetEvent(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Name != "Tuesday Drilling" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.FinancialClosed {
		t.Error("new event must not be financially closed")
	}
}

func TestCreateEventRequiresName(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	var verr rally.ValidationError
	if err := e.CreateEvent(ctx, &event.Session{}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEngineCurrencyMismatch(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, rally.WithCurrency("idr"))

	_, err := e.AddItem(ctx, rally.AddItemParams{
		Name:           "Shuttlecock",
		Unit:           "piece",
		InitialStock:   10,
		InitialAvgCost: types.USD(500),
	})
	var verr rally.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for foreign currency, got %v", err)
	}
}
