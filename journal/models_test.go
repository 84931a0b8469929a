package journal

import (
	"math/rand"
	"testing"

	"github.com/xraph/rally/coa"
	"github.com/xraph/rally/types"
)

func TestTotals(t *testing.T) {
	txn := &Transaction{
		Entries: []Entry{
			{Account: coa.COGS.Shuttlecock, Debit: types.IDR(20000)},
			{Account: coa.COGS.CourtRental, Debit: types.IDR(150000)},
			{Account: coa.Assets.Inventory, Credit: types.IDR(20000)},
			{Account: coa.Assets.CashBank, Credit: types.IDR(150000)},
		},
	}

	debit, credit := txn.Totals()
	if !debit.Equal(types.IDR(170000)) {
		t.Errorf("debit: got %v, want %v", debit, types.IDR(170000))
	}
	if !credit.Equal(types.IDR(170000)) {
		t.Errorf("credit: got %v, want %v", credit, types.IDR(170000))
	}
}

func TestBalanced(t *testing.T) {
	tests := []struct {
		name      string
		entries   []Entry
		tolerance int64
		want      bool
	}{
		{
			name: "exactly balanced",
			entries: []Entry{
				{Account: coa.Assets.Inventory, Debit: types.IDR(300000)},
				{Account: coa.Equity.OwnerCapital, Credit: types.IDR(300000)},
			},
			tolerance: 0,
			want:      true,
		},
		{
			name: "off by one within tolerance",
			entries: []Entry{
				{Account: coa.Assets.Inventory, Debit: types.IDR(100001)},
				{Account: coa.Assets.CashBank, Credit: types.IDR(100000)},
			},
			tolerance: 1,
			want:      true,
		},
		{
			name: "off by one, zero tolerance",
			entries: []Entry{
				{Account: coa.Assets.Inventory, Debit: types.IDR(100001)},
				{Account: coa.Assets.CashBank, Credit: types.IDR(100000)},
			},
			tolerance: 0,
			want:      false,
		},
		{
			name: "grossly unbalanced",
			entries: []Entry{
				{Account: coa.Assets.Inventory, Debit: types.IDR(500000)},
				{Account: coa.Assets.CashBank, Credit: types.IDR(100000)},
			},
			tolerance: 1,
			want:      false,
		},
		{
			name: "credit exceeds debit",
			entries: []Entry{
				{Account: coa.Assets.Inventory, Debit: types.IDR(100000)},
				{Account: coa.Assets.CashBank, Credit: types.IDR(100005)},
			},
			tolerance: 1,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &Transaction{Entries: tt.entries}
			if got := txn.Balanced(tt.tolerance); got != tt.want {
				t.Errorf("Balanced(%d) = %v, want %v", tt.tolerance, got, tt.want)
			}
		})
	}
}

// TestBalancedRandomized generates random entry sets and checks that
// Balanced agrees with a direct sum comparison.
func TestBalancedRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	accounts := []coa.Code{
		coa.Assets.CashBank, coa.Assets.Inventory,
		coa.Revenue.OpenPlay, coa.COGS.Shuttlecock,
	}

	for i := 0; i < 500; i++ {
		n := 2 + rng.Intn(6)
		entries := make([]Entry, 0, n)
		var debit, credit int64

		for j := 0; j < n; j++ {
			amount := int64(1 + rng.Intn(1_000_000))
			account := accounts[rng.Intn(len(accounts))]
			if rng.Intn(2) == 0 {
				entries = append(entries, Entry{Account: account, Debit: types.IDR(amount)})
				debit += amount
			} else {
				entries = append(entries, Entry{Account: account, Credit: types.IDR(amount)})
				credit += amount
			}
		}

		txn := &Transaction{Entries: entries}
		diff := debit - credit
		if diff < 0 {
			diff = -diff
		}

		want := diff <= 1
		if got := txn.Balanced(1); got != want {
			t.Fatalf("iteration %d: Balanced(1) = %v, want %v (debit=%d credit=%d)",
				i, got, want, debit, credit)
		}
	}
}

func TestTotalsEmptyTransaction(t *testing.T) {
	txn := &Transaction{}
	debit, credit := txn.Totals()
	if !debit.IsZero() || !credit.IsZero() {
		t.Errorf("empty transaction totals should be zero, got %v / %v", debit, credit)
	}
	if !txn.Balanced(0) {
		t.Error("empty transaction should be trivially balanced")
	}
}
