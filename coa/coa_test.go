package coa

import "testing"

func TestClassOf(t *testing.T) {
	tests := []struct {
		name  string
		code  Code
		class Class
	}{
		{"cash bank", Assets.CashBank, ClassAsset},
		{"gateway cash", Assets.GatewayCash, ClassAsset},
		{"inventory", Assets.Inventory, ClassAsset},
		{"payable commission", Liabilities.PayableCommission, ClassLiability},
		{"owner capital", Equity.OwnerCapital, ClassEquity},
		{"drilling revenue", Revenue.Drilling, ClassRevenue},
		{"open play revenue", Revenue.OpenPlay, ClassRevenue},
		{"shuttlecock cogs", COGS.Shuttlecock, ClassCOGS},
		{"court rental cogs", COGS.CourtRental, ClassCOGS},
		{"coach fee cogs", COGS.CoachFee, ClassCOGS},
		{"gateway fee opex", Opex.GatewayFee, ClassOpex},
		{"unknown code", Code("9-999"), Class("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassOf(tt.code); got != tt.class {
				t.Errorf("ClassOf(%q) = %q, want %q", tt.code, got, tt.class)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	name, ok := Lookup(COGS.Shuttlecock)
	if !ok {
		t.Fatalf("Lookup(%q) not found", COGS.Shuttlecock)
	}
	if name != "COGS - Shuttlecock" {
		t.Errorf("unexpected name %q", name)
	}

	if _, ok := Lookup(Code("1-999")); ok {
		t.Error("Lookup of unknown code should fail")
	}
}

func TestEveryCodeHasNameAndClass(t *testing.T) {
	for _, code := range All() {
		if !Valid(code) {
			t.Errorf("code %q not valid", code)
		}
		if _, ok := Lookup(code); !ok {
			t.Errorf("code %q has no name", code)
		}
		if ClassOf(code) == "" {
			t.Errorf("code %q has no class", code)
		}
	}
}

func TestCodesAreUnique(t *testing.T) {
	seen := make(map[Code]bool)
	for _, code := range All() {
		if seen[code] {
			t.Errorf("duplicate account code %q", code)
		}
		seen[code] = true
	}
}
