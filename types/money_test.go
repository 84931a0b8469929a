package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"IDR", IDR(25000), 25000, "idr", "Rp25000"},
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"EUR", EUR(19900), 19900, "eur", "€199.00"},
		{"SGD", SGD(1250), 1250, "sgd", "S$12.50"},
		{"MYR", MYR(7550), 7550, "myr", "RM75.50"},
		{"AUD", AUD(2500), 2500, "aud", "A$25.00"},
		{"Zero IDR", Zero("IDR"), 0, "idr", "Rp0"},
		{"New", New(150000, "IDR"), 150000, "idr", "Rp150000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return IDR(100).Add(IDR(200)) }, IDR(300)},
		{"Subtract", func() Money { return IDR(500).Subtract(IDR(200)) }, IDR(300)},
		{"Multiply", func() Money { return IDR(25000).Multiply(12) }, IDR(300000)},
		{"Divide", func() Money { return IDR(900).Divide(3) }, IDR(300)},
		{"Negate", func() Money { return IDR(100).Negate() }, IDR(-100)},
		{"Abs positive", func() Money { return IDR(100).Abs() }, IDR(100)},
		{"Abs negative", func() Money { return IDR(-100).Abs() }, IDR(100)},
		{"Complex", func() Money {
			return IDR(1000).Add(IDR(500)).Multiply(2).Subtract(IDR(1000))
		}, IDR(2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	// This should panic
	_ = IDR(100).Add(USD(100))
}

func TestMoneyDivisionByZero(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for division by zero")
		}
	}()

	// This should panic
	_ = IDR(100).Divide(0)
}

func TestMoneyComparisons(t *testing.T) {
	if !IDR(100).LessThan(IDR(200)) {
		t.Error("100 should be less than 200")
	}
	if !IDR(200).GreaterThan(IDR(100)) {
		t.Error("200 should be greater than 100")
	}
	if !IDR(0).IsZero() {
		t.Error("0 should be zero")
	}
	if !IDR(1).IsPositive() {
		t.Error("1 should be positive")
	}
	if !IDR(-1).IsNegative() {
		t.Error("-1 should be negative")
	}
}

func TestMoneySum(t *testing.T) {
	got := Sum(IDR(20000), IDR(150000), IDR(100000))
	if !got.Equal(IDR(270000)) {
		t.Errorf("Sum: got %v, want %v", got, IDR(270000))
	}

	empty := Sum()
	if !empty.IsZero() {
		t.Errorf("empty Sum should be zero, got %v", empty)
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(IDR(25000))
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Amount != 25000 || decoded.Currency != "idr" || decoded.Display != "Rp25000" {
		t.Errorf("unexpected JSON payload: %+v", decoded)
	}
}
