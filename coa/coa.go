// Package coa defines the frozen chart of accounts used to classify every
// debit/credit line Rally records.
//
// Account codes follow the "<class>-<subcode>" convention: the leading digit
// identifies the account class (1 asset, 2 liability, 3 equity, 4 revenue,
// 5 cost of goods sold, 6 operating expense). Codes are compile-time
// constants; extending the chart is a code change, never a data change, so
// the ledger's account references stay auditable.
package coa

import "strings"

// Code is an immutable account code string, e.g. "1-101".
type Code string

// String returns the raw account code.
func (c Code) String() string { return string(c) }

// Class classifies accounts by the leading digit of their code.
type Class string

// Account classes.
const (
	ClassAsset     Class = "asset"
	ClassLiability Class = "liability"
	ClassEquity    Class = "equity"
	ClassRevenue   Class = "revenue"
	ClassCOGS      Class = "cogs"
	ClassOpex      Class = "opex"
)

// Assets groups the asset accounts (1-*).
var Assets = struct {
	CashBank    Code // operating bank account
	GatewayCash Code // balance held at the payment gateway
	Inventory   Code // consumables and gear at weighted-average cost
}{
	CashBank:    "1-101",
	GatewayCash: "1-102",
	Inventory:   "1-201",
}

// Liabilities groups the liability accounts (2-*).
var Liabilities = struct {
	PayableCommission Code // coach fees accrued, not yet disbursed
}{
	PayableCommission: "2-101",
}

// Equity groups the equity accounts (3-*).
var Equity = struct {
	OwnerCapital Code // paid-in capital, including contributed stock
}{
	OwnerCapital: "3-101",
}

// Revenue groups the revenue accounts (4-*).
var Revenue = struct {
	Drilling    Code // coached drilling sessions
	OpenPlay    Code // open play ("mabar") sessions; tournaments post here too
	Merchandise Code
}{
	Drilling:    "4-101",
	OpenPlay:    "4-102",
	Merchandise: "4-201",
}

// COGS groups the cost-of-goods-sold accounts (5-*).
var COGS = struct {
	Shuttlecock Code
	CourtRental Code
	CoachFee    Code
}{
	Shuttlecock: "5-101",
	CourtRental: "5-102",
	CoachFee:    "5-103",
}

// Opex groups the operating expense accounts (6-*).
var Opex = struct {
	GatewayFee  Code // per-transaction payment gateway fee
	PlatformFee Code // booking platform fee
}{
	GatewayFee:  "6-101",
	PlatformFee: "6-102",
}

// names is the complete registry. Every code above must appear here.
var names = map[Code]string{
	Assets.CashBank:               "Cash - Bank",
	Assets.GatewayCash:            "Cash - Payment Gateway",
	Assets.Inventory:              "Inventory",
	Liabilities.PayableCommission: "Payable - Coach Commission",
	Equity.OwnerCapital:           "Owner Capital",
	Revenue.Drilling:              "Revenue - Drilling",
	Revenue.OpenPlay:              "Revenue - Open Play",
	Revenue.Merchandise:           "Revenue - Merchandise",
	COGS.Shuttlecock:              "COGS - Shuttlecock",
	COGS.CourtRental:              "COGS - Court Rental",
	COGS.CoachFee:                 "COGS - Coach Fee",
	Opex.GatewayFee:               "Expense - Gateway Fee",
	Opex.PlatformFee:              "Expense - Platform Fee",
}

// Valid reports whether code is part of the chart.
func Valid(code Code) bool {
	_, ok := names[code]
	return ok
}

// Lookup returns the display name of an account code.
func Lookup(code Code) (string, bool) {
	name, ok := names[code]
	return name, ok
}

// ClassOf returns the class encoded in the leading digit of the code.
// Returns "" for codes outside the chart.
func ClassOf(code Code) Class {
	if !Valid(code) {
		return ""
	}

	prefix, _, found := strings.Cut(string(code), "-")
	if !found {
		return ""
	}

	switch prefix {
	case "1":
		return ClassAsset
	case "2":
		return ClassLiability
	case "3":
		return ClassEquity
	case "4":
		return ClassRevenue
	case "5":
		return ClassCOGS
	case "6":
		return ClassOpex
	default:
		return ""
	}
}

// All returns every account code in the chart. The returned slice is a copy.
func All() []Code {
	codes := make([]Code, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	return codes
}
