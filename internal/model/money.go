package model

import "github.com/shopspring/decimal"

// DefaultCurrency is the store currency.
const DefaultCurrency = "GHS"

func init() {
	// Amounts are numbers on the wire, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MinorUnits converts an amount to the smallest currency unit (pesewas, cents).
func MinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
