package models

import "github.com/shopspring/decimal"

func init() {
	// Money is exchanged with the console as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds an amount half away from zero to whole cents
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Cents converts an amount to integer cents for storage
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromCents converts integer cents back to an amount
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
