package types

import (
	"github.com/shopspring/decimal"
)

// Monetary amounts are carried as integer minor units (cents, paise).
// Conversion to major units only happens at the payment gateway edge.

func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}

func DecimalToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// LineTotalCents multiplies a unit price by a quantity without leaving
// integer space.
func LineTotalCents(unitPriceCents int64, quantity int) int64 {
	return unitPriceCents * int64(quantity)
}
