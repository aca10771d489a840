package services

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// percentOf returns part as a percentage of whole, rounded to two places. A zero whole yields zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
