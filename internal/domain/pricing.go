package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeFinalPrice applies an optional percentage discount to base and rounds
// the result to 2 decimal places (half away from zero). A nil or zero discount
// returns base unchanged.
func ComputeFinalPrice(base float64, discountPercentage *float64) float64 {
	if discountPercentage == nil || *discountPercentage == 0 {
		return base
	}
	b := decimal.NewFromFloat(base)
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(*discountPercentage).Div(hundred))
	return b.Mul(factor).Round(2).InexactFloat64()
}
