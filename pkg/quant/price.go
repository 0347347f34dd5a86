package quant

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Buy-side entry policy: bid 10% below the observed best ask, rounded to
// one decimal place. These are policy constants, not market parameters.
var (
	entryDiscount = decimal.RequireFromString("0.9")
)

const entryPrecision = 1

// ParsePrice converts a price string from the exchange into a Decimal.
// All exchange payloads carry prices as strings; float64 is never used
// for money on the boundary.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d, nil
}

// LimitPrice applies the entry policy to the best ask.
func LimitPrice(bestAsk decimal.Decimal) decimal.Decimal {
	return bestAsk.Mul(entryDiscount).Round(entryPrecision)
}
