package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// round rounds half away from zero on the decimal representation of v.
// Non-finite values pass through unchanged.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Round2 rounds a price-like value to two decimals.
func Round2(v float64) float64 { return round(v, 2) }

// Round4 rounds a ratio-like value to four decimals.
func Round4(v float64) float64 { return round(v, 4) }
