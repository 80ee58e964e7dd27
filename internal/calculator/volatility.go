package calculator

import "math"

const tradingDaysPerYear = 252

// Volatility classes reported by ClassifyVolatility.
const (
	VolatilityLow      = "low"
	VolatilityMedium   = "medium"
	VolatilityHigh     = "high"
	VolatilityVeryHigh = "very_high"
)

// ClassifyVolatility buckets the annualized population deviation of
// fractional daily returns.
func ClassifyVolatility(returns []float64) string {
	if len(returns) < 2 {
		return VolatilityMedium
	}
	annual := popStd(returns) * math.Sqrt(tradingDaysPerYear)
	switch {
	case annual < 0.15:
		return VolatilityLow
	case annual < 0.30:
		return VolatilityMedium
	case annual < 0.50:
		return VolatilityHigh
	default:
		return VolatilityVeryHigh
	}
}
