package reference

import (
	"math"
	"math/rand/v2"
	"time"

	"findata/internal/calculator"
	"findata/internal/model"
)

// Walk generates a random-walk daily series of n consecutive calendar days
// ending at end. Each close drifts from the previous one by up to ±3% plus a
// slight upward bias; highs and lows wrap the open/close range.
func Walk(base float64, n int, end time.Time, rng *rand.Rand) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	start := model.Date(end).AddDate(0, 0, -(n - 1))
	price := base
	for i := range bars {
		change := uniform(rng, -0.03, 0.03)
		trend := uniform(rng, -0.002, 0.005)

		open := price
		close := open * (1 + change + trend)
		high := math.Max(open, close) * uniform(rng, 1.005, 1.02)
		low := math.Min(open, close) * uniform(rng, 0.98, 0.995)
		volume := int64(float64(2_000_000+rng.IntN(6_000_001)) * (1 + math.Abs(change)*10))

		bars[i] = model.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   calculator.Round2(open),
			High:   calculator.Round2(high),
			Low:    calculator.Round2(low),
			Close:  calculator.Round2(close),
			Volume: volume,
		}
		price = close
	}
	return bars
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
