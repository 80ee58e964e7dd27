package calculator

import (
	"math"
	"sort"
	"time"

	"findata/internal/model"
)

const statsLookback = 365 * 24 * time.Hour

// SupportResistance returns the 5th percentile of the trailing lows and the
// 95th percentile of the trailing highs. Shorter series use every point.
func SupportResistance(highs, lows []float64, window int) model.SupportResistance {
	if len(highs) == 0 || len(lows) == 0 {
		return model.SupportResistance{}
	}
	if window > 0 && len(highs) >= window && len(lows) >= window {
		highs = highs[len(highs)-window:]
		lows = lows[len(lows)-window:]
	}
	return model.SupportResistance{
		Support:    Round2(percentile(lows, 5)),
		Resistance: Round2(percentile(highs, 95)),
	}
}

// percentile interpolates linearly between the two closest ranks.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ComputeStats summarizes the year of bars ending at asOf. When that window
// is empty the whole series is used. The current price is always the last
// bar of the series.
func ComputeStats(bars []model.DerivedBar, asOf time.Time) model.SeriesStats {
	if len(bars) == 0 {
		return model.SeriesStats{}
	}
	cutoff := asOf.Add(-statsLookback)
	window := make([]model.DerivedBar, 0, len(bars))
	for _, b := range bars {
		if !b.Date.Before(cutoff) {
			window = append(window, b)
		}
	}
	if len(window) == 0 {
		window = bars
	}

	stats := model.SeriesStats{
		Week52High:   window[0].High,
		Week52Low:    window[0].Low,
		CurrentPrice: Round2(bars[len(bars)-1].Close),
	}
	closes := make([]float64, len(window))
	returns := make([]float64, len(window))
	for i, b := range window {
		stats.Week52High = math.Max(stats.Week52High, b.High)
		stats.Week52Low = math.Min(stats.Week52Low, b.Low)
		stats.TotalVolume += b.Volume
		closes[i] = b.Close
		returns[i] = b.DailyReturn
	}
	stats.Week52High = Round2(stats.Week52High)
	stats.Week52Low = Round2(stats.Week52Low)
	stats.AvgClose = Round2(mean(closes))
	stats.AvgDailyReturn = Round4(mean(returns))
	stats.Volatility = Round4(sampleStd(returns))
	return stats
}
