package calculator

import (
	"errors"
	"math"

	"findata/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return mean(prices[len(prices)-period:]), nil
}

// trailingMean averages values[i-window+1..i], shrinking the window at the
// start of the series so that at least one observation is always used.
func trailingMean(values []float64, i, window int) float64 {
	return mean(values[windowStart(i, window) : i+1])
}

// trailingSampleStd is the sample standard deviation over the same
// expanding window. A single observation has zero deviation.
func trailingSampleStd(values []float64, i, window int) float64 {
	return sampleStd(values[windowStart(i, window) : i+1])
}

func windowStart(i, window int) int {
	start := i - window + 1
	if start < 0 {
		return 0
	}
	return start
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// popStd uses N in the denominator.
func popStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)))
}

// sampleStd uses N-1 in the denominator.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Closes extracts the close column.
func Closes(bars []model.DerivedBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Highs extracts the high column.
func Highs(bars []model.DerivedBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func Lows(bars []model.DerivedBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Returns extracts the daily return column.
func Returns(bars []model.DerivedBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.DailyReturn
	}
	return out
}

// PopStd exposes the population standard deviation for cross-sectional use.
func PopStd(values []float64) float64 { return popStd(values) }
