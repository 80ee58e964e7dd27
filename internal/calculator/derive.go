// Package calculator derives indicator columns and technical signals from
// normalized daily price series.
package calculator

import (
	"errors"
	"fmt"

	"findata/internal/model"
)

const (
	shortMAWindow    = 7
	longMAWindow     = 30
	volatilityWindow = 20
	volumeWindow     = 20
)

// ErrUnsorted is returned when Derive receives a series that is not strictly
// ascending by date. Normalize the series first.
var ErrUnsorted = errors.New("series is not strictly ascending by date")

// Derive computes the indicator columns for every bar in one pass.
// Windows expand at the start of the series (minimum one observation).
// Ratios against a zero average are left non-finite.
func Derive(bars []model.PriceBar) ([]model.DerivedBar, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("derive: %w (%s follows %s)", ErrUnsorted,
				bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}

	n := len(bars)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	returns := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = float64(b.Volume)
		returns[i] = Round4((b.Close - b.Open) / b.Open * 100)
	}

	out := make([]model.DerivedBar, n)
	for i, b := range bars {
		ma30 := Round2(trailingMean(closes, i, longMAWindow))
		avgVolume := trailingMean(volumes, i, volumeWindow)
		out[i] = model.DerivedBar{
			PriceBar:      b,
			DailyReturn:   returns[i],
			MA7:           Round2(trailingMean(closes, i, shortMAWindow)),
			MA30:          ma30,
			Volatility:    Round4(trailingSampleStd(returns, i, volatilityWindow)),
			MomentumScore: Round4((b.Close - ma30) / ma30 * 100),
			VolumeTrend:   Round4((volumes[i] - avgVolume) / avgVolume * 100),
		}
	}
	return out, nil
}
