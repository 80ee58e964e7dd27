// Package analytics computes cross-sectional results over several
// derived series: pairwise comparison, correlation and top movers.
package analytics

import (
	"errors"
	"math"
	"time"

	"findata/internal/calculator"
	"findata/internal/model"
)

// ErrNoData is returned when a series needed for a comparison is empty.
var ErrNoData = errors.New("no data for comparison")

// Compare reports total return, daily-return deviation and return
// correlation for two symbols over the series given. Return and deviation
// cover each full series; correlation pairs daily returns on the dates
// both series share, so a holiday on one exchange does not shift the other.
func Compare(symbol1 string, bars1 []model.DerivedBar, symbol2 string, bars2 []model.DerivedBar) (model.Comparison, error) {
	if len(bars1) == 0 || len(bars2) == 0 {
		return model.Comparison{}, ErrNoData
	}

	ret1 := totalReturn(bars1)
	ret2 := totalReturn(bars2)
	returns1 := calculator.Returns(bars1)
	returns2 := calculator.Returns(bars2)

	better := symbol1
	if ret2 > ret1 {
		better = symbol2
	}

	return model.Comparison{
		Symbol1:           symbol1,
		Symbol2:           symbol2,
		Correlation:       calculator.Round4(Correlation(alignedReturns(bars1, bars2))),
		Symbol1Return:     calculator.Round2(ret1),
		Symbol2Return:     calculator.Round2(ret2),
		Symbol1Volatility: calculator.Round2(calculator.PopStd(returns1)),
		Symbol2Volatility: calculator.Round2(calculator.PopStd(returns2)),
		BetterPerformer:   better,
	}, nil
}

// alignedReturns returns the daily returns of a and b on their common
// dates, in the order of a.
func alignedReturns(a, b []model.DerivedBar) ([]float64, []float64) {
	byDate := make(map[string]float64, len(b))
	for _, bar := range b {
		byDate[dayKey(bar.Date)] = bar.DailyReturn
	}
	var ra, rb []float64
	for _, bar := range a {
		if r, ok := byDate[dayKey(bar.Date)]; ok {
			ra = append(ra, bar.DailyReturn)
			rb = append(rb, r)
		}
	}
	return ra, rb
}

func dayKey(t time.Time) string { return t.Format(time.DateOnly) }

func totalReturn(bars []model.DerivedBar) float64 {
	first := bars[0].Close
	last := bars[len(bars)-1].Close
	return (last - first) / first * 100
}

// Correlation is the Pearson coefficient of a and b. Sequences of unequal
// or zero length, and sequences without variance, correlate at 0.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	r := cov / math.Sqrt(varA*varB)
	// Clamp float drift on perfectly (anti)correlated input.
	return math.Max(-1, math.Min(1, r))
}
