package calculator

import "errors"

// noLossRS is used as the relative strength when the window has no losses.
// It yields RSI = 100 - 100/101 ≈ 99.01 rather than 100.
const noLossRS = 100.0

// CalculateRSI computes RSI over the most recent period daily returns.
// Average gain and loss are taken over the positive and negative
// observations respectively. Returns 50.0 if data is insufficient.
func CalculateRSI(returns []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(returns) < period+1 {
		return 50.0, nil // default when data insufficient
	}

	var gainSum, lossSum float64
	var gains, losses int
	for _, r := range returns[len(returns)-period:] {
		switch {
		case r > 0:
			gainSum += r
			gains++
		case r < 0:
			lossSum -= r
			losses++
		}
	}

	var avgGain, avgLoss float64
	if gains > 0 {
		avgGain = gainSum / float64(gains)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}

	rs := noLossRS
	if avgLoss > 0 {
		rs = avgGain / avgLoss
	}
	return 100.0 - 100.0/(1.0+rs), nil
}
