package calculator

import "findata/internal/model"

// minR2 is the fit quality below which a trend is reported as neutral.
const minR2 = 0.5

// Prediction methods accepted by PredictNextPrice.
const (
	PredictLinear = "linear"
	PredictMA     = "ma"
	PredictEMA    = "ema"
)

const predictWindow = 10

// linearRegression fits y against its 0-based index by ordinary least squares.
// r2 is 0 when either variable has no variance.
func linearRegression(y []float64) (slope, intercept, r2 float64) {
	n := float64(len(y))
	if n == 0 {
		return 0, 0, 0
	}
	xMean := (n - 1) / 2
	yMean := mean(y)

	var sxx, sxy, syy float64
	for i, v := range y {
		dx := float64(i) - xMean
		dy := v - yMean
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return 0, yMean, 0
	}
	slope = sxy / sxx
	intercept = yMean - slope*xMean
	if syy == 0 {
		return slope, intercept, 0
	}
	return slope, intercept, (sxy * sxy) / (sxx * syy)
}

// DetectTrend classifies the trailing window of closes by the sign of the
// regression slope, provided the fit explains at least half the variance.
func DetectTrend(prices []float64, window int) model.Trend {
	if window <= 0 || len(prices) < window {
		return model.TrendNeutral
	}
	slope, _, r2 := linearRegression(prices[len(prices)-window:])
	switch {
	case r2 < minR2:
		return model.TrendNeutral
	case slope > 0:
		return model.TrendBullish
	case slope < 0:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}

// PredictNextPrice projects the next close. Unknown methods and short
// series return the last price unchanged.
func PredictNextPrice(prices []float64, method string) float64 {
	if len(prices) == 0 {
		return 0
	}
	last := prices[len(prices)-1]
	if len(prices) < predictWindow {
		return last
	}

	switch method {
	case PredictLinear, "":
		slope, intercept, _ := linearRegression(prices)
		return Round2(slope*float64(len(prices)) + intercept)
	case PredictMA:
		sma, err := CalculateSMA(prices, predictWindow)
		if err != nil {
			return last
		}
		return Round2(sma)
	case PredictEMA:
		ema := EMA(prices, predictWindow)
		return Round2(ema[len(ema)-1])
	default:
		return last
	}
}
