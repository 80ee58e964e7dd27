package calculator

import "findata/internal/model"

// EMA is the recursive exponential moving average seeded with the first price:
// ema[i] = price[i]*k + ema[i-1]*(1-k), k = 2/(span+1).
func EMA(prices []float64, span int) []float64 {
	if len(prices) == 0 {
		return nil
	}
	k := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*k + out[i-1]*(1-k)
	}
	return out
}

// CalculateMACD returns the last MACD, signal and histogram values.
// Fewer than slow prices yields the zero value.
func CalculateMACD(prices []float64, fast, slow, signal int) model.MACD {
	if len(prices) == 0 || len(prices) < slow {
		return model.MACD{}
	}
	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)

	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := EMA(line, signal)

	last := len(prices) - 1
	return model.MACD{
		MACDLine:   Round2(line[last]),
		SignalLine: Round2(signalLine[last]),
		Histogram:  Round2(line[last] - signalLine[last]),
	}
}

// CalculateBollinger returns bands of numStd population deviations around
// the trailing period mean. Fewer than period prices yields the zero value.
func CalculateBollinger(prices []float64, period int, numStd float64) model.BollingerBands {
	if period <= 0 || len(prices) < period {
		return model.BollingerBands{}
	}
	recent := prices[len(prices)-period:]
	sma := mean(recent)
	std := popStd(recent)
	return model.BollingerBands{
		Upper:        Round2(sma + std*numStd),
		Middle:       Round2(sma),
		Lower:        Round2(sma - std*numStd),
		CurrentPrice: Round2(prices[len(prices)-1]),
	}
}
