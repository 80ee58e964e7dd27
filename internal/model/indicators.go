package model

// SeriesStats aggregates a window of derived bars.
type SeriesStats struct {
	Week52High     float64 `json:"week52_high"`
	Week52Low      float64 `json:"week52_low"`
	AvgClose       float64 `json:"avg_close"`
	CurrentPrice   float64 `json:"current_price"`
	TotalVolume    int64   `json:"total_volume"`
	AvgDailyReturn float64 `json:"avg_daily_return"`
	Volatility     float64 `json:"volatility"`
}

// Trend is the linear-regression classification of recent closes.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// MACD holds the last values of the MACD line, signal line and histogram.
type MACD struct {
	MACDLine   float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"histogram"`
}

// BollingerBands holds the bands over the trailing period.
type BollingerBands struct {
	Upper        float64 `json:"upper_band"`
	Middle       float64 `json:"middle_band"`
	Lower        float64 `json:"lower_band"`
	CurrentPrice float64 `json:"current_price"`
}

// SupportResistance holds percentile-based price levels.
type SupportResistance struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// Technicals bundles the signals served for one symbol.
type Technicals struct {
	Symbol             string            `json:"symbol"`
	RSI                float64           `json:"rsi"`
	MACD               MACD              `json:"macd"`
	Bollinger          BollingerBands    `json:"bollinger_bands"`
	SupportResistance  SupportResistance `json:"support_resistance"`
	Trend              Trend             `json:"trend"`
	VolatilityClass    string            `json:"volatility_class"`
	PredictedNextPrice float64           `json:"predicted_next_price"`
	CurrentPrice       float64           `json:"current_price"`
}

// Summary is the per-symbol overview.
type Summary struct {
	Symbol      string      `json:"symbol"`
	Stats       SeriesStats `json:"stats"`
	DailyReturn float64     `json:"daily_return"`
	Trend       Trend       `json:"trend"`
	Source      Provenance  `json:"source"`
}
