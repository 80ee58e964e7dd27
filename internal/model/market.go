package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// PriceBar represents one trading day for one symbol.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// RawBar is a bar as delivered by a source, before normalization.
// Any price or volume field may be missing.
type RawBar struct {
	Date   time.Time
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Int
}

// Complete reports whether every required field is present.
func (r RawBar) Complete() bool {
	return !r.Date.IsZero() && r.Open.Valid && r.High.Valid && r.Low.Valid && r.Close.Valid && r.Volume.Valid
}

// Bar converts a complete raw bar. Callers must check Complete first.
func (r RawBar) Bar() PriceBar {
	return PriceBar{
		Date:   r.Date,
		Open:   r.Open.Float64,
		High:   r.High.Float64,
		Low:    r.Low.Float64,
		Close:  r.Close.Float64,
		Volume: r.Volume.Int64,
	}
}

// RawFromBar lifts a bar back into the raw shape with every field present.
func RawFromBar(b PriceBar) RawBar {
	return RawBar{
		Date:   b.Date,
		Open:   null.FloatFrom(b.Open),
		High:   null.FloatFrom(b.High),
		Low:    null.FloatFrom(b.Low),
		Close:  null.FloatFrom(b.Close),
		Volume: null.IntFrom(b.Volume),
	}
}

// DerivedBar is a PriceBar augmented with the indicator columns.
type DerivedBar struct {
	PriceBar
	DailyReturn   float64 `json:"daily_return"`
	MA7           float64 `json:"ma7"`
	MA30          float64 `json:"ma30"`
	Volatility    float64 `json:"volatility"`
	MomentumScore float64 `json:"momentum_score"`
	VolumeTrend   float64 `json:"volume_trend"`
}

// Date truncates t to its calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
