package api

import (
	"math"

	"github.com/guregu/null/v6"

	"findata/internal/market"
	"findata/internal/model"
)

const dateLayout = "2006-01-02"

// finite maps NaN and infinities to null so they encode as JSON null.
func finite(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

type barDTO struct {
	Date          string     `json:"date"`
	Open          float64    `json:"open"`
	High          float64    `json:"high"`
	Low           float64    `json:"low"`
	Close         float64    `json:"close"`
	Volume        int64      `json:"volume"`
	DailyReturn   null.Float `json:"daily_return"`
	MA7           null.Float `json:"ma7"`
	MA30          null.Float `json:"ma30"`
	Volatility    null.Float `json:"volatility"`
	MomentumScore null.Float `json:"momentum_score"`
	VolumeTrend   null.Float `json:"volume_trend"`
}

type seriesDTO struct {
	Symbol string           `json:"symbol"`
	Source model.Provenance `json:"source"`
	Count  int              `json:"count"`
	Data   []barDTO         `json:"data"`
}

func newSeriesDTO(s market.Series) seriesDTO {
	out := seriesDTO{Symbol: s.Symbol, Source: s.Source, Count: len(s.Bars), Data: make([]barDTO, len(s.Bars))}
	for i, b := range s.Bars {
		out.Data[i] = barDTO{
			Date:          b.Date.Format(dateLayout),
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			Volume:        b.Volume,
			DailyReturn:   finite(b.DailyReturn),
			MA7:           finite(b.MA7),
			MA30:          finite(b.MA30),
			Volatility:    finite(b.Volatility),
			MomentumScore: finite(b.MomentumScore),
			VolumeTrend:   finite(b.VolumeTrend),
		}
	}
	return out
}

type statsDTO struct {
	Week52High     float64    `json:"week52_high"`
	Week52Low      float64    `json:"week52_low"`
	AvgClose       float64    `json:"avg_close"`
	CurrentPrice   float64    `json:"current_price"`
	TotalVolume    int64      `json:"total_volume"`
	AvgDailyReturn null.Float `json:"avg_daily_return"`
	Volatility     null.Float `json:"volatility"`
}

type summaryDTO struct {
	Symbol      string           `json:"symbol"`
	Stats       statsDTO         `json:"stats"`
	DailyReturn null.Float       `json:"daily_return"`
	Trend       model.Trend      `json:"trend"`
	Source      model.Provenance `json:"source"`
}

func newSummaryDTO(s model.Summary) summaryDTO {
	return summaryDTO{
		Symbol: s.Symbol,
		Stats: statsDTO{
			Week52High:     s.Stats.Week52High,
			Week52Low:      s.Stats.Week52Low,
			AvgClose:       s.Stats.AvgClose,
			CurrentPrice:   s.Stats.CurrentPrice,
			TotalVolume:    s.Stats.TotalVolume,
			AvgDailyReturn: finite(s.Stats.AvgDailyReturn),
			Volatility:     finite(s.Stats.Volatility),
		},
		DailyReturn: finite(s.DailyReturn),
		Trend:       s.Trend,
		Source:      s.Source,
	}
}

type comparisonDTO struct {
	Symbol1           string     `json:"symbol1"`
	Symbol2           string     `json:"symbol2"`
	Days              int        `json:"days"`
	Correlation       null.Float `json:"correlation"`
	Symbol1Return     null.Float `json:"symbol1_return"`
	Symbol2Return     null.Float `json:"symbol2_return"`
	Symbol1Volatility null.Float `json:"symbol1_volatility"`
	Symbol2Volatility null.Float `json:"symbol2_volatility"`
	BetterPerformer   string     `json:"better_performer"`
}

func newComparisonDTO(c model.Comparison, days int) comparisonDTO {
	return comparisonDTO{
		Symbol1:           c.Symbol1,
		Symbol2:           c.Symbol2,
		Days:              days,
		Correlation:       finite(c.Correlation),
		Symbol1Return:     finite(c.Symbol1Return),
		Symbol2Return:     finite(c.Symbol2Return),
		Symbol1Volatility: finite(c.Symbol1Volatility),
		Symbol2Volatility: finite(c.Symbol2Volatility),
		BetterPerformer:   c.BetterPerformer,
	}
}
