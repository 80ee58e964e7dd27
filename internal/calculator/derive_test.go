package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"

	"findata/internal/model"
	"findata/internal/series"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func bar(date string, o, h, l, c float64, v int64) model.PriceBar {
	return model.PriceBar{Date: day(date), Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestDerive_ExpandingWindows(t *testing.T) {
	bars := []model.PriceBar{
		bar("2024-01-02", 10, 10, 10, 10, 100),
		bar("2024-01-03", 20, 20, 20, 20, 200),
		bar("2024-01-04", 30, 30, 30, 30, 300),
	}
	out, err := Derive(bars)
	require.NoError(t, err)
	require.Len(t, out, 3)

	tests := []struct {
		ma7, ma30, momentum, volumeTrend float64
	}{
		{10, 10, 0, 0},
		{15, 15, 33.3333, 33.3333},
		{20, 20, 50, 50},
	}
	for i, tt := range tests {
		require.Equal(t, tt.ma7, out[i].MA7, "ma7[%d]", i)
		require.Equal(t, tt.ma30, out[i].MA30, "ma30[%d]", i)
		require.Equal(t, tt.momentum, out[i].MomentumScore, "momentum[%d]", i)
		require.Equal(t, tt.volumeTrend, out[i].VolumeTrend, "volume_trend[%d]", i)
		require.Equal(t, 0.0, out[i].DailyReturn)
	}
	require.Equal(t, bars[1], out[1].PriceBar)
}

func TestDerive_Volatility(t *testing.T) {
	out, err := Derive([]model.PriceBar{
		bar("2024-01-02", 100, 101, 99, 101, 10),
		bar("2024-01-03", 100, 103, 99, 103, 10),
	})
	require.NoError(t, err)
	require.Equal(t, 1.0, out[0].DailyReturn)
	require.Equal(t, 3.0, out[1].DailyReturn)
	require.Equal(t, 0.0, out[0].Volatility, "single observation")
	require.Equal(t, 1.4142, out[1].Volatility)
}

func TestDerive_RejectsUnsorted(t *testing.T) {
	for name, bars := range map[string][]model.PriceBar{
		"descending": {bar("2024-01-03", 1, 1, 1, 1, 1), bar("2024-01-02", 1, 1, 1, 1, 1)},
		"duplicate":  {bar("2024-01-02", 1, 1, 1, 1, 1), bar("2024-01-02", 1, 1, 1, 1, 1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Derive(bars)
			require.True(t, errors.Is(err, ErrUnsorted))
		})
	}
}

func TestDerive_EmptySeries(t *testing.T) {
	out, err := Derive(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestDerive_ZeroOpenIsNonFinite(t *testing.T) {
	out, err := Derive([]model.PriceBar{bar("2024-01-02", 0, 1, 0, 1, 0)})
	require.NoError(t, err)
	require.True(t, math.IsInf(out[0].DailyReturn, 1))
	require.True(t, math.IsNaN(out[0].VolumeTrend))
}

func TestNormalizeThenDerive_DuplicateArrival(t *testing.T) {
	rawBar := func(date string, o, h, l, c float64) model.RawBar {
		return model.RawBar{
			Date:   day(date),
			Open:   null.FloatFrom(o),
			High:   null.FloatFrom(h),
			Low:    null.FloatFrom(l),
			Close:  null.FloatFrom(c),
			Volume: null.IntFrom(1000),
		}
	}
	bars := series.Normalize([]model.RawBar{
		rawBar("2024-01-02", 100, 102, 99, 101),
		rawBar("2024-01-02", 100, 102, 99, 105),
		rawBar("2024-01-03", 101, 103, 100, 102),
	})
	require.Len(t, bars, 2)
	require.Equal(t, 105.0, bars[0].Close)
	require.Equal(t, 102.0, bars[1].Close)

	out, err := Derive(bars)
	require.NoError(t, err)
	require.Equal(t, 5.0, out[0].DailyReturn)
}

func TestRound(t *testing.T) {
	require.Equal(t, 2.68, Round2(2.675))
	require.Equal(t, 33.3333, Round4(100.0/3))
	require.True(t, math.IsNaN(Round2(math.NaN())))
	require.True(t, math.IsInf(Round4(math.Inf(-1)), -1))
}

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	require.Equal(t, 3.5, v)

	_, err = CalculateSMA([]float64{1}, 2)
	require.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	require.Error(t, err)
}
