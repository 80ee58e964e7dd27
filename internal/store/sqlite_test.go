package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"findata/internal/model"
)

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "findata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func derived(date string, close float64) model.DerivedBar {
	return model.DerivedBar{
		PriceBar: model.PriceBar{Date: day(date), Open: close - 1, High: close + 1, Low: close - 2, Close: close, Volume: 1000},
		MA7:      close,
	}
}

func TestUpsertBars_InsertOrIgnore(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	n, err := s.UpsertBars(ctx, "TCS", []model.DerivedBar{derived("2024-01-02", 100), derived("2024-01-03", 101)})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	again := derived("2024-01-03", 999)
	n, err = s.UpsertBars(ctx, "TCS", []model.DerivedBar{again, derived("2024-01-04", 102)})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	bars, err := s.Bars(ctx, "TCS", day("2024-01-01"), day("2024-12-31"))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	require.Equal(t, 101.0, bars[1].Close, "existing row is kept")
	require.Equal(t, day("2024-01-04"), bars[2].Date)
}

func TestUpsertBars_NonFiniteIndicators(t *testing.T) {
	s := openTemp(t)
	b := derived("2024-01-02", 100)
	b.DailyReturn = math.Inf(1)
	b.VolumeTrend = math.NaN()

	n, err := s.UpsertBars(context.Background(), "X", []model.DerivedBar{b})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var ret *float64
	require.NoError(t, s.DB().QueryRow(`SELECT daily_return FROM stock_data WHERE symbol = 'X'`).Scan(&ret))
	require.Nil(t, ret)
}

func TestBars_RangeAndSymbol(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	_, err := s.UpsertBars(ctx, "A", []model.DerivedBar{
		derived("2024-01-05", 3), derived("2024-01-02", 1), derived("2024-01-03", 2),
	})
	require.NoError(t, err)
	_, err = s.UpsertBars(ctx, "B", []model.DerivedBar{derived("2024-01-03", 50)})
	require.NoError(t, err)

	bars, err := s.Bars(ctx, "A", day("2024-01-03"), day("2024-01-05"))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, 2.0, bars[0].Close)
	require.Equal(t, 3.0, bars[1].Close)

	none, err := s.Bars(ctx, "C", day("2024-01-01"), day("2024-12-31"))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestLatestBars_Ascending(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	_, err := s.UpsertBars(ctx, "A", []model.DerivedBar{
		derived("2024-01-02", 1), derived("2024-01-03", 2), derived("2024-01-04", 3),
	})
	require.NoError(t, err)

	bars, err := s.LatestBars(ctx, "A", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, 2.0, bars[0].Close)
	require.Equal(t, 3.0, bars[1].Close)
}

func TestCompanies(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertCompany(ctx, model.CompanyProfile{Symbol: "TCS", Name: "Tata", Sector: "Technology"}))
	require.NoError(t, s.UpsertCompany(ctx, model.CompanyProfile{Symbol: "SBIN", Name: "SBI", Sector: "Financial"}))
	require.NoError(t, s.UpsertCompany(ctx, model.CompanyProfile{Symbol: "TCS", Name: "Tata Consultancy Services", Sector: "Technology", MarketCap: 1e12}))

	all, err := s.Companies(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "SBIN", all[0].Symbol)

	tech, err := s.Companies(ctx, "Technology")
	require.NoError(t, err)
	require.Len(t, tech, 1)
	require.Equal(t, "Tata Consultancy Services", tech[0].Name)
	require.Equal(t, 1e12, tech[0].MarketCap)

	p, err := s.Company(ctx, "SBIN")
	require.NoError(t, err)
	require.Equal(t, "Financial", p.Sector)

	_, err = s.Company(ctx, "NOPE")
	require.True(t, errors.Is(err, ErrNotFound))
}
