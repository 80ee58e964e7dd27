package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"findata/internal/collector"
	"findata/internal/market"
	"findata/internal/metrics"
	"findata/internal/model"
)

type fakeService struct {
	seriesDays  int
	compareDays int
	moversLimit int
	symbol      string
	err         error
	panics      bool
}

func (f *fakeService) Series(_ context.Context, symbol string, days int) (market.Series, error) {
	if f.panics {
		panic("boom")
	}
	f.symbol, f.seriesDays = symbol, days
	if f.err != nil {
		return market.Series{}, f.err
	}
	return market.Series{
		Symbol: symbol,
		Source: model.ProvenanceFreeAPI,
		Bars: []model.DerivedBar{{
			PriceBar:      model.PriceBar{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 0, High: 11, Low: 9, Close: 10, Volume: 5},
			DailyReturn:   math.Inf(1),
			MA7:           10,
			MA30:          10,
			MomentumScore: math.NaN(),
		}},
	}, nil
}

func (f *fakeService) Summary(_ context.Context, symbol string) (model.Summary, error) {
	if f.err != nil {
		return model.Summary{}, f.err
	}
	return model.Summary{Symbol: symbol, Trend: model.TrendBullish, Source: model.ProvenancePrimaryAPI,
		Stats: model.SeriesStats{CurrentPrice: 10, AvgDailyReturn: math.NaN()}}, nil
}

func (f *fakeService) Technicals(_ context.Context, symbol string) (model.Technicals, error) {
	if f.err != nil {
		return model.Technicals{}, f.err
	}
	return model.Technicals{Symbol: symbol, RSI: 55, Trend: model.TrendNeutral, VolatilityClass: "low"}, nil
}

func (f *fakeService) Compare(_ context.Context, symbol1, symbol2 string, days int) (model.Comparison, error) {
	f.compareDays = days
	if f.err != nil {
		return model.Comparison{}, f.err
	}
	return model.Comparison{Symbol1: symbol1, Symbol2: symbol2, Correlation: 1, BetterPerformer: symbol1}, nil
}

func (f *fakeService) Movers(_ context.Context, limit int) (model.TopMovers, error) {
	f.moversLimit = limit
	return model.TopMovers{Gainers: []model.Mover{}, Losers: []model.Mover{}}, nil
}

func (f *fakeService) Companies(_ context.Context, sector string) ([]model.CompanyProfile, error) {
	return []model.CompanyProfile{{Symbol: "TCS", Name: "TCS", Sector: sector}}, nil
}

func (f *fakeService) Profile(_ context.Context, symbol string) model.CompanyProfile {
	return model.CompanyProfile{Symbol: symbol, Name: symbol, Sector: model.UnknownSector}
}

func newTestServer(t *testing.T, svc *fakeService, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(svc, nil, m).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestInfoAndHeaders(t *testing.T) {
	srv := newTestServer(t, &fakeService{}, nil)

	resp, body := get(t, srv, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "FinData API", body["name"])
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = get(t, srv, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv, "/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestIDPassthrough(t *testing.T) {
	srv := newTestServer(t, &fakeService{}, nil)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestData(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(t, svc, nil)

	resp, body := get(t, srv, "/api/v1/data/tcs")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 30, svc.seriesDays)
	require.Equal(t, "TCS", svc.symbol)
	require.Equal(t, "free-api", body["source"])
	require.EqualValues(t, 1, body["count"])

	bar := body["data"].([]any)[0].(map[string]any)
	require.Equal(t, "2024-01-02", bar["date"])
	require.Nil(t, bar["daily_return"], "infinite values encode as null")
	require.Nil(t, bar["momentum_score"])
	require.EqualValues(t, 10, bar["ma30"])

	get(t, srv, "/api/v1/data/TCS?days=365")
	require.Equal(t, 365, svc.seriesDays)
}

func TestValidation(t *testing.T) {
	srv := newTestServer(t, &fakeService{}, nil)

	paths := []string{
		"/api/v1/data/TCS?days=0",
		"/api/v1/data/TCS?days=366",
		"/api/v1/data/TCS?days=abc",
		"/api/v1/data/bad%20symbol",
		"/api/v1/compare?symbol1=TCS",
		"/api/v1/compare?symbol1=TCS&symbol2=INFY&days=29",
		"/api/v1/movers?limit=0",
		"/api/v1/movers?limit=11",
		"/api/v1/technicals/" + "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	}
	for _, p := range paths {
		resp, body := get(t, srv, p)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, p)
		require.NotEmpty(t, body["error"], p)
	}
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("resolve X: %w", collector.ErrExhausted), http.StatusNotFound},
		{fmt.Errorf("X: %w", market.ErrNoData), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		srv := newTestServer(t, &fakeService{err: tt.err}, nil)
		for _, p := range []string{"/api/v1/data/X", "/api/v1/summary/X", "/api/v1/technicals/X", "/api/v1/compare?symbol1=X&symbol2=Y"} {
			resp, body := get(t, srv, p)
			require.Equal(t, tt.code, resp.StatusCode, p)
			if tt.code == http.StatusNotFound {
				require.Equal(t, "no data", body["error"])
			}
		}
	}
}

func TestSummaryCompareMovers(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(t, svc, nil)

	resp, body := get(t, srv, "/api/v1/summary/INFY")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "bullish", body["trend"])
	stats := body["stats"].(map[string]any)
	require.Nil(t, stats["avg_daily_return"])

	resp, body = get(t, srv, "/api/v1/compare?symbol1=tcs&symbol2=infy")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 90, svc.compareDays)
	require.Equal(t, "TCS", body["symbol1"])
	require.EqualValues(t, 1, body["correlation"])

	resp, body = get(t, srv, "/api/v1/movers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 5, svc.moversLimit)
	require.NotNil(t, body["gainers"])

	resp, body = get(t, srv, "/api/v1/technicals/TCS")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 55, body["rsi"])

	resp, body = get(t, srv, "/api/v1/companies/acme")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ACME", body["symbol"])
}

func TestCompanies(t *testing.T) {
	srv := newTestServer(t, &fakeService{}, nil)

	resp, err := http.Get(srv.URL + "/api/v1/companies?sector=Technology")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []model.CompanyProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	require.Equal(t, "Technology", list[0].Sector)
}

func TestPanicRecovered(t *testing.T) {
	srv := newTestServer(t, &fakeService{panics: true}, nil)

	resp, body := get(t, srv, "/api/v1/data/TCS")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "internal server error", body["error"])
}

func TestRequestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	srv := newTestServer(t, &fakeService{}, m)

	get(t, srv, "/api/v1/data/TCS")
	get(t, srv, "/api/v1/data/INFY?days=0")

	var metric dto.Metric
	require.NoError(t, m.HTTPRequests.WithLabelValues("GET /api/v1/data/{symbol}", "200").Write(&metric))
	require.Equal(t, 1.0, metric.GetCounter().GetValue())
	require.NoError(t, m.HTTPRequests.WithLabelValues("GET /api/v1/data/{symbol}", "400").Write(&metric))
	require.Equal(t, 1.0, metric.GetCounter().GetValue())
}
