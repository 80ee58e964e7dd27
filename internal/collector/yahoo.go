package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"findata/internal/model"
	"findata/internal/series"
)

const DefaultYahooURL = "https://query1.finance.yahoo.com"

// Yahoo implements Adapter using the Yahoo Finance public chart API.
type Yahoo struct {
	BaseURL string
	// Suffix is appended to bare symbols, e.g. ".NS" for NSE listings.
	Suffix    string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Now       func() time.Time
}

// NewYahoo creates the free-API adapter.
func NewYahoo(baseURL, suffix, proxyURL string) *Yahoo {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &Yahoo{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Suffix:  suffix,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"NIFTY":     "^NSEI",
			"SENSEX":    "^BSESN",
			"BANKNIFTY": "^NSEBANK",
		},
		Now: time.Now,
	}
}

func (f *Yahoo) Name() string { return "yahoo" }

func (f *Yahoo) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	if f.Suffix == "" || strings.ContainsAny(symbol, ".^") {
		return symbol
	}
	return symbol + f.Suffix
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Price arrays carry JSON null on days without a print.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []null.Float `json:"open"`
					High   []null.Float `json:"high"`
					Low    []null.Float `json:"low"`
					Close  []null.Float `json:"close"`
					Volume []null.Float `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (f *Yahoo) Fetch(ctx context.Context, symbol string, lookbackDays int) ([]model.PriceBar, error) {
	now := f.Now()
	start := lookbackStart(now, lookbackDays)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), start.Unix(), now.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, unavailable(f.Name(), symbol, ReasonTransport, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, unavailable(f.Name(), symbol, ReasonTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(f.Name(), symbol, ReasonTransport, fmt.Errorf("read body: %w", err))
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, unavailable(f.Name(), symbol, ReasonUnknownSymbol, fmt.Errorf("status %d", resp.StatusCode))
	case http.StatusTooManyRequests:
		return nil, unavailable(f.Name(), symbol, ReasonRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	default:
		return nil, unavailable(f.Name(), symbol, ReasonTransport, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body)))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, unavailable(f.Name(), symbol, ReasonDecode, err)
	}
	if chart.Chart.Error != nil {
		return nil, unavailable(f.Name(), symbol, ReasonUnknownSymbol, fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, unavailable(f.Name(), symbol, ReasonEmpty, nil)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	raw := make([]model.RawBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Shift to exchange local time so the bar lands on its trading date.
		date := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()
		vol := at(quote.Volume, i)
		raw = append(raw, model.RawBar{
			Date:   date,
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  at(quote.Close, i),
			Volume: null.NewInt(int64(vol.Float64), vol.Valid),
		})
	}

	bars := series.Since(series.Normalize(raw), start)
	if len(bars) == 0 {
		return nil, unavailable(f.Name(), symbol, ReasonEmpty, nil)
	}
	log.Printf("[INFO] yahoo: fetched %d bars for %s", len(bars), symbol)
	return bars, nil
}

func at(values []null.Float, i int) null.Float {
	if i >= len(values) {
		return null.Float{}
	}
	return values[i]
}
