package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/tidwall/gjson"

	"findata/internal/model"
	"findata/internal/ratelimit"
	"findata/internal/series"
)

const (
	DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

	// compactDays is roughly the calendar span of the 100 bars a compact
	// response carries. Longer lookbacks request the full history.
	compactDays = 140
)

// AlphaVantage implements Adapter using the Alpha Vantage REST API.
// It shares one cooldown between bar and profile requests.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter ratelimit.Policy
	Now     func() time.Time
}

// NewAlphaVantage creates the primary adapter with optional proxy support.
func NewAlphaVantage(baseURL, apiKey, proxyURL string, limiter ratelimit.Policy) *AlphaVantage {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &AlphaVantage{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		Limiter: limiter,
		Now:     time.Now,
	}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

func (a *AlphaVantage) Fetch(ctx context.Context, symbol string, lookbackDays int) ([]model.PriceBar, error) {
	outputSize := "compact"
	if lookbackDays > compactDays {
		outputSize = "full"
	}
	res, err := a.query(ctx, symbol, url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {outputSize},
	})
	if err != nil {
		return nil, err
	}

	ts, ok := res.Map()["Time Series (Daily)"]
	if !ok || !ts.IsObject() {
		return nil, unavailable(a.Name(), symbol, ReasonEmpty, errors.New("no daily time series in response"))
	}

	var raw []model.RawBar
	ts.ForEach(func(key, value gjson.Result) bool {
		// An unparseable key leaves a zero date, which normalization drops.
		date, _ := time.Parse("2006-01-02", key.String())
		fields := value.Map()
		raw = append(raw, model.RawBar{
			Date:   date,
			Open:   numeric(fields["1. open"]),
			High:   numeric(fields["2. high"]),
			Low:    numeric(fields["3. low"]),
			Close:  numeric(fields["4. close"]),
			Volume: integer(fields["5. volume"]),
		})
		return true
	})

	bars := series.Since(series.Normalize(raw), lookbackStart(a.Now(), lookbackDays))
	if len(bars) == 0 {
		return nil, unavailable(a.Name(), symbol, ReasonEmpty, nil)
	}
	log.Printf("[INFO] alphavantage: fetched %d bars for %s", len(bars), symbol)
	return bars, nil
}

// Profile fetches the company overview. It counts against the same cooldown
// as Fetch.
func (a *AlphaVantage) Profile(ctx context.Context, symbol string) (model.CompanyProfile, error) {
	res, err := a.query(ctx, symbol, url.Values{
		"function": {"OVERVIEW"},
		"symbol":   {symbol},
	})
	if err != nil {
		return model.CompanyProfile{}, err
	}
	if !res.Get("Symbol").Exists() {
		return model.CompanyProfile{}, unavailable(a.Name(), symbol, ReasonUnknownSymbol, errors.New("overview has no Symbol"))
	}

	p := model.CompanyProfile{
		Symbol:    res.Get("Symbol").String(),
		Name:      orDefault(res.Get("Name").String(), symbol),
		Sector:    orDefault(res.Get("Sector").String(), model.UnknownSector),
		Industry:  orDefault(res.Get("Industry").String(), model.UnknownSector),
		MarketCap: res.Get("MarketCapitalization").Float(),
	}
	return p, nil
}

// query waits for the cooldown, performs the call and classifies the
// in-band error messages Alpha Vantage returns with status 200.
func (a *AlphaVantage) query(ctx context.Context, symbol string, params url.Values) (gjson.Result, error) {
	if err := a.Limiter.Wait(ctx); err != nil {
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonRateLimited, err)
	}

	params.Set("apikey", a.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonTransport, err)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonTransport, fmt.Errorf("read body: %w", err))
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonTransport, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body)))
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonDecode, errors.New("invalid JSON"))
	}

	res := gjson.ParseBytes(body)
	if msg := res.Get("Error Message"); msg.Exists() {
		return gjson.Result{}, unavailable(a.Name(), symbol, ReasonUnknownSymbol, errors.New(msg.String()))
	}
	for _, key := range []string{"Note", "Information"} {
		if msg := res.Get(key); msg.Exists() {
			return gjson.Result{}, unavailable(a.Name(), symbol, ReasonRateLimited, errors.New(msg.String()))
		}
	}
	return res, nil
}

// numeric parses a quoted decimal, leaving the value missing when absent
// or malformed.
func numeric(r gjson.Result) null.Float {
	if !r.Exists() {
		return null.Float{}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(r.String()), 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

func integer(r gjson.Result) null.Int {
	f := numeric(r)
	if !f.Valid {
		return null.Int{}
	}
	return null.IntFrom(int64(f.Float64))
}

func orDefault(v, def string) string {
	if v == "" || v == "None" {
		return def
	}
	return v
}
