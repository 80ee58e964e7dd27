// Package collector fetches daily bars from upstream sources and resolves
// a series through the ordered fallback chain.
package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"findata/internal/model"
)

// Adapter is one upstream source of daily bars. Fetch returns a normalized
// series covering the last lookbackDays calendar days; every failure is an
// *UnavailableError.
//
//go:generate mockgen -package=collector_test -destination=mock_adapter_test.go -source=adapter.go Adapter
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, symbol string, lookbackDays int) ([]model.PriceBar, error)
}

// Reason classifies why a source could not serve a request.
type Reason string

const (
	ReasonRateLimited   Reason = "rate-limited"
	ReasonUnknownSymbol Reason = "unknown-symbol"
	ReasonTransport     Reason = "transport"
	ReasonDecode        Reason = "decode"
	ReasonEmpty         Reason = "empty"
)

// UnavailableError reports that a source could not produce data.
type UnavailableError struct {
	Source string
	Symbol string
	Reason Reason
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable for %s: %s", e.Source, e.Symbol, e.Reason)
	}
	return fmt.Sprintf("%s unavailable for %s: %s: %v", e.Source, e.Symbol, e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func unavailable(source, symbol string, reason Reason, err error) *UnavailableError {
	return &UnavailableError{Source: source, Symbol: symbol, Reason: reason, Err: err}
}

// newHTTPClient builds a client with the per-call timeout and optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// lookbackStart is the first calendar date inside the lookback window.
func lookbackStart(now time.Time, lookbackDays int) time.Time {
	return model.Date(now).AddDate(0, 0, -lookbackDays)
}
