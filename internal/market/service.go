// Package market serves derived series, summaries, signals and cross-sectional
// views on top of the fallback resolver.
package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"findata/internal/analytics"
	"findata/internal/cache"
	"findata/internal/calculator"
	"findata/internal/metrics"
	"findata/internal/model"
	"findata/internal/reference"
	"findata/internal/series"
	"findata/internal/store"
)

const (
	// warmupDays of extra history are resolved so the 30-bar average is
	// complete at the start of the requested range.
	warmupDays = 45

	summaryDays    = 365
	technicalsDays = 180
	trendWindow    = 20

	rsiPeriod     = 14
	macdFast      = 12
	macdSlow      = 26
	macdSignal    = 9
	bollingerN    = 20
	bollingerK    = 2.0
	rangeWindow   = 20
	maxCandidates = 15
	companiesCap  = 10

	// resolveTimeout bounds a shared resolution, which may queue behind
	// several primary API cooldowns.
	resolveTimeout = 2 * time.Minute
)

// ErrNoData is returned when the resolved series has no bars in the
// requested range.
var ErrNoData = errors.New("no data in range")

// Resolver produces a normalized series for a symbol.
type Resolver interface {
	Resolve(ctx context.Context, symbol string, lookbackDays int) (model.ResolvedSeries, error)
}

// ProfileSource looks up company profiles upstream.
type ProfileSource interface {
	Profile(ctx context.Context, symbol string) (model.CompanyProfile, error)
}

// Series is a derived series with its provenance.
type Series struct {
	Symbol string             `json:"symbol"`
	Source model.Provenance   `json:"source"`
	Bars   []model.DerivedBar `json:"data"`
}

// Service answers queries. Cache, Store, Profiles and Metrics are optional.
type Service struct {
	Resolver Resolver
	Cache    cache.Cache
	Store    store.Store
	Profiles ProfileSource
	Metrics  *metrics.Metrics
	Now      func() time.Time

	group singleflight.Group
}

// NewService creates a Service resolving through r.
func NewService(r Resolver, c cache.Cache, st store.Store, profiles ProfileSource, m *metrics.Metrics) *Service {
	return &Service{
		Resolver: r,
		Cache:    c,
		Store:    st,
		Profiles: profiles,
		Metrics:  m,
		Now:      time.Now,
	}
}

// Symbol normalizes user input to the form used as a cache and store key.
func Symbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// resolve consults the cache, then collapses concurrent misses for the same
// key into one resolution. The shared call is detached from any single
// caller, so one client going away does not fail the others; each caller
// still stops waiting when its own ctx is done.
func (s *Service) resolve(ctx context.Context, symbol string, lookbackDays int) (model.ResolvedSeries, error) {
	key := cache.Key(symbol, lookbackDays)
	if s.Cache != nil {
		if rs, ok := s.Cache.Get(ctx, key); ok {
			s.Metrics.Cache(true)
			return rs, nil
		}
		s.Metrics.Cache(false)
	}

	ch := s.group.DoChan(key, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()
		rs, err := s.Resolver.Resolve(rctx, symbol, lookbackDays)
		if err != nil {
			return nil, err
		}
		if s.Cache != nil {
			s.Cache.Set(rctx, key, rs)
		}
		return rs, nil
	})

	select {
	case <-ctx.Done():
		return model.ResolvedSeries{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.ResolvedSeries{}, res.Err
		}
		if res.Shared {
			log.Printf("[INFO] shared resolution for %s", key)
		}
		return res.Val.(model.ResolvedSeries), nil
	}
}

// Series resolves, derives and trims the series to the last days calendar days.
func (s *Service) Series(ctx context.Context, symbol string, days int) (Series, error) {
	symbol = Symbol(symbol)
	rs, err := s.resolve(ctx, symbol, days+warmupDays)
	if err != nil {
		return Series{}, err
	}

	derived, err := calculator.Derive(series.FromBars(rs.Bars))
	if err != nil {
		return Series{}, fmt.Errorf("derive %s: %w", symbol, err)
	}

	cutoff := model.Date(s.Now()).AddDate(0, 0, -days)
	i := 0
	for i < len(derived) && derived[i].Date.Before(cutoff) {
		i++
	}
	if i == len(derived) {
		return Series{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	return Series{Symbol: symbol, Source: rs.Provenance, Bars: derived[i:]}, nil
}

// Summary reports year statistics, trend and the latest daily return.
func (s *Service) Summary(ctx context.Context, symbol string) (model.Summary, error) {
	ser, err := s.Series(ctx, symbol, summaryDays)
	if err != nil {
		return model.Summary{}, err
	}
	last := ser.Bars[len(ser.Bars)-1]
	return model.Summary{
		Symbol:      ser.Symbol,
		Stats:       calculator.ComputeStats(ser.Bars, s.Now()),
		DailyReturn: last.DailyReturn,
		Trend:       calculator.DetectTrend(calculator.Closes(ser.Bars), trendWindow),
		Source:      ser.Source,
	}, nil
}

// Technicals computes the signal set over the last half year.
func (s *Service) Technicals(ctx context.Context, symbol string) (model.Technicals, error) {
	ser, err := s.Series(ctx, symbol, technicalsDays)
	if err != nil {
		return model.Technicals{}, err
	}

	closes := calculator.Closes(ser.Bars)
	returns := calculator.Returns(ser.Bars)
	fractions := make([]float64, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) && !math.IsInf(r, 0) {
			fractions = append(fractions, r/100)
		}
	}

	rsi, err := calculator.CalculateRSI(fractions, rsiPeriod)
	if err != nil {
		return model.Technicals{}, fmt.Errorf("rsi %s: %w", ser.Symbol, err)
	}

	return model.Technicals{
		Symbol:             ser.Symbol,
		RSI:                calculator.Round2(rsi),
		MACD:               calculator.CalculateMACD(closes, macdFast, macdSlow, macdSignal),
		Bollinger:          calculator.CalculateBollinger(closes, bollingerN, bollingerK),
		SupportResistance:  calculator.SupportResistance(calculator.Highs(ser.Bars), calculator.Lows(ser.Bars), rangeWindow),
		Trend:              calculator.DetectTrend(closes, trendWindow),
		VolatilityClass:    calculator.ClassifyVolatility(fractions),
		PredictedNextPrice: calculator.Round2(calculator.PredictNextPrice(closes, calculator.PredictLinear)),
		CurrentPrice:       calculator.Round2(closes[len(closes)-1]),
	}, nil
}

// Compare resolves both symbols over days and compares them.
func (s *Service) Compare(ctx context.Context, symbol1, symbol2 string, days int) (model.Comparison, error) {
	a, err := s.Series(ctx, symbol1, days)
	if err != nil {
		return model.Comparison{}, err
	}
	b, err := s.Series(ctx, symbol2, days)
	if err != nil {
		return model.Comparison{}, err
	}
	return analytics.Compare(a.Symbol, a.Bars, b.Symbol, b.Bars)
}

// Movers ranks the known companies by their latest stored move.
func (s *Service) Movers(ctx context.Context, limit int) (model.TopMovers, error) {
	companies, err := s.Companies(ctx, "")
	if err != nil {
		return model.TopMovers{}, err
	}
	if len(companies) > maxCandidates {
		companies = companies[:maxCandidates]
	}

	candidates := make([]analytics.Candidate, 0, len(companies))
	if s.Store != nil {
		for _, c := range companies {
			bars, err := s.Store.LatestBars(ctx, c.Symbol, 2)
			if err != nil {
				log.Printf("[WARN] latest bars for %s: %v", c.Symbol, err)
				continue
			}
			candidates = append(candidates, analytics.Candidate{Symbol: c.Symbol, Name: c.Name, Bars: bars})
		}
	}
	return analytics.TopMovers(candidates, limit), nil
}

// Companies lists stored companies, optionally filtered by sector. When the
// store is unavailable or empty the reference table is served instead.
func (s *Service) Companies(ctx context.Context, sector string) ([]model.CompanyProfile, error) {
	if s.Store != nil {
		list, err := s.Store.Companies(ctx, sector)
		if err != nil {
			log.Printf("[WARN] list companies: %v", err)
		} else if len(list) > 0 {
			return list, nil
		}
	}
	out := reference.Profiles(sector, companiesCap)
	if out == nil {
		out = []model.CompanyProfile{}
	}
	return out, nil
}

// Profile looks the company up upstream, then in the store, then in the
// reference table. It never fails.
func (s *Service) Profile(ctx context.Context, symbol string) model.CompanyProfile {
	symbol = Symbol(symbol)
	if s.Profiles != nil {
		p, err := s.Profiles.Profile(ctx, symbol)
		if err == nil {
			return p
		}
		log.Printf("[WARN] profile %s: %v", symbol, err)
	}
	if s.Store != nil {
		p, err := s.Store.Company(ctx, symbol)
		if err == nil {
			return p
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[WARN] stored profile %s: %v", symbol, err)
		}
	}
	return reference.Profile(symbol)
}
