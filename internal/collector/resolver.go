package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"findata/internal/metrics"
	"findata/internal/model"
)

// ErrExhausted is returned when no source produced a non-empty series.
var ErrExhausted = errors.New("all sources exhausted")

type source struct {
	provenance model.Provenance
	adapter    Adapter
}

// Resolver tries the sources in fixed order and returns the first
// non-empty series tagged with where it came from.
type Resolver struct {
	sources        []source
	primaryEnabled bool
	metrics        *metrics.Metrics
}

// NewResolver wires the chain primary -> persisted -> free. The primary
// source is consulted only when primaryEnabled is set. m may be nil.
func NewResolver(primary, persisted, free Adapter, primaryEnabled bool, m *metrics.Metrics) *Resolver {
	return &Resolver{
		sources: []source{
			{model.ProvenancePrimaryAPI, primary},
			{model.ProvenancePersistedStore, persisted},
			{model.ProvenanceFreeAPI, free},
		},
		primaryEnabled: primaryEnabled,
		metrics:        m,
	}
}

// NewIngestResolver builds the chain used to refresh the store: upstream
// sources only, so the job never reads back what it already wrote.
func NewIngestResolver(primary, free Adapter, primaryEnabled bool, m *metrics.Metrics) *Resolver {
	return NewResolver(primary, nil, free, primaryEnabled, m)
}

// Resolve walks the chain sequentially without retries. Source failures are
// logged and counted, never returned; only total failure is an error.
func (r *Resolver) Resolve(ctx context.Context, symbol string, lookbackDays int) (model.ResolvedSeries, error) {
	start := time.Now()
	defer r.metrics.ResolveSince(start)

	for _, s := range r.sources {
		label := string(s.provenance)
		if s.adapter == nil || (s.provenance == model.ProvenancePrimaryAPI && !r.primaryEnabled) {
			r.metrics.Source(label, metrics.OutcomeSkipped)
			continue
		}

		bars, err := s.adapter.Fetch(ctx, symbol, lookbackDays)
		if err != nil {
			log.Printf("[WARN] %s (%s) failed for %s: %v", label, s.adapter.Name(), symbol, err)
			outcome := metrics.OutcomeError
			var ue *UnavailableError
			if errors.As(err, &ue) && ue.Reason == ReasonEmpty {
				outcome = metrics.OutcomeEmpty
			}
			r.metrics.Source(label, outcome)
			continue
		}
		if len(bars) == 0 {
			log.Printf("[WARN] %s (%s) returned no bars for %s", label, s.adapter.Name(), symbol)
			r.metrics.Source(label, metrics.OutcomeEmpty)
			continue
		}

		r.metrics.Source(label, metrics.OutcomeHit)
		log.Printf("[INFO] resolved %s from %s (%d bars)", symbol, label, len(bars))
		return model.ResolvedSeries{Symbol: symbol, Bars: bars, Provenance: s.provenance}, nil
	}

	r.metrics.Exhausted()
	log.Printf("[ERROR] all sources failed for %s", symbol)
	return model.ResolvedSeries{}, fmt.Errorf("resolve %s: %w", symbol, ErrExhausted)
}
