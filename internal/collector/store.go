package collector

import (
	"context"
	"time"

	"findata/internal/model"
	"findata/internal/series"
	"findata/internal/store"
)

// StoreAdapter serves bars previously persisted by the ingest job or seed.
// It opens a short-lived handle per call.
type StoreAdapter struct {
	Open func() (store.Store, error)
	Now  func() time.Time
}

// NewStoreAdapter reads from the SQLite database at path.
func NewStoreAdapter(path string) *StoreAdapter {
	return &StoreAdapter{
		Open: func() (store.Store, error) {
			s, err := store.Open(path)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Now: time.Now,
	}
}

func (s *StoreAdapter) Name() string { return "sqlite" }

func (s *StoreAdapter) Fetch(ctx context.Context, symbol string, lookbackDays int) ([]model.PriceBar, error) {
	st, err := s.Open()
	if err != nil {
		return nil, unavailable(s.Name(), symbol, ReasonTransport, err)
	}
	defer st.Close()

	now := s.Now()
	rows, err := st.Bars(ctx, symbol, lookbackStart(now, lookbackDays), model.Date(now))
	if err != nil {
		return nil, unavailable(s.Name(), symbol, ReasonTransport, err)
	}
	bars := series.FromBars(rows)
	if len(bars) == 0 {
		return nil, unavailable(s.Name(), symbol, ReasonEmpty, nil)
	}
	return bars, nil
}
