// Package store persists daily bars and company profiles.
package store

import (
	"context"
	"errors"
	"time"

	"findata/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store is the persisted side of the system: the fallback source for
// bars and the catalogue of known companies.
type Store interface {
	// Bars returns the bars for symbol with from <= date <= to, ascending.
	Bars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error)
	// LatestBars returns up to n most recent bars, ascending.
	LatestBars(ctx context.Context, symbol string, n int) ([]model.PriceBar, error)
	// UpsertBars inserts bars that are not stored yet and reports how many were written.
	UpsertBars(ctx context.Context, symbol string, bars []model.DerivedBar) (int, error)
	Companies(ctx context.Context, sector string) ([]model.CompanyProfile, error)
	Company(ctx context.Context, symbol string) (model.CompanyProfile, error)
	UpsertCompany(ctx context.Context, p model.CompanyProfile) error
	Close() error
}
