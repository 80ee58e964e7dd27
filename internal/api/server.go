// Package api exposes the market service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"findata/internal/market"
	"findata/internal/metrics"
	"findata/internal/model"
)

// Service is the query surface served by the API.
type Service interface {
	Series(ctx context.Context, symbol string, days int) (market.Series, error)
	Summary(ctx context.Context, symbol string) (model.Summary, error)
	Technicals(ctx context.Context, symbol string) (model.Technicals, error)
	Compare(ctx context.Context, symbol1, symbol2 string, days int) (model.Comparison, error)
	Movers(ctx context.Context, limit int) (model.TopMovers, error)
	Companies(ctx context.Context, sector string) ([]model.CompanyProfile, error)
	Profile(ctx context.Context, symbol string) model.CompanyProfile
}

// Server wires handlers and middleware.
type Server struct {
	Service Service
	Health  http.Handler
	Metrics *metrics.Metrics
}

// NewServer creates a Server. health and m may be nil.
func NewServer(svc Service, health http.Handler, m *metrics.Metrics) *Server {
	return &Server{Service: svc, Health: health, Metrics: m}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleInfo)
	if s.Health != nil {
		mux.Handle("GET /health", s.Health)
	} else {
		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/companies", s.handleCompanies)
	mux.HandleFunc("GET /api/v1/companies/{symbol}", s.handleProfile)
	mux.HandleFunc("GET /api/v1/data/{symbol}", s.handleData)
	mux.HandleFunc("GET /api/v1/summary/{symbol}", s.handleSummary)
	mux.HandleFunc("GET /api/v1/compare", s.handleCompare)
	mux.HandleFunc("GET /api/v1/movers", s.handleMovers)
	mux.HandleFunc("GET /api/v1/technicals/{symbol}", s.handleTechnicals)

	return recoverPanic(withRequestID(s.observe(withCORS(mux))))
}

// NewHTTPServer wraps h with the server timeouts.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Resolution may wait out the primary API cooldown.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
