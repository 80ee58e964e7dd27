package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"

	"findata/internal/analytics"
	"findata/internal/collector"
	"findata/internal/market"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9.^&_-]{1,20}$`)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service failures to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, collector.ErrExhausted), errors.Is(err, market.ErrNoData), errors.Is(err, analytics.ErrNoData):
		writeError(w, http.StatusNotFound, "no data")
	case r.Context().Err() != nil:
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		log.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// intParam reads an optional integer query parameter bounded to [lo, hi].
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}

func symbolParam(raw, name string) (string, error) {
	if !symbolPattern.MatchString(raw) {
		return "", fmt.Errorf("%s is not a valid symbol", name)
	}
	return market.Symbol(raw), nil
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "FinData API",
		"version": "1.0.0",
		"endpoints": []string{
			"/health",
			"/metrics",
			"/api/v1/companies",
			"/api/v1/companies/{symbol}",
			"/api/v1/data/{symbol}",
			"/api/v1/summary/{symbol}",
			"/api/v1/compare",
			"/api/v1/movers",
			"/api/v1/technicals/{symbol}",
		},
	})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	list, err := s.Service.Companies(r.Context(), r.URL.Query().Get("sector"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	symbol, err := symbolParam(r.PathValue("symbol"), "symbol")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.Service.Profile(r.Context(), symbol))
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	symbol, err := symbolParam(r.PathValue("symbol"), "symbol")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days, err := intParam(r, "days", 30, 1, 365)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ser, err := s.Service.Series(r.Context(), symbol, days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSeriesDTO(ser))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	symbol, err := symbolParam(r.PathValue("symbol"), "symbol")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sum, err := s.Service.Summary(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryDTO(sum))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol1, err := symbolParam(q.Get("symbol1"), "symbol1")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	symbol2, err := symbolParam(q.Get("symbol2"), "symbol2")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days, err := intParam(r, "days", 90, 30, 365)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cmp, err := s.Service.Compare(r.Context(), symbol1, symbol2, days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newComparisonDTO(cmp, days))
}

func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 5, 1, 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	movers, err := s.Service.Movers(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movers)
}

func (s *Server) handleTechnicals(w http.ResponseWriter, r *http.Request) {
	symbol, err := symbolParam(r.PathValue("symbol"), "symbol")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tech, err := s.Service.Technicals(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tech)
}
