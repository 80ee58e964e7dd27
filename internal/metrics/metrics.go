// Package metrics exposes Prometheus instruments and the health check.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

// Source attempt and ingest outcomes.
const (
	OutcomeHit     = "hit"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
	OutcomeWritten = "written"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	SourceAttempts  *prometheus.CounterVec // labels: source, outcome
	ResolveExhausts prometheus.Counter
	ResolveDur      prometheus.Histogram
	CacheLookups    *prometheus.CounterVec // labels: result=hit|miss
	HTTPRequests    *prometheus.CounterVec // labels: route, code
	HTTPDur         *prometheus.HistogramVec
	IngestRuns      *prometheus.CounterVec // labels: outcome
	IngestBars      prometheus.Counter
}

// New creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer for the process-wide /metrics endpoint.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findata_source_attempts_total",
			Help: "Source adapter attempts by outcome",
		}, []string{"source", "outcome"}),
		ResolveExhausts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "findata_resolve_exhausted_total",
			Help: "Resolutions where every source failed",
		}),
		ResolveDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "findata_resolve_duration_seconds",
			Help:    "End-to-end resolution latency",
			Buckets: prometheus.DefBuckets,
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findata_cache_lookups_total",
			Help: "Series cache lookups",
		}, []string{"result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findata_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "findata_http_request_duration_seconds",
			Help:    "HTTP handler latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		IngestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findata_ingest_symbols_total",
			Help: "Per-symbol ingest results",
		}, []string{"outcome"}),
		IngestBars: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "findata_ingest_bars_total",
			Help: "Bars written by the ingest job",
		}),
	}

	reg.MustRegister(
		m.SourceAttempts,
		m.ResolveExhausts,
		m.ResolveDur,
		m.CacheLookups,
		m.HTTPRequests,
		m.HTTPDur,
		m.IngestRuns,
		m.IngestBars,
	)
	return m
}

// The helpers below accept a nil receiver so components can run without metrics.

func (m *Metrics) Source(source, outcome string) {
	if m == nil {
		return
	}
	m.SourceAttempts.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) Exhausted() {
	if m == nil {
		return
	}
	m.ResolveExhausts.Inc()
}

func (m *Metrics) ResolveSince(start time.Time) {
	if m == nil {
		return
	}
	m.ResolveDur.Observe(time.Since(start).Seconds())
}

func (m *Metrics) Cache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) Request(route string, code int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDur.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Ingest(outcome string, bars int) {
	if m == nil {
		return
	}
	m.IngestRuns.WithLabelValues(outcome).Inc()
	m.IngestBars.Add(float64(bars))
}

// HealthStatus tracks dependency liveness for the /health endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	SQLiteOK        bool
	SQLiteLatencyMs float64
	RedisEnabled    bool
	RedisConnected  bool
	RedisLatencyMs  float64
	PrimaryEnabled  bool
	LastCheckAt     time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(primaryEnabled bool) *HealthStatus {
	return &HealthStatus{
		PrimaryEnabled: primaryEnabled,
		StartedAt:      time.Now(),
	}
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisEnabled = true
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite pings the store and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
// rdb may be nil when no Redis cache is configured.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if rdb != nil {
			h.CheckRedis(checkCtx, rdb)
		}
		if sqlDB != nil {
			h.CheckSQLite(checkCtx, sqlDB)
		}
	}
	check()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}

// ServeHTTP handles the /health endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	if !h.SQLiteOK || (h.RedisEnabled && !h.RedisConnected) {
		overallStatus = "degraded"
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		RedisEnabled    bool    `json:"redis_enabled"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		PrimaryEnabled  bool    `json:"primary_api_enabled"`
		LastCheckAt     string  `json:"last_check_at"`
		Timestamp       string  `json:"timestamp"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		RedisEnabled:    h.RedisEnabled,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		PrimaryEnabled:  h.PrimaryEnabled,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
