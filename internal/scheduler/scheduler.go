package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"findata/internal/calculator"
	"findata/internal/metrics"
	"findata/internal/model"
	"findata/internal/notifier"
	"findata/internal/reference"
	"findata/internal/store"
)

// warmupDays of extra history are derived so stored averages are not
// computed over a truncated window.
const warmupDays = 45

// Resolver produces a normalized series for a symbol. It must consult
// upstream sources only, never the store being written.
type Resolver interface {
	Resolve(ctx context.Context, symbol string, lookbackDays int) (model.ResolvedSeries, error)
}

// Notifier delivers a formatted report.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the ingest job on a cron schedule.
type Scheduler struct {
	Cron         *cron.Cron
	Resolver     Resolver
	Store        store.Store
	Notifier     Notifier
	Metrics      *metrics.Metrics
	Ctx          context.Context
	LookbackDays int
	Now          func() time.Time

	mu sync.Mutex // one ingest at a time
}

// NewScheduler creates a new Scheduler. n and m may be nil.
func NewScheduler(ctx context.Context, r Resolver, st store.Store, n Notifier, m *metrics.Metrics, lookbackDays int) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Resolver:     r,
		Store:        st,
		Notifier:     n,
		Metrics:      m,
		Ctx:          ctx,
		LookbackDays: lookbackDays,
		Now:          time.Now,
	}
}

// Register adds the ingest task.
func (s *Scheduler) Register(ingestCron string) error {
	if _, err := s.Cron.AddFunc(ingestCron, func() { s.RunIngestNow() }); err != nil {
		return fmt.Errorf("register ingest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunIngestNow executes the ingest task immediately.
func (s *Scheduler) RunIngestNow() model.IngestReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.ingest()
	log.Printf("[INFO] ingest done: %d written (%d bars), %d failed in %v",
		len(report.Written), report.Bars, len(report.Failed), report.Duration.Round(time.Millisecond))
	s.trySend(notifier.FormatIngestReport(report))
	return report
}

func (s *Scheduler) ingest() model.IngestReport {
	start := s.Now()
	report := model.IngestReport{StartedAt: start, Failed: map[string]string{}}
	log.Println("[INFO] running ingest task")

	companies, err := s.Store.Companies(s.Ctx, "")
	if err != nil || len(companies) == 0 {
		if err != nil {
			log.Printf("[WARN] list companies: %v", err)
		}
		companies = reference.Profiles("", 0)
	}

	cutoff := model.Date(start).AddDate(0, 0, -s.LookbackDays)
	for _, c := range companies {
		if s.Ctx.Err() != nil {
			log.Printf("[WARN] ingest interrupted: %v", s.Ctx.Err())
			break
		}

		n, err := s.ingestSymbol(c.Symbol, cutoff)
		if err != nil {
			log.Printf("[ERROR] ingest %s: %v", c.Symbol, err)
			report.Failed[c.Symbol] = err.Error()
			s.Metrics.Ingest(metrics.OutcomeError, 0)
			continue
		}
		report.Written = append(report.Written, c.Symbol)
		report.Bars += n
		s.Metrics.Ingest(metrics.OutcomeWritten, n)
	}

	report.Duration = s.Now().Sub(start)
	return report
}

// ingestSymbol resolves one symbol and stores the bars dated on or after
// cutoff.
func (s *Scheduler) ingestSymbol(symbol string, cutoff time.Time) (int, error) {
	rs, err := s.Resolver.Resolve(s.Ctx, symbol, s.LookbackDays+warmupDays)
	if err != nil {
		return 0, err
	}

	derived, err := calculator.Derive(rs.Bars)
	if err != nil {
		return 0, err
	}
	i := 0
	for i < len(derived) && derived[i].Date.Before(cutoff) {
		i++
	}
	return s.Store.UpsertBars(s.Ctx, symbol, derived[i:])
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
