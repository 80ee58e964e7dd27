package model

import "time"

// IngestReport summarizes one run of the ingest job.
type IngestReport struct {
	StartedAt time.Time
	Duration  time.Duration
	Written   []string
	Failed    map[string]string
	Bars      int
}
