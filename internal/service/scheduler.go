package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler runs ingestion cycles on a fixed interval. A failed cycle is
// logged and swallowed; the loop itself only stops when the context is
// cancelled, so supervisors and tests can shut it down deterministically.
type Scheduler struct {
	ingest   *IngestService
	interval time.Duration
	limit    int
}

func NewScheduler(ingest *IngestService, interval time.Duration, limit int) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{ingest: ingest, interval: interval, limit: limit}
}

// Run blocks until ctx is cancelled. The first cycle starts immediately.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Int("limit", s.limit).Msg("scheduler started")
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.ingest.RunCycle(ctx, s.limit, false); err != nil {
		log.Error().Err(err).Msg("ingestion cycle failed")
	}
}
