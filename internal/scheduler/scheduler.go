// Package scheduler runs the ingestion batch on a nightly cron in worker
// mode. Each run re-ingests the seeded player list for the season in
// effect at run time; upserts make repeated runs converge on the same
// stored state.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"nbastats/ingestion/internal/config"
	"nbastats/ingestion/internal/directory"
	"nbastats/ingestion/internal/ingest"
	"nbastats/ingestion/internal/normalize"
)

// Scheduler manages the background ingestion schedule.
type Scheduler struct {
	cfg  *config.Config
	orch *ingest.Orchestrator
	dir  directory.Directory
	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, orch *ingest.Orchestrator, dir directory.Directory) *Scheduler {
	return &Scheduler{
		cfg:  cfg,
		orch: orch,
		dir:  dir,
		cron: cron.New(),
	}
}

// Start registers the nightly ingestion job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyIngestCron, func() {
		log.Info().Msg("Running nightly ingestion...")
		if err := s.RunBatch(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly ingestion failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly ingestion: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyIngestCron).
		Msg("Nightly ingestion scheduled")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}

// RunBatch ingests the full seed list for the current season. Overlapping
// runs are rejected: a slow batch must not race a second writer.
func (s *Scheduler) RunBatch(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn().Msg("Previous ingestion batch still running, skipping")
		return nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	season := normalize.CurrentSeason(time.Now())
	queue, err := ingest.BuildQueue(s.dir, "", 0)
	if err != nil {
		return err
	}
	return s.orch.Run(ctx, queue, season)
}
