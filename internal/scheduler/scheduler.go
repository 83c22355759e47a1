// Package scheduler wires up the cron job that periodically triggers a
// full scrape cycle across all sources.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/worker"
)

// Scheduler wraps robfig/cron and manages the scrape loop.
type Scheduler struct {
	cron   *cron.Cron
	worker *worker.Worker
	spec   string // cron spec, e.g. "@every 6h"
	log    *zap.SugaredLogger
}

// New creates a Scheduler that fires every intervalHours hours.
func New(w *worker.Worker, intervalHours int, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		worker: w,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		log:    log.Named("scheduler"),
	}
}

// Start registers the job and starts the scheduler. Also runs one scrape
// immediately so the feed is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runScrape(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Infow("cron started", "spec", s.spec)

	// Run immediately on startup (non-blocking).
	go s.runScrape(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("cron stopped")
}

func (s *Scheduler) runScrape(ctx context.Context) {
	s.log.Info("scrape cycle started")
	run := s.worker.Run(ctx, scraper.Options{Sources: []string{"all"}})
	s.log.Infow("scrape cycle complete",
		"found", run.JobsFound, "added", run.JobsAdded, "updated", run.JobsUpdated, "error", run.Error)
}
