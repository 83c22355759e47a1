// Package worker runs the full ingestion cycle: orchestrate the source
// adapters, score every unique job against the user profile, and persist
// jobs + matches through the store.
package worker

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/matcher"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/model"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/scraper"
	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/store"
)

// Worker executes scrape cycles. Both the cron scheduler and the
// on-demand API trigger call Run with the same contract.
type Worker struct {
	orch    *scraper.Orchestrator
	store   *store.Store
	profile *matcher.Profile
	log     *zap.SugaredLogger
}

// New constructs a Worker.
func New(orch *scraper.Orchestrator, st *store.Store, profile *matcher.Profile, log *zap.SugaredLogger) *Worker {
	return &Worker{orch: orch, store: st, profile: profile, log: log.Named("worker")}
}

// Run executes one scrape cycle and records it in the scraper log. Per-job
// persistence errors are logged and skipped; the cycle itself never fails
// because of one source or one row.
func (w *Worker) Run(ctx context.Context, opts scraper.Options) model.ScraperRun {
	started := time.Now()

	sources := opts.Sources
	if len(sources) == 0 {
		sources = []string{"all"}
	}

	var firstErr string
	callerProgress := opts.OnProgress
	opts.OnProgress = func(source string, found, processed int, err error) {
		if err != nil && firstErr == "" {
			firstErr = source + ": " + err.Error()
		}
		if callerProgress != nil {
			callerProgress(source, found, processed, err)
		}
	}

	jobs := w.orch.Run(ctx, opts)

	added, updated := 0, 0
	for _, job := range jobs {
		result := matcher.Score(job, w.profile)

		id, isNew, err := w.store.UpsertJob(ctx, job)
		if err != nil {
			w.log.Errorw("job upsert failed", "external_id", job.ExternalID, "err", err)
			continue
		}
		if err := w.store.UpsertMatch(ctx, id, result); err != nil {
			w.log.Errorw("match upsert failed", "job_id", id, "err", err)
			continue
		}
		if isNew {
			added++
		} else {
			updated++
		}
	}

	run := model.ScraperRun{
		Source:      strings.Join(sources, ","),
		JobsFound:   len(jobs),
		JobsAdded:   added,
		JobsUpdated: updated,
		Error:       firstErr,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if err := w.store.InsertScraperRun(ctx, run); err != nil {
		w.log.Errorw("scraper run log failed", "err", err)
	}

	w.log.Infow("cycle done", "found", run.JobsFound, "added", added, "updated", updated)
	return run
}

// Rescore recomputes the match for every stored job against the current
// profile. Returns how many jobs were updated.
func (w *Worker) Rescore(ctx context.Context) (int, error) {
	jobs, err := w.store.AllJobs(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, job := range jobs {
		result := matcher.Score(job, w.profile)
		if err := w.store.UpsertMatch(ctx, job.ID, result); err != nil {
			w.log.Errorw("rescore upsert failed", "job_id", job.ID, "err", err)
			continue
		}
		updated++
	}

	w.log.Infow("rescore done", "total", len(jobs), "updated", updated)
	return updated, nil
}
