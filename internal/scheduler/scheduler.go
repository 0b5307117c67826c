// Package scheduler wires up the cron jobs that periodically enrich the
// directory and validate external listings.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"artfair/curation-service/internal/enrichment"
	"artfair/curation-service/internal/validation"
)

// Jobs is what the scheduler triggers. *jobs.Runner satisfies it.
type Jobs interface {
	RunEnrichment(ctx context.Context) (enrichment.Summary, error)
	RunValidation(ctx context.Context) (validation.RunSummary, error)
}

// Scheduler wraps robfig/cron. A tick that arrives while the previous run
// of the same job is still going is skipped.
type Scheduler struct {
	cron         *cron.Cron
	jobs         Jobs
	enrichSpec   string
	validateSpec string
	runOnStart   bool
	log          *slog.Logger
}

// New creates a Scheduler firing enrichment on enrichSpec and validation on
// validateSpec (cron specs such as "@every 6h").
func New(jobs Jobs, enrichSpec, validateSpec string, runOnStart bool) *Scheduler {
	logger := slog.Default().With("component", "scheduler")
	cronLog := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		jobs:         jobs,
		enrichSpec:   enrichSpec,
		validateSpec: validateSpec,
		runOnStart:   runOnStart,
		log:          logger,
	}
}

// Start registers both jobs and starts the scheduler. With runOnStart set,
// one round of each job also runs immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	enrich, err := s.cron.AddFunc(s.enrichSpec, func() { s.runEnrichment(ctx) })
	if err != nil {
		return fmt.Errorf("schedule enrichment %q: %w", s.enrichSpec, err)
	}
	validate, err := s.cron.AddFunc(s.validateSpec, func() { s.runValidation(ctx) })
	if err != nil {
		s.cron.Remove(enrich)
		return fmt.Errorf("schedule validation %q: %w", s.validateSpec, err)
	}

	s.cron.Start()
	s.log.Info("cron started", "enrich", s.enrichSpec, "validate", s.validateSpec)

	if s.runOnStart {
		// Wrapped jobs share the skip-if-running guard with cron ticks.
		go s.cron.Entry(enrich).WrappedJob.Run()
		go s.cron.Entry(validate).WrappedJob.Run()
	}
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish or ctx to
// end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("cron stopped")
	case <-ctx.Done():
		s.log.Warn("cron stop timed out with jobs still running")
	}
}

func (s *Scheduler) runEnrichment(ctx context.Context) {
	sum, err := s.jobs.RunEnrichment(ctx)
	if err != nil {
		s.log.Error("enrichment run failed", "err", err)
		return
	}
	s.log.Info("enrichment run complete",
		"processed", sum.Processed, "updated", sum.Updated, "skipped", sum.Skipped)
}

func (s *Scheduler) runValidation(ctx context.Context) {
	sum, err := s.jobs.RunValidation(ctx)
	if err != nil {
		s.log.Error("validation run failed", "err", err)
		return
	}
	s.log.Info("validation run complete", "checked", sum.Checked, "pruned", sum.Pruned)
}
