// Package jobs is the entrypoint for the two background jobs. Each run gets
// an id, is counted in metrics and announces its summary on Redis.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"artfair/curation-service/internal/enrichment"
	"artfair/curation-service/internal/metrics"
	"artfair/curation-service/internal/validation"
)

const (
	JobEnrichment = "enrichment"
	JobValidation = "validation"
)

// Event is published after every job run.
type Event struct {
	Type       string    `json:"type"`
	RunID      string    `json:"runId"`
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Summary    any       `json:"summary"`
	Error      string    `json:"error,omitempty"`
}

// Enricher runs one enrichment batch.
type Enricher interface {
	Run(ctx context.Context) (enrichment.Summary, error)
}

// ListingValidator runs one validation pass.
type ListingValidator interface {
	Run(ctx context.Context) (validation.RunSummary, error)
}

// Runner triggers the jobs. Concurrent triggers of the same job are allowed
// and simply overlap; both write last-write-wins results.
type Runner struct {
	enricher  Enricher
	validator ListingValidator
	pub       Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger

	mu      sync.Mutex
	lastRun map[string]Event
}

// NewRunner constructs a Runner. A nil pub publishes nothing.
func NewRunner(e Enricher, v ListingValidator, pub Publisher, m *metrics.Metrics) *Runner {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Runner{
		enricher:  e,
		validator: v,
		pub:       pub,
		metrics:   m,
		log:       slog.Default().With("component", "jobs"),
		lastRun:   make(map[string]Event),
	}
}

// RunEnrichment runs one enrichment batch and publishes its summary.
func (r *Runner) RunEnrichment(ctx context.Context) (enrichment.Summary, error) {
	runID, started := uuid.NewString(), time.Now().UTC()
	r.log.Info("job started", "job", JobEnrichment, "runId", runID)

	sum, err := r.enricher.Run(ctx)
	r.finish(ctx, ChannelDirectoryEnriched, Event{
		RunID: runID, Job: JobEnrichment, StartedAt: started, Summary: sum,
	}, err)
	return sum, err
}

// RunValidation runs one validation pass, including pruning, and publishes
// its summary.
func (r *Runner) RunValidation(ctx context.Context) (validation.RunSummary, error) {
	runID, started := uuid.NewString(), time.Now().UTC()
	r.log.Info("job started", "job", JobValidation, "runId", runID)

	sum, err := r.validator.Run(ctx)
	r.finish(ctx, ChannelListingsValidated, Event{
		RunID: runID, Job: JobValidation, StartedAt: started, Summary: sum,
	}, err)
	return sum, err
}

// LastRun returns the most recent event for job.
func (r *Runner) LastRun(job string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.lastRun[job]
	return ev, ok
}

func (r *Runner) finish(ctx context.Context, channel string, ev Event, err error) {
	ev.Type = channel
	ev.FinishedAt = time.Now().UTC()
	result := "ok"
	if err != nil {
		result = "error"
		ev.Error = err.Error()
		r.log.Error("job failed", "job", ev.Job, "runId", ev.RunID, "err", err)
	} else {
		r.log.Info("job finished", "job", ev.Job, "runId", ev.RunID,
			"duration", ev.FinishedAt.Sub(ev.StartedAt).String())
	}
	r.metrics.JobRun(ev.Job, result)

	r.mu.Lock()
	r.lastRun[ev.Job] = ev
	r.mu.Unlock()

	// Publish the summary (non-fatal).
	if pubErr := r.pub.Publish(context.WithoutCancel(ctx), channel, ev); pubErr != nil {
		r.log.Warn("publish job event failed", "channel", channel, "err", pubErr)
	}
}
