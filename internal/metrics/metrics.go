// Package metrics exposes Prometheus counters for the curation jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks job outcomes and fetch latency. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	EnrichmentOutcomes *prometheus.CounterVec
	ValidationStatuses *prometheus.CounterVec
	ListingsPruned     prometheus.Counter
	DirectoryUpserts   prometheus.Counter
	JobRuns            *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
}

// New registers all curation metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EnrichmentOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "curation_enrichment_rows_total",
			Help: "Enrichment rows by outcome (updated, unchanged, skipped)",
		}, []string{"outcome"}),
		ValidationStatuses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "curation_listing_validations_total",
			Help: "Listing validations by resulting status",
		}, []string{"status"}),
		ListingsPruned: f.NewCounter(prometheus.CounterOpts{
			Name: "curation_listings_pruned_total",
			Help: "External listings deleted as invalid or expired",
		}),
		DirectoryUpserts: f.NewCounter(prometheus.CounterOpts{
			Name: "curation_directory_upserts_total",
			Help: "Canonical gallery rows written",
		}),
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "curation_job_runs_total",
			Help: "Job runs by job and result",
		}, []string{"job", "result"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "curation_fetch_duration_seconds",
			Help:    "Duration of outbound page fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 12},
		}, []string{"job"}),
	}
}

// EnrichmentOutcome counts one processed enrichment row.
func (m *Metrics) EnrichmentOutcome(outcome string) {
	if m == nil {
		return
	}
	m.EnrichmentOutcomes.WithLabelValues(outcome).Inc()
}

// ValidationStatus counts one validated listing.
func (m *Metrics) ValidationStatus(status string) {
	if m == nil {
		return
	}
	m.ValidationStatuses.WithLabelValues(status).Inc()
}

func (m *Metrics) AddPruned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ListingsPruned.Add(float64(n))
}

func (m *Metrics) AddUpserted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DirectoryUpserts.Add(float64(n))
}

// JobRun records the end of a job run; result is "ok" or "error".
func (m *Metrics) JobRun(job, result string) {
	if m == nil {
		return
	}
	m.JobRuns.WithLabelValues(job, result).Inc()
}

// ObserveFetch records a fetch for job. Call with time.Now() at the start
// of the fetch.
func (m *Metrics) ObserveFetch(job string, start time.Time) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}
