package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"artfair/curation-service/internal/crawl"
	"artfair/curation-service/internal/fetch"
	"artfair/curation-service/internal/metrics"
	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/textnorm"
)

// FetchTimeout bounds each listing page fetch.
const FetchTimeout = 12 * time.Second

// Fetcher retrieves one page, following redirects.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Page, error)
}

// RunSummary is the result of one validation run.
type RunSummary struct {
	Checked     int `json:"checked"`
	Verified    int `json:"verified"`
	Suspicious  int `json:"suspicious"`
	Invalid     int `json:"invalid"`
	Unreachable int `json:"unreachable"`
	Pruned      int `json:"pruned"`
}

func (s *RunSummary) add(st Status) {
	s.Checked++
	switch st {
	case StatusVerified:
		s.Verified++
	case StatusSuspicious:
		s.Suspicious++
	case StatusInvalid:
		s.Invalid++
	case StatusUnreachable:
		s.Unreachable++
	}
}

// Validator checks every external listing, records the outcome and then
// prunes.
type Validator struct {
	store   Store
	fetcher Fetcher
	pool    *crawl.Pool
	pruner  *Pruner
	metrics *metrics.Metrics
	log     *slog.Logger
	Now     func() time.Time
}

// NewValidator constructs a Validator. A nil pool checks listings one at a
// time.
func NewValidator(store Store, fetcher Fetcher, pool *crawl.Pool, m *metrics.Metrics) *Validator {
	if pool == nil {
		pool = crawl.NewPool(1, 0)
	}
	return &Validator{
		store:   store,
		fetcher: fetcher,
		pool:    pool,
		pruner:  NewPruner(store, m),
		metrics: m,
		log:     slog.Default().With("component", "validation"),
		Now:     time.Now,
	}
}

// Run validates all external listings and prunes afterwards. Per-listing
// failures become unreachable or invalid outcomes; a listing whose result
// cannot be saved is logged and left out of the counts.
func (v *Validator) Run(ctx context.Context) (RunSummary, error) {
	listings, err := v.store.ListExternal(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load external listings: %w", err)
	}

	results, mapErr := crawl.Map(ctx, v.pool, listings,
		func(l model.OpenCallListing) string { return textnorm.HostFromURL(CandidateURL(l)) },
		v.validateOne,
	)

	var sum RunSummary
	for _, res := range results {
		if res == nil {
			continue
		}
		sum.add(res.Status)
		v.metrics.ValidationStatus(string(res.Status))
	}
	if mapErr != nil {
		return sum, fmt.Errorf("validation run interrupted: %w", mapErr)
	}

	pruned, err := v.pruner.Prune(ctx, v.Now())
	if err != nil {
		return sum, fmt.Errorf("prune: %w", err)
	}
	sum.Pruned = pruned

	v.log.Info("validation run done",
		"checked", sum.Checked, "verified", sum.Verified, "suspicious", sum.Suspicious,
		"invalid", sum.Invalid, "unreachable", sum.Unreachable, "pruned", sum.Pruned)
	return sum, nil
}

// Validate classifies a single listing without saving it.
func (v *Validator) Validate(ctx context.Context, l model.OpenCallListing) ListingValidation {
	candidate := CandidateURL(l)
	var res ListingValidation
	if !fetch.IsHTTPURL(candidate) {
		res = InvalidURL(l, candidate)
	} else {
		start := time.Now()
		page, err := v.fetcher.Get(ctx, candidate)
		v.metrics.ObserveFetch("validation", start)
		res = Classify(l, candidate, page, err)
	}
	res.CheckedAt = v.Now().UTC()
	return res
}

func (v *Validator) validateOne(ctx context.Context, l model.OpenCallListing) *ListingValidation {
	res := v.Validate(ctx, l)
	if ctx.Err() != nil {
		// The run itself was cancelled; the outcome says nothing about l.
		return nil
	}
	if err := v.store.SaveValidation(ctx, res); err != nil {
		v.log.Warn("save validation failed", "openCallId", l.ID, "err", err)
		return nil
	}
	if res.Status == StatusUnreachable {
		v.log.Warn("listing unreachable", "openCallId", l.ID, "url", res.CheckedURL)
	}
	return &res
}
