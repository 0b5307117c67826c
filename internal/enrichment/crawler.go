// Package enrichment visits directory galleries' websites and fills in
// facts the portals did not carry.
package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"artfair/curation-service/internal/crawl"
	"artfair/curation-service/internal/directory"
	"artfair/curation-service/internal/fetch"
	"artfair/curation-service/internal/metrics"
	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/textnorm"
)

const (
	// DefaultBatchSize is how many galleries one run visits.
	DefaultBatchSize = 60
	// FetchTimeout bounds each website fetch.
	FetchTimeout = 9 * time.Second
)

const (
	outcomeUpdated   = "updated"
	outcomeUnchanged = "unchanged"
	outcomeSkipped   = "skipped"
)

// Fetcher retrieves one page.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Page, error)
}

// Summary is the result of one enrichment run. Every processed row is
// either updated, skipped, or left unchanged.
type Summary struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// Crawler runs enrichment batches against a directory store.
type Crawler struct {
	store     directory.Store
	fetcher   Fetcher
	pool      *crawl.Pool
	metrics   *metrics.Metrics
	log       *slog.Logger
	BatchSize int
	Now       func() time.Time
}

// NewCrawler constructs a Crawler. A nil pool runs rows one at a time.
func NewCrawler(store directory.Store, fetcher Fetcher, pool *crawl.Pool, m *metrics.Metrics) *Crawler {
	if pool == nil {
		pool = crawl.NewPool(1, 0)
	}
	return &Crawler{
		store:     store,
		fetcher:   fetcher,
		pool:      pool,
		metrics:   m,
		log:       slog.Default().With("component", "enrichment"),
		BatchSize: DefaultBatchSize,
		Now:       time.Now,
	}
}

// Run enriches one batch of candidates. Row failures are counted as
// skipped and never abort the batch; only a failure to load candidates or
// a cancelled ctx is returned as an error.
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	candidates, err := c.store.ListEnrichmentCandidates(ctx, c.BatchSize)
	if err != nil {
		return Summary{}, fmt.Errorf("load enrichment candidates: %w", err)
	}

	cache := NewPageCache()
	outcomes, err := crawl.Map(ctx, c.pool, candidates,
		func(g model.CanonicalGallery) string { return textnorm.HostFromURL(g.Website) },
		func(ctx context.Context, g model.CanonicalGallery) string { return c.enrichOne(ctx, cache, g) },
	)

	var sum Summary
	for _, outcome := range outcomes {
		if outcome == "" {
			continue
		}
		sum.Processed++
		switch outcome {
		case outcomeUpdated:
			sum.Updated++
		case outcomeSkipped:
			sum.Skipped++
		}
		c.metrics.EnrichmentOutcome(outcome)
	}

	hits, misses := cache.Stats()
	c.log.Info("enrichment batch done",
		"candidates", len(candidates), "processed", sum.Processed,
		"updated", sum.Updated, "skipped", sum.Skipped,
		"cacheHits", hits, "cacheMisses", misses)

	if err != nil {
		return sum, fmt.Errorf("enrichment run interrupted: %w", err)
	}
	return sum, nil
}

func (c *Crawler) enrichOne(ctx context.Context, cache *PageCache, g model.CanonicalGallery) string {
	target := fetch.EnsureScheme(g.Website)
	page, err := cache.Get(ctx, target, c.timedGet)
	if err != nil {
		c.log.Warn("fetch failed, skipping", "galleryId", g.GalleryID, "url", target, "err", err)
		return outcomeSkipped
	}

	changed, err := c.store.ApplyEnrichment(ctx, g.GalleryID, Extract(page, c.Now()))
	if err != nil {
		c.log.Warn("apply enrichment failed, skipping", "galleryId", g.GalleryID, "err", err)
		return outcomeSkipped
	}
	if changed {
		return outcomeUpdated
	}
	return outcomeUnchanged
}

func (c *Crawler) timedGet(ctx context.Context, url string) (*fetch.Page, error) {
	defer c.metrics.ObserveFetch("enrichment", time.Now())
	return c.fetcher.Get(ctx, url)
}

// Extract runs every extractor over page. Instagram and email are read from
// the markup so links count; year and space from the visible text.
func Extract(page *fetch.Page, now time.Time) directory.Enrichment {
	var e directory.Enrichment
	if handle, ok := ExtractInstagram(page.HTML); ok {
		e.Instagram = handle
	}
	if y, ok := ExtractFoundedYear(page.Text, now); ok {
		e.FoundedYear = &y
	}
	if email, ok := ExtractEmail(page.HTML); ok {
		e.ExternalEmail = email
	}
	if size, ok := ExtractSpaceSize(page.Text); ok {
		e.SpaceSize = size
	}
	return e
}
