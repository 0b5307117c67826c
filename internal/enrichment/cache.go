package enrichment

import (
	"context"
	"sync"

	"artfair/curation-service/internal/fetch"
)

// PageCache remembers fetch outcomes for the lifetime of one enrichment
// run, so galleries sharing a website cost one request. Create one per run.
type PageCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	once sync.Once
	page *fetch.Page
	err  error
}

// NewPageCache returns an empty cache.
func NewPageCache() *PageCache {
	return &PageCache{entries: make(map[string]*cacheEntry)}
}

// Get returns the cached outcome for url or calls load once to produce it.
// Concurrent callers for the same url share the single load.
func (c *PageCache) Get(ctx context.Context, url string, load func(context.Context, string) (*fetch.Page, error)) (*fetch.Page, error) {
	c.mu.Lock()
	e, ok := c.entries[url]
	if ok {
		c.hits++
	} else {
		c.misses++
		e = &cacheEntry{}
		c.entries[url] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.page, e.err = load(ctx, url)
	})
	return e.page, e.err
}

// Stats reports hits and misses so far.
func (c *PageCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
