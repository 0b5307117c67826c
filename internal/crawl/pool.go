// Package crawl runs per-row crawl work with bounded concurrency and
// per-host politeness.
package crawl

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// MaxConcurrency caps the number of rows processed at once.
const MaxConcurrency = 10

// Pool bounds concurrent row work and spaces requests to the same host.
// A Pool may be shared by sequential runs; limiters persist across them.
type Pool struct {
	concurrency int
	hostRPS     float64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPool returns a Pool running at most concurrency rows at once (clamped
// to 1..MaxConcurrency). hostRPS <= 0 disables per-host rate limiting.
func NewPool(concurrency int, hostRPS float64) *Pool {
	concurrency = max(1, min(concurrency, MaxConcurrency))
	return &Pool{
		concurrency: concurrency,
		hostRPS:     hostRPS,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// Concurrency reports the effective worker count.
func (p *Pool) Concurrency() int { return p.concurrency }

// Wait blocks until host may be contacted again. An empty host is never
// limited.
func (p *Pool) Wait(ctx context.Context, host string) error {
	if p.hostRPS <= 0 || host == "" {
		return nil
	}
	return p.limiter(host).Wait(ctx)
}

func (p *Pool) limiter(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(p.hostRPS), 1)
		p.limiters[host] = l
	}
	return l
}

type indexed[R any] struct {
	i int
	r R
}

// Map applies fn to every item and returns the results in input order.
// hostOf names the host each item will contact, for rate limiting; it may
// be nil.
//
// fn reports row outcomes in its result, never as an error, so one row can
// not affect another. Map stops starting new rows once ctx is done and
// returns ctx.Err(); rows never started keep the zero value of R.
func Map[T, R any](ctx context.Context, p *Pool, items []T, hostOf func(T) string, fn func(context.Context, T) R) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	host := func(item T) string {
		if hostOf == nil {
			return ""
		}
		return hostOf(item)
	}

	if p.concurrency == 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			if err := p.Wait(ctx, host(item)); err != nil {
				return results, err
			}
			results[i] = fn(ctx, item)
		}
		return results, nil
	}

	out := make(chan indexed[R])
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range out {
			results[res.i] = res.r
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := p.Wait(gctx, host(item)); err != nil {
				return err
			}
			out <- indexed[R]{i: i, r: fn(gctx, item)}
			return nil
		})
	}
	err := g.Wait()
	close(out)
	<-collected

	if err == nil {
		err = ctx.Err()
	}
	return results, err
}
