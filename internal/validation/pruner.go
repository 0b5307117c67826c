package validation

import (
	"context"
	"regexp"
	"time"

	"artfair/curation-service/internal/metrics"
)

const dateLayout = "2006-01-02"

// deadlineRe must stay in step with the pattern in PostgresStore.PruneExternal.
var deadlineRe = regexp.MustCompile(`^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)

// IsExpired reports whether a YYYY-MM-DD deadline ended before now's UTC
// date. A deadline that is not in that form never expires.
func IsExpired(deadline string, now time.Time) bool {
	return deadlineBefore(deadline, now.UTC().Format(dateLayout))
}

func deadlineBefore(deadline, today string) bool {
	return deadlineRe.MatchString(deadline) && deadline < today
}

// Pruner deletes external listings that failed validation or expired.
// Internal listings are never touched.
type Pruner struct {
	store   Store
	metrics *metrics.Metrics
}

func NewPruner(store Store, m *metrics.Metrics) *Pruner {
	return &Pruner{store: store, metrics: m}
}

// Prune deletes every external listing whose validation is invalid or whose
// deadline ended before now's UTC date, and returns the count.
func (p *Pruner) Prune(ctx context.Context, now time.Time) (int, error) {
	n, err := p.store.PruneExternal(ctx, now.UTC().Format(dateLayout))
	if err != nil {
		return 0, err
	}
	p.metrics.AddPruned(n)
	return n, nil
}
