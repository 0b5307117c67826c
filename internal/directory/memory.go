package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"artfair/curation-service/internal/model"
)

// MemoryStore is an in-process Store with the same merge semantics as
// PostgresStore. It backs tests and dry runs.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]model.CanonicalGallery
	now  func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]model.CanonicalGallery),
		now:  time.Now,
	}
}

// EnsureSchema is a no-op.
func (s *MemoryStore) EnsureSchema(context.Context) error { return nil }

func (s *MemoryStore) Upsert(_ context.Context, galleries []model.CanonicalGallery) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	written := 0
	for _, g := range galleries {
		if g.GalleryID == "" {
			continue
		}
		next := cloneGallery(g)
		next.UpdatedAt = timePtr(now)
		if existing, ok := s.rows[g.GalleryID]; ok {
			next.CreatedAt = existing.CreatedAt
			next.Instagram = firstNonEmpty(next.Instagram, existing.Instagram)
			next.ExternalEmail = firstNonEmpty(next.ExternalEmail, existing.ExternalEmail)
			next.SpaceSize = firstNonEmpty(next.SpaceSize, existing.SpaceSize)
			if next.FoundedYear == nil {
				next.FoundedYear = copyYear(existing.FoundedYear)
			}
			next.QualityScore = qualityOf(&next)
		} else {
			next.CreatedAt = timePtr(now)
		}
		s.rows[g.GalleryID] = next
		written++
	}
	return written, nil
}

func (s *MemoryStore) ListAll(context.Context) ([]model.CanonicalGallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CanonicalGallery, 0, len(s.rows))
	for _, g := range s.rows {
		out = append(out, cloneGallery(g))
	}
	sort.Slice(out, func(i, j int) bool { return lessCanonical(&out[i], &out[j]) })
	return out, nil
}

func (s *MemoryStore) GetByID(_ context.Context, galleryID string) (*model.CanonicalGallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.rows[galleryID]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneGallery(g)
	return &out, nil
}

func (s *MemoryStore) ListEnrichmentCandidates(_ context.Context, limit int) ([]model.CanonicalGallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.CanonicalGallery
	for _, g := range s.rows {
		if g.Website == "" || (g.Instagram != "" && g.FoundedYear != nil) {
			continue
		}
		out = append(out, cloneGallery(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QualityScore != out[j].QualityScore {
			return out[i].QualityScore > out[j].QualityScore
		}
		if !out[i].UpdatedAt.Equal(*out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(*out[j].UpdatedAt)
		}
		return out[i].GalleryID < out[j].GalleryID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) ApplyEnrichment(_ context.Context, galleryID string, e Enrichment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.rows[galleryID]
	if !ok {
		return false, nil
	}
	changed := fillMissing(&g, e)
	if !changed {
		return false, nil
	}
	g.QualityScore = qualityOf(&g)
	g.UpdatedAt = timePtr(s.now().UTC())
	s.rows[galleryID] = g
	return true, nil
}

func cloneGallery(g model.CanonicalGallery) model.CanonicalGallery {
	g.SourcePortals = append([]string(nil), g.SourcePortals...)
	g.FoundedYear = copyYear(g.FoundedYear)
	return g
}

func timePtr(t time.Time) *time.Time { return &t }
