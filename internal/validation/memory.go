package validation

import (
	"context"
	"sort"
	"sync"
	"time"

	"artfair/curation-service/internal/model"
)

// MemoryStore is an in-process Store for tests and dry runs.
type MemoryStore struct {
	mu          sync.RWMutex
	listings    map[string]model.OpenCallListing
	validations map[string]ListingValidation
	now         func() time.Time
}

// NewMemoryStore returns a MemoryStore holding listings.
func NewMemoryStore(listings ...model.OpenCallListing) *MemoryStore {
	s := &MemoryStore{
		listings:    make(map[string]model.OpenCallListing),
		validations: make(map[string]ListingValidation),
		now:         time.Now,
	}
	for _, l := range listings {
		s.listings[l.ID] = l
	}
	return s
}

func (s *MemoryStore) EnsureSchema(context.Context) error { return nil }

func (s *MemoryStore) ListExternal(context.Context) ([]model.OpenCallListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.OpenCallListing, 0, len(s.listings))
	for _, l := range s.listings {
		if l.IsExternal {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SaveValidation(_ context.Context, v ListingValidation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	v.UpdatedAt = &now
	if existing, ok := s.validations[v.OpenCallID]; ok {
		v.CreatedAt = existing.CreatedAt
	} else {
		v.CreatedAt = &now
	}
	s.validations[v.OpenCallID] = v
	return nil
}

func (s *MemoryStore) GetValidationMap(_ context.Context, ids []string) (map[string]ListingValidation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]ListingValidation, len(ids))
	for _, id := range ids {
		if v, ok := s.validations[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (s *MemoryStore) PruneExternal(_ context.Context, today string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, l := range s.listings {
		if !l.IsExternal {
			continue
		}
		v, validated := s.validations[id]
		if (validated && v.Status == StatusInvalid) || deadlineBefore(l.Deadline, today) {
			delete(s.listings, id)
			n++
		}
	}
	return n, nil
}

// Listing returns the listing with id, if it still exists.
func (s *MemoryStore) Listing(id string) (model.OpenCallListing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	return l, ok
}
