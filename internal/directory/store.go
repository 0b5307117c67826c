package directory

import (
	"context"
	"errors"

	"artfair/curation-service/internal/model"
)

// ErrNotFound is returned by GetByID when no gallery has the requested id.
var ErrNotFound = errors.New("gallery not found")

// upsertChunkSize bounds how many rows go into one batch round-trip.
const upsertChunkSize = 120

// Enrichment carries facts discovered on a gallery's own website. Empty
// fields were not found and are never written.
type Enrichment struct {
	Instagram     string
	FoundedYear   *int
	ExternalEmail string
	SpaceSize     string
}

// IsEmpty reports whether e carries nothing to write.
func (e Enrichment) IsEmpty() bool {
	return e.Instagram == "" && e.FoundedYear == nil && e.ExternalEmail == "" && e.SpaceSize == ""
}

// fillMissing copies e into the empty fields of g and reports whether
// anything changed.
func fillMissing(g *model.CanonicalGallery, e Enrichment) bool {
	changed := false
	if g.Instagram == "" && e.Instagram != "" {
		g.Instagram, changed = e.Instagram, true
	}
	if g.FoundedYear == nil && e.FoundedYear != nil {
		g.FoundedYear, changed = copyYear(e.FoundedYear), true
	}
	if g.ExternalEmail == "" && e.ExternalEmail != "" {
		g.ExternalEmail, changed = e.ExternalEmail, true
	}
	if g.SpaceSize == "" && e.SpaceSize != "" {
		g.SpaceSize, changed = e.SpaceSize, true
	}
	return changed
}

// Store persists canonical galleries keyed by gallery id.
//
// Upsert overwrites core fields from the latest canonicalization but keeps
// existing instagram, founded year, space size and email when the incoming
// value is empty.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, galleries []model.CanonicalGallery) (int, error)
	ListAll(ctx context.Context) ([]model.CanonicalGallery, error)
	GetByID(ctx context.Context, galleryID string) (*model.CanonicalGallery, error)

	// ListEnrichmentCandidates returns up to limit galleries that have a
	// website but lack instagram or founded year, best quality first and
	// least recently updated first within a score.
	ListEnrichmentCandidates(ctx context.Context, limit int) ([]model.CanonicalGallery, error)

	// ApplyEnrichment fills only the fields that are still empty, recomputes
	// the quality score and reports whether anything changed.
	ApplyEnrichment(ctx context.Context, galleryID string, e Enrichment) (bool, error)
}
