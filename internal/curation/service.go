// Package curation contains the read and merge operations exposed to the
// rest of the product. It is transport-agnostic: used by both the HTTP api
// and the gRPC server.
package curation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"artfair/curation-service/internal/directory"
	"artfair/curation-service/internal/metrics"
	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/portal"
	"artfair/curation-service/internal/validation"
)

const (
	maxMergeRecords = 5000
	maxLookupIDs    = 500
)

// ErrNotFound is returned when a gallery does not exist.
var ErrNotFound = directory.ErrNotFound

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// MergeResult reports what one merge call did.
type MergeResult struct {
	Received  int `json:"received"`
	Canonical int `json:"canonical"`
	Upserted  int `json:"upserted"`
}

// ValidationView is the validation state read paths need for one listing.
type ValidationView struct {
	Status     validation.Status `json:"status"`
	Reason     string            `json:"reason"`
	Confidence int               `json:"confidence"`
	CheckedAt  time.Time         `json:"checkedAt"`
	Hidden     bool              `json:"hidden"`
}

// Service encapsulates the directory and validation read paths.
type Service struct {
	galleries   directory.Store
	validations validation.Store
	metrics     *metrics.Metrics
	log         *slog.Logger
}

// NewService returns a configured Service.
func NewService(galleries directory.Store, validations validation.Store, m *metrics.Metrics) *Service {
	return &Service{
		galleries:   galleries,
		validations: validations,
		metrics:     m,
		log:         slog.Default().With("component", "curation"),
	}
}

// ListGalleries returns the whole directory, best quality first.
func (s *Service) ListGalleries(ctx context.Context) ([]model.CanonicalGallery, error) {
	return s.galleries.ListAll(ctx)
}

// GetGallery returns ErrNotFound when galleryID is unknown.
func (s *Service) GetGallery(ctx context.Context, galleryID string) (*model.CanonicalGallery, error) {
	if galleryID == "" {
		return nil, &ValidationError{Msg: "galleryId is required"}
	}
	return s.galleries.GetByID(ctx, galleryID)
}

// Merge canonicalizes raw and upserts the result. Records without a source
// portal are tagged with sourcePortal when it is set. Records missing a
// name, country or city are dropped silently.
func (s *Service) Merge(ctx context.Context, sourcePortal string, raw []model.RawDirectoryRecord) (MergeResult, error) {
	if len(raw) == 0 {
		return MergeResult{}, &ValidationError{Msg: "at least one record is required"}
	}
	if len(raw) > maxMergeRecords {
		return MergeResult{}, &ValidationError{Msg: fmt.Sprintf("at most %d records per merge", maxMergeRecords)}
	}

	records, failed := portal.Collect(ctx, portal.StaticSource{Portal: strings.TrimSpace(sourcePortal), Records: raw})
	if len(failed) > 0 {
		return MergeResult{}, fmt.Errorf("merge input: %w", failed[0])
	}

	canonical := directory.Canonicalize(records)
	n, err := s.galleries.Upsert(ctx, canonical)
	s.metrics.AddUpserted(n)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge upsert: %w", err)
	}

	res := MergeResult{Received: len(raw), Canonical: len(canonical), Upserted: n}
	s.log.Info("directory merge", "portal", sourcePortal,
		"received", res.Received, "canonical", res.Canonical, "upserted", res.Upserted)
	return res, nil
}

// ValidationMap returns the validation state of each id that has been
// validated. Unvalidated ids are absent; callers show those listings.
func (s *Service) ValidationMap(ctx context.Context, ids []string) (map[string]ValidationView, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Msg: "ids must not be empty"}
	}
	if len(ids) > maxLookupIDs {
		return nil, &ValidationError{Msg: fmt.Sprintf("at most %d ids per lookup", maxLookupIDs)}
	}

	vals, err := s.validations.GetValidationMap(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("validation lookup: %w", err)
	}

	out := make(map[string]ValidationView, len(vals))
	for id, v := range vals {
		out[id] = ValidationView{
			Status:     v.Status,
			Reason:     v.Reason,
			Confidence: v.Confidence,
			CheckedAt:  v.CheckedAt,
			Hidden:     validation.IsHidden(v),
		}
	}
	return out, nil
}
