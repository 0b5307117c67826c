package validation

import (
	"context"

	"artfair/curation-service/internal/model"
)

// Store reads external listings and keeps one validation row per listing.
type Store interface {
	EnsureSchema(ctx context.Context) error

	// ListExternal returns every listing with is_external set.
	ListExternal(ctx context.Context) ([]model.OpenCallListing, error)

	// SaveValidation upserts v keyed by OpenCallID.
	SaveValidation(ctx context.Context, v ListingValidation) error

	// GetValidationMap returns the validations for ids. Ids without a row
	// are absent from the map.
	GetValidationMap(ctx context.Context, ids []string) (map[string]ListingValidation, error)

	// PruneExternal deletes external listings whose validation is invalid
	// or whose YYYY-MM-DD deadline is before today, and returns how many
	// listings were deleted.
	PruneExternal(ctx context.Context, today string) (int, error)
}
