package validation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/validation"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		deadline string
		want     bool
	}{
		{"2020-01-01", true},
		{"2026-04-30", true},
		{"2026-05-01", false}, // still running until end of day
		{"2026-05-02", false},
		{"", false},
		{"soon", false},
		{"2020/01/01", false},
		{"2020-13-01", false},
		{"2020-01-01T00:00:00Z", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validation.IsExpired(tt.deadline, now), tt.deadline)
	}
}

func TestIsExpired_UsesUTCDate(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	// 2026-05-02 08:00 in Seoul is still 2026-05-01 in UTC.
	now := time.Date(2026, 5, 2, 8, 0, 0, 0, seoul)
	assert.False(t, validation.IsExpired("2026-05-01", now))
}

func TestPrune_ExpiredExternalDeletedRegardlessOfStatus(t *testing.T) {
	ctx := context.Background()
	store := validation.NewMemoryStore(
		model.OpenCallListing{ID: "past", Deadline: "2020-01-01", IsExternal: true},
		model.OpenCallListing{ID: "future", Deadline: "2099-01-01", IsExternal: true},
		model.OpenCallListing{ID: "past-internal", Deadline: "2020-01-01", IsExternal: false},
		model.OpenCallListing{ID: "no-deadline", Deadline: "rolling", IsExternal: true},
	)
	require.NoError(t, store.SaveValidation(ctx, validation.ListingValidation{
		OpenCallID: "past", Status: validation.StatusVerified, Reason: validation.ReasonContentMatch, Confidence: 100,
	}))

	n, err := validation.NewPruner(store, nil).Prune(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := store.Listing("past")
	assert.False(t, ok)
	for _, id := range []string{"future", "past-internal", "no-deadline"} {
		_, ok := store.Listing(id)
		assert.True(t, ok, id)
	}

	m, err := store.GetValidationMap(ctx, []string{"past"})
	require.NoError(t, err)
	assert.Contains(t, m, "past")
}

func TestPrune_InvalidExternalDeletedInternalKept(t *testing.T) {
	ctx := context.Background()
	store := validation.NewMemoryStore(
		model.OpenCallListing{ID: "ext-invalid", Deadline: "2099-01-01", IsExternal: true},
		model.OpenCallListing{ID: "ext-unreachable", Deadline: "2099-01-01", IsExternal: true},
		model.OpenCallListing{ID: "int-invalid", Deadline: "2099-01-01", IsExternal: false},
	)
	for id, st := range map[string]validation.Status{
		"ext-invalid":     validation.StatusInvalid,
		"ext-unreachable": validation.StatusUnreachable,
		"int-invalid":     validation.StatusInvalid,
	} {
		require.NoError(t, store.SaveValidation(ctx, validation.ListingValidation{OpenCallID: id, Status: st}))
	}

	n, err := validation.NewPruner(store, nil).Prune(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := store.Listing("ext-invalid")
	assert.False(t, ok)
	_, ok = store.Listing("ext-unreachable")
	assert.True(t, ok)
	_, ok = store.Listing("int-invalid")
	assert.True(t, ok)
}

func TestPrune_KeepsValidationRowOfPrunedListing(t *testing.T) {
	ctx := context.Background()
	store := validation.NewMemoryStore(
		model.OpenCallListing{ID: "ext", Deadline: "2099-01-01", IsExternal: true},
	)
	require.NoError(t, store.SaveValidation(ctx, validation.ListingValidation{
		OpenCallID: "ext", Status: validation.StatusInvalid, Reason: validation.ReasonMissingOrInvalidURL,
	}))

	n, err := validation.NewPruner(store, nil).Prune(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, ok := store.Listing("ext")
	assert.False(t, ok)

	m, err := store.GetValidationMap(ctx, []string{"ext"})
	require.NoError(t, err)
	require.Contains(t, m, "ext")
	assert.Equal(t, validation.StatusInvalid, m["ext"].Status)
	assert.True(t, validation.IsHidden(m["ext"]))
}
