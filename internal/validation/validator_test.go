package validation_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artfair/curation-service/internal/crawl"
	"artfair/curation-service/internal/fetch"
	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/validation"
)

// ── fakes ──

type countingFetcher struct {
	calls atomic.Int32
	page  *fetch.Page
	err   error
}

func (f *countingFetcher) Get(_ context.Context, url string) (*fetch.Page, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	p := *f.page
	p.RequestURL = url
	return &p, nil
}

func newListingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/calls/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calls/2026-painters", http.StatusFound)
	})
	mux.HandleFunc("/calls/2026-painters", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Open Call</h1>
			<p>Kukje Gallery invites Seoul painters to apply.</p></body></html>`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/unrelated", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<p>Buy cheap sunglasses</p>`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func seenStatus(t *testing.T, store *validation.MemoryStore, id string) validation.ListingValidation {
	t.Helper()
	m, err := store.GetValidationMap(context.Background(), []string{id})
	require.NoError(t, err)
	v, ok := m[id]
	require.True(t, ok, "no validation saved for %s", id)
	return v
}

// ── single listing outcomes ──

func TestValidate_MalformedURLSkipsFetch(t *testing.T) {
	f := &countingFetcher{page: &fetch.Page{}}
	v := validation.NewValidator(validation.NewMemoryStore(), f, nil, nil)

	res := v.Validate(context.Background(), model.OpenCallListing{ID: "oc-bad", ExternalURL: "not-a-url", IsExternal: true})

	assert.Equal(t, validation.StatusInvalid, res.Status)
	assert.Equal(t, validation.ReasonMissingOrInvalidURL, res.Reason)
	assert.Equal(t, 0, res.Confidence)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestValidate_MalformedExternalURLFallsBackToWebsite(t *testing.T) {
	f := &countingFetcher{page: &fetch.Page{}}
	v := validation.NewValidator(validation.NewMemoryStore(), f, nil, nil)

	res := v.Validate(context.Background(), model.OpenCallListing{
		ID: "oc-fallback", ExternalURL: "not-a-url", GalleryWebsite: "https://kukjegallery.com", IsExternal: true,
	})

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, "https://kukjegallery.com", res.CheckedURL)
	assert.NotEqual(t, validation.ReasonMissingOrInvalidURL, res.Reason)
}

func TestValidate_NoURLAtAll(t *testing.T) {
	f := &countingFetcher{page: &fetch.Page{}}
	v := validation.NewValidator(validation.NewMemoryStore(), f, nil, nil)

	res := v.Validate(context.Background(), model.OpenCallListing{ID: "oc-none", IsExternal: true})
	assert.Equal(t, validation.ReasonMissingOrInvalidURL, res.Reason)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestValidate_VerifiedWithFullConfidence(t *testing.T) {
	srv := newListingServer(t)
	v := validation.NewValidator(validation.NewMemoryStore(), fetch.NewClient("", time.Second), nil, nil)

	res := v.Validate(context.Background(), model.OpenCallListing{
		ID:             "oc-good",
		GalleryName:    "Kukje Gallery",
		Theme:          "Seoul Painters",
		ExternalURL:    srv.URL + "/calls/old",
		GalleryWebsite: srv.URL,
		IsExternal:     true,
	})

	assert.Equal(t, validation.StatusVerified, res.Status)
	assert.Equal(t, validation.ReasonContentMatch, res.Reason)
	assert.Equal(t, 100, res.Confidence)
	require.NotNil(t, res.HTTPStatus)
	assert.Equal(t, http.StatusOK, *res.HTTPStatus)
	assert.False(t, res.CheckedAt.IsZero())
}

func TestValidate_HTTP500IsInvalid(t *testing.T) {
	srv := newListingServer(t)
	v := validation.NewValidator(validation.NewMemoryStore(), fetch.NewClient("", time.Second), nil, nil)

	res := v.Validate(context.Background(), model.OpenCallListing{ID: "oc-500", ExternalURL: srv.URL + "/broken"})
	assert.Equal(t, validation.StatusInvalid, res.Status)
	assert.Equal(t, "http_500", res.Reason)
}

func TestValidate_TimeoutIsUnreachable(t *testing.T) {
	srv := newListingServer(t)
	v := validation.NewValidator(validation.NewMemoryStore(), fetch.NewClient("", 50*time.Millisecond), nil, nil)

	res := v.Validate(context.Background(), model.OpenCallListing{ID: "oc-slow", ExternalURL: srv.URL + "/slow"})
	assert.Equal(t, validation.StatusUnreachable, res.Status)
	assert.Equal(t, validation.ReasonNetworkError, res.Reason)
}

func TestValidate_AbortedFetchIsNeverInvalid(t *testing.T) {
	f := &countingFetcher{err: fmt.Errorf("http GET: %w", context.Canceled)}
	v := validation.NewValidator(validation.NewMemoryStore(), f, nil, nil)

	res := v.Validate(context.Background(), model.OpenCallListing{ID: "oc-abort", ExternalURL: "https://gallery.kr/call"})
	assert.Equal(t, validation.StatusUnreachable, res.Status)
	assert.NotEqual(t, validation.StatusInvalid, res.Status)
}

// ── Run ──

func TestRun_SavesEveryOutcomeAndPrunes(t *testing.T) {
	srv := newListingServer(t)
	store := validation.NewMemoryStore(
		model.OpenCallListing{ID: "good", GalleryName: "Kukje Gallery", Theme: "Seoul Painters",
			ExternalURL: srv.URL + "/calls/old", GalleryWebsite: srv.URL, Deadline: "2099-12-31", IsExternal: true},
		model.OpenCallListing{ID: "bad-url", ExternalURL: "not-a-url", Deadline: "2099-12-31", IsExternal: true},
		model.OpenCallListing{ID: "server-error", ExternalURL: srv.URL + "/broken", Deadline: "2099-12-31", IsExternal: true},
		model.OpenCallListing{ID: "refused", GalleryName: "Hakgojae", Theme: "Ceramics",
			ExternalURL: "http://127.0.0.1:1/x", Deadline: "2099-12-31", IsExternal: true},
		model.OpenCallListing{ID: "expired", GalleryName: "PKM", Theme: "Summer Show",
			ExternalURL: srv.URL + "/calls/2026-painters", Deadline: "2020-01-01", IsExternal: true},
		model.OpenCallListing{ID: "internal", ExternalURL: "not-a-url", Deadline: "2020-01-01", IsExternal: false},
	)

	v := validation.NewValidator(store, fetch.NewClient("", 2*time.Second), nil, nil)
	v.Now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

	sum, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Checked)
	assert.Equal(t, 2, sum.Verified)
	assert.Equal(t, 2, sum.Invalid)
	assert.Equal(t, 1, sum.Unreachable)
	assert.Equal(t, 3, sum.Pruned)

	for _, id := range []string{"bad-url", "server-error", "expired"} {
		_, ok := store.Listing(id)
		assert.False(t, ok, "%s should be pruned", id)
	}
	for _, id := range []string{"good", "refused", "internal"} {
		_, ok := store.Listing(id)
		assert.True(t, ok, "%s should be kept", id)
	}

	assert.Equal(t, validation.StatusVerified, seenStatus(t, store, "good").Status)
	assert.Equal(t, validation.StatusUnreachable, seenStatus(t, store, "refused").Status)
}

func TestRun_UnrelatedPageIsInvalid(t *testing.T) {
	srv := newListingServer(t)
	store := validation.NewMemoryStore(model.OpenCallListing{
		ID: "spam", GalleryName: "Nowhere", Theme: "Ceramics", ExternalURL: srv.URL + "/unrelated",
		GalleryWebsite: "https://other-host.kr", Deadline: "2099-01-01", IsExternal: true,
	})

	sum, err := validation.NewValidator(store, fetch.NewClient("", time.Second), nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Invalid)
	assert.Equal(t, 1, sum.Pruned)
}

func TestRun_ConcurrentPoolMatchesSequential(t *testing.T) {
	srv := newListingServer(t)
	listings := []model.OpenCallListing{
		{ID: "a", GalleryName: "Kukje Gallery", Theme: "Seoul Painters", ExternalURL: srv.URL + "/calls/old", GalleryWebsite: srv.URL, IsExternal: true},
		{ID: "b", ExternalURL: srv.URL + "/missing", IsExternal: true},
		{ID: "c", ExternalURL: "ftp://x.kr", IsExternal: true},
	}

	seq, err := validation.NewValidator(validation.NewMemoryStore(listings...), fetch.NewClient("", time.Second), nil, nil).
		Run(context.Background())
	require.NoError(t, err)
	par, err := validation.NewValidator(validation.NewMemoryStore(listings...), fetch.NewClient("", time.Second), crawl.NewPool(3, 0), nil).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	assert.Equal(t, validation.RunSummary{Checked: 3, Verified: 1, Invalid: 2, Pruned: 2}, seq)
}
