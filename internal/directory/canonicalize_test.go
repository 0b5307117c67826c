package directory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artfair/curation-service/internal/directory"
	"artfair/curation-service/internal/model"
)

func year(y int) *int { return &y }

// ── Merging ────────────────────────────────────────────────────────────────

func TestCanonicalize_KukjeMergesAcrossPortals(t *testing.T) {
	out := directory.Canonicalize([]model.RawDirectoryRecord{
		{Name: "Kukje", Country: "KR", City: "Seoul", Website: "kukjegallery.com", SourcePortal: "manual_seed"},
		{Name: "Kukje Gallery", Country: "KR", City: "Seoul", Website: "www.kukjegallery.com", SourcePortal: "wikidata"},
	})

	require.Len(t, out, 1)
	g := out[0]
	assert.Equal(t, "kukje-kr-seoul", g.GalleryID)
	assert.Equal(t, "Kukje", g.Name)
	assert.ElementsMatch(t, []string{"manual_seed", "wikidata"}, g.SourcePortals)
	assert.GreaterOrEqual(t, g.QualityScore, 65)
	assert.Equal(t, 75, g.QualityScore)
}

func TestCanonicalize_FirstNonEmptyWins(t *testing.T) {
	out := directory.Canonicalize([]model.RawDirectoryRecord{
		{Name: "Arario", Country: "KR", City: "Seoul", Website: "arariogallery.com", SourcePortal: "google"},
		{Name: "Arario", Country: "KR", City: "Seoul", Website: "arariogallery.com", Bio: "first bio",
			ExternalEmail: "info@arario.com", FoundedYear: year(1989), SourcePortal: "naver"},
		{Name: "Arario", Country: "KR", City: "Seoul", Website: "arariogallery.com", Bio: "second bio",
			ExternalEmail: "other@arario.com", FoundedYear: year(2001), Instagram: "arariogallery", SourcePortal: "google"},
	})

	require.Len(t, out, 1)
	g := out[0]
	assert.Equal(t, "first bio", g.Bio)
	assert.Equal(t, "info@arario.com", g.ExternalEmail)
	assert.Equal(t, "arariogallery", g.Instagram)
	require.NotNil(t, g.FoundedYear)
	assert.Equal(t, 1989, *g.FoundedYear)
	assert.Equal(t, []string{"google", "naver"}, g.SourcePortals)
	assert.Equal(t, 40+25+10+10+10, g.QualityScore)
}

func TestCanonicalize_DropsIncompleteRecords(t *testing.T) {
	out := directory.Canonicalize([]model.RawDirectoryRecord{
		{Name: "", Country: "KR", City: "Seoul"},
		{Name: "No Country", Country: "  ", City: "Seoul"},
		{Name: "No City", Country: "KR"},
		{Name: "Kept", Country: "KR", City: "Busan"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "Kept", out[0].Name)
}

func TestCanonicalize_KeepsPortalGalleryID(t *testing.T) {
	out := directory.Canonicalize([]model.RawDirectoryRecord{
		{GalleryID: "wd-Q42", Name: "Lehmann Maupin", Country: "US", City: "New York"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "wd-Q42", out[0].GalleryID)
}

func TestCanonicalize_SlugCollisionsGetDistinctIDs(t *testing.T) {
	out := directory.Canonicalize([]model.RawDirectoryRecord{
		{Name: "Kukje", Country: "KR", City: "Seoul", Website: "kukjegallery.com"},
		{Name: "Kukje", Country: "KR", City: "Seoul"},
	})
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].GalleryID, out[1].GalleryID)
	for _, g := range out {
		assert.True(t, strings.HasPrefix(g.GalleryID, "kukje-kr-seoul-"), g.GalleryID)
	}
}

func TestCanonicalize_SynthesizedIDIgnoresNameSpelling(t *testing.T) {
	kukje := model.RawDirectoryRecord{Name: "Kukje", Country: "KR", City: "Seoul", Website: "kukjegallery.com", SourcePortal: "manual_seed"}
	kukjeGallery := model.RawDirectoryRecord{Name: "Kukje Gallery", Country: "KR", City: "Seoul", Website: "www.kukjegallery.com", SourcePortal: "wikidata"}

	forward := directory.Canonicalize([]model.RawDirectoryRecord{kukje, kukjeGallery})
	reverse := directory.Canonicalize([]model.RawDirectoryRecord{kukjeGallery, kukje})
	require.Len(t, forward, 1)
	require.Len(t, reverse, 1)
	assert.Equal(t, "kukje-kr-seoul", forward[0].GalleryID)
	assert.Equal(t, forward[0].GalleryID, reverse[0].GalleryID)
	assert.Equal(t, "Kukje Gallery", reverse[0].Name)

	// Re-seeding with the other portal order updates the same row.
	store := directory.NewMemoryStore()
	ctx := context.Background()
	_, err := store.Upsert(ctx, forward)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, reverse)
	require.NoError(t, err)
	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// ── Ordering ───────────────────────────────────────────────────────────────

func TestCanonicalize_OrderedByQualityThenLocationThenName(t *testing.T) {
	out := directory.Canonicalize([]model.RawDirectoryRecord{
		{Name: "Zeta", Country: "KR", City: "Seoul"},
		{Name: "Alpha", Country: "KR", City: "Seoul"},
		{Name: "Busan One", Country: "KR", City: "Busan"},
		{Name: "Tokyo One", Country: "JP", City: "Tokyo"},
		{Name: "Best", Country: "US", City: "LA", Website: "best.example.com"},
	})

	names := make([]string, 0, len(out))
	for _, g := range out {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Best", "Tokyo One", "Busan One", "Alpha", "Zeta"}, names)
}

func TestCanonicalizeWithTrace_RecordsInputs(t *testing.T) {
	raw := []model.RawDirectoryRecord{
		{Name: "Pace", Country: "US", City: "New York", Website: "pacegallery.com", SourcePortal: "google"},
		{Name: "", Country: "US", City: "New York"},
		{Name: "Pace Gallery", Country: "US", City: "New York", Website: "https://www.pacegallery.com", SourcePortal: "wikidata"},
	}
	galleries, traces := directory.CanonicalizeWithTrace(raw)

	require.Len(t, galleries, 1)
	require.Len(t, traces, 1)
	assert.Equal(t, galleries[0].GalleryID, traces[0].GalleryID)
	assert.Equal(t, galleries[0].MatchKey, traces[0].MatchKey)
	assert.Equal(t, []int{0, 2}, traces[0].Inputs)
	assert.Equal(t, []string{"google", "wikidata"}, traces[0].Portals)
}

// ── Properties ─────────────────────────────────────────────────────────────

func fakeRecords(f *gofakeit.Faker, n int) []model.RawDirectoryRecord {
	portals := []string{"google", "naver", "wikidata", "manual_seed"}
	out := make([]model.RawDirectoryRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := model.RawDirectoryRecord{
			Name:         f.Company(),
			Country:      f.CountryAbr(),
			City:         f.City(),
			SourcePortal: portals[f.Number(0, len(portals)-1)],
		}
		if f.Bool() {
			rec.Website = f.DomainName()
		}
		if f.Bool() {
			rec.Bio = f.Sentence(8)
		}
		if f.Bool() {
			rec.ExternalEmail = f.Email()
		}
		out = append(out, rec)
		// Re-sight some galleries from another portal.
		if f.Bool() {
			dup := rec
			dup.Name = strings.ToUpper(rec.Name)
			dup.SourcePortal = portals[f.Number(0, len(portals)-1)]
			out = append(out, dup)
		}
	}
	return out
}

func TestCanonicalize_Idempotent(t *testing.T) {
	f := gofakeit.New(42)
	raw := fakeRecords(f, 200)

	first := directory.Canonicalize(raw)
	second := directory.Canonicalize(raw)
	assert.Equal(t, first, second)

	// Feeding the same sightings twice does not grow the portal sets.
	doubled := directory.Canonicalize(append(append([]model.RawDirectoryRecord{}, raw...), raw...))
	require.Len(t, doubled, len(first))
	for i := range first {
		assert.Equal(t, first[i].GalleryID, doubled[i].GalleryID)
		assert.Equal(t, first[i].SourcePortals, doubled[i].SourcePortals)
		assert.Equal(t, first[i].QualityScore, doubled[i].QualityScore)
	}
}

func TestCanonicalize_MergeIsOrderIndependent(t *testing.T) {
	f := gofakeit.New(7)

	base := model.RawDirectoryRecord{Country: "KR", City: "Seoul", Website: "gallerybaton.com"}
	spellings := []string{"Gallery Baton", "Baton", "BATON Gallery", "baton", "The Baton Gallery"}
	group := make([]model.RawDirectoryRecord, 0, 5)
	for i, portal := range []string{"google", "naver", "wikidata", "manual_seed", "artsy"} {
		rec := base
		rec.Name = spellings[i]
		rec.SourcePortal = portal
		group = append(group, rec)
	}
	// Each optional field comes from exactly one sighting.
	group[f.Number(0, 4)].Bio = "Contemporary art gallery in Hannam-dong."
	group[f.Number(0, 4)].ExternalEmail = "info@gallerybaton.com"
	group[f.Number(0, 4)].Instagram = "gallerybaton"
	group[f.Number(0, 4)].FoundedYear = year(2011)
	group[f.Number(0, 4)].SpaceSize = "330 m²"

	want := directory.Canonicalize(group)
	require.Len(t, want, 1)

	assert.Equal(t, "baton-kr-seoul", want[0].GalleryID)

	for i := 0; i < 50; i++ {
		shuffled := append([]model.RawDirectoryRecord{}, group...)
		f.ShuffleAnySlice(shuffled)
		got := directory.Canonicalize(shuffled)
		require.Len(t, got, 1)

		// The display name is the first sighting's; everything else must match.
		got[0].Name = want[0].Name
		assert.Equal(t, want, got)
	}
}
