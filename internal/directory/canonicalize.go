// Package directory folds raw portal records into canonical gallery entries
// and persists them.
package directory

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/textnorm"
)

// MergeTrace explains one canonical record: which input rows (by index) were
// folded into it and which portals corroborated it.
type MergeTrace struct {
	GalleryID string
	MatchKey  string
	Inputs    []int
	Portals   []string
}

type canonicalEntry struct {
	gallery      model.CanonicalGallery
	trace        MergeTrace
	synthesizeID bool
}

// Canonicalize groups raw records by match-key and merges each group into a
// single canonical gallery. See CanonicalizeWithTrace.
func Canonicalize(raw []model.RawDirectoryRecord) []model.CanonicalGallery {
	out, _ := CanonicalizeWithTrace(raw)
	return out
}

// CanonicalizeWithTrace walks raw in input order. Records missing a name,
// country or city are dropped. The first record for a match-key seeds the
// canonical entry; later ones merge into it with first-non-empty-wins per
// field and a set union of source portals. The quality score is recomputed
// after every merge.
//
// Output is sorted by quality score descending, then country, city and name
// ascending. Traces are returned in the same order.
func CanonicalizeWithTrace(raw []model.RawDirectoryRecord) ([]model.CanonicalGallery, []MergeTrace) {
	byKey := make(map[string]*canonicalEntry)
	var entries []*canonicalEntry

	for i, rec := range raw {
		rec = trimRecord(rec)
		if rec.Name == "" || rec.Country == "" || rec.City == "" {
			continue
		}

		key := BuildMatchKey(rec)
		entry, seen := byKey[key]
		if !seen {
			entry = seed(key, rec)
			byKey[key] = entry
			entries = append(entries, entry)
		} else {
			merge(&entry.gallery, rec)
		}
		entry.trace.Inputs = append(entry.trace.Inputs, i)
		entry.gallery.QualityScore = qualityOf(&entry.gallery)
	}

	assignSynthesizedIDs(entries)

	sort.SliceStable(entries, func(i, j int) bool {
		return lessCanonical(&entries[i].gallery, &entries[j].gallery)
	})

	galleries := make([]model.CanonicalGallery, 0, len(entries))
	traces := make([]MergeTrace, 0, len(entries))
	for _, e := range entries {
		e.trace.GalleryID = e.gallery.GalleryID
		e.trace.Portals = append([]string(nil), e.gallery.SourcePortals...)
		galleries = append(galleries, e.gallery)
		traces = append(traces, e.trace)
	}
	return galleries, traces
}

func seed(key string, rec model.RawDirectoryRecord) *canonicalEntry {
	g := model.CanonicalGallery{
		GalleryID:     rec.GalleryID,
		MatchKey:      key,
		Name:          rec.Name,
		Country:       rec.Country,
		City:          rec.City,
		Website:       rec.Website,
		Bio:           rec.Bio,
		SourcePortals: unionPortals(nil, rec.SourcePortal),
		SourceURL:     rec.SourceURL,
		ExternalEmail: rec.ExternalEmail,
		Instagram:     rec.Instagram,
		FoundedYear:   copyYear(rec.FoundedYear),
		SpaceSize:     rec.SpaceSize,
	}
	return &canonicalEntry{
		gallery:      g,
		trace:        MergeTrace{MatchKey: key},
		synthesizeID: rec.GalleryID == "",
	}
}

func merge(g *model.CanonicalGallery, rec model.RawDirectoryRecord) {
	g.Website = firstNonEmpty(g.Website, rec.Website)
	g.Bio = firstNonEmpty(g.Bio, rec.Bio)
	g.SourceURL = firstNonEmpty(g.SourceURL, rec.SourceURL)
	g.ExternalEmail = firstNonEmpty(g.ExternalEmail, rec.ExternalEmail)
	g.Instagram = firstNonEmpty(g.Instagram, rec.Instagram)
	g.SpaceSize = firstNonEmpty(g.SpaceSize, rec.SpaceSize)
	if g.FoundedYear == nil {
		g.FoundedYear = copyYear(rec.FoundedYear)
	}
	g.SourcePortals = unionPortals(g.SourcePortals, rec.SourcePortal)
}

// assignSynthesizedIDs gives id-less entries a slug of the core name, country
// and city, the same parts the match-key is built from, so the id does not
// depend on which spelling of the name arrived first. When distinct
// match-keys slug to the same id, every colliding entry gets a short hash of
// its match-key appended.
func assignSynthesizedIDs(entries []*canonicalEntry) {
	bySlug := make(map[string][]*canonicalEntry)
	for _, e := range entries {
		if !e.synthesizeID {
			continue
		}
		slug := textnorm.Slugify(coreName(e.gallery.Name), e.gallery.Country, e.gallery.City)
		bySlug[slug] = append(bySlug[slug], e)
	}
	for slug, group := range bySlug {
		if len(group) == 1 {
			group[0].gallery.GalleryID = slug
			continue
		}
		for _, e := range group {
			e.gallery.GalleryID = fmt.Sprintf("%s-%s", slug, shortHash(e.gallery.MatchKey))
		}
	}
}

func lessCanonical(a, b *model.CanonicalGallery) bool {
	if a.QualityScore != b.QualityScore {
		return a.QualityScore > b.QualityScore
	}
	if a.Country != b.Country {
		return a.Country < b.Country
	}
	if a.City != b.City {
		return a.City < b.City
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.GalleryID < b.GalleryID
}

// unionPortals adds portal to the sorted, de-duplicated set.
func unionPortals(set []string, portal string) []string {
	out := append([]string{}, set...)
	portal = strings.TrimSpace(portal)
	if portal == "" {
		return out
	}
	i := sort.SearchStrings(out, portal)
	if i < len(out) && out[i] == portal {
		return out
	}
	out = append(out, "")
	copy(out[i+1:], out[i:])
	out[i] = portal
	return out
}

func trimRecord(rec model.RawDirectoryRecord) model.RawDirectoryRecord {
	rec.GalleryID = strings.TrimSpace(rec.GalleryID)
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Country = strings.TrimSpace(rec.Country)
	rec.City = strings.TrimSpace(rec.City)
	rec.Website = strings.TrimSpace(rec.Website)
	rec.Bio = strings.TrimSpace(rec.Bio)
	rec.SourceURL = strings.TrimSpace(rec.SourceURL)
	rec.ExternalEmail = strings.TrimSpace(rec.ExternalEmail)
	rec.Instagram = strings.TrimSpace(rec.Instagram)
	rec.SpaceSize = strings.TrimSpace(rec.SpaceSize)
	return rec
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}

func copyYear(y *int) *int {
	if y == nil {
		return nil
	}
	v := *y
	return &v
}

func shortHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}
