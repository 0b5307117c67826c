package directory

import (
	"strings"

	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/textnorm"
)

const (
	hostKeyPrefix     = "hostncc:"
	locationKeyPrefix = "ncc:"
)

// genericDescriptors are venue words that portals add or drop freely
// ("Kukje" vs "Kukje Gallery"). They are ignored when comparing names.
var genericDescriptors = wordSet(
	"the", "gallery", "galleries", "galerie", "galeria", "galleria",
	"갤러리", "ギャラリー", "画廊",
)

// BuildMatchKey derives the grouping key for a raw record.
//
// With a resolvable website (or source URL) host the key is
// "hostncc:<host>|<name>|<country>|<city>"; otherwise it falls back to
// "ncc:<name>|<country>|<city>". Two same-named galleries in one city without
// any website are indistinguishable and share a key.
func BuildMatchKey(rec model.RawDirectoryRecord) string {
	name := coreName(rec.Name)
	country := textnorm.Normalize(rec.Country)
	city := textnorm.Normalize(rec.City)

	host := textnorm.HostFromURL(rec.Website)
	if host == "" {
		host = textnorm.HostFromURL(rec.SourceURL)
	}
	if host != "" {
		return hostKeyPrefix + strings.Join([]string{host, name, country, city}, "|")
	}
	return locationKeyPrefix + strings.Join([]string{name, country, city}, "|")
}

// coreName is the normalized name without generic venue descriptors. A name
// made only of descriptors is kept whole.
func coreName(name string) string {
	normalized := textnorm.Normalize(name)
	fields := strings.Fields(normalized)
	var kept []string
	for _, f := range fields {
		if _, generic := genericDescriptors[f]; generic {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return normalized
	}
	return strings.Join(kept, " ")
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
