package directory

import (
	"strings"

	"artfair/curation-service/internal/model"
)

const (
	qualityBase       = 40
	qualityWebsite    = 25
	qualityEmail      = 10
	qualityBio        = 10
	qualityPerPortal  = 5
	qualityPortalsCap = 15
)

// QualityInput holds the signals the quality score is computed from.
type QualityInput struct {
	HasWebsite    bool
	HasEmail      bool
	HasBio        bool
	SourcePortals []string
}

// ComputeQualityScore returns a 0-100 confidence score:
// 40 base, +25 website, +10 email, +10 bio, +5 per distinct portal capped at 15.
func ComputeQualityScore(in QualityInput) int {
	score := qualityBase
	if in.HasWebsite {
		score += qualityWebsite
	}
	if in.HasEmail {
		score += qualityEmail
	}
	if in.HasBio {
		score += qualityBio
	}
	score += min(qualityPortalsCap, qualityPerPortal*distinctPortals(in.SourcePortals))
	return score
}

func distinctPortals(portals []string) int {
	seen := make(map[string]struct{}, len(portals))
	for _, p := range portals {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		seen[p] = struct{}{}
	}
	return len(seen)
}

func qualityOf(g *model.CanonicalGallery) int {
	return ComputeQualityScore(QualityInput{
		HasWebsite:    g.Website != "",
		HasEmail:      g.ExternalEmail != "",
		HasBio:        g.Bio != "",
		SourcePortals: g.SourcePortals,
	})
}
