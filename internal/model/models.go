// Package model defines shared data structures for the curation service.
package model

import "time"

// RawDirectoryRecord is one portal's observation of a gallery. It has no
// identity of its own and only exists to be folded into a CanonicalGallery.
// Empty strings mean "not provided".
type RawDirectoryRecord struct {
	GalleryID     string `json:"galleryId,omitempty"` // kept when the portal already carries a stable id
	Name          string `json:"name"`
	Country       string `json:"country"`
	City          string `json:"city"`
	Website       string `json:"website,omitempty"`
	Bio           string `json:"bio,omitempty"`
	SourcePortal  string `json:"sourcePortal,omitempty"`
	SourceURL     string `json:"sourceUrl,omitempty"`
	ExternalEmail string `json:"externalEmail,omitempty"`
	Instagram     string `json:"instagram,omitempty"`
	FoundedYear   *int   `json:"foundedYear,omitempty"`
	SpaceSize     string `json:"spaceSize,omitempty"`
}

// CanonicalGallery is the merged, de-duplicated directory entity.
// QualityScore is derived from the other fields and never set by hand.
type CanonicalGallery struct {
	GalleryID     string     `json:"galleryId"`
	MatchKey      string     `json:"matchKey,omitempty"`
	Name          string     `json:"name"`
	Country       string     `json:"country"`
	City          string     `json:"city"`
	Website       string     `json:"website,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	SourcePortals []string   `json:"sourcePortals"`
	SourceURL     string     `json:"sourceUrl,omitempty"`
	ExternalEmail string     `json:"externalEmail,omitempty"`
	Instagram     string     `json:"instagram,omitempty"`
	FoundedYear   *int       `json:"foundedYear,omitempty"`
	SpaceSize     string     `json:"spaceSize,omitempty"`
	QualityScore  int        `json:"qualityScore"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// OpenCallListing is owned by the product's listing feature. The validator
// and pruner read it; they never create it.
type OpenCallListing struct {
	ID             string `json:"id"`
	GalleryName    string `json:"galleryName"`
	Theme          string `json:"theme"`
	ExternalURL    string `json:"externalUrl,omitempty"`
	GalleryWebsite string `json:"galleryWebsite,omitempty"`
	Deadline       string `json:"deadline"` // YYYY-MM-DD
	IsExternal     bool   `json:"isExternal"`
}
