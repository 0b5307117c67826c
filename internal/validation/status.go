// Package validation checks that externally sourced open-call listings
// point at a real page about an open call, and prunes the ones that do not
// or have expired.
//
// Outcomes:
//
//	verified     page fetched and clearly about this open call
//	suspicious   page fetched, one weak signal only
//	invalid      bad URL, HTTP error status, or nothing relevant on the page
//	unreachable  network error or timeout; says nothing about the listing
//
// Only invalid listings are pruned. unreachable is never treated as proof
// that a listing is fake.
package validation

import (
	"fmt"
	"strings"
	"time"
)

// Status values mirror open_call_validations.status.
type Status string

const (
	StatusVerified    Status = "verified"
	StatusSuspicious  Status = "suspicious"
	StatusInvalid     Status = "invalid"
	StatusUnreachable Status = "unreachable"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusVerified, StatusSuspicious, StatusInvalid, StatusUnreachable:
		return st, nil
	}
	return "", fmt.Errorf("unknown validation status %q", s)
}

// Reasons recorded alongside a status. HTTP failures use "http_<code>".
const (
	ReasonContentMatch        = "content_match"
	ReasonWeakSignal          = "weak_signal"
	ReasonContentNotRelevant  = "content_not_relevant"
	ReasonMissingOrInvalidURL = "missing_or_invalid_url"
	ReasonNetworkError        = "network_error_or_timeout"
)

// ListingValidation is the latest validation outcome for one listing.
type ListingValidation struct {
	OpenCallID string     `json:"openCallId"`
	Status     Status     `json:"status"`
	Reason     string     `json:"reason"`
	CheckedURL string     `json:"checkedUrl,omitempty"`
	HTTPStatus *int       `json:"httpStatus,omitempty"`
	Confidence int        `json:"confidence"`
	CheckedAt  time.Time  `json:"checkedAt"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// IsHidden reports whether read paths should hide the listing. Only hard
// URL failures hide; weak or transient outcomes keep the listing visible.
func IsHidden(v ListingValidation) bool {
	if v.Status != StatusInvalid {
		return false
	}
	if v.Reason == ReasonMissingOrInvalidURL {
		return true
	}
	code, ok := strings.CutPrefix(v.Reason, "http_")
	return ok && len(code) == 3 && code[0] == '4'
}
