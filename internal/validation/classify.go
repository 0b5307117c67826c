package validation

import (
	"errors"
	"fmt"
	"strings"

	"artfair/curation-service/internal/fetch"
	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/textnorm"
)

const (
	minTokenRunes = 4
	maxTokens     = 10

	weightHostMatch  = 25
	weightKeyword    = 45
	weightManyTokens = 30
	weightOneToken   = 15
)

// openCallKeywords are matched against normalized page text.
var openCallKeywords = normalizedAll(
	"open call",
	"opencall",
	"call for artists",
	"call for artist",
	"call for entries",
	"call for proposals",
	"call for submissions",
	"call for applications",
	"artist residency",
	"submission deadline",
	"application deadline",
	"공모",
	"오픈콜",
	"작가 모집",
	"작가모집",
	"참여 작가",
	"모집 공고",
	"지원 마감",
	"접수 마감",
)

func normalizedAll(words ...string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, textnorm.Normalize(w))
	}
	return out
}

// Signals are the content checks made on a fetched page.
type Signals struct {
	HostMatch  bool
	HasKeyword bool
	TokenHits  int
}

// Confidence is 25 for a host match, 45 for an open-call keyword and 30 for
// two or more listing tokens on the page (15 for exactly one).
func (s Signals) Confidence() int {
	c := 0
	if s.HostMatch {
		c += weightHostMatch
	}
	if s.HasKeyword {
		c += weightKeyword
	}
	switch {
	case s.TokenHits >= 2:
		c += weightManyTokens
	case s.TokenHits == 1:
		c += weightOneToken
	}
	return c
}

// Decide maps signals to a status and reason.
func (s Signals) Decide() (Status, string) {
	switch {
	case s.HasKeyword || s.TokenHits >= 2:
		return StatusVerified, ReasonContentMatch
	case s.TokenHits == 1 || s.HostMatch:
		return StatusSuspicious, ReasonWeakSignal
	default:
		return StatusInvalid, ReasonContentNotRelevant
	}
}

// CandidateURL is the first well-formed http(s) URL among the listing's
// external URL and gallery website. When neither is well-formed it returns
// the first non-empty one, so the invalid outcome records what was given.
func CandidateURL(l model.OpenCallListing) string {
	external := strings.TrimSpace(l.ExternalURL)
	website := strings.TrimSpace(l.GalleryWebsite)
	for _, u := range []string{external, website} {
		if fetch.IsHTTPURL(u) {
			return u
		}
	}
	if external != "" {
		return external
	}
	return website
}

// ExpectedHost is the host a genuine page should end up on: the gallery's
// own website host, else the candidate URL host.
func ExpectedHost(l model.OpenCallListing) string {
	if h := textnorm.HostFromURL(l.GalleryWebsite); h != "" {
		return h
	}
	return textnorm.HostFromURL(CandidateURL(l))
}

// ListingTokens returns up to 10 distinct normalized tokens of at least 4
// characters from the listing's theme and gallery name.
func ListingTokens(l model.OpenCallListing) []string {
	return textnorm.Tokens(l.Theme+" "+l.GalleryName, minTokenRunes, maxTokens)
}

// ContainsOpenCallKeyword reports whether normalized text mentions an open
// call in English or Korean.
func ContainsOpenCallKeyword(normalizedText string) bool {
	for _, kw := range openCallKeywords {
		if kw != "" && strings.Contains(normalizedText, kw) {
			return true
		}
	}
	return false
}

// CountTokenHits counts how many tokens occur in normalizedText.
func CountTokenHits(normalizedText string, tokens []string) int {
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(normalizedText, tok) {
			hits++
		}
	}
	return hits
}

// Inspect computes the content signals of a fetched page for l.
func Inspect(l model.OpenCallListing, page *fetch.Page) Signals {
	text := textnorm.Normalize(page.Text)
	expected := ExpectedHost(l)
	return Signals{
		HostMatch:  expected != "" && textnorm.HostFromURL(page.FinalURL) == expected,
		HasKeyword: ContainsOpenCallKeyword(text),
		TokenHits:  CountTokenHits(text, ListingTokens(l)),
	}
}

// Classify turns the outcome of fetching candidate into a validation. page
// and fetchErr come straight from the fetch; exactly one is set. CheckedAt
// is left for the caller.
func Classify(l model.OpenCallListing, candidate string, page *fetch.Page, fetchErr error) ListingValidation {
	v := ListingValidation{OpenCallID: l.ID, CheckedURL: candidate}

	if fetchErr != nil {
		var se *fetch.StatusError
		if errors.As(fetchErr, &se) {
			code := se.StatusCode
			v.Status = StatusInvalid
			v.Reason = fmt.Sprintf("http_%d", code)
			v.HTTPStatus = &code
			return v
		}
		v.Status = StatusUnreachable
		v.Reason = ReasonNetworkError
		return v
	}

	code := page.StatusCode
	v.HTTPStatus = &code
	sig := Inspect(l, page)
	v.Status, v.Reason = sig.Decide()
	v.Confidence = sig.Confidence()
	return v
}

// InvalidURL is the validation for a listing with no usable URL. No fetch
// is made for it.
func InvalidURL(l model.OpenCallListing, candidate string) ListingValidation {
	return ListingValidation{
		OpenCallID: l.ID,
		Status:     StatusInvalid,
		Reason:     ReasonMissingOrInvalidURL,
		CheckedURL: candidate,
	}
}
