// Package textnorm folds raw portal strings (names, cities, URLs) into
// comparable forms. Every other package compares text through these helpers.
package textnorm

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// prolongedSoundMark is the katakana "ー", which Unicode files under the
// Common script rather than Katakana.
const prolongedSoundMark = 'ー'

var lowerCaser = cases.Lower(language.Und)

// Normalize lowercases text, spells "&" as "and", drops every rune outside the
// allowed scripts (Latin, Hangul, Hiragana, Katakana, Han, ASCII digits,
// hyphen) and collapses whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := norm.NFKC.String(text)
	s = lowerCaser.String(s)
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func keepRune(r rune) bool {
	switch {
	case r == '-' || r == ' ':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == prolongedSoundMark:
		return true
	case !unicode.IsLetter(r):
		return false
	}
	return unicode.In(r, unicode.Latin, unicode.Hangul, unicode.Hiragana, unicode.Katakana, unicode.Han)
}

// HostFromURL returns the lowercased hostname of raw without a leading "www.".
// Scheme-less inputs such as "kukjegallery.com" are accepted. Anything that
// does not parse to a dotted hostname yields "".
func HostFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	return host
}

// Slugify joins the normalized parts with hyphens, e.g.
// ("Kukje Gallery", "KR", "Seoul") -> "kukje-gallery-kr-seoul".
func Slugify(parts ...string) string {
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.Fields(strings.ReplaceAll(Normalize(p), "-", " "))...)
	}
	return strings.Join(fields, "-")
}

// Tokens splits the normalized text into distinct words of at least minRunes
// runes, keeping the first max of them in order of appearance. max <= 0 means
// no cap.
func Tokens(text string, minRunes, max int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range strings.Fields(Normalize(text)) {
		if len([]rune(f)) < minRunes {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
