package enrichment

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// minFoundedYear is the earliest founding year accepted from page text.
const minFoundedYear = 1850

var (
	instagramRe = regexp.MustCompile(`(?i)instagram\.com/([a-z0-9_.]{1,30})`)
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}`)
	spaceRe     = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d+))?\s*(m²|㎡|m2|sqm|sq\.\s?m|평|坪)`)

	// Each pattern captures the year in group 1.
	foundedYearRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:founded|established|est\.|since|opened)\s+(?:in\s+)?(\d{4})\b`),
		regexp.MustCompile(`(\d{4})\s*년\s*(?:에\s*)?(?:설립|개관|창립|문을\s*열)`),
		regexp.MustCompile(`(?:설립|개관|창립)(?:연도|년도|일)?\s*[:：]?\s*(\d{4})`),
		regexp.MustCompile(`(\d{4})\s*年\s*(?:\d{1,2}\s*月\s*)?(?:に\s*)?(?:設立|創立|創業|開廊|開設)`),
		regexp.MustCompile(`(?:設立|創立|創業|開廊|開設)\s*[:：]?\s*(\d{4})`),
	}
)

// Path segments on instagram.com that are never a profile.
var instagramReserved = map[string]bool{
	"p":         true,
	"reel":      true,
	"reels":     true,
	"stories":   true,
	"explore":   true,
	"accounts":  true,
	"tv":        true,
	"direct":    true,
	"about":     true,
	"legal":     true,
	"developer": true,
	"web":       true,
	"share":     true,
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp", ".ico"}

// ExtractInstagram returns the first instagram profile handle linked from
// html, lowercased.
func ExtractInstagram(html string) (string, bool) {
	for _, m := range instagramRe.FindAllStringSubmatch(html, -1) {
		handle := strings.Trim(strings.ToLower(m[1]), ".")
		if handle == "" || instagramReserved[handle] {
			continue
		}
		return handle, true
	}
	return "", false
}

// ExtractFoundedYear looks for English, Korean and Japanese founding phrases
// and returns the first year in [1850, now.Year()].
func ExtractFoundedYear(text string, now time.Time) (int, bool) {
	for _, re := range foundedYearRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			y, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if y >= minFoundedYear && y <= now.Year() {
				return y, true
			}
		}
	}
	return 0, false
}

// ExtractEmail returns the first plausible address in html. Asset names
// such as logo@2x.png are rejected.
func ExtractEmail(html string) (string, bool) {
	for _, m := range emailRe.FindAllString(html, -1) {
		lower := strings.ToLower(m)
		if hasImageExtension(lower) {
			continue
		}
		return lower, true
	}
	return "", false
}

func hasImageExtension(s string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// ExtractSpaceSize returns the first floor area in text, formatted as
// "<number> <unit>" with metric units folded to m².
func ExtractSpaceSize(text string) (string, bool) {
	m := spaceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	n := strings.ReplaceAll(m[1], ",", "")
	if strings.TrimLeft(n, "0") == "" && strings.Trim(m[2], "0") == "" {
		return "", false
	}
	if m[2] != "" {
		n += "." + m[2]
	}

	unit := m[3]
	switch strings.ToLower(strings.ReplaceAll(unit, " ", "")) {
	case "평", "坪":
	default:
		unit = "m²"
	}
	return n + " " + unit, true
}
