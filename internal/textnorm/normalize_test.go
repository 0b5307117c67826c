package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"artfair/curation-service/internal/textnorm"
)

// ── Normalize ──────────────────────────────────────────────────────────────

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercases and trims", "  Kukje Gallery  ", "kukje gallery"},
		{"ampersand", "Barakat & Co.", "barakat and co"},
		{"collapses whitespace", "Gallery\t\tHyundai\nSeoul", "gallery hyundai seoul"},
		{"keeps hyphen", "Tina Kim-Gallery", "tina kim-gallery"},
		{"strips punctuation", "P.K.M. Gallery!", "p k m gallery"},
		{"keeps latin diacritics", "Galerie Émile", "galerie émile"},
		{"keeps hangul", "국제갤러리 (Seoul)", "국제갤러리 seoul"},
		{"keeps katakana prolonged mark", "ギャラリー小柳", "ギャラリー小柳"},
		{"folds fullwidth", "ＡＢＣ　１２３", "abc 123"},
		{"drops other scripts", "Галерея Art", "art"},
		{"drops emoji", "Art 🎨 Space", "art space"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, textnorm.Normalize(c.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"Kukje & Co.", "  PACE  Gallery ", "갤러리 현대", "ギャラリー"} {
		once := textnorm.Normalize(in)
		assert.Equal(t, once, textnorm.Normalize(once), "Normalize(%q) not idempotent", in)
	}
}

// ── HostFromURL ────────────────────────────────────────────────────────────

func TestHostFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.kukjegallery.com/exhibitions", "kukjegallery.com"},
		{"http://KukjeGallery.com", "kukjegallery.com"},
		{"www.kukjegallery.com", "kukjegallery.com"},
		{"kukjegallery.com", "kukjegallery.com"},
		{"//cdn.example.org/x", "cdn.example.org"},
		{"https://gallery.example.com:8443/a?b=c", "gallery.example.com"},
		{"", ""},
		{"   ", ""},
		{"not-a-url", ""},
		{"https://", ""},
		{"http://bad host.com", ""},
		{"%%%", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, textnorm.HostFromURL(c.in), "HostFromURL(%q)", c.in)
	}
}

// ── Slugify / Tokens ───────────────────────────────────────────────────────

func TestSlugify(t *testing.T) {
	assert.Equal(t, "kukje-gallery-kr-seoul", textnorm.Slugify("Kukje Gallery", "KR", "Seoul"))
	assert.Equal(t, "tina-kim-gallery-us-new-york", textnorm.Slugify("Tina Kim-Gallery", "US", "New  York"))
	assert.Equal(t, "국제갤러리-kr-서울", textnorm.Slugify("국제갤러리", "KR", "서울"))
	assert.Equal(t, "", textnorm.Slugify("", "!!"))
}

func TestTokens(t *testing.T) {
	got := textnorm.Tokens("Open Call: Painting & the Painting of Light", 4, 10)
	assert.Equal(t, []string{"open", "call", "painting", "light"}, got)

	capped := textnorm.Tokens("alpha bravo charlie delta echoes foxtrot", 4, 3)
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, capped)

	assert.Empty(t, textnorm.Tokens("a an the of", 4, 10))
}
