// Package normalize canonicalises the loosely formatted text coming out of
// the daily operations PDFs: whitespace, es-ES numbers, and the name/plate
// comparison keys every downstream stage matches on.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pibejo/shift-billing/internal/common"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	numberSpacingRe = regexp.MustCompile(`(\d)\s*([,.])\s*(\d)`)
)

// Line collapses runs of whitespace to a single space and trims the ends.
func Line(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CleanupNumberSpacing removes stray whitespace the PDF extractor inserts
// around a thousands/decimal separator, so "1 234,50" and "1234, 50" both
// survive as one parseable token.
func CleanupNumberSpacing(s string) string {
	return Line(numberSpacingRe.ReplaceAllString(s, "$1$2$3"))
}

// ParseLocaleNumber interprets a token with period as thousands separator
// and comma as decimal separator ("1.234,50" -> 1234.50).
func ParseLocaleNumber(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, common.NewAppError("FORMAT_ERROR", "not a locale number: "+s, common.ErrFormat)
	}
	return v, nil
}

// accentFold maps the Spanish accented vowels and enye onto their plain
// equivalents after upper-casing.
var accentFold = strings.NewReplacer(
	"Á", "A",
	"É", "E",
	"Í", "I",
	"Ó", "O",
	"Ú", "U",
	"Ü", "U",
	"Ñ", "N",
)

// NameKey produces the comparison key used for every driver and carrier
// match: upper-cased, stripped to letters/digits/spaces, accents folded,
// whitespace collapsed. Accent and punctuation variants of one name collide
// to the same key, and the function is idempotent.
func NameKey(raw string) string {
	s := strings.ToUpper(raw)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case strings.ContainsRune("ÁÉÍÓÚÜÑ", r):
			b.WriteRune(r)
		}
	}
	return Line(accentFold.Replace(b.String()))
}

// PlateKey upper-cases a plate and strips everything but letters and digits.
func PlateKey(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
