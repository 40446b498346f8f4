package sanitizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeEmail returns the canonical form of an address: trimmed,
// NFKC-normalised and Unicode case-folded. Dots are left alone; providers
// disagree on whether they are significant.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = norm.NFKC.String(email)
	return cases.Fold().String(email) // Casers are not goroutine-safe
}

// Username trims a display name, strips control characters and collapses
// internal whitespace to single spaces.
func Username(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
