package article

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a title to a URL-friendly slug. Accents are folded to
// their base letters; other non-alphanumerics become single hyphens.
func Slugify(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(fold, title)
	if err != nil {
		s = title
	}
	s = strings.ToLower(s)

	var buf strings.Builder
	hyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			buf.WriteRune(r)
			hyphen = false
		case r == '\'' || r == '\u2019':
			// apostrophes join words
		case buf.Len() > 0 && !hyphen:
			buf.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimRight(buf.String(), "-")
}
