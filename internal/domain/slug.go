package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a human label into a parameter slug.
//
// Diacritics are stripped and non-ASCII runes dropped. Anything other than
// letters, digits, underscores, spaces and hyphens is removed, runs of spaces
// and hyphens become a single underscore, and the result is upper-cased with
// leading and trailing underscores trimmed. Slugify is idempotent.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case r == ' ' || r == '-' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
			pendingSep = true
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}

	return strings.ToUpper(strings.Trim(b.String(), "_"))
}
