// Package normalize provides the text canonicalization used for title
// matching and the display-side repairs applied before rendering.
//
// The two sides are deliberately separate: Key and FilterKey produce
// comparison forms that are never shown to a user, while RepairMojibake
// fixes text for display and is never used for matching.
package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]+`)
	whitespaceRe = regexp.MustCompile(`[\s\p{Zs}]+`)

	quoteStripper = strings.NewReplacer(
		"“", "", "”", "", `"`, "", "'", "", "’", "", "‘", "",
	)

	// NFD + strip combining marks + NFC folds "Martín" to "Martin".
	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Key returns the comparison key of a title: entity-decoded, diacritic-folded,
// casefolded, quote-stripped, with every non-alphanumeric run collapsed to a
// single space. Used only for matching and table lookups, never for display.
func Key(s string) string {
	s = html.UnescapeString(s)
	if folded, _, err := transform.String(diacriticFolder, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = quoteStripper.Replace(s)
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FilterKey returns the looser canonical form used for bad-data fingerprint
// matching: entity-decoded, casefolded, typographic quotes and dashes mapped
// to their ASCII equivalents, whitespace collapsed. Unlike Key it preserves
// punctuation so fingerprints can anchor on it.
func FilterKey(s string) string {
	s = html.UnescapeString(s)
	s = strings.ToLower(s)
	s = strings.NewReplacer("“", `"`, "”", `"`, "’", "'", "–", "-").Replace(s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Words splits a comparison key into its word set.
func Words(key string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(key) {
		set[w] = struct{}{}
	}
	return set
}

// NormalizeDOI canonicalizes a DOI for table lookups: entity-decoded,
// trimmed, lowercased, resolver prefixes removed. A leading "0." (seen on
// cards whose "1" was lost to markup damage) is repaired to "10.".
func NormalizeDOI(doi string) string {
	d := strings.TrimSpace(html.UnescapeString(doi))
	d = strings.ToLower(d)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi.org/", "doi:"} {
		d = strings.TrimPrefix(d, prefix)
	}
	if strings.HasPrefix(d, "0.") {
		d = "10." + d[2:]
	}
	return d
}

// CleanURL strips whitespace accidentally embedded in a URL and undoes
// over-escaped entities (e.g. "&amp;amp;"). Unescaping is bounded so a
// pathological input cannot loop.
func CleanURL(u string) string {
	u = whitespaceRe.ReplaceAllString(strings.TrimSpace(u), "")
	for i := 0; i < 4; i++ {
		unescaped := html.UnescapeString(u)
		if unescaped == u {
			break
		}
		u = unescaped
	}
	return u
}
