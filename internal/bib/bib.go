// Package bib reads and writes the per-publication bibliography files.
package bib

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rmartin/pubkeep/internal/normalize"
)

// DirName is the bibliography directory relative to the site root, and the
// href prefix cards use to point at their files.
const DirName = "bibtex"

// Crossref BibTeX can be single-line, so the author field must stop at the
// first closing brace followed by a comma rather than swallowing the fields
// after it.
var (
	authorFieldRe = regexp.MustCompile(`(?si)\bauthor\s*=\s*\{(.*?)\}\s*,`)
	unsafeRuneRe  = regexp.MustCompile(`[^a-z0-9._-]+`)
)

// ParseAuthors extracts the author list from a BibTeX entry. Names in
// "Family, Given" form are reordered to "Given Family".
func ParseAuthors(bibtex string) []string {
	m := authorFieldRe.FindStringSubmatch(bibtex)
	if m == nil {
		return nil
	}

	var out []string
	for _, part := range strings.Split(m[1], " and ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if family, given, ok := strings.Cut(part, ","); ok {
			family = strings.TrimSpace(family)
			given = strings.TrimSpace(given)
			if given != "" {
				out = append(out, given+" "+family)
			} else {
				out = append(out, family)
			}
			continue
		}
		out = append(out, part)
	}
	return out
}

// AuthorsFromHref resolves a card's bibliography href (relative to the site
// root) and parses its author list. Best-effort: any miss yields nil.
func AuthorsFromHref(siteRoot, href string) []string {
	href = strings.TrimPrefix(strings.TrimSpace(href), "/")
	if !strings.HasPrefix(href, DirName+"/") {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(siteRoot, filepath.FromSlash(href)))
	if err != nil {
		return nil
	}
	return ParseAuthors(string(data))
}

// SanitizeDOI turns a DOI into a stable, filesystem-safe filename stem.
func SanitizeDOI(doi string) string {
	s := normalize.NormalizeDOI(doi)
	s = strings.ReplaceAll(s, "/", "_")
	return unsafeRuneRe.ReplaceAllString(s, "_")
}

// Slug derives a short URL-safe identifier from a title.
func Slug(title string) string {
	s := strings.ReplaceAll(normalize.Key(title), " ", "-")
	if len(s) > 80 {
		s = s[:80]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "pub"
	}
	return s
}

// FallbackKey derives a stable identifier for entries without a DOI:
// slug, year, and a short content hash over the identifying fields.
func FallbackKey(title, year, venue string) string {
	sum := sha1.Sum([]byte(title + "|" + year + "|" + venue))
	h := hex.EncodeToString(sum[:])[:10]
	y := year
	if y == "" {
		y = "noyear"
	}
	return fmt.Sprintf("%s-%s-%s", Slug(title), y, h)
}

// FallbackEntry generates a minimal @misc entry for records the registry
// could not resolve, so every publication keeps a bibliography file.
func FallbackEntry(key, title, authors, year, venue string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@misc{%s,\n", key)
	fmt.Fprintf(&b, "  title={%s},\n", title)
	fmt.Fprintf(&b, "  author={%s},\n", authors)
	if year != "" {
		fmt.Fprintf(&b, "  year={%s},\n", year)
	}
	if venue != "" {
		fmt.Fprintf(&b, "  howpublished={%s},\n", venue)
	}
	b.WriteString("  note={Citation-index entry}\n")
	b.WriteString("}\n")
	return b.String()
}

// WriteFile writes one bibliography file under the site's bibliography
// directory, creating it if needed, and returns the card href for it.
func WriteFile(siteRoot, filename, content string) (string, error) {
	dir := filepath.Join(siteRoot, DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating bibliography dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing bibliography file: %w", err)
	}
	return DirName + "/" + filename, nil
}
