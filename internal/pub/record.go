// Package pub defines the core domain types for publication entries.
package pub

import (
	"regexp"
	"strconv"
	"strings"
)

// BadgeUnknown is the placeholder rank shown on cards that have not been
// resolved against any rank source. It is never written to the final page.
const BadgeUnknown = "Q?"

// Record represents one publication card on the page.
type Record struct {
	Year  string `json:"year"`  // 4-digit year, "" when unknown
	Venue string `json:"venue"` // card header text ("where" line)
	Cite  string `json:"cite"`  // full citation line

	// Persistent identifier. DOI and DOIURL are both set or both empty.
	DOI    string `json:"doi,omitempty"`
	DOIURL string `json:"doi_url,omitempty"`

	ProfileURL string `json:"profile_url,omitempty"` // citation-index detail page
	BibURL     string `json:"bib_url,omitempty"`     // relative href of the bibliography file
	LinkURL    string `json:"link_url,omitempty"`    // publisher landing page
	PaperURL   string `json:"paper_url,omitempty"`   // full-text link
	VideoURL   string `json:"video_url,omitempty"`

	Badge string `json:"badge,omitempty"` // quality rank label, or BadgeUnknown
}

// HasDOI reports whether the record carries a complete identifier pair.
func (r Record) HasDOI() bool {
	return r.DOI != "" && r.DOIURL != ""
}

// NumericYear returns the year as an int, or 0 when it is not a number.
func (r Record) NumericYear() int {
	y, err := strconv.Atoi(r.Year)
	if err != nil {
		return 0
	}
	return y
}

var (
	citeTitleRe   = regexp.MustCompile(`[“"]([^”"]+)[”"]`)
	citeAuthorsRe = regexp.MustCompile(`^(.*?),\s*[“"]`)
)

// TitleFromCite extracts the quoted title from a citation line. When the
// line carries no quoted segment the whole line is returned, trimmed.
func TitleFromCite(cite string) string {
	if m := citeTitleRe.FindStringSubmatch(cite); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), " ,.;")
	}
	return strings.Trim(strings.TrimSpace(cite), " ,.;")
}

// AuthorsFromCite extracts the author prefix of a citation line: the text
// preceding the first quotation mark. Returns "" when the line does not
// follow the `authors, “title,” …` shape.
func AuthorsFromCite(cite string) string {
	m := citeAuthorsRe.FindStringSubmatch(cite)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
