// Package pdfdoi recovers a persistent identifier from a local full-text
// PDF, for publications whose registry lookup came up empty.
package pdfdoi

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPages bounds the scan; the identifier is almost always on page one.
const maxPages = 3

// DOI pattern: 10.<registrant>/<suffix>.
var doiRe = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Extract scans the first pages of a PDF for a DOI. Returns "" (no error)
// when none is found.
func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := FindInText(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// FindInText returns the first plausible DOI in a text block, or "".
func FindInText(text string) string {
	for _, m := range doiRe.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:)")
		if plausible(m) {
			return m
		}
	}
	return ""
}

func plausible(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash > 0 && slash < len(doi)-1
}
