package scholar

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rmartin/pubkeep/internal/normalize"
)

// parseProfileRows extracts publication entries from one listing page.
// Rows missing a linked title are skipped; other missing fields are left
// empty.
func parseProfileRows(doc, baseURL string) ([]Entry, error) {
	q, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}

	var entries []Entry
	q.Find("tr.gsc_a_tr").Each(func(_ int, row *goquery.Selection) {
		title := row.Find("a.gsc_a_at").First()
		href, ok := title.Attr("href")
		titleText := strings.Join(strings.Fields(title.Text()), " ")
		if !ok || titleText == "" {
			return
		}

		entry := Entry{
			Title:     titleText,
			DetailURL: absoluteURL(baseURL, href),
		}

		gray := row.Find("div.gs_gray")
		if gray.Length() >= 1 {
			entry.Authors = strings.Join(strings.Fields(gray.Eq(0).Text()), " ")
		}
		if gray.Length() >= 2 {
			entry.Venue = strings.Join(strings.Fields(gray.Eq(1).Text()), " ")
		}

		year := strings.TrimSpace(row.Find("td.gsc_a_y span").First().Text())
		if len(year) == 4 && isDigits(year) {
			entry.Year = year
		}

		entries = append(entries, entry)
	})

	return entries, nil
}

// parseLandingLink extracts the publisher landing link from a detail page.
func parseLandingLink(doc string) (string, error) {
	q, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	href, ok := q.Find(".gsc_oci_title_link").First().Attr("href")
	if !ok {
		return "", nil
	}
	return normalize.CleanURL(href), nil
}

// dedupEntries drops later entries sharing a (normalized title, year) key.
func dedupEntries(entries []Entry) []Entry {
	type key struct {
		title string
		year  string
	}
	seen := make(map[key]bool)
	deduped := make([]Entry, 0, len(entries))
	for _, e := range entries {
		k := key{normalize.Key(e.Title), e.Year}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, e)
	}
	return deduped
}

func absoluteURL(baseURL, href string) string {
	href = normalize.CleanURL(href)
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
