// Package page parses publication cards out of the site's HTML and renders
// the reconciled set back into the page's List section.
package page

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rmartin/pubkeep/internal/normalize"
	"github.com/rmartin/pubkeep/internal/pub"
)

// Link labels recognized inside a card's link block. Anything else is ignored.
const (
	LabelLink    = "Link"
	LabelScholar = "Scholar"
	LabelBibTeX  = "BibTeX"
	LabelPaper   = "Paper"
	LabelVideo   = "Video"
)

var yearRe = regexp.MustCompile(`^\d{4}$`)

// ParseStats summarizes a parse pass.
type ParseStats struct {
	Cards   int `json:"cards"`
	Skipped int `json:"skipped"` // blocks dropped for missing citation text
}

// ParseCards extracts one Record per publication card in the document.
// Extraction is tolerant: a missing sub-element yields an empty field, and a
// block that cannot produce at least a citation line is skipped and counted.
func ParseCards(doc string) ([]pub.Record, ParseStats, error) {
	q, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, ParseStats{}, err
	}

	var (
		records []pub.Record
		stats   ParseStats
	)

	q.Find("article.pub-card").Each(func(_ int, card *goquery.Selection) {
		rec, ok := parseCard(card)
		if !ok {
			stats.Skipped++
			return
		}
		stats.Cards++
		records = append(records, rec)
	})

	return records, stats, nil
}

func parseCard(card *goquery.Selection) (pub.Record, bool) {
	rec := pub.Record{Badge: pub.BadgeUnknown}

	rec.Venue = cleanText(card.Find("div.pub-where").First().Text())
	rec.Cite = cleanText(card.Find("p.pub-cite").First().Text())
	if rec.Cite == "" {
		// Not enough to identify the publication.
		return pub.Record{}, false
	}

	card.Find("span.badge").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if s.HasClass("badge-muted") {
			if text != "" {
				rec.Badge = text
			}
			return
		}
		if yearRe.MatchString(text) {
			rec.Year = text
		}
	})

	doiLine := card.Find("p.pub-doi a").First()
	if href, ok := doiLine.Attr("href"); ok {
		rec.DOI = strings.TrimSpace(doiLine.Text())
		rec.DOIURL = normalize.CleanURL(href)
	}
	if rec.DOI == "" || rec.DOIURL == "" {
		rec.DOI, rec.DOIURL = "", ""
	}

	card.Find("div.pub-links a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		url := normalize.CleanURL(href)
		if url == "" || url == "#" {
			return
		}
		switch strings.TrimSpace(a.Text()) {
		case LabelLink:
			rec.LinkURL = url
		case LabelScholar:
			rec.ProfileURL = url
		case LabelBibTeX:
			rec.BibURL = url
		case LabelPaper:
			rec.PaperURL = url
		case LabelVideo:
			rec.VideoURL = url
		}
	})

	return rec, true
}

// cleanText collapses whitespace in extracted element text. goquery already
// decodes HTML entities during parsing.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
