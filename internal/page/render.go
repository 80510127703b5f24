package page

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rmartin/pubkeep/internal/pub"
)

// ErrNoListSection indicates the page is missing the List anchor that the
// renderer replaces. Rewriting without it would corrupt the document, so
// callers must treat this as fatal.
var ErrNoListSection = errors.New("publications List section not found")

var listSectionRe = regexp.MustCompile(`(?s)(<section>\s*<h2>List</h2>\s*)(.*?)(\s*</section>)`)

// RenderList serializes reconciled records grouped by year, newest group
// first, preserving record order within each group. Records whose year is
// not numeric are dropped.
func RenderList(records []pub.Record) string {
	groups := make(map[string][]string)
	var years []string
	for _, rec := range records {
		if !yearRe.MatchString(rec.Year) {
			continue
		}
		if _, seen := groups[rec.Year]; !seen {
			years = append(years, rec.Year)
		}
		groups[rec.Year] = append(groups[rec.Year], renderCard(rec))
	}

	sort.Slice(years, func(i, j int) bool {
		a, _ := strconv.Atoi(years[i])
		b, _ := strconv.Atoi(years[j])
		return a > b
	})

	var parts []string
	for _, y := range years {
		parts = append(parts, fmt.Sprintf(`    <h3 class="pub-year">%s</h3>`, html.EscapeString(y)))
		parts = append(parts, `    <div class="pub-list">`)
		parts = append(parts, strings.Join(groups[y], "\n"))
		parts = append(parts, `    </div>`)
	}
	return strings.Join(parts, "\n") + "\n"
}

func renderCard(rec pub.Record) string {
	var b []string
	add := func(format string, args ...any) {
		b = append(b, fmt.Sprintf(format, args...))
	}

	add(`      <article class="card pub-card">`)
	add(`        <div class="pub-top">`)
	add(`          <div class="pub-where">%s</div>`, html.EscapeString(rec.Venue))
	add(`          <div class="badges">`)
	if rec.Year != "" {
		add(`            <span class="badge">%s</span>`, html.EscapeString(rec.Year))
	}
	if rec.Badge != "" && rec.Badge != pub.BadgeUnknown {
		add(`            <span class="badge badge-muted">%s</span>`, html.EscapeString(rec.Badge))
	}
	add(`          </div>`)
	add(`        </div>`)
	add(`        <p class="pub-cite">%s</p>`, html.EscapeString(rec.Cite))

	if rec.HasDOI() {
		add(`        <p class="pub-doi">DOI: <a href="%s">%s</a></p>`,
			attrEscape(rec.DOIURL), html.EscapeString(rec.DOI))
	}

	add(`        <div class="pub-links">`)
	if rec.LinkURL != "" {
		add(`          <a href="%s">Link</a>`, attrEscape(rec.LinkURL))
	}
	if rec.ProfileURL != "" {
		add(`          <a href="%s">Scholar</a>`, attrEscape(rec.ProfileURL))
	}
	if rec.BibURL != "" {
		add(`          <a href="%s" download>BibTeX</a>`, attrEscape(rec.BibURL))
	} else {
		add(`          <a href="#">BibTeX</a>`)
	}
	add(`          <a href="%s">Paper</a>`, attrEscape(paperTarget(rec)))
	if rec.VideoURL != "" {
		add(`          <a href="%s">Video</a>`, attrEscape(rec.VideoURL))
	} else {
		add(`          <a href="#">Video</a>`)
	}
	add(`        </div>`)
	add(`      </article>`)

	return strings.Join(b, "\n")
}

// paperTarget resolves the full-text link through the ordered fallback
// chain: explicit full text, generic link, DOI URL, profile URL, placeholder.
func paperTarget(rec pub.Record) string {
	for _, u := range []string{rec.PaperURL, rec.LinkURL, rec.DOIURL, rec.ProfileURL} {
		if u != "" {
			return u
		}
	}
	return "#"
}

// ReplaceList swaps the inner content of the List section for the rendered
// list, leaving the rest of the document byte-for-byte unchanged. Returns
// ErrNoListSection when the anchor is absent.
func ReplaceList(doc, list string) (string, error) {
	loc := listSectionRe.FindStringSubmatchIndex(doc)
	if loc == nil {
		return "", ErrNoListSection
	}
	// Group 2 spans the current inner content.
	return doc[:loc[4]] + list + doc[loc[5]:], nil
}

func attrEscape(u string) string {
	return html.EscapeString(u)
}
