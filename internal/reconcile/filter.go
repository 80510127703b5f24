package reconcile

import (
	"strings"

	"github.com/rmartin/pubkeep/internal/normalize"
	"github.com/rmartin/pubkeep/internal/pub"
)

// Exclusion reasons reported by Filter.Exclude.
const (
	ReasonYear = "year"
	ReasonDOI  = "doi"
	ReasonText = "text"
)

// Filter drops known-bad records by year, identifier, or text fingerprint.
type Filter struct {
	years    map[string]struct{}
	dois     map[string]struct{}
	snippets []string
}

// NewFilter builds a Filter from exclusion lists. DOIs are normalized and
// text fingerprints canonicalized once, at construction.
func NewFilter(years, dois, snippets []string) *Filter {
	f := &Filter{
		years: make(map[string]struct{}, len(years)),
		dois:  make(map[string]struct{}, len(dois)),
	}
	for _, y := range years {
		f.years[y] = struct{}{}
	}
	for _, d := range dois {
		if nd := normalize.NormalizeDOI(d); nd != "" {
			f.dois[nd] = struct{}{}
		}
	}
	for _, s := range snippets {
		if ns := normalize.FilterKey(s); ns != "" {
			f.snippets = append(f.snippets, ns)
		}
	}
	return f
}

// Exclude reports whether a record is excluded from output, and why.
func (f *Filter) Exclude(rec pub.Record) (string, bool) {
	if _, ok := f.years[rec.Year]; ok {
		return ReasonYear, true
	}

	if doi := normalize.NormalizeDOI(rec.DOI); doi != "" {
		if _, ok := f.dois[doi]; ok {
			return ReasonDOI, true
		}
	}

	text := normalize.FilterKey(rec.Venue + " " + rec.Cite + " " + rec.DOI)
	for _, snip := range f.snippets {
		if strings.Contains(text, snip) {
			return ReasonText, true
		}
	}

	return "", false
}

// Apply returns the records that survive the filter, plus the number
// removed.
func (f *Filter) Apply(records []pub.Record) ([]pub.Record, int) {
	kept := make([]pub.Record, 0, len(records))
	removed := 0
	for _, rec := range records {
		if _, excluded := f.Exclude(rec); excluded {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	return kept, removed
}

// Dedup drops records repeating an earlier (title, year) pair; the first
// occurrence wins. Returns the survivors and the number dropped.
func Dedup(records []pub.Record) ([]pub.Record, int) {
	type key struct {
		title string
		year  string
	}
	seen := make(map[key]struct{}, len(records))
	kept := make([]pub.Record, 0, len(records))
	removed := 0
	for _, rec := range records {
		k := key{title: normalize.Key(pub.TitleFromCite(rec.Cite)), year: rec.Year}
		if k.title != "" {
			if _, dup := seen[k]; dup {
				removed++
				continue
			}
			seen[k] = struct{}{}
		}
		kept = append(kept, rec)
	}
	return kept, removed
}
