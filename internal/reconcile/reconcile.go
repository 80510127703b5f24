// Package reconcile merges publication records with the external sources
// (rank table, bibliography files, metadata registry) under a fixed
// precedence policy, and filters out excluded or duplicate records.
package reconcile

import (
	"context"
	"strings"

	"github.com/rmartin/pubkeep/internal/normalize"
	"github.com/rmartin/pubkeep/internal/pub"
	"github.com/rmartin/pubkeep/internal/ranks"
)

// doiResolver prefixes a link that is itself an identifier-resolver URL and
// therefore redundant next to the DOI line.
const doiResolver = "https://doi.org/"

// AuthorSource resolves a full author list for a title, typically through a
// fuzzy registry lookup. Implementations return (nil, nil) for "no match".
type AuthorSource interface {
	Authors(ctx context.Context, title, year string) ([]string, error)
}

// Options configures a Reconciler. All lookup tables are injected so tests
// can run on fixtures.
type Options struct {
	Ranks      ranks.Table       // normalized title -> badge
	TitleRanks map[string]string // curator overrides by normalized title
	DOIRanks   map[string]string // curator overrides by normalized DOI
	CutoffYear int               // rank table applies to years <= this

	BibAuthors func(href string) []string // bibliography-file author lookup
	Registry   AuthorSource               // fuzzy registry fallback
}

// Stats counts recoverable per-record failures across a run.
type Stats struct {
	RegistryErrors int `json:"registry_errors"`
}

// Reconciler resolves records against the configured sources. Not safe for
// concurrent use; the pipeline is single-threaded by design.
type Reconciler struct {
	opts  Options
	stats Stats
}

// New creates a Reconciler.
func New(opts Options) *Reconciler {
	return &Reconciler{opts: opts}
}

// Stats returns the failure counters accumulated so far.
func (r *Reconciler) Stats() Stats {
	return r.stats
}

// Resolve produces the fully-resolved form of a record. The input is never
// mutated; lookup failures degrade to "no data from this source".
func (r *Reconciler) Resolve(ctx context.Context, rec pub.Record) pub.Record {
	rec.Venue = normalize.RepairMojibake(rec.Venue)
	rec.Cite = normalize.RepairMojibake(rec.Cite)
	rec.DOI = normalize.RepairMojibake(rec.DOI)
	rec.Badge = normalize.RepairMojibake(rec.Badge)

	title := pub.TitleFromCite(rec.Cite)

	rec.Badge = r.resolveBadge(rec, title)
	rec = resolveLinks(rec)
	rec = r.resolveAuthors(ctx, rec, title)

	return rec
}

// resolveBadge applies the precedence policy: curator title override, then
// curator DOI override, then the rank table (only up to the cutoff year),
// then whatever the record already carried. The unknown sentinel resolves
// to empty.
func (r *Reconciler) resolveBadge(rec pub.Record, title string) string {
	badge := rec.Badge

	titleKey := normalize.Key(title)
	doiKey := normalize.NormalizeDOI(rec.DOI)

	switch {
	case r.opts.TitleRanks[titleKey] != "":
		badge = r.opts.TitleRanks[titleKey]
	case doiKey != "" && r.opts.DOIRanks[doiKey] != "":
		badge = r.opts.DOIRanks[doiKey]
	case rec.NumericYear() > 0 && rec.NumericYear() <= r.opts.CutoffYear && r.opts.Ranks[titleKey] != "":
		badge = r.opts.Ranks[titleKey]
	}

	if badge == pub.BadgeUnknown {
		return ""
	}
	return badge
}

// resolveLinks removes duplicate presentation of the same resource. A
// generic link that is not itself a resolver URL becomes the DOI line's
// landing target; a generic link equal to the DOI URL, or pointing at the
// resolver while a DOI line exists, is dropped.
func resolveLinks(rec pub.Record) pub.Record {
	if !rec.HasDOI() || rec.LinkURL == "" {
		return rec
	}

	if !strings.HasPrefix(rec.LinkURL, doiResolver) {
		rec.DOIURL = rec.LinkURL
		rec.LinkURL = ""
		return rec
	}
	// A resolver URL is already represented by the DOI line.
	rec.LinkURL = ""
	return rec
}

// resolveAuthors expands the citation's author list: bibliography file
// first, registry lookup second, the citation's own author prefix last.
// With a usable author list the citation line is rebuilt deterministically.
func (r *Reconciler) resolveAuthors(ctx context.Context, rec pub.Record, title string) pub.Record {
	var names []string
	if r.opts.BibAuthors != nil {
		names = r.opts.BibAuthors(rec.BibURL)
	}
	if len(names) == 0 && r.opts.Registry != nil {
		registryNames, err := r.opts.Registry.Authors(ctx, title, rec.Year)
		if err != nil {
			r.stats.RegistryErrors++
		} else {
			names = registryNames
		}
	}

	authors := ""
	if len(names) > 0 {
		repaired := make([]string, 0, len(names))
		for _, n := range names {
			n = strings.Join(strings.Fields(normalize.RepairMojibake(n)), " ")
			if n != "" {
				repaired = append(repaired, n)
			}
		}
		authors = strings.Join(repaired, ", ")
	} else {
		authors = pub.AuthorsFromCite(rec.Cite)
	}

	// Truncation markers from the profile listing have no place in a
	// rebuilt citation.
	authors = strings.Trim(strings.ReplaceAll(authors, "...", ""), " ,")

	if authors != "" && title != "" {
		rec.Cite = strings.TrimSpace(authors + ", “" + title + ",” " + rec.Venue + ".")
	}
	return rec
}
