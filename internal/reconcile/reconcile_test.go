package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/rmartin/pubkeep/internal/normalize"
	"github.com/rmartin/pubkeep/internal/pub"
	"github.com/rmartin/pubkeep/internal/ranks"
)

// fixtureRegistry is an AuthorSource backed by a map keyed by title.
type fixtureRegistry struct {
	authors map[string][]string
	err     error
	calls   int
}

func (f *fixtureRegistry) Authors(_ context.Context, title, _ string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.authors[normalize.Key(title)], nil
}

func baseRecord() pub.Record {
	return pub.Record{
		Year:       "2022",
		Venue:      "Journal X, 2022",
		Cite:       "J. Smith, “A Study,” Journal X, 2022.",
		DOI:        "10.1000/xyz",
		DOIURL:     "https://doi.org/10.1000/xyz",
		ProfileURL: "https://scholar.example/a",
		Badge:      pub.BadgeUnknown,
	}
}

func TestResolveBadgePrecedence(t *testing.T) {
	titleKey := "a study"

	tests := []struct {
		name string
		opts Options
		rec  pub.Record
		want string
	}{
		{
			name: "title override beats rank table",
			opts: Options{
				TitleRanks: map[string]string{titleKey: "Q1"},
				Ranks:      ranks.Table{titleKey: "Q3"},
				CutoffYear: 2022,
			},
			rec:  baseRecord(),
			want: "Q1",
		},
		{
			name: "doi override beats rank table",
			opts: Options{
				DOIRanks:   map[string]string{"10.1000/xyz": "Q2"},
				Ranks:      ranks.Table{titleKey: "Q3"},
				CutoffYear: 2022,
			},
			rec:  baseRecord(),
			want: "Q2",
		},
		{
			name: "rank table applies up to cutoff year",
			opts: Options{Ranks: ranks.Table{titleKey: "Q3"}, CutoffYear: 2022},
			rec:  baseRecord(),
			want: "Q3",
		},
		{
			name: "rank table ignored past cutoff year",
			opts: Options{Ranks: ranks.Table{titleKey: "Q3"}, CutoffYear: 2021},
			rec:  baseRecord(),
			want: "",
		},
		{
			name: "rank table ignored for non-numeric year",
			opts: Options{Ranks: ranks.Table{titleKey: "Q3"}, CutoffYear: 2022},
			rec: func() pub.Record {
				r := baseRecord()
				r.Year = ""
				return r
			}(),
			want: "",
		},
		{
			name: "existing badge kept when no source hits",
			opts: Options{CutoffYear: 2022},
			rec: func() pub.Record {
				r := baseRecord()
				r.Badge = "Q4"
				return r
			}(),
			want: "Q4",
		},
		{
			name: "unknown sentinel resolves to empty",
			opts: Options{CutoffYear: 2022},
			rec:  baseRecord(),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.opts).Resolve(context.Background(), tt.rec)
			if got.Badge != tt.want {
				t.Errorf("Badge = %q, want %q", got.Badge, tt.want)
			}
		})
	}
}

func TestResolveLinkPromotion(t *testing.T) {
	rec := baseRecord()
	rec.LinkURL = "https://publisher.example/landing"

	got := New(Options{}).Resolve(context.Background(), rec)
	if got.DOIURL != "https://publisher.example/landing" {
		t.Errorf("DOIURL = %q, want promoted landing page", got.DOIURL)
	}
	if got.LinkURL != "" {
		t.Errorf("LinkURL = %q, want dropped after promotion", got.LinkURL)
	}
	if got.DOI != "10.1000/xyz" {
		t.Errorf("DOI = %q, identifier must survive promotion", got.DOI)
	}
}

func TestResolveLinkIdenticalToDOI(t *testing.T) {
	// Concrete scenario: generic link textually equals the identifier URL.
	rec := baseRecord()
	rec.LinkURL = "https://doi.org/10.1000/xyz"

	got := New(Options{}).Resolve(context.Background(), rec)
	if got.LinkURL != "" {
		t.Errorf("LinkURL = %q, want dropped as redundant", got.LinkURL)
	}
	if got.DOIURL != "https://doi.org/10.1000/xyz" || got.DOI != "10.1000/xyz" {
		t.Errorf("identifier line must be kept: %+v", got)
	}
}

func TestResolveLinkOtherResolverURL(t *testing.T) {
	rec := baseRecord()
	rec.LinkURL = "https://doi.org/10.9999/other"

	got := New(Options{}).Resolve(context.Background(), rec)
	if got.LinkURL != "" {
		t.Errorf("LinkURL = %q, resolver links are redundant next to a DOI line", got.LinkURL)
	}
	if got.DOIURL != "https://doi.org/10.1000/xyz" {
		t.Errorf("DOIURL = %q, must not adopt a foreign resolver link", got.DOIURL)
	}
}

func TestResolveLinkKeptWithoutDOI(t *testing.T) {
	rec := pub.Record{
		Year:    "2022",
		Venue:   "Journal X",
		Cite:    "J. Smith, “A Study,” Journal X.",
		LinkURL: "https://publisher.example/landing",
	}
	got := New(Options{}).Resolve(context.Background(), rec)
	if got.LinkURL != "https://publisher.example/landing" {
		t.Errorf("LinkURL = %q, want kept when there is no DOI line", got.LinkURL)
	}
}

func TestResolveAuthorsFromBibliography(t *testing.T) {
	rec := baseRecord()
	rec.BibURL = "bibtex/10.1000_xyz.bib"

	registry := &fixtureRegistry{authors: map[string][]string{"a study": {"Wrong Source"}}}
	r := New(Options{
		BibAuthors: func(href string) []string {
			if href != "bibtex/10.1000_xyz.bib" {
				return nil
			}
			return []string{"Jane Smith", "Bob Jones"}
		},
		Registry: registry,
	})

	got := r.Resolve(context.Background(), rec)
	want := "Jane Smith, Bob Jones, “A Study,” Journal X, 2022."
	if got.Cite != want {
		t.Errorf("Cite = %q, want %q", got.Cite, want)
	}
	if registry.calls != 0 {
		t.Error("registry must not be consulted when the bibliography file resolves")
	}
}

func TestResolveAuthorsFromRegistry(t *testing.T) {
	rec := baseRecord()
	registry := &fixtureRegistry{authors: map[string][]string{"a study": {"Jane Smith", "Bob Jones"}}}

	got := New(Options{Registry: registry}).Resolve(context.Background(), rec)
	want := "Jane Smith, Bob Jones, “A Study,” Journal X, 2022."
	if got.Cite != want {
		t.Errorf("Cite = %q, want %q", got.Cite, want)
	}
}

func TestResolveAuthorsFallbackToCitePrefix(t *testing.T) {
	rec := baseRecord()
	rec.Cite = "J. Smith, A. Jones, ..., “A Study,” Journal X, 2022."

	got := New(Options{Registry: &fixtureRegistry{}}).Resolve(context.Background(), rec)
	want := "J. Smith, A. Jones, “A Study,” Journal X, 2022."
	if got.Cite != want {
		t.Errorf("Cite = %q, want truncation marker removed: %q", got.Cite, want)
	}
}

func TestResolveRegistryFailureDegrades(t *testing.T) {
	rec := baseRecord()
	registry := &fixtureRegistry{err: errors.New("registry unreachable")}

	r := New(Options{Registry: registry})
	got := r.Resolve(context.Background(), rec)
	want := "J. Smith, “A Study,” Journal X, 2022."
	if got.Cite != want {
		t.Errorf("Cite = %q, want fallback to cite prefix", got.Cite)
	}
	if r.Stats().RegistryErrors != 1 {
		t.Errorf("RegistryErrors = %d, want 1", r.Stats().RegistryErrors)
	}
}

func TestResolveRepairsMojibake(t *testing.T) {
	rec := baseRecord()
	rec.Cite = "F. MartÃ­n, “A Study,” Journal X, 2022."
	rec.Venue = "Actas espaÃ±olas, 2022"

	got := New(Options{}).Resolve(context.Background(), rec)
	want := "F. Martín, “A Study,” Actas españolas, 2022."
	if got.Cite != want {
		t.Errorf("Cite = %q, want %q", got.Cite, want)
	}
	if got.Venue != "Actas españolas, 2022" {
		t.Errorf("Venue = %q", got.Venue)
	}
}

func TestResolveIdempotent(t *testing.T) {
	registry := &fixtureRegistry{authors: map[string][]string{"a study": {"Jane Smith"}}}
	r := New(Options{
		Ranks:      ranks.Table{"a study": "Q2"},
		CutoffYear: 2022,
		Registry:   registry,
	})

	rec := baseRecord()
	rec.LinkURL = "https://publisher.example/landing"

	once := r.Resolve(context.Background(), rec)
	twice := r.Resolve(context.Background(), once)
	if once != twice {
		t.Errorf("Resolve not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	rec := baseRecord()
	rec.LinkURL = "https://publisher.example/landing"
	snapshot := rec

	New(Options{}).Resolve(context.Background(), rec)
	if rec != snapshot {
		t.Error("input record was mutated")
	}
}
