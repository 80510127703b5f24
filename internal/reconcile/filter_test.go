package reconcile

import (
	"testing"

	"github.com/rmartin/pubkeep/internal/pub"
)

func testFilter() *Filter {
	return NewFilter(
		[]string{"", "Unknown", "1978", "1991"},
		[]string{"https://doi.org/10.5555/retracted.1"},
		[]string{"Proceedings of the Phantom Workshop"},
	)
}

func TestFilterExclude(t *testing.T) {
	tests := []struct {
		name       string
		rec        pub.Record
		wantReason string
		wantDrop   bool
	}{
		{
			name:     "ordinary record survives",
			rec:      pub.Record{Year: "2022", Cite: "J. Smith, “A Study,” Journal X, 2022."},
			wantDrop: false,
		},
		{
			name:       "excluded year 1978 always dropped",
			rec:        pub.Record{Year: "1978", Cite: "J. Smith, “Early Work,” Bulletin, 1978."},
			wantReason: ReasonYear,
			wantDrop:   true,
		},
		{
			name:       "empty year dropped",
			rec:        pub.Record{Year: "", Cite: "J. Smith, “Undated,” Bulletin."},
			wantReason: ReasonYear,
			wantDrop:   true,
		},
		{
			name:       "unknown year label dropped",
			rec:        pub.Record{Year: "Unknown", Cite: "J. Smith, “Undated,” Bulletin."},
			wantReason: ReasonYear,
			wantDrop:   true,
		},
		{
			name:       "excluded doi matches across resolver forms",
			rec:        pub.Record{Year: "2020", DOI: "10.5555/RETRACTED.1"},
			wantReason: ReasonDOI,
			wantDrop:   true,
		},
		{
			name: "text fingerprint matches in venue",
			rec: pub.Record{
				Year:  "2019",
				Venue: "Proceedings  of the PHANTOM Workshop, 2019",
				Cite:  "J. Smith, “Ghost Paper,” Proceedings of the Phantom Workshop, 2019.",
			},
			wantReason: ReasonText,
			wantDrop:   true,
		},
		{
			name: "fingerprint survives typographic quotes and spacing",
			rec: pub.Record{
				Year: "2019",
				Cite: "J. Smith, “Ghost Paper,” Proceedings of the Phantom Workshop, 2019.",
			},
			wantReason: ReasonText,
			wantDrop:   true,
		},
		{
			name:     "near-miss fingerprint kept",
			rec:      pub.Record{Year: "2019", Cite: "J. Smith, “Real Paper,” Phantom Workshop Companion, 2019."},
			wantDrop: false,
		},
	}

	f := testFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, drop := f.Exclude(tt.rec)
			if drop != tt.wantDrop {
				t.Fatalf("Exclude() = %v, want %v", drop, tt.wantDrop)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestFilterApply(t *testing.T) {
	records := []pub.Record{
		{Year: "2022", Cite: "A, “One,” V, 2022."},
		{Year: "1978", Cite: "B, “Two,” V, 1978."},
		{Year: "2021", Cite: "C, “Three,” V, 2021."},
		{Year: "1991", Cite: "D, “Four,” V, 1991."},
	}

	kept, removed := testFilter().Apply(records)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d records, want 2", len(kept))
	}
	if kept[0].Year != "2022" || kept[1].Year != "2021" {
		t.Errorf("kept wrong records: %+v", kept)
	}
	if kept[0].Cite != records[0].Cite {
		t.Error("Apply must not reorder surviving records")
	}
}

func TestDedup(t *testing.T) {
	records := []pub.Record{
		{Year: "2022", Cite: "A. One, “Shared Title,” Journal X, 2022.", DOI: "10.1/a"},
		{Year: "2022", Cite: "B. Two, “SHARED   Title,” Journal Y, 2022."},
		{Year: "2021", Cite: "C. Three, “Shared Title,” Journal X, 2021."},
		{Year: "2022", Cite: "no quoted title here"},
		{Year: "2022", Cite: "also no quoted title"},
	}

	kept, removed := Dedup(records)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(kept) != 4 {
		t.Fatalf("kept %d records, want 4", len(kept))
	}
	// First occurrence wins, including its DOI.
	if kept[0].DOI != "10.1/a" {
		t.Errorf("kept[0].DOI = %q, want first occurrence retained", kept[0].DOI)
	}
	// Same title in a different year is not a duplicate.
	if kept[1].Year != "2021" {
		t.Errorf("kept[1].Year = %q, want 2021", kept[1].Year)
	}
	// Title-less records never collide with each other.
	if kept[2].Cite != "no quoted title here" || kept[3].Cite != "also no quoted title" {
		t.Errorf("title-less records mishandled: %+v", kept[2:])
	}
}

func TestFilterEmptyLists(t *testing.T) {
	f := NewFilter(nil, nil, nil)
	rec := pub.Record{Year: "1978"}
	if _, drop := f.Exclude(rec); drop {
		t.Error("empty filter must keep everything")
	}
}
