// Package match scores external metadata candidates against a query title
// using Jaccard word-set similarity with a small year-agreement bonus.
package match

import "github.com/rmartin/pubkeep/internal/normalize"

const (
	// YearBonus is added when a candidate's year equals the query year.
	// Small enough that it cannot promote a poor title match, large enough
	// to break near-ties between equally good matches of different years.
	YearBonus = 0.08

	// Threshold is the minimum accepted score. Anything below is treated as
	// no match, so short or near-generic titles do not pick up unrelated
	// records.
	Threshold = 0.35
)

// Candidate is one external metadata entry under consideration.
type Candidate struct {
	Title string
	Year  string // "" when the source has no year
}

// Result identifies the selected candidate and its score.
type Result struct {
	Index int
	Score float64
}

// Jaccard returns the word-set similarity of two comparison keys:
// |intersection| / |union|, with the union size floored at 1.
func Jaccard(a, b string) float64 {
	aw := normalize.Words(a)
	bw := normalize.Words(b)

	inter := 0
	for w := range aw {
		if _, ok := bw[w]; ok {
			inter++
		}
	}
	union := len(aw) + len(bw) - inter
	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}

// Best selects the highest-scoring candidate for the query title. The year
// is optional ("" disables the bonus). Returns ok=false when the query is
// empty, there are no candidates, or the best score is below Threshold.
// Ties keep the first candidate encountered.
func Best(title, year string, candidates []Candidate) (Result, bool) {
	key := normalize.Key(title)
	if key == "" || len(candidates) == 0 {
		return Result{}, false
	}

	best := Result{Index: -1}
	for i, c := range candidates {
		candKey := normalize.Key(c.Title)
		if candKey == "" {
			continue
		}
		score := Jaccard(key, candKey)
		if year != "" && c.Year == year {
			score += YearBonus
		}
		if best.Index < 0 || score > best.Score {
			best = Result{Index: i, Score: score}
		}
	}

	if best.Index < 0 || best.Score < Threshold {
		return Result{}, false
	}
	return best, true
}
