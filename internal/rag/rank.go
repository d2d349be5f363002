package rag

import (
	"slices"
	"strings"

	"github.com/figmant/figmant/internal/knowledge"
)

// Tie-breaking thresholds for the ranking comparator. Similarity scores
// within simTieEpsilon of each other are treated as tied; content length
// breaks such ties only when the difference exceeds contentTieThreshold
// characters.
const (
	simTieEpsilon       = 0.01
	contentTieThreshold = 100
)

// Dedupe collapses duplicate entry IDs, keeping the copy with the highest
// similarity regardless of discovery order. Output preserves the
// first-occurrence order of IDs.
func Dedupe(results []knowledge.Result) []knowledge.Result {
	index := make(map[string]int, len(results))
	out := make([]knowledge.Result, 0, len(results))

	for _, r := range results {
		if i, seen := index[r.Entry.ID]; seen {
			if r.Similarity > out[i].Similarity {
				out[i] = r
			}
			continue
		}
		index[r.Entry.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// Rank deduplicates, sorts, and truncates results to at most maxEntries.
//
// Sort order: similarity descending (differences under simTieEpsilon are
// tied), then content length descending when the length difference exceeds
// contentTieThreshold, then title ascending for determinism. The stable sort
// plus the title tiebreak make the output order reproducible across runs for
// identical input.
func Rank(results []knowledge.Result, maxEntries int) []knowledge.Result {
	ranked := Dedupe(results)

	slices.SortStableFunc(ranked, compareResults)

	if maxEntries > 0 && len(ranked) > maxEntries {
		ranked = ranked[:maxEntries]
	}
	return ranked
}

// compareResults orders a before b when it returns a negative value.
func compareResults(a, b knowledge.Result) int {
	switch diff := a.Similarity - b.Similarity; {
	case diff >= simTieEpsilon:
		return -1
	case diff <= -simTieEpsilon:
		return 1
	}

	// Similarity tied: prefer richer content, but only when the gap is
	// meaningful.
	lenA, lenB := len(a.Entry.Content), len(b.Entry.Content)
	if gap := lenA - lenB; gap > contentTieThreshold {
		return -1
	} else if gap < -contentTieThreshold {
		return 1
	}

	return strings.Compare(a.Entry.Title, b.Entry.Title)
}

// Partition splits ranked results into competitor insights and everything
// else, preserving rank order within each bucket. The two slices are a
// disjoint partition of the input.
func Partition(results []knowledge.Result) (patterns, competitors []knowledge.Result) {
	patterns = make([]knowledge.Result, 0, len(results))
	competitors = make([]knowledge.Result, 0)

	for _, r := range results {
		if r.Entry.Category == knowledge.CategoryCompetitorInsights {
			competitors = append(competitors, r)
		} else {
			patterns = append(patterns, r)
		}
	}
	return patterns, competitors
}
