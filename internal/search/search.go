// Package search implements tiered caption search: FTS5 first, with a
// substring fallback when keyword hits are sparse.
package search

import (
	"context"
	"sort"

	"github.com/go-ports/mememe/internal/models"
)

// Searcher is the subset of the store used by caption search.
type Searcher interface {
	FTSSearch(ctx context.Context, query string, limit int) ([]models.Summary, error)
	SubstringSearch(ctx context.Context, query string, limit int) ([]models.Summary, error)
}

// MergeResults combines FTS and substring hits with weighted scoring.
// FTS scores are normalised to [0, 1]; every substring hit scores 1.
// A meme found by both accumulates both weights.
func MergeResults(fts, sub []models.Summary, ftsWeight, subWeight float64, limit int) []models.Summary {
	fts = normalize(fts)

	combined := make(map[string]*models.Summary, len(fts)+len(sub))
	order := make([]string, 0, len(fts)+len(sub))

	for _, s := range fts {
		cp := s
		cp.Score = ftsWeight * s.Score
		combined[s.ID] = &cp
		order = append(order, s.ID)
	}
	for _, s := range sub {
		if existing, ok := combined[s.ID]; ok {
			existing.Score += subWeight
			continue
		}
		cp := s
		cp.Score = subWeight
		combined[s.ID] = &cp
		order = append(order, s.ID)
	}

	results := make([]models.Summary, 0, len(order))
	for _, id := range order {
		results = append(results, *combined[id])
	}
	// Stable so equal scores keep FTS rank, then insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results[:clamp(limit, len(results))]
}

// Captions runs FTS first and only falls back to substring matching when
// there are fewer than minFTS keyword hits. Pass minFTS=0 for the default of 3.
func Captions(ctx context.Context, s Searcher, query string, limit, minFTS int) ([]models.Summary, error) {
	if minFTS <= 0 {
		minFTS = 3
	}
	if limit <= 0 {
		limit = 10
	}

	fts, err := s.FTSSearch(ctx, query, limit*2)
	if err != nil {
		return nil, err
	}
	if len(fts) >= minFTS {
		fts = normalize(fts)
		return fts[:clamp(limit, len(fts))], nil
	}

	sub, err := s.SubstringSearch(ctx, query, limit*2)
	if err != nil {
		return nil, err
	}
	return MergeResults(fts, sub, 0.6, 0.4, limit), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// normalize returns a copy with each score divided by the maximum, producing [0, 1].
func normalize(in []models.Summary) []models.Summary {
	if len(in) == 0 {
		return in
	}
	var maxScore float64
	for _, s := range in {
		if s.Score > maxScore {
			maxScore = s.Score
		}
	}
	if maxScore <= 0 {
		maxScore = 1.0
	}
	out := make([]models.Summary, len(in))
	for i, s := range in {
		s.Score /= maxScore
		out[i] = s
	}
	return out
}

func clamp(limit, n int) int {
	if limit <= 0 {
		return n
	}
	if limit < n {
		return limit
	}
	return n
}
