// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package similarity

import (
	"sort"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/metrics"
)

// Ranker ranks catalog movies by similarity to a query movie. It is a
// pure function of the immutable index and its inputs, so one Ranker is
// safely shared across concurrent requests.
type Ranker struct {
	index *Index
}

// NewRanker creates a ranker over the given index.
func NewRanker(index *Index) *Ranker {
	return &Ranker{index: index}
}

// Rank returns up to topN movie ids ordered by descending similarity to
// movieID. Ties are broken by ascending matrix position so the output
// is deterministic across runs despite floating point scores.
//
// The query movie itself is always excluded. A movie absent from the
// index yields an empty result (a graceful miss, not an error), as does
// topN <= 0. Fewer than topN candidates returns all available.
func (r *Ranker) Rank(movieID, topN int) []int {
	start := time.Now()
	defer func() {
		metrics.RecommendationRankDuration.Observe(time.Since(start).Seconds())
	}()

	if topN <= 0 {
		return []int{}
	}

	pos, ok := r.index.PositionOf(movieID)
	if !ok {
		return []int{}
	}

	row := r.index.Row(pos)
	candidates := make([]Entry, 0, len(row))
	for _, e := range row {
		if e.Position != pos {
			candidates = append(candidates, e)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Position < candidates[j].Position
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	ids := make([]int, len(candidates))
	for i, e := range candidates {
		ids[i] = r.index.MovieIDAt(e.Position)
	}
	return ids
}
