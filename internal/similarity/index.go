// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package similarity serves the precomputed item-item similarity matrix.
//
// The matrix is produced offline and shipped as an artifact that carries
// its own movie-id row ordering. The id-to-position mapping is read from
// the artifact, never rebuilt from live catalog state: positions must
// match the exact ordering used when the matrix was computed, and the
// catalog can drift after training.
//
// An Index is immutable after Load and safe to share across concurrent
// readers without locking.
package similarity

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Entry is a single sparse cell: the candidate's position in the matrix
// ordering and its similarity score. Zero cells are omitted.
type Entry struct {
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

// artifact is the on-disk representation of the similarity matrix.
type artifact struct {
	Version int    `json:"version"`
	Metric  string `json:"metric"`

	// MovieIDs fixes the row ordering: MovieIDs[i] is the movie at
	// matrix position i. Persisted at training time.
	MovieIDs []int `json:"movie_ids"`

	// Rows holds the sparse similarity rows, one per position.
	Rows [][]Entry `json:"rows"`
}

// Index is the loaded similarity matrix with its position mapping.
type Index struct {
	metric   string
	movieIDs []int
	posByID  map[int]int
	rows     [][]Entry
}

// Load reads a similarity artifact from disk and builds the index.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read similarity artifact: %w", err)
	}
	return Parse(data)
}

// Parse builds an index from raw artifact bytes.
func Parse(data []byte) (*Index, error) {
	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode similarity artifact: %w", err)
	}

	if len(art.Rows) != len(art.MovieIDs) {
		return nil, fmt.Errorf("similarity artifact: %d rows for %d movie ids",
			len(art.Rows), len(art.MovieIDs))
	}

	posByID := make(map[int]int, len(art.MovieIDs))
	for pos, id := range art.MovieIDs {
		if _, dup := posByID[id]; dup {
			return nil, fmt.Errorf("similarity artifact: duplicate movie id %d", id)
		}
		posByID[id] = pos
	}

	n := len(art.MovieIDs)
	for pos, row := range art.Rows {
		for _, e := range row {
			if e.Position < 0 || e.Position >= n {
				return nil, fmt.Errorf("similarity artifact: row %d references position %d outside 0-%d",
					pos, e.Position, n-1)
			}
		}
	}

	return &Index{
		metric:   art.Metric,
		movieIDs: art.MovieIDs,
		posByID:  posByID,
		rows:     art.Rows,
	}, nil
}

// Size returns the number of matrix positions.
func (x *Index) Size() int {
	return len(x.movieIDs)
}

// Metric returns the similarity metric name recorded at training time.
func (x *Index) Metric() string {
	return x.metric
}

// PositionOf returns the matrix position for a movie id.
func (x *Index) PositionOf(movieID int) (int, bool) {
	pos, ok := x.posByID[movieID]
	return pos, ok
}

// MovieIDAt returns the movie id at a matrix position.
func (x *Index) MovieIDAt(pos int) int {
	return x.movieIDs[pos]
}

// Row returns the sparse similarity row for a position. The returned
// slice is shared and must not be modified.
func (x *Index) Row(pos int) []Entry {
	return x.rows[pos]
}

// CheckSymmetry verifies that every stored cell has a matching
// transposed cell with the same score. Intended for artifact validation
// in tooling and tests, not the serving path.
func (x *Index) CheckSymmetry() error {
	for i, row := range x.rows {
		for _, e := range row {
			if !x.hasCell(e.Position, i, e.Score) {
				return fmt.Errorf("similarity index asymmetric at (%d, %d)", i, e.Position)
			}
		}
	}
	return nil
}

func (x *Index) hasCell(pos, target int, score float64) bool {
	for _, e := range x.rows[pos] {
		if e.Position == target {
			return e.Score == score
		}
	}
	return false
}
