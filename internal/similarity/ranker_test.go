// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package similarity

import (
	"reflect"
	"testing"
)

// testIndex builds a small 4-movie index:
//
//	position: 0     1     2     3
//	movie id: 10    20    30    40
//
// Movie 10's row scores: 20=0.9, 30=0.9, 40=0.5 (plus a self cell).
func testIndex(t *testing.T) *Index {
	t.Helper()
	artifact := `{
		"version": 1,
		"metric": "cosine",
		"movie_ids": [10, 20, 30, 40],
		"rows": [
			[{"position":0,"score":1.0},{"position":1,"score":0.9},{"position":2,"score":0.9},{"position":3,"score":0.5}],
			[{"position":0,"score":0.9},{"position":1,"score":1.0}],
			[{"position":0,"score":0.9},{"position":2,"score":1.0}],
			[{"position":0,"score":0.5},{"position":3,"score":1.0}]
		]
	}`
	idx, err := Parse([]byte(artifact))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return idx
}

func TestRankOrdering(t *testing.T) {
	ranker := NewRanker(testIndex(t))

	got := ranker.Rank(10, 3)
	// 20 and 30 tie at 0.9; 20 wins by lower matrix position.
	want := []int{20, 30, 40}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(10, 3) = %v, want %v", got, want)
	}
}

func TestRankExcludesSelf(t *testing.T) {
	ranker := NewRanker(testIndex(t))

	for _, id := range ranker.Rank(10, 10) {
		if id == 10 {
			t.Fatal("Rank returned the query movie itself")
		}
	}
}

func TestRankTruncatesToTopN(t *testing.T) {
	ranker := NewRanker(testIndex(t))

	got := ranker.Rank(10, 1)
	want := []int{20}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(10, 1) = %v, want %v", got, want)
	}
}

func TestRankFewerCandidatesThanTopN(t *testing.T) {
	ranker := NewRanker(testIndex(t))

	got := ranker.Rank(20, 10)
	want := []int{10}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(20, 10) = %v, want %v", got, want)
	}
}

func TestRankEdgeCases(t *testing.T) {
	ranker := NewRanker(testIndex(t))

	tests := []struct {
		name    string
		movieID int
		topN    int
	}{
		{"zero topN", 10, 0},
		{"negative topN", 10, -3},
		{"unknown movie", 999, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ranker.Rank(tt.movieID, tt.topN)
			if got == nil {
				t.Fatal("Rank returned nil, want empty slice")
			}
			if len(got) != 0 {
				t.Errorf("Rank(%d, %d) = %v, want empty", tt.movieID, tt.topN, got)
			}
		})
	}
}

func TestRankDeterministic(t *testing.T) {
	ranker := NewRanker(testIndex(t))

	first := ranker.Rank(10, 3)
	for i := 0; i < 50; i++ {
		if got := ranker.Rank(10, 3); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Rank = %v, first run = %v", i, got, first)
		}
	}
}

func TestParseRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"row count mismatch", `{"version":1,"movie_ids":[1,2],"rows":[[]]}`},
		{"duplicate movie id", `{"version":1,"movie_ids":[1,1],"rows":[[],[]]}`},
		{"position out of range", `{"version":1,"movie_ids":[1],"rows":[[{"position":5,"score":0.1}]]}`},
		{"not json", `similarity`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse accepted a malformed artifact")
			}
		})
	}
}

func TestCheckSymmetry(t *testing.T) {
	if err := testIndex(t).CheckSymmetry(); err != nil {
		t.Errorf("CheckSymmetry on symmetric index: %v", err)
	}

	asymmetric := `{
		"version": 1,
		"movie_ids": [1, 2],
		"rows": [
			[{"position":1,"score":0.4}],
			[]
		]
	}`
	idx, err := Parse([]byte(asymmetric))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := idx.CheckSymmetry(); err == nil {
		t.Error("CheckSymmetry missed an asymmetric cell")
	}
}
