// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package models

import (
	"reflect"
	"testing"
)

func TestSplitGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Animation|Comedy", []string{"Animation", "Comedy"}},
		{"Drama", []string{"Drama"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		got := SplitGenres(tt.in)
		if got == nil {
			t.Fatalf("SplitGenres(%q) returned nil", tt.in)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitGenres(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJoinGenres(t *testing.T) {
	if got := JoinGenres([]string{"Animation", "Comedy"}); got != "Animation|Comedy" {
		t.Errorf("JoinGenres = %q", got)
	}
	if got := JoinGenres(nil); got != "" {
		t.Errorf("JoinGenres(nil) = %q, want empty", got)
	}
}

func TestApplyOMDB(t *testing.T) {
	m := Movie{MovieID: 1, Name: "Toy Story (1995)"}
	enriched := NewEnrichedMovie(&m)
	enriched.ApplyOMDB(&OMDBDocument{Title: "Toy Story", Year: "1995", IMDBRating: "8.3"})

	if enriched.OMDBTitle == nil || *enriched.OMDBTitle != "Toy Story" {
		t.Errorf("OMDBTitle = %v", enriched.OMDBTitle)
	}
	if enriched.OMDBRating == nil || *enriched.OMDBRating != "8.3" {
		t.Errorf("OMDBRating = %v", enriched.OMDBRating)
	}
}

func TestApplyAggregate(t *testing.T) {
	enriched := NewEnrichedMovie(&Movie{MovieID: 1})
	enriched.ApplyAggregate(&RatingAggregate{MovieID: 1, AvgRating: 4.2, RatingCount: 120})

	if enriched.AvgRating == nil || *enriched.AvgRating != 4.2 {
		t.Errorf("AvgRating = %v", enriched.AvgRating)
	}
	if enriched.RatingCount == nil || *enriched.RatingCount != 120 {
		t.Errorf("RatingCount = %v", enriched.RatingCount)
	}
}
