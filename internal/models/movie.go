// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package models defines the core data types shared across the catalog
// store, the recommendation service, and the API layer.
package models

import (
	"strings"
	"time"
)

// Movie is a canonical catalog record from the MovieLens dataset.
// Immutable once ingested; enrichment fields are attached at read time
// via EnrichedMovie and never persisted back.
type Movie struct {
	// MovieID is the stable integer identifier used as the join key
	// across catalog, ratings, and similarity positions.
	MovieID int `json:"movie_id"`

	// Name is the movie title, including the release year suffix
	// as shipped by MovieLens, e.g. "Heat (1995)".
	Name string `json:"movie_name"`

	// Genres is the ordered genre list. Stored pipe-delimited in the
	// database and split at this boundary.
	Genres []string `json:"genres"`

	// IMDBID is the IMDb identifier in its "tt"-prefixed zero-padded
	// form, e.g. "tt0114709", ready for OMDB lookups. Nil when the
	// links dataset has no entry for this movie.
	IMDBID *string `json:"imdb_id,omitempty"`

	// TMDBID is the TMDb identifier. Nil when unknown.
	TMDBID *int `json:"tmdb_id,omitempty"`
}

// Rating is a single append-only MovieLens rating event.
type Rating struct {
	MovieID         int       `json:"movie_id"`
	MovielensUserID int       `json:"movielens_user_id"`
	Rating          float64   `json:"rating"`
	Timestamp       time.Time `json:"timestamp"`
}

// RatingAggregate holds per-movie rating statistics computed by the
// rating store (group-by with having-count).
type RatingAggregate struct {
	MovieID     int     `json:"movie_id"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int64   `json:"rating_count"`
}

// GenreSeparator is the on-disk genre list delimiter used by MovieLens.
const GenreSeparator = "|"

// SplitGenres converts a pipe-delimited genre string to a slice.
// Empty input yields an empty (non-nil) slice.
func SplitGenres(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, GenreSeparator)
}

// JoinGenres converts a genre slice back to its pipe-delimited form.
func JoinGenres(genres []string) string {
	return strings.Join(genres, GenreSeparator)
}
