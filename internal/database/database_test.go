// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func seedMovies(t *testing.T, db *DB) {
	t.Helper()
	movies := []models.Movie{
		{MovieID: 1, Name: "Toy Story (1995)", Genres: []string{"Animation", "Comedy"}, IMDBID: strPtr("tt0114709"), TMDBID: intPtr(862)},
		{MovieID: 2, Name: "Jumanji (1995)", Genres: []string{"Adventure", "Fantasy"}},
		{MovieID: 3, Name: "Toy Story 2 (1999)", Genres: []string{"Animation", "Comedy"}},
	}
	if err := db.InsertMovies(context.Background(), movies); err != nil {
		t.Fatalf("InsertMovies failed: %v", err)
	}
}

func TestGetMovie(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	movie, err := db.GetMovie(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetMovie failed: %v", err)
	}
	if movie.Name != "Toy Story (1995)" {
		t.Errorf("Name = %q, want Toy Story (1995)", movie.Name)
	}
	if len(movie.Genres) != 2 || movie.Genres[0] != "Animation" {
		t.Errorf("Genres = %v, want [Animation Comedy]", movie.Genres)
	}
	if movie.IMDBID == nil || *movie.IMDBID != "tt0114709" {
		t.Errorf("IMDBID = %v, want tt0114709", movie.IMDBID)
	}
	if movie.TMDBID == nil || *movie.TMDBID != 862 {
		t.Errorf("TMDBID = %v, want 862", movie.TMDBID)
	}
}

func TestGetMovieNotFound(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	_, err := db.GetMovie(context.Background(), 999)
	if !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("GetMovie error = %v, want ErrMovieNotFound", err)
	}
}

func TestGetMovieNullableColumns(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	movie, err := db.GetMovie(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetMovie failed: %v", err)
	}
	if movie.IMDBID != nil || movie.TMDBID != nil {
		t.Errorf("unlinked movie has external ids: imdb=%v tmdb=%v", movie.IMDBID, movie.TMDBID)
	}
}

func TestSearchMoviesByName(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	// Case-insensitive substring match, ordered by movie id.
	movies, err := db.SearchMoviesByName(context.Background(), "toy story")
	if err != nil {
		t.Fatalf("SearchMoviesByName failed: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("got %d matches, want 2", len(movies))
	}
	if movies[0].MovieID != 1 || movies[1].MovieID != 3 {
		t.Errorf("match order = [%d %d], want [1 3]", movies[0].MovieID, movies[1].MovieID)
	}
}

func TestSearchMoviesByNameNoMatch(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	movies, err := db.SearchMoviesByName(context.Background(), "no such movie")
	if err != nil {
		t.Fatalf("SearchMoviesByName failed: %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("got %d matches, want 0", len(movies))
	}
}

func TestSearchMoviesByGenre(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	movies, err := db.SearchMoviesByGenre(context.Background(), "animation")
	if err != nil {
		t.Fatalf("SearchMoviesByGenre failed: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("got %d matches, want 2", len(movies))
	}
}

func TestAllMovieIDs(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	ids, err := db.AllMovieIDs(context.Background())
	if err != nil {
		t.Fatalf("AllMovieIDs failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("AllMovieIDs = %v, want [1 2 3]", ids)
	}
}

func TestRatingAggregates(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	ts := time.Unix(964982703, 0).UTC()
	var ratings []models.Rating
	// Movie 1: three ratings averaging 4.0; movie 2: one rating.
	for i, v := range []float64{3.0, 4.0, 5.0} {
		ratings = append(ratings, models.Rating{MovieID: 1, MovielensUserID: i + 1, Rating: v, Timestamp: ts})
	}
	ratings = append(ratings, models.Rating{MovieID: 2, MovielensUserID: 1, Rating: 2.0, Timestamp: ts})
	if err := db.InsertRatings(context.Background(), ratings); err != nil {
		t.Fatalf("InsertRatings failed: %v", err)
	}

	aggs, err := db.RatingAggregates(context.Background(), nil, 2)
	if err != nil {
		t.Fatalf("RatingAggregates failed: %v", err)
	}
	if len(aggs) != 1 {
		t.Fatalf("got %d aggregates, want 1 (movie 2 is below the count floor)", len(aggs))
	}
	if aggs[0].MovieID != 1 || aggs[0].AvgRating != 4.0 || aggs[0].RatingCount != 3 {
		t.Errorf("aggregate = %+v, want movie 1 avg 4.0 count 3", aggs[0])
	}
}

func TestRatingAggregatesRestrictedToMovieIDs(t *testing.T) {
	db := newTestDB(t)
	seedMovies(t, db)

	ts := time.Now().UTC()
	var ratings []models.Rating
	for user := 1; user <= 3; user++ {
		ratings = append(ratings,
			models.Rating{MovieID: 1, MovielensUserID: user, Rating: 4.0, Timestamp: ts},
			models.Rating{MovieID: 2, MovielensUserID: user, Rating: 3.0, Timestamp: ts},
		)
	}
	if err := db.InsertRatings(context.Background(), ratings); err != nil {
		t.Fatalf("InsertRatings failed: %v", err)
	}

	aggs, err := db.RatingAggregates(context.Background(), []int{2}, 0)
	if err != nil {
		t.Fatalf("RatingAggregates failed: %v", err)
	}
	if len(aggs) != 1 || aggs[0].MovieID != 2 {
		t.Errorf("aggregates = %+v, want only movie 2", aggs)
	}
}

func TestCounts(t *testing.T) {
	db := newTestDB(t)

	count, err := db.CountMovies(context.Background())
	if err != nil {
		t.Fatalf("CountMovies failed: %v", err)
	}
	if count != 0 {
		t.Errorf("CountMovies on empty table = %d", count)
	}

	seedMovies(t, db)
	count, err = db.CountMovies(context.Background())
	if err != nil {
		t.Fatalf("CountMovies failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountMovies = %d, want 3", count)
	}

	ratingCount, err := db.CountRatings(context.Background())
	if err != nil {
		t.Fatalf("CountRatings failed: %v", err)
	}
	if ratingCount != 0 {
		t.Errorf("CountRatings on empty table = %d", ratingCount)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
