// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/metrics"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

// GetMovie returns the catalog record for the given id.
// Returns ErrMovieNotFound when the id is absent.
func (db *DB) GetMovie(ctx context.Context, movieID int) (*models.Movie, error) {
	start := time.Now()
	stmt, err := db.prepared(ctx, `SELECT movie_id, movie_name, genres, tmdb_id, imdb_id
		FROM movielens_movies WHERE movie_id = ?`)
	if err != nil {
		return nil, err
	}

	movie, err := scanMovie(stmt.QueryRowContext(ctx, movieID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		metrics.RecordDBError("select", "movielens_movies")
		return nil, fmt.Errorf("get movie %d: %w", movieID, err)
	}

	metrics.RecordDBQuery("select", "movielens_movies", time.Since(start))
	return movie, nil
}

// SearchMoviesByName returns all movies whose name contains the given
// substring, case-insensitively, ordered by movie_id for a stable
// result across calls on an unchanged catalog.
func (db *DB) SearchMoviesByName(ctx context.Context, substr string) ([]models.Movie, error) {
	return db.searchMovies(ctx, `SELECT movie_id, movie_name, genres, tmdb_id, imdb_id
		FROM movielens_movies WHERE movie_name ILIKE '%' || ? || '%'
		ORDER BY movie_id`, substr)
}

// SearchMoviesByGenre returns all movies whose genre list contains the
// given genre, case-insensitively, ordered by movie_id.
func (db *DB) SearchMoviesByGenre(ctx context.Context, genre string) ([]models.Movie, error) {
	return db.searchMovies(ctx, `SELECT movie_id, movie_name, genres, tmdb_id, imdb_id
		FROM movielens_movies WHERE genres ILIKE '%' || ? || '%'
		ORDER BY movie_id`, genre)
}

func (db *DB) searchMovies(ctx context.Context, query, arg string) ([]models.Movie, error) {
	start := time.Now()
	stmt, err := db.prepared(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, arg)
	if err != nil {
		metrics.RecordDBError("select", "movielens_movies")
		return nil, fmt.Errorf("search movies: %w", err)
	}
	defer closeRows(rows)

	movies := make([]models.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	metrics.RecordDBQuery("select", "movielens_movies", time.Since(start))
	return movies, nil
}

// AllMovieIDs returns every catalog movie id in ascending order.
func (db *DB) AllMovieIDs(ctx context.Context) ([]int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT movie_id FROM movielens_movies ORDER BY movie_id`)
	if err != nil {
		return nil, fmt.Errorf("list movie ids: %w", err)
	}
	defer closeRows(rows)

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan movie id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountMovies returns the number of catalog records.
func (db *DB) CountMovies(ctx context.Context) (int64, error) {
	return db.countRows(ctx, "movielens_movies")
}

// InsertMovies bulk-inserts catalog records in a single transaction.
// All-or-nothing: any failure rolls back the whole batch.
func (db *DB) InsertMovies(ctx context.Context, movies []models.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin movie insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO movielens_movies
		(movie_id, movie_name, genres, tmdb_id, imdb_id) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("prepare movie insert: %w", err)
	}
	defer closeStmt(stmt)

	for i := range movies {
		m := &movies[i]
		if _, err := stmt.ExecContext(ctx, m.MovieID, m.Name,
			models.JoinGenres(m.Genres), m.TMDBID, m.IMDBID); err != nil {
			rollback(tx)
			metrics.RecordDBError("insert", "movielens_movies")
			return fmt.Errorf("insert movie %d: %w", m.MovieID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBError("insert", "movielens_movies")
		return fmt.Errorf("commit movie insert: %w", err)
	}

	metrics.RecordDBQuery("insert", "movielens_movies", time.Since(start))
	metrics.IngestRowsTotal.WithLabelValues("movies").Add(float64(len(movies)))
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan logic.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	var (
		m      models.Movie
		genres string
		tmdbID sql.NullInt64
		imdbID sql.NullString
	)
	if err := row.Scan(&m.MovieID, &m.Name, &genres, &tmdbID, &imdbID); err != nil {
		return nil, err
	}
	m.Genres = models.SplitGenres(genres)
	if tmdbID.Valid {
		v := int(tmdbID.Int64)
		m.TMDBID = &v
	}
	if imdbID.Valid {
		v := imdbID.String
		m.IMDBID = &v
	}
	return &m, nil
}
