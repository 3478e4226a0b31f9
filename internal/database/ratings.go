// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/metrics"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

// InsertRatings bulk-inserts one chunk of rating rows in a single
// transaction. The ingestion pipeline calls this once per chunk so a
// mid-run crash leaves prior chunks committed.
func (db *DB) InsertRatings(ctx context.Context, ratings []models.Rating) error {
	if len(ratings) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rating insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO movielens_ratings
		(movie_id, movielens_user_id, rating, ts) VALUES (?, ?, ?, ?)`)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("prepare rating insert: %w", err)
	}
	defer closeStmt(stmt)

	for i := range ratings {
		r := &ratings[i]
		if _, err := stmt.ExecContext(ctx, r.MovieID, r.MovielensUserID,
			r.Rating, r.Timestamp); err != nil {
			rollback(tx)
			metrics.RecordDBError("insert", "movielens_ratings")
			return fmt.Errorf("insert rating for movie %d: %w", r.MovieID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBError("insert", "movielens_ratings")
		return fmt.Errorf("commit rating insert: %w", err)
	}

	metrics.RecordDBQuery("insert", "movielens_ratings", time.Since(start))
	metrics.IngestRowsTotal.WithLabelValues("ratings").Add(float64(len(ratings)))
	metrics.IngestChunkDuration.Observe(time.Since(start).Seconds())
	return nil
}

// CountRatings returns the number of rating rows.
func (db *DB) CountRatings(ctx context.Context) (int64, error) {
	return db.countRows(ctx, "movielens_ratings")
}

// RatingAggregates computes per-movie average rating and rating count,
// keeping only movies with more than minCount ratings. When movieIDs is
// non-empty the aggregation is restricted to those movies.
func (db *DB) RatingAggregates(ctx context.Context, movieIDs []int, minCount int64) ([]models.RatingAggregate, error) {
	start := time.Now()

	var (
		query strings.Builder
		args  []interface{}
	)
	query.WriteString(`SELECT movie_id, AVG(rating) AS avg_rating, COUNT(rating) AS rating_count
		FROM movielens_ratings`)

	if len(movieIDs) > 0 {
		query.WriteString(" WHERE movie_id IN (")
		query.WriteString(placeholders(len(movieIDs)))
		query.WriteString(")")
		for _, id := range movieIDs {
			args = append(args, id)
		}
	}

	query.WriteString(" GROUP BY movie_id HAVING COUNT(rating) > ?")
	args = append(args, minCount)

	rows, err := db.conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		metrics.RecordDBError("aggregate", "movielens_ratings")
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer closeRows(rows)

	aggs := make([]models.RatingAggregate, 0)
	for rows.Next() {
		var agg models.RatingAggregate
		if err := rows.Scan(&agg.MovieID, &agg.AvgRating, &agg.RatingCount); err != nil {
			return nil, fmt.Errorf("scan rating aggregate: %w", err)
		}
		aggs = append(aggs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating aggregates: %w", err)
	}

	metrics.RecordDBQuery("aggregate", "movielens_ratings", time.Since(start))
	return aggs, nil
}

// countRows returns COUNT(*) for the given table. Table names are
// internal constants, never user input.
func (db *DB) countRows(ctx context.Context, table string) (int64, error) {
	var count int64
	//nolint:gosec // table is a package-internal constant
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// placeholders returns n comma-joined "?" markers.
func placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}
	return strings.Join(marks, ", ")
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logging.Warn().Err(err).Msg("Transaction rollback failed")
	}
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing statement")
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing rows")
	}
}
