// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package ingest loads the MovieLens CSV exports into the catalog
// database. Movies and their external id links are merged in memory
// and inserted in one pass; ratings are streamed in fixed-size chunks
// with one transaction per chunk so a multi-million row file never
// holds a single long-running transaction. Each table is populated at
// most once: a non-empty table is skipped, making the operation safe
// to re-trigger.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/config"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/database"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/enrich"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

// Stats reports the outcome of one ingestion run.
type Stats struct {
	InsertedMovies  int           `json:"inserted_movies"`
	InsertedRatings int           `json:"inserted_ratings"`
	MoviesSkipped   bool          `json:"movies_skipped"`
	RatingsSkipped  bool          `json:"ratings_skipped"`
	Duration        time.Duration `json:"duration"`
}

// Ingester drives the CSV-to-database pipeline.
type Ingester struct {
	db  *database.DB
	cfg config.IngestConfig
}

// New creates an Ingester for the given database and source files.
func New(db *database.DB, cfg config.IngestConfig) *Ingester {
	return &Ingester{db: db, cfg: cfg}
}

// Run populates the movie and rating tables from the configured CSV
// files. Tables that already hold rows are left untouched and reported
// as skipped.
func (ing *Ingester) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	movieCount, err := ing.db.CountMovies(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to count movies: %w", err)
	}
	if movieCount > 0 {
		logging.Info().Int64("existing_rows", movieCount).Msg("Movie table already populated, skipping")
		stats.MoviesSkipped = true
	} else {
		inserted, err := ing.ingestMovies(ctx)
		if err != nil {
			return stats, err
		}
		stats.InsertedMovies = inserted
	}

	ratingCount, err := ing.db.CountRatings(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to count ratings: %w", err)
	}
	if ratingCount > 0 {
		logging.Info().Int64("existing_rows", ratingCount).Msg("Rating table already populated, skipping")
		stats.RatingsSkipped = true
	} else {
		inserted, err := ing.ingestRatings(ctx)
		if err != nil {
			return stats, err
		}
		stats.InsertedRatings = inserted
	}

	stats.Duration = time.Since(start)
	logging.Info().
		Int("movies", stats.InsertedMovies).
		Int("ratings", stats.InsertedRatings).
		Dur("duration", stats.Duration).
		Msg("Ingestion complete")
	return stats, nil
}

// ingestMovies merges movies.csv with links.csv on movie id and
// inserts the result in a single transaction.
func (ing *Ingester) ingestMovies(ctx context.Context) (int, error) {
	links, err := ing.readLinks()
	if err != nil {
		return 0, err
	}

	f, err := os.Open(ing.cfg.MoviesPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open movies file: %w", err)
	}
	defer closeQuietly(f, "movies file")

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	if _, err := r.Read(); err != nil { // header
		return 0, fmt.Errorf("failed to read movies header: %w", err)
	}

	var movies []models.Movie
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read movies row: %w", err)
		}
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return 0, fmt.Errorf("invalid movie id %q: %w", record[0], err)
		}
		movie := models.Movie{
			MovieID: id,
			Name:    record[1],
			Genres:  models.SplitGenres(record[2]),
		}
		if link, ok := links[id]; ok {
			movie.IMDBID = link.imdbID
			movie.TMDBID = link.tmdbID
		}
		movies = append(movies, movie)
	}

	if err := ing.db.InsertMovies(ctx, movies); err != nil {
		return 0, fmt.Errorf("failed to insert movies: %w", err)
	}
	logging.Info().Int("rows", len(movies)).Msg("Inserted movie catalog")
	return len(movies), nil
}

type movieLink struct {
	imdbID *string
	tmdbID *int
}

// readLinks loads links.csv (movieId,imdbId,tmdbId) into a lookup map.
// The imdb column holds the bare numeric id; it is stored in OMDB's
// "tt"-prefixed form so lookups need no further normalization.
func (ing *Ingester) readLinks() (map[int]movieLink, error) {
	f, err := os.Open(ing.cfg.LinksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open links file: %w", err)
	}
	defer closeQuietly(f, "links file")

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	if _, err := r.Read(); err != nil { // header
		return nil, fmt.Errorf("failed to read links header: %w", err)
	}

	links := make(map[int]movieLink)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read links row: %w", err)
		}
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid link movie id %q: %w", record[0], err)
		}
		var link movieLink
		if record[1] != "" {
			imdb, err := strconv.Atoi(record[1])
			if err != nil {
				return nil, fmt.Errorf("invalid imdb id %q: %w", record[1], err)
			}
			formatted := enrich.FormatIMDBID(imdb)
			link.imdbID = &formatted
		}
		if record[2] != "" {
			tmdb, err := strconv.Atoi(record[2])
			if err != nil {
				return nil, fmt.Errorf("invalid tmdb id %q: %w", record[2], err)
			}
			link.tmdbID = &tmdb
		}
		links[id] = link
	}
	return links, nil
}

// ingestRatings streams ratings.csv in BatchSize chunks, committing
// each chunk in its own transaction.
func (ing *Ingester) ingestRatings(ctx context.Context) (int, error) {
	f, err := os.Open(ing.cfg.RatingsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open ratings file: %w", err)
	}
	defer closeQuietly(f, "ratings file")

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	if _, err := r.Read(); err != nil { // header
		return 0, fmt.Errorf("failed to read ratings header: %w", err)
	}

	batchSize := ing.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100000
	}

	total := 0
	chunk := make([]models.Rating, 0, batchSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := ing.db.InsertRatings(ctx, chunk); err != nil {
			return fmt.Errorf("failed to insert ratings chunk at row %d: %w", total, err)
		}
		total += len(chunk)
		logging.Info().Int("rows", total).Msg("Inserted ratings chunk")
		chunk = chunk[:0]
		return nil
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read ratings row: %w", err)
		}
		rating, err := parseRating(record)
		if err != nil {
			return total, err
		}
		chunk = append(chunk, rating)
		if len(chunk) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// parseRating converts one ratings.csv record
// (userId,movieId,rating,timestamp) into a Rating. The timestamp
// column is seconds since the Unix epoch.
func parseRating(record []string) (models.Rating, error) {
	userID, err := strconv.Atoi(record[0])
	if err != nil {
		return models.Rating{}, fmt.Errorf("invalid user id %q: %w", record[0], err)
	}
	movieID, err := strconv.Atoi(record[1])
	if err != nil {
		return models.Rating{}, fmt.Errorf("invalid rating movie id %q: %w", record[1], err)
	}
	value, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return models.Rating{}, fmt.Errorf("invalid rating value %q: %w", record[2], err)
	}
	epoch, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return models.Rating{}, fmt.Errorf("invalid rating timestamp %q: %w", record[3], err)
	}
	return models.Rating{
		MovieID:         movieID,
		MovielensUserID: userID,
		Rating:          value,
		Timestamp:       time.Unix(epoch, 0).UTC(),
	}, nil
}

func closeQuietly(f *os.File, what string) {
	if err := f.Close(); err != nil {
		logging.Debug().Err(err).Msg("Failed to close " + what)
	}
}
