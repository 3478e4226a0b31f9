// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package recommend composes the catalog, the similarity index, the
// resolver, and the enricher into the operations the API exposes:
// per-movie recommendations, genre charts, and the popular chart.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/database"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/enrich"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/metrics"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/resolver"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/similarity"
)

// minRatingCount is the rating-count floor an aggregate must clear to
// appear in charts; movies with a handful of ratings would otherwise
// dominate the by-average lists.
const minRatingCount = 50

const (
	genreChartSize   = 10
	popularChartSize = 50
)

// GenreNotFoundError indicates a genre that matched no catalog movie.
type GenreNotFoundError struct {
	Genre string
}

func (e *GenreNotFoundError) Error() string {
	return fmt.Sprintf("no movies found for the genre %q", e.Genre)
}

// Service is the recommendation facade.
type Service struct {
	db       *database.DB
	resolver *resolver.Resolver
	ranker   *similarity.Ranker
	enricher *enrich.Enricher
}

// New creates a Service over its collaborators.
func New(db *database.DB, res *resolver.Resolver, ranker *similarity.Ranker, enricher *enrich.Enricher) *Service {
	return &Service{db: db, resolver: res, ranker: ranker, enricher: enricher}
}

// Recommend resolves the movie input and produces one recommendation
// group per resolved movie: the movie itself plus its topN most
// similar movies, all enriched. Resolved ids absent from the catalog
// are skipped rather than failing the batch.
func (s *Service) Recommend(ctx context.Context, input resolver.MovieInput, topN int) ([]models.Recommendation, error) {
	ids, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]models.Recommendation, 0, len(ids))
	for _, id := range ids {
		movie, err := s.db.GetMovie(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrMovieNotFound) {
				logging.Ctx(ctx).Debug().Int("movie_id", id).Msg("Skipping unknown movie id")
				continue
			}
			return nil, fmt.Errorf("failed to load movie %d: %w", id, err)
		}

		similar := s.ranker.Rank(id, topN)
		recommended := make([]models.EnrichedMovie, 0, len(similar))
		for _, simID := range similar {
			simMovie, err := s.db.GetMovie(ctx, simID)
			if err != nil {
				if errors.Is(err, database.ErrMovieNotFound) {
					continue
				}
				return nil, fmt.Errorf("failed to load recommended movie %d: %w", simID, err)
			}
			recommended = append(recommended, s.enricher.Enrich(ctx, simMovie))
		}

		results = append(results, models.Recommendation{
			Movie:             s.enricher.Enrich(ctx, movie),
			RecommendedMovies: recommended,
		})
		metrics.RecommendationsServed.Add(float64(len(recommended)))
	}

	logging.Ctx(ctx).Info().
		Int("movies", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Served recommendations")
	return results, nil
}

// TopRatedByGenre returns the genre's charts: the highest-average and
// most-rated movies among those clearing the rating-count floor.
func (s *Service) TopRatedByGenre(ctx context.Context, genre string) (models.GenreCharts, error) {
	movies, err := s.db.SearchMoviesByGenre(ctx, genre)
	if err != nil {
		return models.GenreCharts{}, fmt.Errorf("failed to search genre %q: %w", genre, err)
	}
	if len(movies) == 0 {
		return models.GenreCharts{}, &GenreNotFoundError{Genre: genre}
	}

	ids := make([]int, len(movies))
	byID := make(map[int]*models.Movie, len(movies))
	for i := range movies {
		ids[i] = movies[i].MovieID
		byID[movies[i].MovieID] = &movies[i]
	}

	aggregates, err := s.db.RatingAggregates(ctx, ids, minRatingCount)
	if err != nil {
		return models.GenreCharts{}, fmt.Errorf("failed to aggregate ratings for genre %q: %w", genre, err)
	}

	return s.buildCharts(ctx, aggregates, byID, genreChartSize)
}

// Popular returns the catalog-wide charts: the highest-average and
// most-rated movies. Unlike the genre charts there is no rating-count
// floor; every rated movie is eligible.
func (s *Service) Popular(ctx context.Context) (models.GenreCharts, error) {
	aggregates, err := s.db.RatingAggregates(ctx, nil, 0)
	if err != nil {
		return models.GenreCharts{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return s.buildCharts(ctx, aggregates, nil, popularChartSize)
}

// buildCharts ranks aggregates by average and by count, takes the top
// limit of each, and enriches the winners. byID may be nil, in which
// case movies are loaded from the catalog on demand.
func (s *Service) buildCharts(ctx context.Context, aggregates []models.RatingAggregate, byID map[int]*models.Movie, limit int) (models.GenreCharts, error) {
	byAvg := make([]models.RatingAggregate, len(aggregates))
	copy(byAvg, aggregates)
	sort.Slice(byAvg, func(i, j int) bool {
		if byAvg[i].AvgRating != byAvg[j].AvgRating {
			return byAvg[i].AvgRating > byAvg[j].AvgRating
		}
		return byAvg[i].MovieID < byAvg[j].MovieID
	})

	byCount := make([]models.RatingAggregate, len(aggregates))
	copy(byCount, aggregates)
	sort.Slice(byCount, func(i, j int) bool {
		if byCount[i].RatingCount != byCount[j].RatingCount {
			return byCount[i].RatingCount > byCount[j].RatingCount
		}
		return byCount[i].MovieID < byCount[j].MovieID
	})

	topRated, err := s.enrichChart(ctx, truncate(byAvg, limit), byID)
	if err != nil {
		return models.GenreCharts{}, err
	}
	mostRated, err := s.enrichChart(ctx, truncate(byCount, limit), byID)
	if err != nil {
		return models.GenreCharts{}, err
	}

	return models.GenreCharts{
		TopRatedMovies:  topRated,
		MostRatedMovies: mostRated,
	}, nil
}

func (s *Service) enrichChart(ctx context.Context, aggregates []models.RatingAggregate, byID map[int]*models.Movie) ([]models.EnrichedMovie, error) {
	chart := make([]models.EnrichedMovie, 0, len(aggregates))
	for _, agg := range aggregates {
		movie, ok := byID[agg.MovieID]
		if !ok {
			loaded, err := s.db.GetMovie(ctx, agg.MovieID)
			if err != nil {
				if errors.Is(err, database.ErrMovieNotFound) {
					continue
				}
				return nil, fmt.Errorf("failed to load movie %d: %w", agg.MovieID, err)
			}
			movie = loaded
		}
		enriched := s.enricher.Enrich(ctx, movie)
		enriched.ApplyAggregate(&agg)
		chart = append(chart, enriched)
	}
	return chart, nil
}

func truncate(aggregates []models.RatingAggregate, limit int) []models.RatingAggregate {
	if len(aggregates) > limit {
		return aggregates[:limit]
	}
	return aggregates
}
