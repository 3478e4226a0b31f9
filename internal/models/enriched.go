// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package models

// OMDBDocument is the subset of the OMDB API response the enricher keeps.
// Field names mirror the upstream JSON keys.
type OMDBDocument struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	Genre      string `json:"Genre"`

	// Response is "True" on success, "False" with Error set otherwise.
	Response string `json:"Response"`
	Error    string `json:"Error,omitempty"`
}

// EnrichedMovie is a catalog record augmented with best-effort OMDB
// metadata and optional rating aggregates. Enrichment fields are nil
// when the external fetch failed or the movie has no external id.
type EnrichedMovie struct {
	MovieID int      `json:"movie_id"`
	Name    string   `json:"movie_name"`
	Genres  []string `json:"genres"`
	IMDBID  *string  `json:"imdb_id,omitempty"`
	TMDBID  *int     `json:"tmdb_id,omitempty"`

	OMDBTitle    *string `json:"omdb_title,omitempty"`
	OMDBYear     *string `json:"omdb_year,omitempty"`
	OMDBDirector *string `json:"omdb_director,omitempty"`
	OMDBActors   *string `json:"omdb_actors,omitempty"`
	OMDBPlot     *string `json:"omdb_plot,omitempty"`
	OMDBPoster   *string `json:"omdb_poster,omitempty"`
	OMDBRating   *string `json:"omdb_rating,omitempty"`
	OMDBGenres   *string `json:"omdb_genres,omitempty"`

	AvgRating   *float64 `json:"avg_rating,omitempty"`
	RatingCount *int64   `json:"rating_count,omitempty"`
}

// NewEnrichedMovie copies the base catalog fields into an EnrichedMovie
// with no enrichment attached.
func NewEnrichedMovie(m *Movie) EnrichedMovie {
	return EnrichedMovie{
		MovieID: m.MovieID,
		Name:    m.Name,
		Genres:  m.Genres,
		IMDBID:  m.IMDBID,
		TMDBID:  m.TMDBID,
	}
}

// ApplyOMDB attaches the OMDB document fields to the enriched record.
func (e *EnrichedMovie) ApplyOMDB(doc *OMDBDocument) {
	e.OMDBTitle = &doc.Title
	e.OMDBYear = &doc.Year
	e.OMDBDirector = &doc.Director
	e.OMDBActors = &doc.Actors
	e.OMDBPlot = &doc.Plot
	e.OMDBPoster = &doc.Poster
	e.OMDBRating = &doc.IMDBRating
	e.OMDBGenres = &doc.Genre
}

// ApplyAggregate attaches rating statistics to the enriched record.
func (e *EnrichedMovie) ApplyAggregate(agg *RatingAggregate) {
	e.AvgRating = &agg.AvgRating
	e.RatingCount = &agg.RatingCount
}

// Recommendation pairs a query movie with its ranked, enriched
// recommendations. Transient, constructed per request.
type Recommendation struct {
	Movie             EnrichedMovie   `json:"movie"`
	RecommendedMovies []EnrichedMovie `json:"recommended_movies"`
}

// GenreCharts holds the two aggregate orderings returned by the
// top-rated and popular endpoints.
type GenreCharts struct {
	TopRatedMovies  []EnrichedMovie `json:"top_rated_movies"`
	MostRatedMovies []EnrichedMovie `json:"most_rated_movies"`
}
