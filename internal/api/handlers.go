// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/cache"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/database"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/genre"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/ingest"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/recommend"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/resolver"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// DefaultTopN is the recommendation count used when a request omits
// top_n.
const DefaultTopN = 10

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	svc        *recommend.Service
	genreModel *genre.Model
	ingester   *ingest.Ingester
	respCache  *cache.Cache
	db         *database.DB
	validate   *validator.Validate
}

// NewHandlers creates the handler set. genreModel may be nil when no
// model artifact is configured; the predict endpoint then reports the
// feature as unavailable.
func NewHandlers(svc *recommend.Service, genreModel *genre.Model, ingester *ingest.Ingester, respCache *cache.Cache, db *database.DB) *Handlers {
	return &Handlers{
		svc:        svc,
		genreModel: genreModel,
		ingester:   ingester,
		respCache:  respCache,
		db:         db,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RecommendRequest is the body of POST /api/v1/movies/recommend.
// MovieInput accepts a movie id, a movie name, or a mixed list of both.
type RecommendRequest struct {
	MovieInput json.RawMessage `json:"movie_input" validate:"required"`
	TopN       *int            `json:"top_n" validate:"omitempty,gte=0,lte=100"`
}

// effectiveTopN returns the requested recommendation count, falling
// back to DefaultTopN when top_n was omitted.
func (req *RecommendRequest) effectiveTopN() int {
	if req.TopN != nil {
		return *req.TopN
	}
	return DefaultTopN
}

// Recommend handles POST /api/v1/movies/recommend.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RecommendRequest
	if !h.decodeBody(rw, r, &req) {
		return
	}

	input, err := resolver.ParseMovieInput(req.MovieInput)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	results, err := h.svc.Recommend(r.Context(), input, req.effectiveTopN())
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(results)
}

// TopRatedByGenre handles GET /api/v1/movies/{genre}/top_rated.
func (h *Handlers) TopRatedByGenre(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	genreName := chi.URLParam(r, "genre")
	if genreName == "" {
		rw.BadRequest("Genre is required")
		return
	}

	charts, err := h.svc.TopRatedByGenre(r.Context(), genreName)
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(charts)
}

// Popular handles GET /api/v1/movies/popular.
func (h *Handlers) Popular(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	charts, err := h.svc.Popular(r.Context())
	if err != nil {
		respondServiceError(rw, err)
		return
	}
	rw.Success(charts)
}

// PredictGenresRequest is the body of POST /api/v1/genre/predict.
type PredictGenresRequest struct {
	// Gender is 1 for male, 0 for female.
	Gender *int `json:"gender" validate:"required,oneof=0 1"`

	Age        int    `json:"age" validate:"required,gte=1,lte=120"`
	Occupation string `json:"occupation" validate:"required"`
}

// PredictGenresResponse is the payload of a successful prediction.
type PredictGenresResponse struct {
	Genres []string `json:"genres"`
}

// PredictGenres handles POST /api/v1/genre/predict.
func (h *Handlers) PredictGenres(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.genreModel == nil {
		rw.ServiceUnavailable("Genre prediction is not configured")
		return
	}

	var req PredictGenresRequest
	if !h.decodeBody(rw, r, &req) {
		return
	}

	genres, err := h.genreModel.Predict(genre.Profile{
		Gender:     *req.Gender,
		Age:        req.Age,
		Occupation: req.Occupation,
	})
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	rw.Success(PredictGenresResponse{Genres: genres})
}

// Populate handles POST /api/v1/admin/populate. It runs the CSV
// ingestion pipeline and drops the response cache so chart endpoints
// reflect the new data.
func (h *Handlers) Populate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stats, err := h.ingester.Run(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Ingestion failed")
		rw.InternalError("Ingestion failed")
		return
	}

	if stats.InsertedMovies > 0 || stats.InsertedRatings > 0 {
		h.respCache.Clear()
	}
	rw.Success(stats)
}

// Health handles GET /healthz with a database liveness probe.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.db.Ping(r.Context()); err != nil {
		logging.Error().Err(err).Msg("Health check failed")
		rw.ServiceUnavailable("Database unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ok"})
}

// decodeBody decodes and validates a JSON request body, writing the
// error response itself on failure.
func (h *Handlers) decodeBody(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		rw.BadRequest("Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var details []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, fe.Field()+" failed "+fe.Tag()+" validation")
			}
		}
		rw.ValidationError("Request validation failed", details)
		return false
	}
	return true
}
