// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/cache"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/config"
)

// NewRouter assembles the chi router: global middleware, the v1 API,
// and the operational endpoints. Chart endpoints sit behind the
// response cache; a zero ResponseTTL keeps their entries until the
// next ingestion run clears them.
func NewRouter(h *Handlers, cfg *config.Config, respCache *cache.Cache) chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(Metrics())
	r.Use(CORS(cfg.Security))
	r.Use(RateLimit(cfg.Security))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/movies/recommend", h.Recommend)
		r.Post("/genre/predict", h.PredictGenres)

		r.Group(func(r chi.Router) {
			r.Use(CacheResponse(respCache, cfg.Cache.ResponseTTL))
			r.Get("/movies/popular", h.Popular)
			r.Get("/movies/{genre}/top_rated", h.TopRatedByGenre)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuth(cfg.Security))
			r.Post("/populate", h.Populate)
		})
	})

	return r
}
