// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package main is the entry point for the Popcorn Time recommendation
// server.
//
// The server exposes a REST API over a MovieLens-derived movie catalog:
// item-item similarity recommendations, genre and popularity charts,
// demographic genre prediction, and an administrative ingestion
// endpoint that loads the MovieLens CSV exports into DuckDB.
//
// # Application Architecture
//
// Initialization order:
//
//  1. Configuration: layered load from defaults, config file, and
//     environment variables (Koanf v2)
//  2. Database: DuckDB catalog and rating store
//  3. Artifacts: precomputed similarity index and genre model
//  4. Caches: persistent OMDB detail store (Badger) and in-memory
//     response cache
//  5. HTTP server: chi router under a suture supervision tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (see .env.example)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the
// configured timeout, then closes the caches and the database.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/api"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/cache"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/config"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/database"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/enrich"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/genre"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/ingest"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/recommend"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/resolver"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/similarity"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/supervisor"
)

func main() {
	// Missing .env is fine; environment variables may come from the
	// process environment instead.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Msg("Failed to load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting Popcorn Time server")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Server stopped")
}

func run(cfg *config.Config) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer closeQuietly(db, "database")

	index, err := similarity.Load(cfg.Similarity.ArtifactPath)
	if err != nil {
		return err
	}
	logging.Info().Int("movies", index.Size()).Str("metric", index.Metric()).Msg("Loaded similarity index")

	var genreModel *genre.Model
	if cfg.Genre.ArtifactPath != "" {
		genreModel, err = genre.Load(cfg.Genre.ArtifactPath)
		if err != nil {
			return err
		}
		logging.Info().Int("genres", len(genreModel.Genres())).Msg("Loaded genre model")
	} else {
		logging.Warn().Msg("No genre model configured, prediction endpoint disabled")
	}

	detailStore, err := enrich.NewDetailStore(cfg.Cache.DetailStorePath, cfg.Cache.DetailTTL)
	if err != nil {
		return err
	}
	defer closeQuietly(detailStore, "detail store")

	respCache := cache.New(cfg.Cache.ResponseTTL)

	omdbClient := enrich.NewOMDBClient(cfg.OMDB)
	enricher := enrich.New(omdbClient, detailStore)
	res := resolver.New(db)
	ranker := similarity.NewRanker(index)
	svc := recommend.New(db, res, ranker, enricher)
	ingester := ingest.New(db, cfg.Ingest)

	handlers := api.NewHandlers(svc, genreModel, ingester, respCache, db)
	router := api.NewRouter(handlers, cfg, respCache)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slog.New(slog.NewJSONHandler(os.Stderr, nil)), treeCfg)
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	return nil
}

func closeQuietly(c interface{ Close() error }, what string) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Msg("Failed to close " + what)
	}
}
