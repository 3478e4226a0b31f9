// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package metrics provides Prometheus instrumentation for the
// recommendation service: API latency, cache efficiency, outbound OMDB
// calls, and ingestion throughput.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Recommendation metrics
	RecommendationsServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation results returned",
		},
	)

	RecommendationRankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_rank_duration_seconds",
			Help:    "Duration of similarity ranking per query movie",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Detail cache metrics (Badger-backed OMDB document cache)
	DetailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "detail_cache_hits_total",
			Help: "Total number of OMDB detail cache hits",
		},
	)

	DetailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "detail_cache_misses_total",
			Help: "Total number of OMDB detail cache misses",
		},
	)

	// Response cache metrics (in-memory endpoint output cache)
	ResponseCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	ResponseCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "response_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// Outbound OMDB metrics
	OMDBFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omdb_fetches_total",
			Help: "Total number of outbound OMDB API calls",
		},
		[]string{"outcome"}, // "success", "error", "rejected"
	)

	OMDBFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "omdb_fetch_duration_seconds",
			Help:    "Duration of outbound OMDB API calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Ingestion metrics
	IngestRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Total number of rows inserted by the ingestion pipeline",
		},
		[]string{"table"}, // "movies", "ratings"
	)

	IngestChunkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_chunk_duration_seconds",
			Help:    "Duration of a single rating chunk insert and commit",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)
)

// RecordAPIRequest records an API request with its status and duration.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records a database query duration.
func RecordDBQuery(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database query error.
func RecordDBError(operation, table string) {
	DBQueryErrors.WithLabelValues(operation, table).Inc()
}
