// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package enrich decorates catalog movies with metadata from the OMDB
// API. Fetched documents are cached in a persistent key-value store
// with a TTL so repeat lookups within the window never leave the
// process. Enrichment is strictly best-effort: upstream failures
// degrade the response to catalog-only fields, they never fail it.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/config"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/metrics"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

// ErrUpstreamUnavailable indicates the OMDB API could not serve a
// lookup: network failure, non-2xx status, open circuit breaker, or an
// OMDB-level error payload. Callers treat it as a degradation signal,
// not a request failure.
var ErrUpstreamUnavailable = errors.New("omdb upstream unavailable")

const maxResponseBytes = 1 << 20 // 1 MiB, OMDB documents are a few KB

// FormatIMDBID renders a numeric IMDB id in OMDB's canonical form:
// "tt" followed by the id zero-padded to at least seven digits.
// 114709 becomes "tt0114709"; ids already eight or more digits keep
// their full width.
func FormatIMDBID(id int) string {
	return fmt.Sprintf("tt%07d", id)
}

// OMDBClient fetches movie documents from the OMDB HTTP API. Outbound
// calls are rate limited and wrapped in a circuit breaker so a slow or
// failing upstream cannot stall request handling.
type OMDBClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*models.OMDBDocument]
}

// NewOMDBClient creates a client from the OMDB configuration section.
func NewOMDBClient(cfg config.OMDBConfig) *OMDBClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	settings := gobreaker.Settings{
		Name:    "omdb",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &OMDBClient{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), int(math.Ceil(rps))),
		breaker: gobreaker.NewCircuitBreaker[*models.OMDBDocument](settings),
	}
}

// Fetch retrieves the OMDB document for an IMDB id ("tt0114709").
// Returns ErrUpstreamUnavailable (wrapped) on any transport, status,
// or payload-level failure.
func (c *OMDBClient) Fetch(ctx context.Context, imdbID string) (*models.OMDBDocument, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.OMDBFetchesTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrUpstreamUnavailable, err)
	}

	doc, err := c.breaker.Execute(func() (*models.OMDBDocument, error) {
		return c.fetch(ctx, imdbID)
	})
	metrics.OMDBFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.OMDBFetchesTotal.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		metrics.OMDBFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.OMDBFetchesTotal.WithLabelValues("success").Inc()
	return doc, nil
}

func (c *OMDBClient) fetch(ctx context.Context, imdbID string) (*models.OMDBDocument, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "full")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Debug().Err(cerr).Msg("Failed to close OMDB response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnavailable, err)
	}

	var doc models.OMDBDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrUpstreamUnavailable, err)
	}
	if doc.Response != "True" {
		return nil, fmt.Errorf("%w: omdb error for %s: %s", ErrUpstreamUnavailable, imdbID, doc.Error)
	}

	return &doc, nil
}
