// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package enrich

import (
	"context"
	"sync"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/metrics"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

// Fetcher is the upstream lookup surface. Satisfied by OMDBClient.
type Fetcher interface {
	Fetch(ctx context.Context, imdbID string) (*models.OMDBDocument, error)
}

// Enricher turns a catalog movie into an EnrichedMovie by merging in
// the cached (or freshly fetched) OMDB document. Concurrent lookups of
// the same id are deduplicated so a cache miss triggers one upstream
// call at most.
type Enricher struct {
	fetcher Fetcher
	store   *DetailStore

	mu       sync.Mutex
	inflight map[string]*sync.WaitGroup
}

// New creates an Enricher over an upstream fetcher and a detail store.
func New(fetcher Fetcher, store *DetailStore) *Enricher {
	return &Enricher{
		fetcher:  fetcher,
		store:    store,
		inflight: make(map[string]*sync.WaitGroup),
	}
}

// Enrich decorates a movie with OMDB metadata. Movies without an IMDB
// id, cache faults, and upstream failures all degrade to the bare
// catalog fields; Enrich never returns an error because enrichment is
// optional by contract.
func (e *Enricher) Enrich(ctx context.Context, movie *models.Movie) models.EnrichedMovie {
	enriched := models.NewEnrichedMovie(movie)
	if movie.IMDBID == nil {
		return enriched
	}

	doc := e.lookup(ctx, *movie.IMDBID)
	if doc != nil {
		enriched.ApplyOMDB(doc)
	}
	return enriched
}

// lookup returns the OMDB document for an IMDB id, consulting the
// store before the upstream. Returns nil when the document cannot be
// obtained.
func (e *Enricher) lookup(ctx context.Context, imdbID string) *models.OMDBDocument {
	if doc := e.cached(imdbID); doc != nil {
		return doc
	}

	wg, leader := e.join(imdbID)
	if !leader {
		wg.Wait()
		// The leader either populated the store or failed; one more
		// cache read settles which, without a second fetch.
		return e.cached(imdbID)
	}

	doc := e.fetch(ctx, imdbID)
	e.leave(imdbID, wg)
	return doc
}

func (e *Enricher) cached(imdbID string) *models.OMDBDocument {
	doc, err := e.store.Get(imdbID)
	if err != nil {
		logging.Warn().Err(err).Str("imdb_id", imdbID).Msg("Detail store read failed")
		return nil
	}
	if doc == nil {
		metrics.DetailCacheMisses.Inc()
		return nil
	}
	metrics.DetailCacheHits.Inc()
	return doc
}

func (e *Enricher) fetch(ctx context.Context, imdbID string) *models.OMDBDocument {
	doc, err := e.fetcher.Fetch(ctx, imdbID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("imdb_id", imdbID).Msg("OMDB lookup failed, serving catalog fields only")
		return nil
	}
	if err := e.store.Set(imdbID, doc); err != nil {
		logging.Warn().Err(err).Str("imdb_id", imdbID).Msg("Detail store write failed")
	}
	return doc
}

// join registers interest in an in-flight fetch for imdbID. The first
// caller becomes the leader and performs the fetch; followers wait on
// the returned WaitGroup.
func (e *Enricher) join(imdbID string) (*sync.WaitGroup, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if wg, ok := e.inflight[imdbID]; ok {
		return wg, false
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	e.inflight[imdbID] = wg
	return wg, true
}

func (e *Enricher) leave(imdbID string, wg *sync.WaitGroup) {
	e.mu.Lock()
	delete(e.inflight, imdbID)
	e.mu.Unlock()
	wg.Done()
}
