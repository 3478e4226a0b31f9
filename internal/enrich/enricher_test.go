// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package enrich

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

type fakeFetcher struct {
	calls int64
	fail  bool
}

func (f *fakeFetcher) Fetch(_ context.Context, imdbID string) (*models.OMDBDocument, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.fail {
		return nil, ErrUpstreamUnavailable
	}
	return &models.OMDBDocument{
		Title:    "Fetched " + imdbID,
		Response: "True",
	}, nil
}

func newTestEnricher(t *testing.T, fetcher Fetcher) *Enricher {
	t.Helper()
	store, err := NewDetailStore("", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewDetailStore failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return New(fetcher, store)
}

func imdbMovie(id string) *models.Movie {
	return &models.Movie{MovieID: 1, Name: "Toy Story (1995)", Genres: []string{"Animation"}, IMDBID: &id}
}

func TestEnrichAppliesDocument(t *testing.T) {
	fetcher := &fakeFetcher{}
	e := newTestEnricher(t, fetcher)

	enriched := e.Enrich(context.Background(), imdbMovie("tt0114709"))
	if enriched.OMDBTitle == nil || *enriched.OMDBTitle != "Fetched tt0114709" {
		t.Errorf("OMDBTitle = %v, want Fetched tt0114709", enriched.OMDBTitle)
	}
	if enriched.MovieID != 1 || enriched.Name != "Toy Story (1995)" {
		t.Error("catalog fields were not carried over")
	}
}

func TestEnrichSecondLookupServedFromStore(t *testing.T) {
	fetcher := &fakeFetcher{}
	e := newTestEnricher(t, fetcher)

	e.Enrich(context.Background(), imdbMovie("tt0114709"))
	e.Enrich(context.Background(), imdbMovie("tt0114709"))

	if calls := atomic.LoadInt64(&fetcher.calls); calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
}

func TestEnrichWithoutIMDBID(t *testing.T) {
	fetcher := &fakeFetcher{}
	e := newTestEnricher(t, fetcher)

	enriched := e.Enrich(context.Background(), &models.Movie{MovieID: 2, Name: "Unlinked"})
	if enriched.OMDBTitle != nil {
		t.Error("movie without IMDB id got OMDB fields")
	}
	if calls := atomic.LoadInt64(&fetcher.calls); calls != 0 {
		t.Errorf("upstream calls = %d, want 0", calls)
	}
}

func TestEnrichDegradesOnUpstreamFailure(t *testing.T) {
	fetcher := &fakeFetcher{fail: true}
	e := newTestEnricher(t, fetcher)

	enriched := e.Enrich(context.Background(), imdbMovie("tt0114709"))
	if enriched.OMDBTitle != nil {
		t.Error("failed fetch still populated OMDB fields")
	}
	if enriched.Name != "Toy Story (1995)" {
		t.Error("degraded result lost catalog fields")
	}
}

func TestEnrichDeduplicatesConcurrentLookups(t *testing.T) {
	fetcher := &fakeFetcher{}
	e := newTestEnricher(t, fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Enrich(context.Background(), imdbMovie("tt0114709"))
		}()
	}
	wg.Wait()

	// Followers of an in-flight fetch read the leader's stored result.
	if calls := atomic.LoadInt64(&fetcher.calls); calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
}

func TestFormatIMDBID(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{114709, "tt0114709"},
		{1, "tt0000001"},
		{12345678, "tt12345678"},
	}

	for _, tt := range tests {
		if got := FormatIMDBID(tt.id); got != tt.want {
			t.Errorf("FormatIMDBID(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
