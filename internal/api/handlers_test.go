// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/cache"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/config"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/database"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/enrich"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/genre"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/ingest"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/recommend"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/resolver"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/similarity"
)

type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context, string) (*models.OMDBDocument, error) {
	return nil, enrich.ErrUpstreamUnavailable
}

type testServer struct {
	router http.Handler
	db     *database.DB
	cache  *cache.Cache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	movies := []models.Movie{
		{MovieID: 1, Name: "Toy Story (1995)", Genres: []string{"Animation", "Comedy"}},
		{MovieID: 2, Name: "Jumanji (1995)", Genres: []string{"Adventure"}},
	}
	if err := db.InsertMovies(context.Background(), movies); err != nil {
		t.Fatalf("InsertMovies failed: %v", err)
	}

	index, err := similarity.Parse([]byte(`{
		"version": 1,
		"movie_ids": [1, 2],
		"rows": [
			[{"position":0,"score":1.0},{"position":1,"score":0.3}],
			[{"position":0,"score":0.3},{"position":1,"score":1.0}]
		]
	}`))
	if err != nil {
		t.Fatalf("Parse similarity artifact failed: %v", err)
	}

	genreModel, err := genre.Parse([]byte(`{
		"version": 1,
		"age_buckets": ["1", "18", "25", "35", "45", "50", "56"],
		"occupations": ["student"],
		"genres": ["Action"],
		"weights": [[1.0, 0, 0, 0, 0, 0, 0, 0, 0.5]],
		"intercepts": [0.0]
	}`))
	if err != nil {
		t.Fatalf("Parse genre artifact failed: %v", err)
	}

	store, err := enrich.NewDetailStore("", time.Hour)
	if err != nil {
		t.Fatalf("NewDetailStore failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close store failed: %v", err)
		}
	})

	respCache := cache.New(5 * time.Minute)
	svc := recommend.New(db, resolver.New(db), similarity.NewRanker(index), enrich.New(offlineFetcher{}, store))
	ingester := ingest.New(db, ingestFixtures(t))

	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Cache:  config.CacheConfig{ResponseTTL: 5 * time.Minute},
		Security: config.SecurityConfig{
			AdminPIN:    "1234",
			CORSOrigins: []string{"*"},
		},
	}

	handlers := NewHandlers(svc, genreModel, ingester, respCache, db)
	return &testServer{
		router: NewRouter(handlers, cfg, respCache),
		db:     db,
		cache:  respCache,
	}
}

func ingestFixtures(t *testing.T) config.IngestConfig {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"movies.csv":  "movieId,title,genres\n3,Heat (1995),Action|Crime\n",
		"links.csv":   "movieId,imdbId,tmdbId\n3,0113277,949\n",
		"ratings.csv": "userId,movieId,rating,timestamp\n1,3,4.0,964982703\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return config.IngestConfig{
		MoviesPath:  filepath.Join(dir, "movies.csv"),
		LinksPath:   filepath.Join(dir, "links.csv"),
		RatingsPath: filepath.Join(dir, "ratings.csv"),
		BatchSize:   100,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return resp
}

func TestRecommendEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/movies/recommend", `{"movie_input": 1, "top_n": 1}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("response not successful: %+v", resp.Error)
	}

	groups, ok := resp.Data.([]interface{})
	if !ok || len(groups) != 1 {
		t.Fatalf("data = %v, want one recommendation group", resp.Data)
	}
}

func TestRecommendEndpointByName(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/movies/recommend", `{"movie_input": "jumanji"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRecommendRequestTopNDefault(t *testing.T) {
	req := RecommendRequest{}
	if got := req.effectiveTopN(); got != 10 {
		t.Errorf("default top_n = %d, want 10", got)
	}

	one := 1
	req.TopN = &one
	if got := req.effectiveTopN(); got != 1 {
		t.Errorf("explicit top_n = %d, want 1", got)
	}

	zero := 0
	req.TopN = &zero
	if got := req.effectiveTopN(); got != 0 {
		t.Errorf("zero top_n = %d, want 0", got)
	}
}

func TestRecommendEndpointInvalidInput(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"fractional id", `{"movie_input": 3.7}`, http.StatusBadRequest},
		{"object movie", `{"movie_input": {"id": 1}}`, http.StatusBadRequest},
		{"missing movie", `{"top_n": 5}`, http.StatusBadRequest},
		{"unknown name", `{"movie_input": "no such movie"}`, http.StatusNotFound},
		{"negative top_n", `{"movie_input": 1, "top_n": -1}`, http.StatusBadRequest},
		{"malformed json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/movies/recommend", tt.body, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestTopRatedEndpointUnknownGenre(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/movies/no-such-genre/top_rated", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTopRatedEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/movies/animation/top_rated", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPopularEndpointCachesResponse(t *testing.T) {
	ts := newTestServer(t)

	first := ts.do(t, http.MethodGet, "/api/v1/movies/popular", "", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", first.Code, first.Body.String())
	}
	if first.Header().Get("X-Cache") == "HIT" {
		t.Error("first request was served from cache")
	}

	second := ts.do(t, http.MethodGet, "/api/v1/movies/popular", "", nil)
	if second.Code != http.StatusOK {
		t.Fatalf("status = %d on cached request", second.Code)
	}
	if second.Header().Get("X-Cache") != "HIT" {
		t.Error("second request missed the response cache")
	}
	if second.Body.String() != first.Body.String() {
		t.Error("cached body differs from the original response")
	}
}

func TestPredictEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/genre/predict",
		`{"gender": 1, "age": 16, "occupation": "student"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %v", resp.Data)
	}
	genres, ok := data["genres"].([]interface{})
	if !ok || len(genres) != 1 || genres[0] != "Action" {
		t.Errorf("genres = %v, want [Action]", data["genres"])
	}
}

func TestPredictEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad gender", `{"gender": 2, "age": 16, "occupation": "student"}`},
		{"missing age", `{"gender": 1, "occupation": "student"}`},
		{"missing occupation", `{"gender": 1, "age": 16}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/genre/predict", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPredictEndpointUnknownOccupation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/genre/predict",
		`{"gender": 1, "age": 16, "occupation": "astronaut"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPopulateEndpointRequiresCredentials(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/populate", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/populate", "", map[string]string{"X-Admin-Pin": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status with bad PIN = %d, want 401", rec.Code)
	}
}

func TestPopulateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/admin/populate", "", map[string]string{"X-Admin-Pin": "1234"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// The catalog was seeded by the test server, so movies are skipped
	// while the empty rating table is loaded.
	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %v", resp.Data)
	}
	if skipped, _ := data["movies_skipped"].(bool); !skipped {
		t.Error("populated catalog was not reported as skipped")
	}
	if inserted, _ := data["inserted_ratings"].(float64); inserted != 1 {
		t.Errorf("inserted_ratings = %v, want 1", data["inserted_ratings"])
	}
}

func TestPopulateInvalidatesResponseCache(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodGet, "/api/v1/movies/popular", "", nil)
	ts.do(t, http.MethodPost, "/api/v1/admin/populate", "", map[string]string{"X-Admin-Pin": "1234"})

	rec := ts.do(t, http.MethodGet, "/api/v1/movies/popular", "", nil)
	if rec.Header().Get("X-Cache") == "HIT" {
		t.Error("response cache survived ingestion")
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
