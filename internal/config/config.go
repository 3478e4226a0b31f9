// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package config loads and validates application configuration from
// layered sources: struct defaults, an optional YAML file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Cache      CacheConfig      `koanf:"cache"`
	OMDB       OMDBConfig       `koanf:"omdb"`
	Ingest     IngestConfig     `koanf:"ingest"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Genre      GenreConfig      `koanf:"genre"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings for the catalog and rating store.
type DatabaseConfig struct {
	// Path is the DuckDB database file; ":memory:" for tests.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// CacheConfig holds settings for the two cache layers: the persistent
// per-movie detail cache (Badger) and the in-memory response cache.
type CacheConfig struct {
	// DetailStorePath is the Badger directory for OMDB documents.
	// Empty uses an in-memory Badger instance.
	DetailStorePath string `koanf:"detail_store_path"`

	// DetailTTL is how long a fetched OMDB document stays fresh.
	DetailTTL time.Duration `koanf:"detail_ttl"`

	// ResponseTTL is the default TTL for cached endpoint responses.
	ResponseTTL time.Duration `koanf:"response_ttl"`
}

// OMDBConfig holds settings for the external detail provider.
type OMDBConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond bounds outbound call rate; 0 disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// IngestConfig holds the MovieLens dataset ingestion settings.
type IngestConfig struct {
	MoviesPath  string `koanf:"movies_path"`
	LinksPath   string `koanf:"links_path"`
	RatingsPath string `koanf:"ratings_path"`

	// BatchSize is the rating rows committed per transaction.
	BatchSize int `koanf:"batch_size"`
}

// SimilarityConfig holds the precomputed similarity artifact settings.
type SimilarityConfig struct {
	// ArtifactPath is the similarity matrix file produced at training
	// time, carrying the id-to-position mapping alongside the rows.
	ArtifactPath string `koanf:"artifact_path"`
}

// GenreConfig holds the genre prediction artifact settings.
type GenreConfig struct {
	ArtifactPath string `koanf:"artifact_path"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret signs and verifies access tokens for user-scoped routes.
	JWTSecret string `koanf:"jwt_secret"`

	// AdminPIN guards the dataset population endpoint.
	AdminPIN string `koanf:"admin_pin"`

	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Cache.DetailTTL < 0 {
		return fmt.Errorf("cache.detail_ttl must not be negative")
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("ingest.batch_size must be positive, got %d", c.Ingest.BatchSize)
	}
	if c.OMDB.Timeout <= 0 {
		return fmt.Errorf("omdb.timeout must be positive")
	}
	if c.Security.RateLimitReqs < 0 {
		return fmt.Errorf("security.rate_limit_reqs must not be negative")
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
