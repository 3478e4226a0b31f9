// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

// Package database wraps DuckDB access to the movie catalog and rating
// store. The catalog is written only by the ingestion pipeline; every
// other component is a read-only consumer.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/config"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
)

// ErrMovieNotFound indicates a movie id absent from the catalog.
var ErrMovieNotFound = errors.New("movie not found")

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// Prepared statement caching
	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex
}

// New creates a new database connection and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:      conn,
		cfg:       cfg,
		stmtCache: make(map[string]*sql.Stmt),
	}

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// NewInMemory creates an in-memory database for tests.
func NewInMemory() (*DB, error) {
	return New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the database connection and all cached statements.
func (db *DB) Close() error {
	db.stmtCacheMu.Lock()
	for _, stmt := range db.stmtCache {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing prepared statement")
			}
		}
	}
	db.stmtCache = make(map[string]*sql.Stmt)
	db.stmtCacheMu.Unlock()

	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// createTables creates the catalog and rating tables if absent.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS movielens_movies (
			movie_id   INTEGER PRIMARY KEY,
			movie_name VARCHAR NOT NULL,
			genres     VARCHAR NOT NULL,
			tmdb_id    INTEGER,
			imdb_id    VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS movielens_ratings (
			movie_id          INTEGER NOT NULL,
			movielens_user_id INTEGER NOT NULL,
			rating            DOUBLE NOT NULL,
			ts                TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_movie_id ON movielens_ratings (movie_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

// prepared returns a cached prepared statement for the given query,
// preparing and caching it on first use.
func (db *DB) prepared(ctx context.Context, query string) (*sql.Stmt, error) {
	db.stmtCacheMu.RLock()
	stmt, ok := db.stmtCache[query]
	db.stmtCacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	stmt, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}

	db.stmtCacheMu.Lock()
	// Another goroutine may have prepared the same query; prefer theirs.
	if existing, ok := db.stmtCache[query]; ok {
		db.stmtCacheMu.Unlock()
		if err := stmt.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing duplicate prepared statement")
		}
		return existing, nil
	}
	db.stmtCache[query] = stmt
	db.stmtCacheMu.Unlock()

	return stmt, nil
}

// closeQuietly closes a connection, logging any error.
func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing database connection")
	}
}
