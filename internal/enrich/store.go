// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package enrich

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

// DetailStore persists fetched OMDB documents keyed by IMDB id, each
// entry carrying a TTL so stale metadata ages out without a sweeper.
type DetailStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewDetailStore opens (or creates) a detail store at path. An empty
// path opens an in-memory store, used by tests and by deployments that
// do not want cached metadata to survive restarts.
func NewDetailStore(path string, ttl time.Duration) (*DetailStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create detail store directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open detail store: %w", err)
	}

	return &DetailStore{db: db, ttl: ttl}, nil
}

// Get returns the cached document for an IMDB id, or (nil, nil) when
// absent or expired.
func (s *DetailStore) Get(imdbID string) (*models.OMDBDocument, error) {
	var doc *models.OMDBDocument
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(imdbID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var d models.OMDBDocument
			if err := json.Unmarshal(val, &d); err != nil {
				return err
			}
			doc = &d
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read detail store: %w", err)
	}
	return doc, nil
}

// Set stores a document under an IMDB id with the store's TTL.
func (s *DetailStore) Set(imdbID string, doc *models.OMDBDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode omdb document: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(imdbID), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("failed to write detail store: %w", err)
	}
	return nil
}

// Close releases the underlying store.
func (s *DetailStore) Close() error {
	return s.db.Close()
}
