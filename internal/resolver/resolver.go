// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package resolver

import (
	"context"
	"fmt"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/models"
)

// CatalogSearcher is the catalog surface the resolver needs.
type CatalogSearcher interface {
	SearchMoviesByName(ctx context.Context, name string) ([]models.Movie, error)
}

// Resolver expands movie input into canonical movie ids against the
// catalog.
type Resolver struct {
	catalog CatalogSearcher
}

// New creates a Resolver backed by the given catalog.
func New(catalog CatalogSearcher) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve expands the input into movie ids. Literal ids pass through
// without existence checks, in their input order; each name expands to
// every catalog movie whose name contains it (case-insensitive), in
// catalog order. Ids come first in the result, then name matches.
// A name matching nothing fails the whole resolution with a
// NotFoundError naming it.
func (r *Resolver) Resolve(ctx context.Context, input MovieInput) ([]int, error) {
	ids := make([]int, 0, len(input.terms))
	for _, term := range input.terms {
		if term.kind == TermID {
			ids = append(ids, term.id)
		}
	}

	for _, term := range input.terms {
		if term.kind != TermName {
			continue
		}
		matches, err := r.catalog.SearchMoviesByName(ctx, term.name)
		if err != nil {
			return nil, fmt.Errorf("failed to search catalog for %q: %w", term.name, err)
		}
		if len(matches) == 0 {
			return nil, &NotFoundError{Name: term.name}
		}
		logging.Ctx(ctx).Debug().
			Str("name", term.name).
			Int("matches", len(matches)).
			Msg("Resolved movie name")
		for _, m := range matches {
			ids = append(ids, m.MovieID)
		}
	}

	return ids, nil
}
