// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package api

import (
	"errors"
	"net/http"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/recommend"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/resolver"
)

// respondServiceError maps service-layer errors onto HTTP responses.
// Unknown errors become opaque 500s so internals never leak.
func respondServiceError(rw *ResponseWriter, err error) {
	var notFound *resolver.NotFoundError
	var genreNotFound *recommend.GenreNotFoundError

	switch {
	case errors.Is(err, resolver.ErrInvalidInput):
		rw.BadRequest(err.Error())
	case errors.As(err, &notFound):
		rw.NotFound(notFound.Error())
	case errors.As(err, &genreNotFound):
		rw.NotFound(genreNotFound.Error())
	default:
		logging.Error().Err(err).Msg("Request failed")
		rw.Error(http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred")
	}
}
