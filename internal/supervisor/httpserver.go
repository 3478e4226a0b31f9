// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
)

// HTTPService runs an *http.Server under the supervision tree. Suture
// expects Serve to block until the context is canceled; ListenAndServe
// blocks until the server is closed. The service bridges the two: the
// server runs in a goroutine, and context cancellation triggers a
// graceful drain bounded by drainTimeout, falling back to a hard close
// when connections outlive it.
type HTTPService struct {
	server       *http.Server
	drainTimeout time.Duration
}

// NewHTTPService wraps the server. drainTimeout bounds how long
// in-flight requests get to finish on shutdown.
func NewHTTPService(server *http.Server, drainTimeout time.Duration) *HTTPService {
	if drainTimeout <= 0 {
		drainTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, drainTimeout: drainTimeout}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	logging.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)

	case <-ctx.Done():
	}

	// ctx is already canceled, so the drain needs its own deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()

	if err := s.server.Shutdown(drainCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP server drain cut short, closing connections")
		if closeErr := s.server.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Failed to close HTTP server")
		}
	}
	<-errCh
	logging.Info().Msg("HTTP server stopped")
	return ctx.Err()
}

// String names the service in suture's event logs.
func (s *HTTPService) String() string {
	return "http-server " + s.server.Addr
}
