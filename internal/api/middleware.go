// Popcorn Time - Movie Recommendation Backend
// Copyright 2026 Savan2508
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/savan2508/Popcorn-time-movie-recommandation

package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/golang-jwt/jwt/v5"

	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/cache"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/config"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/logging"
	"github.com/savan2508/Popcorn-time-movie-recommandation/internal/metrics"
)

// RequestIDWithLogging adds a request ID to the context and to the
// logging context so every log line of a request carries it. Chi's own
// RequestID middleware picks up the same header value.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Metrics records request counts and latencies per route pattern.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			metrics.RecordAPIRequest(r.Method, pattern, ww.Status(), time.Since(start))
		})
	}
}

// CORS builds the CORS handler from the security configuration.
func CORS(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Admin-Pin"},
		MaxAge:         86400,
	})
}

// RateLimit limits requests per client IP using the configured budget.
func RateLimit(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		cfg.RateLimitReqs,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
		}),
	)
}

// AdminAuth guards administrative endpoints. A request passes with
// either the admin PIN header or a bearer token signed with the
// configured secret carrying an admin role claim. With neither secret
// configured the endpoint is disabled outright.
func AdminAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.AdminPIN == "" && cfg.JWTSecret == "" {
				NewResponseWriter(w, r).Unauthorized("Administrative endpoints are not configured")
				return
			}

			if pin := r.Header.Get("X-Admin-Pin"); pin != "" && cfg.AdminPIN != "" {
				if subtle.ConstantTimeCompare([]byte(pin), []byte(cfg.AdminPIN)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
				logging.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected admin request: bad PIN")
				NewResponseWriter(w, r).Unauthorized("Invalid admin credentials")
				return
			}

			if token := bearerToken(r); token != "" && cfg.JWTSecret != "" {
				if err := verifyAdminToken(token, cfg.JWTSecret); err != nil {
					logging.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Rejected admin request: bad token")
					NewResponseWriter(w, r).Unauthorized("Invalid admin credentials")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			NewResponseWriter(w, r).Unauthorized("Admin credentials required")
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func verifyAdminToken(tokenString, secret string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("unexpected claims type")
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return fmt.Errorf("token lacks admin role")
	}
	return nil
}

// cachedResponse is the payload stored by the response cache.
type cachedResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// bodyRecorder tees the response so a successful body can be cached.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (rec *bodyRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *bodyRecorder) Write(p []byte) (int, error) {
	rec.body = append(rec.body, p...)
	return rec.ResponseWriter.Write(p)
}

// CacheResponse serves whole GET responses from the response cache.
// ttl > 0 expires entries after that duration; ttl == 0 stores them
// until explicitly invalidated, used for catalog-derived charts that
// only change on re-ingestion.
func CacheResponse(c *cache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := cache.RequestKey(r.Method, r.URL.Path, r.URL.RawQuery)
			if value, ok := c.Get(key); ok {
				if resp, ok := value.(cachedResponse); ok {
					metrics.ResponseCacheHits.Inc()
					w.Header().Set("Content-Type", resp.ContentType)
					w.Header().Set("X-Cache", "HIT")
					w.WriteHeader(resp.Status)
					if _, err := w.Write(resp.Body); err != nil {
						logging.Debug().Err(err).Msg("Failed to write cached response")
					}
					return
				}
			}
			metrics.ResponseCacheMisses.Inc()

			rec := &bodyRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK {
				resp := cachedResponse{
					Status:      rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body,
				}
				if ttl > 0 {
					c.SetWithTTL(key, resp, ttl)
				} else {
					c.SetPersistent(key, resp)
				}
			}
		})
	}
}
