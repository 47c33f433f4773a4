// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/middleware"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Limits layered on top of the API-wide limiter.
var (
	// healthLimit is permissive so orchestrators can probe frequently.
	healthLimit = rateLimit{requests: 1000, window: time.Minute}

	// writeLimit applies to preference edits and promotion curation.
	writeLimit = rateLimit{requests: 30, window: time.Minute}
)

type rateLimit struct {
	requests int
	window   time.Duration
}

// routeMiddleware builds the CORS and rate limiting middleware of the router.
type routeMiddleware struct {
	api      rateLimit
	disabled bool
	cors     func(http.Handler) http.Handler
}

func newRouteMiddleware(cfg *config.SecurityConfig) *routeMiddleware {
	return &routeMiddleware{
		api:      rateLimit{requests: cfg.RateLimitReqs, window: cfg.RateLimitWindow},
		disabled: cfg.RateLimitDisabled,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization", DeviceIDHeader, middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         86400,
		}),
	}
}

// CORS returns the go-chi/cors handler.
func (m *routeMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit limits every API route per client IP.
func (m *routeMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(m.api, httprate.KeyByIP)
}

// RateLimitHealth limits the health probes per client IP.
func (m *routeMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limit(healthLimit, httprate.KeyByIP)
}

// RateLimitWrite limits writes per client IP and device. Travelers behind
// one hotel or venue network get separate buckets; the API-wide limiter
// still caps the address as a whole.
func (m *routeMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	return m.limit(writeLimit, httprate.KeyByIP, keyByDevice)
}

func (m *routeMiddleware) limit(l rateLimit, keys ...httprate.KeyFunc) func(http.Handler) http.Handler {
	if m.disabled || l.requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		l.requests,
		l.window,
		httprate.WithKeyFuncs(keys...),
		httprate.WithLimitHandler(rateLimited),
	)
}

func keyByDevice(r *http.Request) (string, error) {
	return r.Header.Get(DeviceIDHeader), nil
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	logging.Ctx(r.Context()).Warn().
		Str("path", sanitizeLogValue(r.URL.Path)).
		Str("remote_addr", r.RemoteAddr).
		Msg("Rate limit exceeded")
	respondError(w, r, http.StatusTooManyRequests, models.ErrCodeRateLimited, "Too many requests", nil)
}

// APISecurityHeaders sets nosniff, frame denial and a strict referrer policy.
// Ranked results are personalized, so nothing may be cached. HSTS is only
// sent over HTTPS, including behind a TLS-terminating proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Cache-Control", "no-store")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
