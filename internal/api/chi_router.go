// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tripmatch/internal/auth"
	"github.com/tomtom215/tripmatch/internal/authz"
	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/middleware"
	"github.com/tomtom215/tripmatch/internal/models"
)

// slowRequestThreshold is the latency above which requests are logged at warn.
const slowRequestThreshold = 500 * time.Millisecond

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *routeMiddleware
}

// NewRouter creates a router. cfg supplies CORS and rate limit settings.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMW *authz.Middleware, cfg *config.SecurityConfig) *Router {
	return &Router{
		handler: handler,
		authn:   authn,
		authz:   authzMW,
		chiMiddleware: newRouteMiddleware(cfg),
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)                       // X-Request-ID with logging context
	r.Use(chimiddleware.RealIP)                       // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)                    // Recover from panics
	r.Use(middleware.AccessLog(slowRequestThreshold)) // Structured access log
	r.Use(router.chiMiddleware.CORS())                // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)               // Request metrics by route pattern

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, models.ErrCodeBadRequest, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		// ========================
		// Ranking and Explain
		// ========================
		// Anonymous travelers are ranked on device preferences only
		r.Group(func(r chi.Router) {
			r.Use(router.authn.Optional)
			r.Post("/destinations/{destinationID}/tours/rank", router.handler.RankTours)
			r.Post("/destinations/{destinationID}/restaurants/rank", router.handler.RankRestaurants)
			r.Post("/match/explain", router.handler.ExplainMatch)
		})

		// ========================
		// Preferences
		// ========================
		r.Route("/preferences", func(r chi.Router) {
			r.Get("/device", router.handler.GetDevicePreferences)
			r.With(router.chiMiddleware.RateLimitWrite()).Put("/device", router.handler.PutDevicePreferences)
			r.With(router.chiMiddleware.RateLimitWrite()).Delete("/device", router.handler.DeleteDevicePreferences)

			r.Group(func(r chi.Router) {
				r.Use(router.authn.Require)
				r.Get("/profile", router.handler.GetProfilePreferences)
				r.With(router.chiMiddleware.RateLimitWrite()).Put("/profile", router.handler.PutProfilePreferences)
			})
		})

		// ========================
		// Operator Curation
		// ========================
		r.Route("/admin/destinations/{destinationID}/promotions/{itemType}", func(r chi.Router) {
			r.Use(router.authn.Require)
			r.With(router.authz.Authorize(authz.ObjectPromotions, authz.ActionRead)).
				Get("/", router.handler.GetPromotions)
			r.With(router.chiMiddleware.RateLimitWrite(), router.authz.Authorize(authz.ObjectPromotions, authz.ActionWrite)).
				Put("/", router.handler.PutPromotions)
		})
	})

	return r
}
