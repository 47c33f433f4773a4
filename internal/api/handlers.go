// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/tripmatch/internal/catalog"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/prefstore"
)

// DeviceIDHeader identifies an anonymous traveler's device.
const DeviceIDHeader = "X-Device-ID"

// requestTimeout bounds a single ranking or explain request.
const requestTimeout = 10 * time.Second

// CatalogService is the catalog surface the handlers use. Both
// catalog.Store and catalog.BreakerStore satisfy it.
type CatalogService interface {
	Ping(ctx context.Context) error
	SearchTours(ctx context.Context, destinationID string, f catalog.TourFilters) ([]match.Tour, error)
	SearchRestaurants(ctx context.Context, destinationID string, f catalog.RestaurantFilters) ([]match.Restaurant, error)
	GetTours(ctx context.Context, ids []string) ([]match.Tour, error)
	GetRestaurants(ctx context.Context, ids []string) ([]match.Restaurant, error)
	GetPromotedItems(ctx context.Context, destinationID string, itemType match.ItemType, limit int) ([]match.PromotionEntry, error)
	ReplacePromotions(ctx context.Context, destinationID string, itemType match.ItemType, itemIDs []string) error
}

// PreferenceStore is the preference persistence surface the handlers use.
type PreferenceStore interface {
	GetDevicePreferences(ctx context.Context, deviceID string) (*match.PreferenceInput, error)
	GetProfilePreferences(ctx context.Context, userID string) (*match.PreferenceInput, error)
	PutDevicePreferences(ctx context.Context, deviceID string, prefs *match.PreferenceInput) error
	PutProfilePreferences(ctx context.Context, userID string, prefs *match.PreferenceInput) error
	DeleteDevicePreferences(ctx context.Context, deviceID string) error
	GetRecord(ctx context.Context, scope, id string) (*prefstore.Record, error)
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and request helpers
//   - handlers_health.go: liveness and readiness probes
//   - handlers_rank.go: tour and restaurant ranking
//   - handlers_explain.go: match explanations
//   - handlers_preferences.go: device and profile preferences
//   - handlers_promotions.go: operator curation
type Handler struct {
	catalog   CatalogService
	engine    *match.Engine
	prefs     PreferenceStore
	version   string
	startTime time.Time
	draining  atomic.Bool
}

// NewHandler creates a new API handler.
func NewHandler(catalogSvc CatalogService, engine *match.Engine, prefs PreferenceStore) *Handler {
	return &Handler{
		catalog:   catalogSvc,
		engine:    engine,
		prefs:     prefs,
		startTime: time.Now(),
	}
}

// Drain makes readiness probes fail from now on. It is called when
// shutdown begins so load balancers stop routing before the listener closes.
func (h *Handler) Drain() {
	h.draining.Store(true)
}

// SetVersion sets the version reported by the health endpoints.
func (h *Handler) SetVersion(version string) {
	h.version = version
}
