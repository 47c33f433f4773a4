// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/models"
)

// ExplainMatch handles POST /api/v1/match/explain
// Returns the score breakdown of one item for the requesting traveler.
func (h *Handler) ExplainMatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ExplainRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		explanation *match.Explanation
		err         error
	)
	switch req.ItemType {
	case match.ItemTypeTour:
		explanation, err = h.explainTour(ctx, r, &req)
	case match.ItemTypeRestaurant:
		explanation, err = h.explainRestaurant(ctx, &req)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, start, explanation)
}

func (h *Handler) explainTour(ctx context.Context, r *http.Request, req *models.ExplainRequest) (*match.Explanation, error) {
	pref, err := h.resolvePreferences(ctx, r, req.Preferences)
	if err != nil {
		return nil, err
	}

	tours, err := h.catalog.GetTours(ctx, []string{req.ItemID})
	if err != nil {
		return nil, asCatalogError(err)
	}
	if len(tours) == 0 {
		return nil, fmt.Errorf("%w: tour %s", ErrItemNotFound, req.ItemID)
	}

	return h.engine.ExplainTour(ctx, &tours[0], pref)
}

func (h *Handler) explainRestaurant(ctx context.Context, req *models.ExplainRequest) (*match.Explanation, error) {
	restaurants, err := h.catalog.GetRestaurants(ctx, []string{req.ItemID})
	if err != nil {
		return nil, asCatalogError(err)
	}
	if len(restaurants) == 0 {
		return nil, fmt.Errorf("%w: restaurant %s", ErrItemNotFound, req.ItemID)
	}

	var prefs match.RestaurantPreferences
	if req.RestaurantPreferences != nil {
		prefs = req.RestaurantPreferences.ToMatch()
	}
	return h.engine.ExplainRestaurant(&restaurants[0], match.NormalizeRestaurantPreferences(prefs)), nil
}
