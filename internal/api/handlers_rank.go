// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tripmatch/internal/auth"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/models"
	"github.com/tomtom215/tripmatch/internal/prefstore"
)

// RankTours handles POST /api/v1/destinations/{destinationID}/tours/rank
// Returns the promoted and organic tours of a destination ordered for the
// requesting traveler.
func (h *Handler) RankTours(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	destinationID := chi.URLParam(r, "destinationID")
	if !pathID(destinationID) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Invalid destination ID", nil)
		return
	}

	var req models.RankToursRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(logging.WithDestination(r.Context(), destinationID), requestTimeout)
	defer cancel()

	pref, err := h.resolvePreferences(ctx, r, req.Preferences)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	tours, err := h.catalog.SearchTours(ctx, destinationID, req.Filters)
	if err != nil {
		respondServiceError(w, r, asCatalogError(err))
		return
	}

	ranking, err := h.engine.RankTours(ctx, destinationID, pref, tours, match.WithPageSize(req.PageSize))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, start, models.RankingResponse{
		DestinationID: destinationID,
		ItemType:      match.ItemTypeTour,
		Promoted:      nonNilItems(ranking.Promoted),
		Ranked:        nonNilItems(ranking.Ranked),
		Candidates:    len(tours),
		Personalized:  pref != nil,
	})
}

// RankRestaurants handles POST /api/v1/destinations/{destinationID}/restaurants/rank
// Restaurants are matched on structured fields against the request's
// restaurant preferences; stored axis preferences do not apply.
func (h *Handler) RankRestaurants(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	destinationID := chi.URLParam(r, "destinationID")
	if !pathID(destinationID) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Invalid destination ID", nil)
		return
	}

	var req models.RankRestaurantsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(logging.WithDestination(r.Context(), destinationID), requestTimeout)
	defer cancel()

	restaurants, err := h.catalog.SearchRestaurants(ctx, destinationID, req.Filters)
	if err != nil {
		respondServiceError(w, r, asCatalogError(err))
		return
	}

	prefs := match.NormalizeRestaurantPreferences(req.Preferences.ToMatch())
	ranking, err := h.engine.RankRestaurants(ctx, destinationID, prefs, restaurants, match.WithPageSize(req.PageSize))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, r, start, models.RankingResponse{
		DestinationID: destinationID,
		ItemType:      match.ItemTypeRestaurant,
		Promoted:      nonNilItems(ranking.Promoted),
		Ranked:        nonNilItems(ranking.Ranked),
		Candidates:    len(restaurants),
		Personalized:  hasRestaurantPreferences(&req.Preferences),
	})
}

// resolvePreferences builds the tour preference vector for a request.
//
// The body override is layered on the stored device preferences as the most
// recent device edit, and profile preferences are consulted when the request
// carries a valid bearer token. A malformed device id is a client error; a
// failing preference store only loses personalization.
func (h *Handler) resolvePreferences(ctx context.Context, r *http.Request, override *match.PreferenceInput) (*match.PreferenceVector, error) {
	var device, profile *match.PreferenceInput

	if deviceID := r.Header.Get(DeviceIDHeader); deviceID != "" {
		stored, err := h.prefs.GetDevicePreferences(ctx, deviceID)
		switch {
		case errors.Is(err, prefstore.ErrInvalidKey):
			return nil, err
		case err != nil:
			logging.Ctx(ctx).Warn().Err(err).Msg("Device preferences unavailable, continuing without them")
		default:
			device = stored
		}
	}
	device = match.Merge(device, override.Normalize())

	subject, signedIn := auth.SubjectFromContext(r.Context())
	if signedIn {
		stored, err := h.prefs.GetProfilePreferences(ctx, subject.ProfileID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Profile preferences unavailable, continuing without them")
		} else {
			profile = stored
		}
	}

	return match.Resolve(profile, device, signedIn), nil
}

// hasRestaurantPreferences reports whether the traveler expressed any
// restaurant preference beyond "any".
func hasRestaurantPreferences(p *models.RestaurantPreferences) bool {
	for _, v := range []string{p.PriceRange, p.Atmosphere, p.MealTime, p.GroupSize} {
		if v != "" && !strings.EqualFold(v, match.AnyValue) {
			return true
		}
	}
	return p.DiningStyle != nil || len(p.Features) > 0
}

func nonNilItems(items []match.ScoredItem) []match.ScoredItem {
	if items == nil {
		return []match.ScoredItem{}
	}
	return items
}
