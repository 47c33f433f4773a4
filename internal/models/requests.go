// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package models

import (
	"github.com/tomtom215/tripmatch/internal/catalog"
	"github.com/tomtom215/tripmatch/internal/match"
)

// RankToursRequest is the body of POST /destinations/{id}/tours/rank.
//
// Preferences, when present, is an in-flight edit layered over the stored
// device preferences. It is treated as the most recent device state and is
// not persisted.
type RankToursRequest struct {
	Filters     catalog.TourFilters    `json:"filters"`
	Preferences *match.PreferenceInput `json:"preferences,omitempty"`
	PageSize    int                    `json:"page_size" validate:"omitempty,min=1,max=50"`
}

// RankRestaurantsRequest is the body of POST /destinations/{id}/restaurants/rank.
type RankRestaurantsRequest struct {
	Filters     catalog.RestaurantFilters `json:"filters"`
	Preferences RestaurantPreferences     `json:"preferences"`
	PageSize    int                       `json:"page_size" validate:"omitempty,min=1,max=50"`
}

// RestaurantPreferences is the client form of match.RestaurantPreferences.
// Unknown enum values are accepted and treated as "any" by the engine;
// only the price range has a closed vocabulary clients must respect.
type RestaurantPreferences struct {
	PriceRange  string   `json:"price_range" validate:"omitempty,price_level"`
	Atmosphere  string   `json:"atmosphere" validate:"omitempty,max=32"`
	DiningStyle *int     `json:"dining_style,omitempty"`
	MealTime    string   `json:"meal_time" validate:"omitempty,max=32"`
	GroupSize   string   `json:"group_size" validate:"omitempty,max=32"`
	Features    []string `json:"features" validate:"max=20,dive,max=64"`
}

// ToMatch converts the request form to the engine's type.
func (p RestaurantPreferences) ToMatch() match.RestaurantPreferences {
	return match.RestaurantPreferences{
		PriceRange:  p.PriceRange,
		Atmosphere:  p.Atmosphere,
		DiningStyle: p.DiningStyle,
		MealTime:    p.MealTime,
		GroupSize:   p.GroupSize,
		Features:    p.Features,
	}
}

// ExplainRequest is the body of POST /match/explain.
type ExplainRequest struct {
	ItemType              match.ItemType         `json:"item_type" validate:"required,item_type"`
	ItemID                string                 `json:"item_id" validate:"required,catalog_id"`
	Preferences           *match.PreferenceInput `json:"preferences,omitempty"`
	RestaurantPreferences *RestaurantPreferences `json:"restaurant_preferences,omitempty"`
}

// PreferencesRequest is the body of PUT /preferences/device and /preferences/profile.
type PreferencesRequest struct {
	Preferences match.PreferenceInput `json:"preferences"`
}

// PromotionsRequest is the body of PUT /admin/destinations/{id}/promotions/{type}.
// Order is display order; duplicates keep their first position.
type PromotionsRequest struct {
	ItemIDs []string `json:"item_ids" validate:"max=20,dive,required,catalog_id"`
}
