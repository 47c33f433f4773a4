// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"context"
	"fmt"
)

// ExplainTour returns the full score breakdown for one tour.
func (e *Engine) ExplainTour(ctx context.Context, tour *Tour, pref *PreferenceVector) (*Explanation, error) {
	if tour == nil {
		return nil, fmt.Errorf("%w: nil tour", ErrUnsupportedItem)
	}
	traits := e.traits.FetchTraits(ctx, tour.TagIDs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile := e.aggregator.Aggregate(tour.TagIDs, traits)
	res, axes, reasons := e.scorer.Explain(OrDefault(pref), profile)
	return &Explanation{
		ItemID:     tour.ID,
		ItemType:   ItemTypeTour,
		Score:      res.Score,
		Confidence: res.Confidence,
		Reasons:    reasons,
		Axes:       axes,
	}, nil
}

// ExplainRestaurant returns the field-by-field breakdown for one restaurant.
func (e *Engine) ExplainRestaurant(r *Restaurant, prefs RestaurantPreferences) *Explanation {
	values := DeriveStructuredValues(r)
	res := e.categorical.Score(prefs, values)
	ex := &Explanation{
		ItemType:   ItemTypeRestaurant,
		Score:      res.Score,
		Confidence: res.Confidence,
		Reasons:    res.Reasons,
	}
	if r != nil {
		ex.ItemID = r.ID
	}
	return ex
}

// ExplainMatch dispatches on the item kind. Tours accept a
// *PreferenceVector, a PreferenceVector or nil; restaurants accept
// RestaurantPreferences or nil.
func (e *Engine) ExplainMatch(ctx context.Context, item, prefs any) (*Explanation, error) {
	switch it := item.(type) {
	case Tour:
		return e.explainTourPrefs(ctx, &it, prefs)
	case *Tour:
		return e.explainTourPrefs(ctx, it, prefs)
	case Restaurant:
		return e.explainRestaurantPrefs(&it, prefs)
	case *Restaurant:
		return e.explainRestaurantPrefs(it, prefs)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedItem, item)
	}
}

func (e *Engine) explainTourPrefs(ctx context.Context, t *Tour, prefs any) (*Explanation, error) {
	switch p := prefs.(type) {
	case nil:
		return e.ExplainTour(ctx, t, nil)
	case *PreferenceVector:
		return e.ExplainTour(ctx, t, p)
	case PreferenceVector:
		return e.ExplainTour(ctx, t, &p)
	default:
		return nil, fmt.Errorf("%w: tour preferences of type %T", ErrUnsupportedItem, prefs)
	}
}

func (e *Engine) explainRestaurantPrefs(r *Restaurant, prefs any) (*Explanation, error) {
	switch p := prefs.(type) {
	case nil:
		return e.ExplainRestaurant(r, RestaurantPreferences{}), nil
	case RestaurantPreferences:
		return e.ExplainRestaurant(r, p), nil
	case *RestaurantPreferences:
		if p == nil {
			return e.ExplainRestaurant(r, RestaurantPreferences{}), nil
		}
		return e.ExplainRestaurant(r, *p), nil
	default:
		return nil, fmt.Errorf("%w: restaurant preferences of type %T", ErrUnsupportedItem, prefs)
	}
}
