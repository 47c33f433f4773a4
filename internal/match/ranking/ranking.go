// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package ranking implements the per-item-type promotion policies.
package ranking

import (
	"sort"

	"github.com/tomtom215/tripmatch/internal/match"
)

// TourRanker keeps promoted tours in their own section and never lets
// promotion affect the main list, which is ordered purely by match.
type TourRanker struct {
	sectionCap int
}

// NewTourRanker creates a tour ranker whose promoted section holds at
// most sectionCap items. A non-positive cap uses the default of 6.
func NewTourRanker(sectionCap int) *TourRanker {
	if sectionCap <= 0 {
		sectionCap = match.TourPromotedSectionCap
	}
	return &TourRanker{sectionCap: sectionCap}
}

// ItemType returns the handled item type.
func (r *TourRanker) ItemType() match.ItemType {
	return match.ItemTypeTour
}

// Assemble builds the promoted section in operator order and the ranked
// list by score alone.
//
//nolint:gocritic // rangeValCopy: ScoredItem copied intentionally to avoid mutating inputs
func (r *TourRanker) Assemble(organic, promoted []match.ScoredItem, pageSize int) match.Ranking {
	section := dedupe(promoted)
	if len(section) > r.sectionCap {
		section = section[:r.sectionCap]
	}
	promotedIDs := make(map[string]struct{}, len(section))
	for i := range section {
		section[i].Promoted = true
		promotedIDs[section[i].ItemID] = struct{}{}
	}

	ranked := dedupe(organic)
	for i := range ranked {
		_, ranked[i].Promoted = promotedIDs[ranked[i].ItemID]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return match.Less(ranked[i], ranked[j]) })

	return match.Ranking{
		Promoted: section,
		Ranked:   truncate(ranked, pageSize),
	}
}

// RestaurantRanker moves promoted restaurants to the front of the main
// list as a group. Only promoted restaurants with a non-zero score are
// lifted; a zero score means the record could not be evaluated.
type RestaurantRanker struct {
	promotedCap int
}

// NewRestaurantRanker creates a restaurant ranker that considers at most
// promotedCap promoted items. A non-positive cap uses the default of 20.
func NewRestaurantRanker(promotedCap int) *RestaurantRanker {
	if promotedCap <= 0 {
		promotedCap = match.PromotionLimit
	}
	return &RestaurantRanker{promotedCap: promotedCap}
}

// ItemType returns the handled item type.
func (r *RestaurantRanker) ItemType() match.ItemType {
	return match.ItemTypeRestaurant
}

// Assemble merges both sets, then orders promoted-first and by score
// within each group.
//
//nolint:gocritic // rangeValCopy: ScoredItem copied intentionally to avoid mutating inputs
func (r *RestaurantRanker) Assemble(organic, promoted []match.ScoredItem, pageSize int) match.Ranking {
	promo := dedupe(promoted)
	if len(promo) > r.promotedCap {
		promo = promo[:r.promotedCap]
	}
	promotedIDs := make(map[string]struct{}, len(promo))
	for i := range promo {
		promo[i].Promoted = true
		promotedIDs[promo[i].ItemID] = struct{}{}
	}

	merged := make([]match.ScoredItem, 0, len(promo)+len(organic))
	merged = append(merged, promo...)
	for _, item := range dedupe(organic) {
		if _, ok := promotedIDs[item.ItemID]; ok {
			continue
		}
		item.Promoted = false
		merged = append(merged, item)
	}

	lifted := func(item *match.ScoredItem) bool { return item.Promoted && item.Score > 0 }
	sort.SliceStable(merged, func(i, j int) bool {
		li, lj := lifted(&merged[i]), lifted(&merged[j])
		if li != lj {
			return li
		}
		return match.Less(merged[i], merged[j])
	})
	sort.SliceStable(promo, func(i, j int) bool { return match.Less(promo[i], promo[j]) })

	return match.Ranking{
		Promoted: promo,
		Ranked:   truncate(merged, pageSize),
	}
}

// dedupe copies items, keeping the first occurrence of each id.
func dedupe(items []match.ScoredItem) []match.ScoredItem {
	out := make([]match.ScoredItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if _, ok := seen[items[i].ItemID]; ok {
			continue
		}
		seen[items[i].ItemID] = struct{}{}
		item := items[i]
		if item.Reasons != nil {
			item.Reasons = append([]string(nil), item.Reasons...)
		}
		out = append(out, item)
	}
	return out
}

func truncate(items []match.ScoredItem, pageSize int) []match.ScoredItem {
	if pageSize <= 0 {
		pageSize = match.DefaultPageSize
	}
	if len(items) > pageSize {
		return items[:pageSize]
	}
	return items
}
