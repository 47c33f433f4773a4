// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tripmatch/internal/auth"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/models"
)

// GetPromotions handles GET /api/v1/admin/destinations/{destinationID}/promotions/{itemType}
func (h *Handler) GetPromotions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	destinationID, itemType, ok := promotionTarget(w, r)
	if !ok {
		return
	}
	h.respondPromotions(w, r, start, destinationID, itemType)
}

// PutPromotions handles PUT /api/v1/admin/destinations/{destinationID}/promotions/{itemType}
// The submitted ids replace the destination's promotions in display order.
// An empty list clears them.
func (h *Handler) PutPromotions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	destinationID, itemType, ok := promotionTarget(w, r)
	if !ok {
		return
	}

	var req models.PromotionsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.catalog.ReplacePromotions(r.Context(), destinationID, itemType, req.ItemIDs); err != nil {
		respondServiceError(w, r, asCatalogError(err))
		return
	}

	event := logging.Ctx(r.Context()).Info().
		Str("destination_id", destinationID).
		Str("item_type", string(itemType)).
		Int("count", len(req.ItemIDs))
	if subject, ok := auth.SubjectFromContext(r.Context()); ok {
		event = event.Str("operator", subject.ProfileID)
	}
	event.Msg("Promotions replaced")

	h.respondPromotions(w, r, start, destinationID, itemType)
}

func (h *Handler) respondPromotions(w http.ResponseWriter, r *http.Request, start time.Time, destinationID string, itemType match.ItemType) {
	entries, err := h.catalog.GetPromotedItems(r.Context(), destinationID, itemType, match.PromotionLimit)
	if err != nil {
		respondServiceError(w, r, asCatalogError(err))
		return
	}
	if entries == nil {
		entries = []match.PromotionEntry{}
	}

	respondSuccess(w, r, start, models.PromotionsResponse{
		DestinationID: destinationID,
		ItemType:      itemType,
		Promotions:    entries,
	})
}

func promotionTarget(w http.ResponseWriter, r *http.Request) (string, match.ItemType, bool) {
	destinationID := chi.URLParam(r, "destinationID")
	if !pathID(destinationID) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Invalid destination ID", nil)
		return "", "", false
	}
	itemType := match.ItemType(chi.URLParam(r, "itemType"))
	if !itemType.Valid() {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "item type must be tour or restaurant", nil)
		return "", "", false
	}
	return destinationID, itemType, true
}
