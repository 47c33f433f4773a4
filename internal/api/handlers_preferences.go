// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/tripmatch/internal/auth"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/models"
	"github.com/tomtom215/tripmatch/internal/prefstore"
)

// GetDevicePreferences handles GET /api/v1/preferences/device
func (h *Handler) GetDevicePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	deviceID, ok := requireDeviceID(w, r)
	if !ok {
		return
	}
	h.respondPreferences(w, r, start, prefstore.ScopeDevice, deviceID)
}

// PutDevicePreferences handles PUT /api/v1/preferences/device
// The stored value is replaced, not merged; out-of-range values are clamped.
func (h *Handler) PutDevicePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	deviceID, ok := requireDeviceID(w, r)
	if !ok {
		return
	}

	var req models.PreferencesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.prefs.PutDevicePreferences(r.Context(), deviceID, &req.Preferences); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondPreferences(w, r, start, prefstore.ScopeDevice, deviceID)
}

// DeleteDevicePreferences handles DELETE /api/v1/preferences/device
func (h *Handler) DeleteDevicePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	deviceID, ok := requireDeviceID(w, r)
	if !ok {
		return
	}

	if err := h.prefs.DeleteDevicePreferences(r.Context(), deviceID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.respondPreferences(w, r, start, prefstore.ScopeDevice, deviceID)
}

// GetProfilePreferences handles GET /api/v1/preferences/profile
func (h *Handler) GetProfilePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Authentication required", nil)
		return
	}
	h.respondPreferences(w, r, start, prefstore.ScopeProfile, subject.ProfileID)
}

// PutProfilePreferences handles PUT /api/v1/preferences/profile
func (h *Handler) PutProfilePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Authentication required", nil)
		return
	}

	var req models.PreferencesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.prefs.PutProfilePreferences(r.Context(), subject.ProfileID, &req.Preferences); err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("profile_id", subject.ProfileID).
		Msg("Profile preferences updated")
	h.respondPreferences(w, r, start, prefstore.ScopeProfile, subject.ProfileID)
}

// respondPreferences writes the stored record of one scope along with the
// vector it resolves to on its own.
func (h *Handler) respondPreferences(w http.ResponseWriter, r *http.Request, start time.Time, scope, id string) {
	rec, err := h.prefs.GetRecord(r.Context(), scope, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := models.PreferencesResponse{Scope: scope}
	var stored *match.PreferenceInput
	if rec != nil {
		stored = &rec.Preferences
		updated := rec.UpdatedAt
		resp.UpdatedAt = &updated
	}
	resp.Preferences = stored

	if scope == prefstore.ScopeProfile {
		resp.Resolved = match.OrDefault(match.Resolve(stored, nil, true))
	} else {
		resp.Resolved = match.OrDefault(match.Resolve(nil, stored, false))
	}

	respondSuccess(w, r, start, resp)
}

func requireDeviceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	deviceID := r.Header.Get(DeviceIDHeader)
	if deviceID == "" {
		respondServiceError(w, r, ErrMissingDeviceID)
		return "", false
	}
	if err := prefstore.ValidateKey(deviceID); err != nil {
		respondServiceError(w, r, err)
		return "", false
	}
	return deviceID, true
}
