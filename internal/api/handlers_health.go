// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/tripmatch/internal/models"
)

// readinessTimeout bounds the catalog ping of a readiness probe.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data: models.HealthResponse{
			Status:  "alive",
			Version: h.version,
			Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the catalog answers a ping and the server is not
// draining, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"catalog": "ok"}
	var apiErr *models.APIError

	if err := h.catalog.Ping(ctx); err != nil {
		checks["catalog"] = "unavailable"
		apiErr = &models.APIError{
			Code:      models.ErrCodeCatalogUnavailable,
			Message:   "Catalog unavailable",
			Retryable: true,
		}
	}
	if b, ok := h.catalog.(interface{ State() string }); ok {
		checks["circuit_breaker"] = b.State()
	}

	status := "ready"
	if h.draining.Load() {
		status = "draining"
		apiErr = &models.APIError{
			Code:      models.ErrCodeServiceUnavailable,
			Message:   "Server is shutting down",
			Retryable: true,
		}
	} else if apiErr != nil {
		status = "not_ready"
	}

	resp := &models.APIResponse{
		Status: models.StatusSuccess,
		Data: models.HealthResponse{
			Status:  status,
			Version: h.version,
			Uptime:  time.Since(h.startTime).Round(time.Second).String(),
			Checks:  checks,
		},
	}
	if apiErr == nil {
		respondJSON(w, r, http.StatusOK, resp)
		return
	}
	resp.Status = models.StatusError
	resp.Error = apiErr
	respondJSON(w, r, http.StatusServiceUnavailable, resp)
}
