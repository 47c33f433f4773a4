// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package authz

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/tripmatch/internal/auth"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize returns middleware that allows the request only when the
// authenticated subject's role may perform action on object. It must run
// after auth.Middleware.Require.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := auth.SubjectFromContext(r.Context())
			if !ok {
				metrics.RecordAuthzDecision(object, action, "deny")
				writeError(w, r, http.StatusForbidden, "Forbidden: no authentication context")
				return
			}

			allowed, err := m.enforcer.Enforce(subject.Role, object, action)
			if err != nil {
				metrics.RecordAuthzDecision(object, action, "error")
				logging.Ctx(r.Context()).Error().Err(err).
					Str("role", subject.Role).
					Str("object", object).
					Str("action", action).
					Msg("Authorization error")
				writeError(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}

			if !allowed {
				metrics.RecordAuthzDecision(object, action, "deny")
				logging.Ctx(r.Context()).Warn().
					Str("profile_id", subject.ProfileID).
					Str("role", subject.Role).
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				writeError(w, r, http.StatusForbidden, "Forbidden: insufficient permissions")
				return
			}

			metrics.RecordAuthzDecision(object, action, "allow")
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	code := models.ErrCodeForbidden
	if status >= http.StatusInternalServerError {
		code = models.ErrCodeInternal
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status: models.StatusError,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode authorization error response")
	}
}
