// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/models"
)

// Subject is the authenticated traveler or operator behind a request.
type Subject struct {
	ProfileID string
	Username  string
	Role      string
}

type subjectKey struct{}

// ContextWithSubject returns a copy of ctx carrying subject.
func ContextWithSubject(ctx context.Context, subject *Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the subject attached by the middleware, if any.
func SubjectFromContext(ctx context.Context) (*Subject, bool) {
	subject, ok := ctx.Value(subjectKey{}).(*Subject)
	return subject, ok && subject != nil
}

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	jwtManager *JWTManager
}

// ErrAuthDisabled is returned for bearer tokens when no signing secret is
// configured.
var ErrAuthDisabled = errors.New("authentication disabled")

// NewMiddleware creates authentication middleware backed by jwtManager.
// A nil manager disables authentication: every token is rejected.
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	return &Middleware{jwtManager: jwtManager}
}

// Optional attaches a Subject when the request carries a valid bearer token.
// Requests without a token, or with an invalid one, continue anonymously.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticate(r)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Ignoring invalid bearer token on optional route")
		}
		if subject != nil {
			r = r.WithContext(ContextWithSubject(r.Context(), subject))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests without a valid bearer token with 401.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticate(r)
		if subject == nil {
			message := "Authentication required"
			if err != nil {
				message = "Invalid or expired token"
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="tripmatch"`)
			writeError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSubject(r.Context(), subject)))
	})
}

// authenticate returns (nil, nil) when no token is present.
func (m *Middleware) authenticate(r *http.Request) (*Subject, error) {
	token := extractBearerToken(r)
	if token == "" {
		metrics.RecordAuthAttempt("absent")
		return nil, nil
	}
	if m.jwtManager == nil {
		metrics.RecordAuthAttempt("invalid")
		return nil, ErrAuthDisabled
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		metrics.RecordAuthAttempt("invalid")
		return nil, err
	}

	metrics.RecordAuthAttempt("valid")
	return &Subject{
		ProfileID: claims.ProfileID(),
		Username:  claims.Username,
		Role:      claims.Role,
	}, nil
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
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
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode auth error response")
	}
}
