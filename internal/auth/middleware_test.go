// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/tomtom215/tripmatch/internal/models"
)

// subjectRecorder records the subject seen by the wrapped handler.
func subjectRecorder(got **Subject) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject, ok := SubjectFromContext(r.Context()); ok {
			*got = subject
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware_Optional(t *testing.T) {
	manager := newTestManager(t)
	mw := NewMiddleware(manager)

	token, err := manager.GenerateToken("profile-42", "alice", "traveler")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name        string
		header      string
		wantSubject string
	}{
		{"no header", "", ""},
		{"valid token", "Bearer " + token, "profile-42"},
		{"lowercase scheme", "bearer " + token, "profile-42"},
		{"invalid token", "Bearer garbage", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Subject
			req := httptest.NewRequest(http.MethodPost, "/rank", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Optional(subjectRecorder(&got)).ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
			}
			gotID := ""
			if got != nil {
				gotID = got.ProfileID
			}
			if gotID != tt.wantSubject {
				t.Errorf("subject = %q, want %q", gotID, tt.wantSubject)
			}
		})
	}
}

func TestMiddleware_Require(t *testing.T) {
	manager := newTestManager(t)
	mw := NewMiddleware(manager)

	token, err := manager.GenerateToken("profile-7", "op", "operator")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Subject
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw.Require(subjectRecorder(&got)).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusUnauthorized {
				if got == nil || got.Role != "operator" {
					t.Errorf("subject = %+v, want operator", got)
				}
				return
			}

			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
			var resp models.APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != models.StatusError || resp.Error == nil || resp.Error.Code != models.ErrCodeUnauthorized {
				t.Errorf("response = %+v, want %s error", resp, models.ErrCodeUnauthorized)
			}
		})
	}
}

func TestMiddleware_Disabled(t *testing.T) {
	token, err := newTestManager(t).GenerateToken("profile-1", "traveler", "traveler")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	mw := NewMiddleware(nil)

	var got *Subject
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.Optional(subjectRecorder(&got)).ServeHTTP(rec, req)
	if got != nil {
		t.Errorf("subject = %+v, want anonymous when authentication is disabled", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mw.Require(subjectRecorder(&got)).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
