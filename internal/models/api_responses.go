// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package models

import (
	"time"

	"github.com/tomtom215/tripmatch/internal/match"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeMissingDeviceID    = "MISSING_DEVICE_ID"
	ErrCodeUnauthorized       = "AUTHENTICATION_ERROR"
	ErrCodeForbidden          = "AUTHORIZATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// APIResponse is the standard response wrapper used by all HTTP endpoints.
//
// Status is "success" with Data populated, or "error" with Error populated.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Retryable is set for CATALOG_UNAVAILABLE: the request may succeed later
// without changes.
type APIError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// RankingResponse is the result of a tour or restaurant ranking request.
type RankingResponse struct {
	DestinationID string             `json:"destination_id"`
	ItemType      match.ItemType     `json:"item_type"`
	Promoted      []match.ScoredItem `json:"promoted"`
	Ranked        []match.ScoredItem `json:"ranked"`
	Candidates    int                `json:"candidates"`

	// Personalized is false when no preferences were available and every
	// score reflects the neutral default profile.
	Personalized bool `json:"personalized"`
}

// PreferencesResponse returns one scope's stored preferences.
// Preferences is null when nothing is stored.
type PreferencesResponse struct {
	Scope       string                 `json:"scope"`
	Preferences *match.PreferenceInput `json:"preferences"`
	Resolved    match.PreferenceVector `json:"resolved"`
	UpdatedAt   *time.Time             `json:"updated_at,omitempty"`
}

// PromotionsResponse lists a destination's promotions for one item type.
type PromotionsResponse struct {
	DestinationID string                 `json:"destination_id"`
	ItemType      match.ItemType         `json:"item_type"`
	Promotions    []match.PromotionEntry `json:"promotions"`
}

// HealthResponse reports liveness or readiness.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
