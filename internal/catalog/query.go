// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"database/sql"
	"strings"

	"github.com/goccy/go-json"
)

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// anyArgs converts a typed slice into query arguments.
func anyArgs[T any](values []T) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// nullFloat converts a nullable column into the engine's optional score.
func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatOrNull(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func intOrNull(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// encodeList stores a string list as a JSON array.
func encodeList(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeList reads a JSON array column. Malformed content yields nil so one
// bad row cannot fail a whole search.
func decodeList(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
