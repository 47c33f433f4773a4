// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type scopeKey struct{}

type loggerKey struct{}

// scope is the per-request identity attached to every Ctx logger. It is
// copied on each change so contexts derived earlier keep their values.
type scope struct {
	requestID     string
	correlationID string
	destinationID string
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// GenerateRequestID returns a random UUID for requests that arrive without
// a usable X-Request-ID.
func GenerateRequestID() string {
	return uuid.NewString()
}

// WithRequest starts the log scope of one HTTP request. A short correlation
// id is generated alongside requestID so the lines of a ranking can be
// grouped even when an upstream proxy reuses request ids.
func WithRequest(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope{
		requestID:     requestID,
		correlationID: uuid.NewString()[:8],
	})
}

// WithDestination adds the destination being ranked or curated.
func WithDestination(ctx context.Context, destinationID string) context.Context {
	s := scopeFrom(ctx)
	s.destinationID = destinationID
	return context.WithValue(ctx, scopeKey{}, s)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// ContextWithLogger makes Ctx derive from logger instead of the global one.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Ctx returns a logger carrying the scope fields found in ctx.
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("Device preferences unavailable")
//	// {"level":"warn","request_id":"...","correlation_id":"ab12cd34","destination_id":"lisbon",...}
func Ctx(ctx context.Context) *zerolog.Logger {
	base, ok := ctx.Value(loggerKey{}).(zerolog.Logger)
	if !ok {
		base = Logger()
	}

	s := scopeFrom(ctx)
	lc := base.With()
	if s.requestID != "" {
		lc = lc.Str("request_id", s.requestID)
	}
	if s.correlationID != "" {
		lc = lc.Str("correlation_id", s.correlationID)
	}
	if s.destinationID != "" {
		lc = lc.Str("destination_id", s.destinationID)
	}
	l := lc.Logger()
	return &l
}
