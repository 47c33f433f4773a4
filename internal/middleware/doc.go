// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package middleware provides the HTTP middleware of the Tripmatch API.

All middleware use the func(http.Handler) http.Handler shape so they can be
mounted with chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)

RequestID runs first so every later log line carries request_id and
correlation_id. PrometheusMetrics labels requests by chi route pattern, not
raw path, which keeps label cardinality bounded.
*/
package middleware
