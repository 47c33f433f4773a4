// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/tripmatch/internal/logging"
)

// AccessLog logs one line per request at debug level, or warn level when
// the request took longer than slowThreshold. Server errors log at error
// level. A zero threshold disables slow request detection.
func AccessLog(slowThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := newStatusRecorder(w)
			next.ServeHTTP(wrapper, r)
			duration := time.Since(start)

			logger := logging.Ctx(r.Context())
			event := logger.Debug()
			msg := "Request completed"
			switch {
			case wrapper.statusCode >= http.StatusInternalServerError:
				event = logger.Error()
				msg = "Request failed"
			case slowThreshold > 0 && duration > slowThreshold:
				event = logger.Warn()
				msg = "Slow request detected"
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", wrapper.statusCode).
				Int64("duration_ms", duration.Milliseconds()).
				Msg(msg)
		})
	}
}
