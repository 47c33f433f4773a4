// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generated when absent", incoming: ""},
		{name: "reused when well formed", incoming: "req-123", wantSame: true},
		{name: "replaced when it has spaces", incoming: "req 123"},
		{name: "replaced when too long", incoming: strings.Repeat("a", maxRequestIDLength+1)},
		{name: "replaced when non ascii", incoming: "req-é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seenID, seenCorrelation string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenID = logging.RequestIDFromContext(r.Context())
				seenCorrelation = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != seenID {
				t.Fatalf("response id = %q, context id = %q", got, seenID)
			}
			if (got == tt.incoming) != tt.wantSame {
				t.Errorf("id = %q, incoming = %q, wantSame = %v", got, tt.incoming, tt.wantSame)
			}
			if seenCorrelation == "" {
				t.Error("correlation id not set")
			}
		})
	}
}

func TestPrometheusMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/destinations/{destinationID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/destinations/{destinationID}", "202")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"lisbon", "porto"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/destinations/"+id, http.NoBody))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
	}

	if delta := testutil.ToFloat64(counter) - before; delta != 2 {
		t.Errorf("api_requests_total delta = %v, want 2 under one route label", delta)
	}
	if active := testutil.ToFloat64(metrics.APIActiveRequests); active != 0 {
		t.Errorf("api_active_requests = %v, want 0 after completion", active)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", http.NoBody))
	if delta := testutil.ToFloat64(counter) - before; delta != 1 {
		t.Errorf("unmatched delta = %v, want 1", delta)
	}
}

func TestAccessLog(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		sleep     time.Duration
		threshold time.Duration
		wantLevel string
		wantMsg   string
	}{
		{"server error", http.StatusInternalServerError, 0, time.Second, "error", "Request failed"},
		{"slow request", http.StatusOK, 20 * time.Millisecond, time.Millisecond, "warn", "Slow request detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := AccessLog(tt.threshold)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(tt.sleep)
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodPost, "/rank", http.NoBody)
			ctx := logging.ContextWithLogger(req.Context(), logging.NewTestLogger(&buf))
			ctx = logging.WithRequest(ctx, "req-1")
			handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

			var line map[string]any
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
				t.Fatalf("decode log line %q: %v", buf.String(), err)
			}
			if line["level"] != tt.wantLevel || line["message"] != tt.wantMsg {
				t.Errorf("log = %v, want level %s message %q", line, tt.wantLevel, tt.wantMsg)
			}
			if line["request_id"] != "req-1" {
				t.Errorf("request_id = %v, want req-1", line["request_id"])
			}
			if line["status"] != float64(tt.status) {
				t.Errorf("status = %v, want %d", line["status"], tt.status)
			}
		})
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := newStatusRecorder(rec)

	if _, err := sr.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	sr.WriteHeader(http.StatusTeapot)
	if sr.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200 once the body was written", sr.statusCode)
	}
	if sr.Unwrap() != rec {
		t.Error("Unwrap did not return the underlying writer")
	}
}
