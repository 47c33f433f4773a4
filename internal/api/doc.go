// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package api provides the HTTP REST API layer for Tripmatch.

The API exposes the matching engine to the destination guide front end: ranked
tours and restaurants for a destination, on-demand match explanations, stored
traveler preferences and operator curation of promoted items.

Key Components:

  - Router: chi route configuration and middleware stack
  - Handler: request handlers backed by the catalog, engine and preference store
  - Response formatting: models.APIResponse envelope with request metadata
  - Error mapping: domain errors to status codes and error codes

Endpoints:

	GET    /api/v1/health/live
	GET    /api/v1/health/ready             (503 while draining)
	POST   /api/v1/destinations/{destinationID}/tours/rank
	POST   /api/v1/destinations/{destinationID}/restaurants/rank
	POST   /api/v1/match/explain
	GET    /api/v1/preferences/device            (X-Device-ID)
	PUT    /api/v1/preferences/device            (X-Device-ID)
	DELETE /api/v1/preferences/device            (X-Device-ID)
	GET    /api/v1/preferences/profile           (bearer token)
	PUT    /api/v1/preferences/profile           (bearer token)
	GET    /api/v1/admin/destinations/{destinationID}/promotions/{itemType}
	PUT    /api/v1/admin/destinations/{destinationID}/promotions/{itemType}
	GET    /metrics

Preference Resolution:

Ranking and explain requests resolve one preference vector per request. The
stored device preferences (X-Device-ID) are overlaid with any preferences in
the request body, then combined with the profile preferences of a signed-in
traveler. Device values win field by field. With no preferences at all the
balanced default is used and the response reports personalized=false.

Error Handling:

  - 400 VALIDATION_ERROR / BAD_REQUEST / MISSING_DEVICE_ID
  - 401 AUTHENTICATION_ERROR, 403 AUTHORIZATION_ERROR
  - 404 NOT_FOUND for unknown items
  - 429 RATE_LIMIT_EXCEEDED
  - 503 CATALOG_UNAVAILABLE (retryable) when the catalog cannot be reached

Usage:

	handler := api.NewHandler(catalogSvc, engine, prefs)
	router := api.NewRouter(handler, authMW, authzMW, cfg)
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
*/
package api
