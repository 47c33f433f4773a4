// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package auth validates bearer tokens issued by the account service.

Tripmatch does not run a login flow. Travelers sign in elsewhere and present an
HS256 JWT whose subject is their profile id. The middleware in this package only
verifies the token and attaches the resulting Subject to the request context.

Key Components:

  - JWTManager: token validation (and minting for tooling) using HMAC-SHA256
  - Middleware.Optional: attaches a Subject when a valid token is present
  - Middleware.Require: rejects requests without a valid token with 401

Whether a request carries a Subject decides if preference resolution treats the
traveler as signed in. A malformed or expired token on an optional route is
treated as anonymous rather than rejected.

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(jwtManager)

	r.With(mw.Optional).Post("/api/v1/destinations/{destinationID}/tours/rank", h.RankTours)
	r.With(mw.Require).Put("/api/v1/preferences/profile", h.PutProfilePreferences)

	subject, ok := auth.SubjectFromContext(r.Context())
*/
package auth
