// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package authz provides role-based authorization using Casbin.

The model and policy are embedded (model.conf, policy.csv) and can be replaced
with files through config.AuthzConfig. Requests are checked as
(role, object, action) triples where the role comes from the bearer token.

Default Policy:

  - traveler: may read the catalog and promotions
  - operator: inherits traveler, may write promotions
  - admin: inherits operator, may do anything

Usage:

	enforcer, err := authz.NewEnforcer(&cfg.Authz)
	if err != nil {
	    return err
	}
	defer enforcer.Close()

	authzMW := authz.NewMiddleware(enforcer)
	r.With(authMW.Require, authzMW.Authorize(authz.ObjectPromotions, authz.ActionWrite)).
	    Put("/api/v1/admin/destinations/{destinationID}/promotions/{itemType}", h.PutPromotions)

Decisions are cached per (role, object, action) for config.AuthzConfig.CacheTTL.
Policy changes made through the Enforcer clear the cache.
*/
package authz
