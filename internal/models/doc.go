// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package models defines the wire types of the Tripmatch HTTP API.

Every endpoint responds with the APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-05-01T12:00:00Z", "query_time_ms": 12}
	}

Errors use the same envelope with status "error" and a populated error
object carrying a machine-readable code.

Request types carry validate tags checked by the validation package before
a handler touches the catalog or the engine.
*/
package models
