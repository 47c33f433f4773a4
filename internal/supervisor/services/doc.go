// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package services provides the suture services run by the supervisor tree.
//
// HTTPServerService adapts http.Server's blocking ListenAndServe to suture's
// context-driven Serve and can run a drain hook before shutdown.
// MaintenanceService runs periodic housekeeping tasks, each in its own loop,
// and records every run in the maintenance metrics.
package services
