// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package supervisor provides process supervision for Tripmatch using suture v4.

The tree restarts crashed services with backoff and shuts everything down in
order when the root context is canceled:

	RootSupervisor ("tripmatch")
	├── DataSupervisor ("data-layer")
	│   └── MaintenanceService (trait cache sweep, preference GC and counts)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a maintenance task in backoff does
not take the HTTP server down with it.

# Usage

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.Add(supervisor.DataLayer, maintenance)
	tree.Add(supervisor.APILayer, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped with error")
	}

Supervisor events are logged through sutureslog into the zerolog-backed slog
handler from the logging package.

See the services subpackage for the service implementations.
*/
package supervisor
