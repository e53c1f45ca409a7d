// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package supervisor provides process supervision for Darkwatch using suture v4.

The supervisor tree owns every long-running goroutine of the server and
restarts the ones that fail:

	RootSupervisor ("darkwatch")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── CacheJanitorService (when the response cache is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Failures are counted per layer. A janitor that keeps failing backs off
without touching the HTTP server.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog, which takes an *slog.Logger. Use logging.NewSlogLogger so the
events end up in the same zerolog stream as the rest of the server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
