// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package services provides suture.Service wrappers for Darkwatch components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - A listener failure is returned so the supervisor restarts the server

Cache Janitor (CacheJanitorService):
  - Prunes expired response cache entries on a fixed interval
  - Runs Badger value log GC when the persistent tier is enabled

# Usage

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewCacheJanitorService(respCache, store, cfg.Cache.JanitorInterval))

Both services return ctx.Err() on cancellation, which suture treats as a
clean stop.
*/
package services
