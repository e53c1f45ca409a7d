// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package main is the entry point for the Darkwatch server.

Darkwatch is a proxy in front of the Global Fishing Watch (GFW) API. It
pulls SAR detections, AIS gap events and vessel insights, then derives
dark vessel aggregates, proximity clusters, predicted routes and risk
scores from them. Every result is served as JSON under /api/v1.

# Application Architecture

	RootSupervisor ("darkwatch")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── Cache janitor (prunes entries, runs Badger GC)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with .env files, config.yaml and environment variables
 2. Logging: zerolog with JSON or console output
 3. GFW client: token source, retrying transport, circuit breaker
 4. Dark vessel service: chunked aggregation, clustering, routes, risk
 5. Response cache: in-memory LRU-by-expiry, optional Badger tier
 6. Supervisor tree: suture v4 process supervision
 7. HTTP server: chi router with CORS, rate limiting and metrics

# Configuration

Highest priority wins:
  - Environment variables
  - Config file (config.yaml)
  - Built-in defaults

The GFW token is re-read from GFW_API_TOKEN on every request, so a
rotated token is picked up without a restart. Without a token the
server still starts; upstream endpoints answer 503 and
/api/v1/health/ready reports not ready.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for SHUTDOWN_TIMEOUT, then the cache store is
closed.

# Example Usage

	export GFW_API_TOKEN=your-gfw-token
	export MS_CACHE_PERSIST_PATH=/data/cache
	./darkwatch
*/
package main
