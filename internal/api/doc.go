// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package api provides the HTTP REST API layer for Darkwatch.

The API proxies the Global Fishing Watch service and adds dark vessel
analytics on top: proximity clusters, predicted routes, SAR/AIS
association counts and per-vessel risk scores.

Key Components:

  - Router: Chi route configuration and middleware stack
  - Handler: request handlers for every /api/v1 endpoint
  - Response formatting: a uniform success/error envelope with request metadata
  - Error mapping: upstream and validation failures to HTTP status codes
  - ResponseCache: read-through cache for upstream-backed GET endpoints
  - Rate limiting and CORS via go-chi/httprate and go-chi/cors

API Categories:

1. Health (/api/v1/health):
  - Overall status, liveness and readiness checks

2. Detections (/api/v1/detections):
  - Aggregated dark vessel view with per-region SAR summaries
  - Proximity clusters of unmatched SAR detections
  - Predicted routes from detections and AIS gap events
  - SAR/AIS association totals

3. Events and reports (/api/v1/gaps, /events, /summary, /bins/{zoom}):
  - Pass-through queries with validated parameters

4. Vessels (/api/v1/vessels, /api/v1/insights):
  - Identity search and lookup, insight counters

5. Analytics (/api/v1/analytics):
  - Dark vessel statistics and risk scoring

6. Map layers (/api/v1/generate-style, /api/v1/tiles/proxy/*):
  - Heatmap style registration and an authenticated PNG tile proxy
  - Tiles are raw images; failures answer a transparent 1x1 PNG

Response Envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 12}
	}

Errors carry {"code", "message", "details", "request_id"} under "error".
Missing or malformed parameters answer 400 VALIDATION_ERROR; an
unconfigured upstream or an open circuit answers 503.

Usage Example:

	handler := api.NewHandler(cfg, client, nil,
	    api.WithTokenStatus(tokens),
	    api.WithResponseCache(respCache),
	)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security), respCache)
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}

Thread Safety:

Handlers hold no per-request state and are safe for concurrent use.
*/
package api
