// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package gfw is the client for the Global Fishing Watch v3 REST API, the
Vessel Activity API the dark vessel aggregator is built on.

Key Components:

  - Client: the operations Darkwatch consumes (reports, events, insights,
    vessel identity, 4Wings bins and stats), returning raw JSON payloads
  - HTTPClient: net/http implementation
  - CircuitBreakerClient: sony/gobreaker wrapper shared by every caller
  - TokenSource: bearer token provider; EnvTokenSource re-reads the token
    when its JWT exp claim comes within the refresh margin
  - SARFilter: builder for the 4Wings filters[0] expression

Resilience:

Retries live in the transport, beneath every operation:

  - Up to MaxRetries retries on 429, 500, 502, 503, 504 and transport errors
  - Exponential backoff from RetryBackoff (0.5s, 1s, 2s, 4s by default)
  - Retry-After honored, capped at 30 seconds
  - Context cancellation aborts the wait

Concurrent report generation is refused upstream with HTTP 429, so
callers issuing several reports must space them out themselves; see
package darkvessel.

Error Handling:

Invalid requests fail with ErrInvalidRequest or ErrInvalidPagination
before any I/O. Everything else wraps ErrUpstreamUnavailable; a non-2xx
answer is a *StatusError carrying the status and a bounded body excerpt.

Usage Example:

	tokens := gfw.NewEnvTokenSource(cfg.GFW.Token, cfg.GFW.TokenEnvVar, cfg.GFW.TokenRefreshMargin)
	client := gfw.NewCircuitBreakerClient(gfw.NewHTTPClient(&cfg.GFW, tokens))

	raw, err := client.CreateReport(ctx, gfw.ReportRequest{
	    Dataset:   gfw.DatasetSARPresence,
	    StartDate: "2025-01-01",
	    EndDate:   "2025-01-31",
	    RegionID:  "8492",
	})
*/
package gfw
