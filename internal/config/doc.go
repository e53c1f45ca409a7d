// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package config provides centralized configuration management for Darkwatch.

Configuration is layered with Koanf v2: struct defaults, an optional YAML
file, then environment variables. A .env file, when present, is loaded
into the process environment first.

# Environment Variables

Server:
  - PORT: Listen port (default: 5000)
  - HOST: Bind address (default: 0.0.0.0)
  - SERVER_TIMEOUT: Request timeout (default: 120s)

Upstream API:
  - GFW_API_TOKEN: Global Fishing Watch bearer token (required for data routes)
  - GFW_BASE_URL: API gateway (default: https://gateway.api.globalfishingwatch.org/v3)
  - GFW_MAX_RETRIES: Retries on 429/5xx (default: 4)
  - GFW_RETRY_BACKOFF: Base backoff, doubled per retry (default: 500ms)

Response cache:
  - MS_CACHE_ENABLED: Enable the response cache (default: true)
  - MS_CACHE_MAX_ITEMS: Maximum cached responses (default: 512)
  - MS_CACHE_DEFAULT_TTL_SECONDS: Entry lifetime, minimum 1 (default: 300)
  - MS_CACHE_PERSIST_PATH: Badger directory for a persistent tier (default: off)

Security:
  - FRONTEND_ORIGINS: Comma-separated CORS origins
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Per-IP rate limit

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	addr := cfg.Server.Addr()
*/
package config
