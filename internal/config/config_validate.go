// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package config

import (
	"fmt"
	"strings"
	"time"
)

// minCacheTTLSeconds is the shortest TTL the response cache accepts.
const minCacheTTLSeconds = 1

// Validate checks that required configuration is present and valid.
// A missing GFW token is not an error: the server starts and reports
// the upstream as unavailable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateGFW(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateAggregator(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateGFW() error {
	base, err := normalizeBaseURL(c.GFW.BaseURL, "GFW_BASE_URL")
	if err != nil {
		return err
	}
	c.GFW.BaseURL = base
	if c.GFW.MaxRetries < 0 {
		return fmt.Errorf("GFW_MAX_RETRIES must be non-negative, got %d", c.GFW.MaxRetries)
	}
	if c.GFW.RetryBackoff < 0 {
		return fmt.Errorf("GFW_RETRY_BACKOFF must be non-negative, got %v", c.GFW.RetryBackoff)
	}
	if c.GFW.Timeout <= 0 {
		return fmt.Errorf("GFW_TIMEOUT must be positive, got %v", c.GFW.Timeout)
	}
	return nil
}

// validateCache clamps the TTL to its minimum instead of failing, so a
// zero from the environment still yields a working cache.
func (c *Config) validateCache() error {
	if c.Cache.DefaultTTLSeconds < minCacheTTLSeconds {
		c.Cache.DefaultTTLSeconds = minCacheTTLSeconds
	}
	if c.Cache.MaxItems < 1 {
		return fmt.Errorf("MS_CACHE_MAX_ITEMS must be at least 1, got %d", c.Cache.MaxItems)
	}
	if c.Cache.JanitorInterval <= 0 {
		c.Cache.JanitorInterval = time.Minute
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.ClusterMaxDistanceKm <= 0 || d.ClusterMaxDistanceKm > d.ClusterMaxDistanceLimitKm {
		return fmt.Errorf("CLUSTER_MAX_DISTANCE_KM must be in (0, %v], got %v", d.ClusterMaxDistanceLimitKm, d.ClusterMaxDistanceKm)
	}
	if d.RouteMaxTimeHours <= 0 || d.RouteMaxTimeHours > d.RouteMaxTimeLimitHours {
		return fmt.Errorf("ROUTE_MAX_TIME_HOURS must be in (0, %v], got %v", d.RouteMaxTimeLimitHours, d.RouteMaxTimeHours)
	}
	if d.RouteMaxDistanceKm <= 0 || d.RouteMaxDistanceKm > d.RouteMaxDistanceLimitKm {
		return fmt.Errorf("ROUTE_MAX_DISTANCE_KM must be in (0, %v], got %v", d.RouteMaxDistanceLimitKm, d.RouteMaxDistanceKm)
	}
	if d.MinRouteLength < 2 || d.MinRouteLength > d.MinRouteLengthLimit {
		return fmt.Errorf("ROUTE_MIN_LENGTH must be in [2, %d], got %d", d.MinRouteLengthLimit, d.MinRouteLength)
	}
	return nil
}

func (c *Config) validateAggregator() error {
	if c.Aggregator.ChunkDays < 1 {
		return fmt.Errorf("AGGREGATOR_CHUNK_DAYS must be at least 1, got %d", c.Aggregator.ChunkDays)
	}
	if c.Aggregator.ReportDelay < 0 {
		return fmt.Errorf("AGGREGATOR_REPORT_DELAY must be non-negative, got %v", c.Aggregator.ReportDelay)
	}
	if c.Aggregator.StyleCacheTTL < 0 {
		return fmt.Errorf("AGGREGATOR_STYLE_CACHE_TTL must be non-negative, got %v", c.Aggregator.StyleCacheTTL)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
