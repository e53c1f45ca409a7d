// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. .env: Optional dotenv file copied into the process environment
//  3. Config File: Optional YAML config file (config.yaml)
//  4. Environment Variables: Override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	GFW        GFWConfig        `koanf:"gfw"`
	Cache      CacheConfig      `koanf:"cache"`
	Detection  DetectionConfig  `koanf:"detection"`
	Aggregator AggregatorConfig `koanf:"aggregator"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GFWConfig configures the Global Fishing Watch API client.
type GFWConfig struct {
	// BaseURL is the v3 gateway root, without a trailing slash.
	BaseURL string `koanf:"base_url"`

	// Token is the bearer token. When empty the client reads TokenEnvVar.
	Token string `koanf:"token"`

	// TokenEnvVar names the environment variable re-read on refresh.
	TokenEnvVar string `koanf:"token_env_var"`

	// TokenRefreshMargin re-reads the token source when the JWT expires
	// within this window.
	TokenRefreshMargin time.Duration `koanf:"token_refresh_margin"`

	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries bounds retries on 429/5xx and transport errors.
	MaxRetries int `koanf:"max_retries"`

	// RetryBackoff is the base delay, doubled per retry.
	RetryBackoff time.Duration `koanf:"retry_backoff"`
}

// CacheConfig configures the HTTP response cache.
type CacheConfig struct {
	Enabled           bool `koanf:"enabled"`
	MaxItems          int  `koanf:"max_items"`
	DefaultTTLSeconds int  `koanf:"default_ttl_seconds"`

	// PersistPath enables a Badger-backed second tier when set.
	PersistPath string `koanf:"persist_path"`

	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

// DefaultTTL returns the configured TTL as a duration.
func (c CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// DetectionConfig holds the defaults and accepted upper bounds of the
// cluster and route algorithms exposed over HTTP.
type DetectionConfig struct {
	ClusterMaxDistanceKm      float64 `koanf:"cluster_max_distance_km"`
	ClusterMaxDistanceLimitKm float64 `koanf:"cluster_max_distance_limit_km"`
	ClusterSameDateOnly       bool    `koanf:"cluster_same_date_only"`

	RouteMaxTimeHours       float64 `koanf:"route_max_time_hours"`
	RouteMaxTimeLimitHours  float64 `koanf:"route_max_time_limit_hours"`
	RouteMaxDistanceKm      float64 `koanf:"route_max_distance_km"`
	RouteMaxDistanceLimitKm float64 `koanf:"route_max_distance_limit_km"`
	MinRouteLength          int     `koanf:"min_route_length"`
	MinRouteLengthLimit     int     `koanf:"min_route_length_limit"`
}

// AggregatorConfig tunes the dark vessel aggregator.
type AggregatorConfig struct {
	// ChunkDays is the longest date range sent in one upstream call.
	ChunkDays int `koanf:"chunk_days"`

	// ReportDelay spaces consecutive report-generation calls.
	ReportDelay time.Duration `koanf:"report_delay"`

	// InsightCacheTTL is how long vessel insights are reused between
	// risk-score requests.
	InsightCacheTTL time.Duration `koanf:"insight_cache_ttl"`

	// StyleCacheTTL is how long registered heatmap styles are reused.
	StyleCacheTTL time.Duration `koanf:"style_cache_ttl"`

	// MaxVesselIDs caps the vessel id list in analytics responses.
	MaxVesselIDs int `koanf:"max_vessel_ids"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// SupervisorConfig configures the suture supervisor tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
