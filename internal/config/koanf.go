// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/darkwatch/config.yaml",
	"/etc/darkwatch/config.yml",
}

// DefaultEnvFiles lists the dotenv files tried before the environment layer.
var DefaultEnvFiles = []string{
	".env",
	"../.env",
	"/app/.env",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultGFWBaseURL is the Global Fishing Watch v3 gateway.
const DefaultGFWBaseURL = "https://gateway.api.globalfishingwatch.org/v3"

// Defaults returns a Config with every default value. Tests and callers
// that skip Load start from it.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			Host:            "0.0.0.0",
			Timeout:         120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		GFW: GFWConfig{
			BaseURL:            DefaultGFWBaseURL,
			Token:              "",
			TokenEnvVar:        "GFW_API_TOKEN",
			TokenRefreshMargin: 5 * time.Minute,
			Timeout:            60 * time.Second,
			MaxRetries:         4,
			RetryBackoff:       500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled:           true,
			MaxItems:          512,
			DefaultTTLSeconds: 300,
			PersistPath:       "",
			JanitorInterval:   time.Minute,
		},
		Detection: DetectionConfig{
			ClusterMaxDistanceKm:      5,
			ClusterMaxDistanceLimitKm: 50,
			ClusterSameDateOnly:       true,
			RouteMaxTimeHours:         48,
			RouteMaxTimeLimitHours:    720,
			RouteMaxDistanceKm:        100,
			RouteMaxDistanceLimitKm:   1000,
			MinRouteLength:            2,
			MinRouteLengthLimit:       100,
		},
		Aggregator: AggregatorConfig{
			ChunkDays:       30,
			ReportDelay:     time.Second,
			InsightCacheTTL: 10 * time.Minute,
			StyleCacheTTL:   24 * time.Hour,
			MaxVesselIDs:    100,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load reads the first dotenv file found, then layers defaults, the
// optional config file and the environment.
func Load() (*Config, error) {
	loadEnvFiles(DefaultEnvFiles)
	return LoadWithKoanf()
}

// loadEnvFiles loads the first dotenv file that exists. Variables
// already set in the process environment are not overwritten.
func loadEnvFiles(paths []string) string {
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := Defaults()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice when it came from YAML
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"port":             "server.port",
	"host":             "server.host",
	"server_timeout":   "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Upstream API
	"gfw_api_token":            "gfw.token",
	"gfw_base_url":             "gfw.base_url",
	"gfw_timeout":              "gfw.timeout",
	"gfw_max_retries":          "gfw.max_retries",
	"gfw_retry_backoff":        "gfw.retry_backoff",
	"gfw_token_refresh_margin": "gfw.token_refresh_margin",

	// Response cache
	"ms_cache_enabled":             "cache.enabled",
	"ms_cache_max_items":           "cache.max_items",
	"ms_cache_default_ttl_seconds": "cache.default_ttl_seconds",
	"ms_cache_persist_path":        "cache.persist_path",
	"ms_cache_janitor_interval":    "cache.janitor_interval",

	// Detection bounds
	"cluster_max_distance_km":     "detection.cluster_max_distance_km",
	"cluster_same_date_only":      "detection.cluster_same_date_only",
	"route_max_time_hours":        "detection.route_max_time_hours",
	"route_max_distance_km":       "detection.route_max_distance_km",
	"route_min_length":            "detection.min_route_length",
	"route_max_time_limit_hours":  "detection.route_max_time_limit_hours",
	"route_max_distance_limit_km": "detection.route_max_distance_limit_km",

	// Aggregator
	"aggregator_chunk_days":        "aggregator.chunk_days",
	"aggregator_report_delay":      "aggregator.report_delay",
	"aggregator_insight_cache_ttl": "aggregator.insight_cache_ttl",
	"aggregator_style_cache_ttl":   "aggregator.style_cache_ttl",
	"aggregator_max_vessel_ids":    "aggregator.max_vessel_ids",

	// Security
	"frontend_origins":    "security.cors_origins",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" so unrelated environment variables are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
