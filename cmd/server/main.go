// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/darkwatch/internal/api"
	"github.com/tomtom215/darkwatch/internal/cache"
	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/darkvessel"
	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/supervisor"
	"github.com/tomtom215/darkwatch/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
		App:       "darkwatch",
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Str("gfw_base_url", cfg.GFW.BaseURL).
		Msg("Starting Darkwatch with supervisor tree")

	tokens := gfw.NewEnvTokenSource(cfg.GFW.Token, cfg.GFW.TokenEnvVar, cfg.GFW.TokenRefreshMargin)
	if !tokens.Configured() {
		logging.Warn().
			Str("env_var", cfg.GFW.TokenEnvVar).
			Msg("No GFW API token configured, upstream endpoints will answer 503 until one is set")
	}
	client := gfw.NewCircuitBreakerClient(gfw.NewHTTPClient(&cfg.GFW, tokens))
	dark := darkvessel.NewService(client, cfg.Aggregator)

	var (
		respCache *cache.Cache
		store     *cache.BadgerStore
	)
	if cfg.Cache.Enabled {
		var opts []cache.Option
		if cfg.Cache.PersistPath != "" {
			store, err = cache.OpenBadger(cfg.Cache.PersistPath)
			if err != nil {
				logging.Fatal().Err(err).Str("path", cfg.Cache.PersistPath).Msg("Failed to open cache store")
			}
			defer func() {
				if err := store.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing cache store")
				}
			}()
			opts = append(opts, cache.WithPersister(store))
		}
		respCache = cache.NewFromConfig(cfg.Cache, opts...)
		logging.Info().
			Int("max_items", cfg.Cache.MaxItems).
			Dur("ttl", respCache.TTL()).
			Bool("persistent", store != nil).
			Msg("Response cache enabled")
	} else {
		logging.Info().Msg("Response cache disabled (MS_CACHE_ENABLED=false)")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(cfg, client, dark,
		api.WithTokenStatus(tokens),
		api.WithResponseCache(respCache),
	)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security), respCache)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	if respCache != nil {
		var gc services.GarbageCollector
		if store != nil {
			gc = store
		}
		tree.AddMaintenanceService(services.NewCacheJanitorService(respCache, gc, cfg.Cache.JanitorInterval))
		logging.Info().Dur("interval", cfg.Cache.JanitorInterval).Msg("Cache janitor added to supervisor tree")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Darkwatch stopped gracefully")
}
