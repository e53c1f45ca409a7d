// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/darkwatch/internal/logging"
)

// DefaultJanitorInterval is used when no interval is configured.
const DefaultJanitorInterval = time.Minute

// Pruner drops expired entries and reports how many it removed.
// Satisfied by *cache.Cache.
type Pruner interface {
	PruneExpired() int
}

// GarbageCollector reclaims space in a persistent store.
// Satisfied by *cache.BadgerStore.
type GarbageCollector interface {
	RunGC() error
}

// CacheJanitorService periodically prunes the response cache and, when
// a persistent tier is configured, runs its value log GC.
//
// Expired entries are never served, so the janitor only bounds memory.
// A GC failure is logged and retried on the next tick.
type CacheJanitorService struct {
	cache    Pruner
	store    GarbageCollector
	interval time.Duration
	name     string
}

// NewCacheJanitorService creates the janitor. store may be nil.
func NewCacheJanitorService(cache Pruner, store GarbageCollector, interval time.Duration) *CacheJanitorService {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &CacheJanitorService{
		cache:    cache,
		store:    store,
		interval: interval,
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (j *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep runs one prune and GC pass.
func (j *CacheJanitorService) sweep() {
	log := logging.WithComponent(j.name)

	if removed := j.cache.PruneExpired(); removed > 0 {
		log.Debug().Int("removed", removed).Msg("Pruned expired cache entries")
	}
	if j.store == nil {
		return
	}
	if err := j.store.RunGC(); err != nil {
		log.Warn().Err(err).Msg("Cache store garbage collection failed")
	}
}

// String names the service in supervisor events.
func (j *CacheJanitorService) String() string {
	return j.name
}
