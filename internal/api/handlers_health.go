// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status             string       `json:"status"`
	Version            string       `json:"version"`
	UpstreamConfigured bool         `json:"upstream_configured"`
	TokenConfigured    bool         `json:"token_configured"`
	CircuitState       string       `json:"circuit_state"`
	Uptime             float64      `json:"uptime"`
	Cache              *CacheHealth `json:"cache,omitempty"`
}

// CacheHealth summarizes the response cache.
type CacheHealth struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Health reports overall service health. It always answers 200; the
// status field is "degraded" when upstream calls cannot succeed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		NewResponseWriter(w, r).MethodNotAllowed()
		return
	}

	health := HealthStatus{
		Status:             "healthy",
		Version:            Version,
		UpstreamConfigured: h.client != nil,
		TokenConfigured:    h.tokenConfigured(),
		CircuitState:       h.circuitState(),
		Uptime:             time.Since(h.startTime).Seconds(),
	}
	if !h.ready() {
		health.Status = "degraded"
	}
	if h.respCache != nil {
		stats := h.respCache.GetStats()
		health.Cache = &CacheHealth{
			Entries: h.respCache.Len(),
			Hits:    stats.Hits,
			Misses:  stats.Misses,
			HitRate: h.respCache.HitRate(),
		}
	}

	respondJSON(w, r, health)
}

// HealthLive is the liveness check. It answers 200 whenever the process
// can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		NewResponseWriter(w, r).MethodNotAllowed()
		return
	}

	respondJSON(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness check: 200 when an upstream client with a
// token is wired and its circuit is not open, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		NewResponseWriter(w, r).MethodNotAllowed()
		return
	}

	data := map[string]interface{}{
		"upstream_configured": h.client != nil,
		"token_configured":    h.tokenConfigured(),
		"circuit_state":       h.circuitState(),
		"ready_to_serve":      h.ready(),
		"uptime":              time.Since(h.startTime).Seconds(),
	}

	if !h.ready() {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable,
			ErrCodeServiceUnavailable, "Service not ready", data)
		return
	}
	respondJSON(w, r, data)
}

func (h *Handler) ready() bool {
	return h.client != nil && h.tokenConfigured() && h.circuitState() != "open"
}
