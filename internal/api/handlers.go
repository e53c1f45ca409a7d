// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"time"

	"github.com/tomtom215/darkwatch/internal/cache"
	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/darkvessel"
	"github.com/tomtom215/darkwatch/internal/gfw"
)

// Version is reported by the health endpoint.
var Version = "dev"

// breakerState is implemented by gfw.CircuitBreakerClient.
type breakerState interface {
	State() string
}

// TokenStatus reports whether an upstream token is available.
type TokenStatus interface {
	Configured() bool
}

// Handler serves every endpoint under /api/v1.
type Handler struct {
	client    gfw.Client
	dark      *darkvessel.Service
	cfg       *config.Config
	tokens    TokenStatus
	respCache *cache.Cache
	startTime time.Time
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithTokenStatus lets readiness report a missing token.
func WithTokenStatus(t TokenStatus) HandlerOption {
	return func(h *Handler) {
		h.tokens = t
	}
}

// WithResponseCache exposes response cache counters on /health.
func WithResponseCache(c *cache.Cache) HandlerOption {
	return func(h *Handler) {
		h.respCache = c
	}
}

// NewHandler creates a handler. client may be nil, in which case every
// upstream-backed endpoint answers 503. A nil dark service is built
// from client and cfg.
func NewHandler(cfg *config.Config, client gfw.Client, dark *darkvessel.Service, opts ...HandlerOption) *Handler {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if dark == nil && client != nil {
		dark = darkvessel.NewService(client, cfg.Aggregator)
	}
	h := &Handler{
		client:    client,
		dark:      dark,
		cfg:       cfg,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// upstream returns the client or ErrClientNotConfigured.
func (h *Handler) upstream() (gfw.Client, error) {
	if h.client == nil {
		return nil, ErrClientNotConfigured
	}
	return h.client, nil
}

// service returns the aggregator or ErrClientNotConfigured.
func (h *Handler) service() (*darkvessel.Service, error) {
	if h.dark == nil {
		return nil, ErrClientNotConfigured
	}
	return h.dark, nil
}

// circuitState is the breaker state, or "none" when the client is not
// wrapped in a breaker.
func (h *Handler) circuitState() string {
	if b, ok := h.client.(breakerState); ok {
		return b.State()
	}
	return "none"
}

// tokenConfigured is true when no token status was wired or it reports
// a token.
func (h *Handler) tokenConfigured() bool {
	return h.tokens == nil || h.tokens.Configured()
}
