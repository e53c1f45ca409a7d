// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"

	"github.com/tomtom215/darkwatch/internal/cache"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	respCache     *cache.Cache
}

// NewRouter creates a router. chiMw may be nil for defaults; respCache
// may be nil to disable response caching.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, respCache *cache.Cache) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		respCache:     respCache,
	}
}

// notFound answers unknown routes with the JSON envelope.
func notFound(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).NotFound("Route not found")
}

// methodNotAllowed answers known routes hit with the wrong method.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).MethodNotAllowed()
}
