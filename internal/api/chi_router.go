// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/darkwatch/internal/middleware"
)

// SetupChi builds the HTTP handler. Everything except /metrics lives
// under /api/v1 and answers with the JSON envelope, including 404 and 405.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(StampStart)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Tiles answer with images, never the JSON envelope, and are not
	// response-cached: browsers cache them via Cache-Control.
	r.Route("/api/v1/tiles", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitTiles())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Get("/proxy/*", router.handler.TileProxy)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/configs", router.handler.Configs)

		// Upstream reads are cached; insights is a POST and never is.
		r.Group(func(r chi.Router) {
			r.Use(ResponseCache(router.respCache))

			r.Get("/detections", router.handler.Detections)
			r.Get("/detections/proximity-clusters", router.handler.ProximityClusters)
			r.Get("/detections/routes", router.handler.Routes)

			r.Get("/gaps", router.handler.Gaps)
			r.Get("/events", router.handler.Events)
			r.Get("/summary", router.handler.Summary)
			r.Get("/bins/{zoom}", router.handler.Bins)

			r.Get("/vessels/search", router.handler.SearchVessels)
			r.Get("/vessels/{vesselID}", router.handler.GetVessel)

			// Each of these fans out into many serial upstream calls.
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitFanOut())
				r.Get("/detections/sar-ais-association", router.handler.SARAISAssociation)
				r.Get("/analytics/dark-vessels", router.handler.DarkVesselAnalytics)
				r.Get("/analytics/risk-score/{vesselID}", router.handler.RiskScore)
			})
		})

		r.Post("/insights", router.handler.Insights)
		r.Post("/generate-style", router.handler.GenerateStyle)
	})

	return r
}
