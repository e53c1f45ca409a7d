// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
	"github.com/tomtom215/darkwatch/internal/middleware"
)

// HeaderCache reports how the response cache served a request.
const HeaderCache = "X-Cache"

// Per-route limits. Health and tile routes use theirs in place of the
// global per-IP limit; the others are layered under it.
var (
	// RateLimitHealth is permissive so orchestrator health checks never trip it.
	RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}

	// RateLimitFanOut guards routes where one request turns into many
	// serial upstream report calls (region x date chunk).
	RateLimitFanOut = RateLimitConfig{Requests: 20, Window: time.Minute}

	// RateLimitTiles allows the burst of tile requests one map view makes.
	RateLimitTiles = RateLimitConfig{Requests: 600, Window: time.Minute}
)

// RateLimitConfig is a request budget per client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ChiMiddlewareConfig configures CORS and rate limiting.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc // defaults to httprate.KeyByIP
	RateLimitOnLimit  http.HandlerFunc // defaults to a 429 envelope
}

// DefaultChiMiddlewareConfig allows no cross-origin callers until
// origins are configured. The API is read-only apart from the insights
// POST, so only GET, POST and OPTIONS are allowed.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		CORSAllowedHeaders: []string{"Content-Type", middleware.HeaderRequestID},
		CORSExposedHeaders: []string{middleware.HeaderRequestID, HeaderCache},
		CORSMaxAge:         86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// ChiMiddleware builds the CORS and rate limit middleware for the router.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware uses DefaultChiMiddlewareConfig when config is nil.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}
	if config.RateLimitKeyFunc == nil {
		config.RateLimitKeyFunc = httprate.KeyByIP
	}
	if config.RateLimitOnLimit == nil {
		config.RateLimitOnLimit = rateLimitExceeded
	}

	return &ChiMiddleware{
		config: config,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   config.CORSAllowedOrigins,
			AllowedMethods:   config.CORSAllowedMethods,
			AllowedHeaders:   config.CORSAllowedHeaders,
			ExposedHeaders:   config.CORSExposedHeaders,
			AllowCredentials: config.CORSAllowCredentials,
			MaxAge:           config.CORSMaxAge,
		}),
	}
}

// NewChiMiddlewareFromConfig applies the security section of the
// application config over the defaults.
func NewChiMiddlewareFromConfig(sec config.SecurityConfig) *ChiMiddleware {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	cfg.RateLimitRequests = sec.RateLimitReqs
	cfg.RateLimitWindow = sec.RateLimitWindow
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	return NewChiMiddleware(cfg)
}

// CORS handles preflight and cross-origin headers via go-chi/cors.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit applies the configured global per-IP limit.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitConfig{
		Requests: m.config.RateLimitRequests,
		Window:   m.config.RateLimitWindow,
	})
}

// RateLimitCustom applies a per-IP limit with its own budget. Every
// limiter is a no-op when rate limiting is disabled.
func (m *ChiMiddleware) RateLimitCustom(limit RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit.Requests, limit.Window,
		httprate.WithKeyFuncs(m.config.RateLimitKeyFunc),
		httprate.WithLimitHandler(m.config.RateLimitOnLimit),
	)
}

func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitHealth)
}

func (m *ChiMiddleware) RateLimitFanOut() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitFanOut)
}

func (m *ChiMiddleware) RateLimitTiles() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitTiles)
}

// rateLimitExceeded writes a 429 envelope. httprate has already set
// the X-RateLimit and Retry-After headers.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
	logging.Ctx(r.Context()).Warn().
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Msg("Rate limit exceeded")
	NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
}

// APISecurityHeaders keeps API responses from being sniffed or framed.
// HSTS is only sent when the request arrived over TLS, directly or via
// a proxy.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
