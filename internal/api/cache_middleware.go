// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/cache"
	"github.com/tomtom215/darkwatch/internal/logging"
)

// X-Cache values.
const (
	cacheHit    = "HIT"
	cacheMiss   = "MISS"
	cacheBypass = "BYPASS"
)

// ResponseCache serves repeated GET requests from c. Only 2xx responses
// are stored. A request with cache=false skips both lookup and store.
// A hit replays the stored data with meta re-stamped for the current
// request. A nil cache disables the middleware.
func ResponseCache(c *cache.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			query := r.URL.Query()
			if cache.Bypass(query) {
				w.Header().Set(HeaderCache, cacheBypass)
				next.ServeHTTP(w, r)
				return
			}

			key := cache.GenerateKey(r.Method, r.URL.Path, query)
			if entry, ok := c.Get(key); ok {
				if entry.ContentType != "" {
					w.Header().Set("Content-Type", entry.ContentType)
				}
				w.Header().Set(HeaderCache, cacheHit)
				w.WriteHeader(entry.Status)
				_, _ = w.Write(restampMeta(entry.Payload, entry.ContentType, r)) //nolint:errcheck // client disconnects are not actionable
				return
			}

			w.Header().Set(HeaderCache, cacheMiss)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			var buf bytes.Buffer
			ww.Tee(&buf)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= 200 && status < 300 {
				c.Set(key, buf.Bytes(), status, ww.Header().Get("Content-Type"), c.TTL())
			}
		})
	}
}

// cachedEnvelope mirrors APIResponse but keeps data and error undecoded.
type cachedEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Meta    *APIMeta        `json:"meta,omitempty"`
}

// restampMeta swaps the stored meta for the current request id and
// time. Payloads that are not an enveloped JSON body pass unchanged.
func restampMeta(payload []byte, contentType string, r *http.Request) []byte {
	if !strings.HasPrefix(contentType, "application/json") {
		return payload
	}
	var env cachedEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Meta == nil {
		return payload
	}
	env.Meta = &APIMeta{
		RequestID:  logging.RequestIDFromContext(r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(requestStart(r)).Milliseconds(),
	}
	out, err := json.Marshal(env)
	if err != nil {
		return payload
	}
	return out
}
