// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"bytes"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/darkwatch/internal/cache"
	"github.com/tomtom215/darkwatch/internal/darkvessel"
	"github.com/tomtom215/darkwatch/internal/gfw"
)

func TestEmptyTile_IsTransparentPixel(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(emptyTile))
	if err != nil {
		t.Fatalf("decode empty tile: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Fatalf("bounds = %v, want 1x1", b)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("alpha = %d, want 0", a)
	}
}

func TestRouterSetup_TileProxy(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	srv := newTestServer(t, client, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tiles/proxy/heatmap/3/4/2?format=PNG&style=abc123&date-range=2025-01-01,2025-01-31", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != tileCacheControl {
		t.Errorf("Cache-Control = %q, want %q", cc, tileCacheControl)
	}
	if !bytes.Equal(w.Body.Bytes(), client.tile) {
		t.Errorf("body = %q, want upstream tile", w.Body.Bytes())
	}

	last := client.lastTile
	if last.Path != "heatmap/3/4/2" {
		t.Errorf("tile path = %q", last.Path)
	}
	if last.Query.Get("style") != "abc123" || last.Query.Get("date-range") != "2025-01-01,2025-01-31" {
		t.Errorf("tile query = %v", last.Query)
	}
}

func TestRouterSetup_TileProxyServesEmptyTileOnFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"no upstream client", nil},
		{"upstream 404", &fakeClient{calls: map[string]int{}, err: &gfw.StatusError{Operation: gfw.OpGetTile, StatusCode: http.StatusNotFound}}},
		{"upstream 500", &fakeClient{calls: map[string]int{}, err: &gfw.StatusError{Operation: gfw.OpGetTile, StatusCode: http.StatusInternalServerError}}},
		{"circuit open", &fakeClient{calls: map[string]int{}, err: errors.Join(gfw.ErrCircuitOpen, gfw.ErrUpstreamUnavailable)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var client gfw.Client
			if tt.client != nil {
				client = tt.client
			}
			srv := newTestServer(t, client, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tiles/proxy/heatmap/0/0/0", nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != emptyTileCacheControl {
				t.Errorf("Cache-Control = %q, want %q", cc, emptyTileCacheControl)
			}
			if !bytes.Equal(w.Body.Bytes(), emptyTile) {
				t.Error("body is not the empty tile")
			}
		})
	}
}

func TestRouterSetup_TileProxyNotResponseCached(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	srv := newTestServer(t, client, cache.New(10, time.Minute))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tiles/proxy/heatmap/1/1/1", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		if w.Header().Get(HeaderCache) != "" {
			t.Errorf("request %d: %s = %q, want unset", i, HeaderCache, w.Header().Get(HeaderCache))
		}
	}
	if n := client.count("tile"); n != 2 {
		t.Errorf("tile calls = %d, want 2", n)
	}
}

func TestRouterSetup_GenerateStyle(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	srv := newTestServer(t, client, nil)

	body := `{"start_date":"2025-01-01","end_date":"2025-01-31","color":"#FF0000","filters":{"matched":false,"flag":["ESP"]}}`
	w, resp := doRequest(t, srv, http.MethodPost, "/api/v1/generate-style", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var out darkvessel.HeatmapStyle
	decodeData(t, resp, &out)
	if out.StyleID != "abc123" {
		t.Errorf("style_id = %q, want upstream style", out.StyleID)
	}
	if !strings.HasPrefix(out.ProxyTileURL, darkvessel.ProxyTileTemplate+"?") || !strings.Contains(out.ProxyTileURL, "style=abc123") {
		t.Errorf("proxy_tile_url = %q", out.ProxyTileURL)
	}
	if !strings.Contains(out.TileURL, "/4wings/tile/heatmap/{z}/{x}/{y}?") {
		t.Errorf("tile_url = %q", out.TileURL)
	}

	sent := client.lastStyle
	if sent.DateRange != "2025-01-01,2025-01-31" || sent.Color != "#FF0000" {
		t.Errorf("style request = %+v", sent)
	}
	if sent.Filter != "matched='false' AND flag in ('ESP')" {
		t.Errorf("filter = %q", sent.Filter)
	}

	// Same body again is answered from the style memo.
	if w, _ := doRequest(t, srv, http.MethodPost, "/api/v1/generate-style", body); w.Code != http.StatusOK {
		t.Fatalf("second status = %d", w.Code)
	}
	if n := client.count("style"); n != 1 {
		t.Errorf("style calls = %d, want 1", n)
	}
}

func TestRouterSetup_GenerateStyleDateRangeField(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	srv := newTestServer(t, client, nil)

	w, _ := doRequest(t, srv, http.MethodPost, "/api/v1/generate-style", `{"date_range":"2025-04-01,2025-04-30","interval":"MONTH"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := client.lastStyle; got.DateRange != "2025-04-01,2025-04-30" || got.Interval != "MONTH" {
		t.Errorf("style request = %+v", got)
	}
}

func TestRouterSetup_GenerateStyleValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `not json`},
		{"missing dates", `{}`},
		{"missing end", `{"start_date":"2025-01-01"}`},
		{"bad date format", `{"start_date":"01/01/2025","end_date":"2025-01-31"}`},
		{"end before start", `{"start_date":"2025-02-01","end_date":"2025-01-31"}`},
		{"bad interval", `{"start_date":"2025-01-01","end_date":"2025-01-31","interval":"WEEK"}`},
		{"bad color", `{"start_date":"2025-01-01","end_date":"2025-01-31","color":"red"}`},
		{"unknown geartype", `{"start_date":"2025-01-01","end_date":"2025-01-31","filters":{"geartype":["spears"]}}`},
	}

	client := newFakeClient()
	srv := newTestServer(t, client, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doRequest(t, srv, http.MethodPost, "/api/v1/generate-style", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if resp.Error == nil || resp.Error.Code != ErrCodeValidation {
				t.Errorf("error = %+v, want %s", resp.Error, ErrCodeValidation)
			}
		})
	}
	if n := client.count("style"); n != 0 {
		t.Errorf("style calls = %d, want 0", n)
	}
}
