// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"

	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/metrics"
)

// ProxyTileTemplate is the tile route served by this API.
const ProxyTileTemplate = "/api/v1/tiles/proxy/heatmap/{z}/{x}/{y}"

// HeatmapStyle is a registered 4Wings heatmap style with the URLs a map
// client needs to render it.
type HeatmapStyle struct {
	StyleID      string          `json:"style_id"`
	TileURL      string          `json:"tile_url,omitempty"`
	ProxyTileURL string          `json:"proxy_tile_url"`
	ColorRamp    json.RawMessage `json:"colorRamp"`
}

// StyleKey identifies a style request. Identical requests share a key.
func StyleKey(req gfw.StyleRequest) string {
	canonical := strings.Join([]string{req.Dataset, req.Interval, req.DateRange, strings.ToLower(req.Color), req.Filter}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}

// GenerateStyle registers a heatmap style upstream, or returns the
// memoized one for an identical request.
func (s *Service) GenerateStyle(ctx context.Context, req gfw.StyleRequest) (*HeatmapStyle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := StyleKey(req)
	if s.styles != nil {
		if cached, ok := s.styles.Get(key); ok {
			style := *cached.(*HeatmapStyle)
			return &style, nil
		}
	}

	raw, err := s.client.GeneratePNG(ctx, req)
	metrics.RecordAggregatorFetch(KindStyle, err)
	if err != nil {
		return nil, err
	}
	var upstream struct {
		ColorRamp json.RawMessage `json:"colorRamp"`
		URL       string          `json:"url"`
	}
	if err := json.Unmarshal(raw, &upstream); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrMalformedShape, gfw.ErrUpstreamUnavailable, err)
	}

	tileBase, styleID := splitStyleURL(upstream.URL)
	if styleID == "" {
		styleID = key
	}
	query := req.TileQuery(styleID).Encode()
	style := &HeatmapStyle{
		StyleID:      styleID,
		ProxyTileURL: ProxyTileTemplate + "?" + query,
		ColorRamp:    upstream.ColorRamp,
	}
	if tileBase != "" {
		style.TileURL = tileBase + "?" + query
	}
	if len(style.ColorRamp) == 0 {
		style.ColorRamp = json.RawMessage("null")
	}

	if s.styles != nil {
		s.styles.Set(key, style, gocache.DefaultExpiration)
	}
	out := *style
	return &out, nil
}

// FlushStyles drops memoized heatmap styles.
func (s *Service) FlushStyles() {
	if s.styles != nil {
		s.styles.Flush()
	}
}

// splitStyleURL returns the tile template without its query and the
// style parameter of an upstream tile URL. The style value is base64, so
// '+' is kept literally.
func splitStyleURL(raw string) (string, string) {
	if raw == "" {
		return "", ""
	}
	base, rawQuery, _ := strings.Cut(raw, "?")
	for _, pair := range strings.Split(rawQuery, "&") {
		name, value, _ := strings.Cut(pair, "=")
		if name != "style" {
			continue
		}
		if unescaped, err := url.PathUnescape(value); err == nil {
			return base, unescaped
		}
		return base, value
	}
	return base, ""
}
