// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/metrics"
)

// maxResponseSize bounds a successful upstream body.
const maxResponseSize = 64 << 20

// Operation names used in errors and metrics.
const (
	OpCreateReport      = "create_report"
	OpGetEvents         = "get_events"
	OpGetVesselInsights = "get_vessel_insights"
	OpGetVessel         = "get_vessel"
	OpSearchVessels     = "search_vessels"
	OpGetBins           = "get_bins"
	OpGetStats          = "get_stats"
	OpGetTile           = "get_tile"
	OpGeneratePNG       = "generate_png"
)

// Client is the Vessel Activity API. Payloads are returned undecoded so
// callers can pass them through or normalize them.
//
// Every error is either a client-side rejection (ErrInvalidRequest,
// ErrInvalidPagination) raised before any I/O, or wraps
// ErrUpstreamUnavailable.
type Client interface {
	CreateReport(ctx context.Context, req ReportRequest) (json.RawMessage, error)
	GetEvents(ctx context.Context, req EventsRequest) (json.RawMessage, error)
	GetVesselInsights(ctx context.Context, req InsightsRequest) (json.RawMessage, error)
	GetVessel(ctx context.Context, vesselID, dataset string) (json.RawMessage, error)
	SearchVessels(ctx context.Context, req SearchRequest) (json.RawMessage, error)
	GetBins(ctx context.Context, req BinsRequest) (json.RawMessage, error)
	GetStats(ctx context.Context, req StatsRequest) (json.RawMessage, error)
	GetTile(ctx context.Context, req TileRequest) (*Tile, error)
	GeneratePNG(ctx context.Context, req StyleRequest) (json.RawMessage, error)
}

// HTTPClient talks to the Global Fishing Watch v3 REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// Option customizes an HTTPClient.
type Option func(*options)

type options struct {
	transport http.RoundTripper
}

// WithTransport sets the transport beneath the retry layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// NewHTTPClient creates a client. Retries and authentication are
// handled inside the transport so every operation gets them.
func NewHTTPClient(cfg *config.GFWConfig, tokens TokenSource, opts ...Option) *HTTPClient {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultGFWBaseURL
	}

	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newRetryTransport(o.transport, tokens, cfg.MaxRetries, cfg.RetryBackoff),
		},
	}
}

// CreateReport requests a 4Wings report for one region.
func (c *HTTPClient) CreateReport(ctx context.Context, req ReportRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, OpCreateReport, http.MethodPost, "/4wings/report", req.query(), req.body())
}

// GetEvents runs a generic events query. Pagination is validated
// before any I/O.
func (c *HTTPClient) GetEvents(ctx context.Context, req EventsRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	req.Pagination.apply(q)
	return c.do(ctx, OpGetEvents, http.MethodPost, "/events", q, req.body())
}

// GetVesselInsights fetches aggregated insight counters.
func (c *HTTPClient) GetVesselInsights(ctx context.Context, req InsightsRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, OpGetVesselInsights, http.MethodPost, "/insights/vessels", nil, req)
}

// GetVessel fetches one vessel identity record.
func (c *HTTPClient) GetVessel(ctx context.Context, vesselID, dataset string) (json.RawMessage, error) {
	vesselID = strings.TrimSpace(vesselID)
	if vesselID == "" {
		return nil, fmt.Errorf("%w: vessel id is required", ErrInvalidRequest)
	}
	if dataset == "" {
		dataset = DatasetVesselIdentity
	}
	q := url.Values{}
	q.Set("dataset", dataset)
	return c.do(ctx, OpGetVessel, http.MethodGet, "/vessels/"+url.PathEscape(vesselID), q, nil)
}

// SearchVessels runs a free text or structured identity search.
func (c *HTTPClient) SearchVessels(ctx context.Context, req SearchRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, OpSearchVessels, http.MethodGet, "/vessels/search", req.query(), nil)
}

// GetBins fetches value breakpoints for a zoom level.
func (c *HTTPClient) GetBins(ctx context.Context, req BinsRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, OpGetBins, http.MethodGet, "/4wings/bins/"+strconv.Itoa(req.Zoom), req.query(), nil)
}

// GetStats fetches global dataset statistics.
func (c *HTTPClient) GetStats(ctx context.Context, req StatsRequest) (json.RawMessage, error) {
	return c.do(ctx, OpGetStats, http.MethodGet, "/4wings/stats", req.query(), nil)
}

// GetTile fetches one rendered 4Wings tile. The body is returned as is.
func (c *HTTPClient) GetTile(ctx context.Context, req TileRequest) (*Tile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	raw, contentType, err := c.fetch(ctx, OpGetTile, http.MethodGet, req.path(), req.Query, nil, "image/png")
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "image/png"
	}
	return &Tile{Data: raw, ContentType: contentType}, nil
}

// GeneratePNG registers a heatmap style and returns the upstream answer,
// which carries the tile URL template and the color ramp.
func (c *HTTPClient) GeneratePNG(ctx context.Context, req StyleRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.do(ctx, OpGeneratePNG, http.MethodPost, "/4wings/generate-png", req.query(), nil)
}

// do performs one logical upstream call and returns the raw body of a
// 2xx response.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	raw, _, err := c.fetch(ctx, op, method, path, query, body, "application/json")
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%s: %w: response is not valid JSON", op, ErrUpstreamUnavailable)
	}
	return json.RawMessage(raw), nil
}

// fetch sends the request and returns the body and content type of a
// 2xx response.
func (c *HTTPClient) fetch(ctx context.Context, op, method, path string, query url.Values, body interface{}, accept string) ([]byte, string, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, "", fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(op, 0, time.Since(start))
		return nil, "", fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: failed to read response: %w", op, ErrUpstreamUnavailable, err)
	}
	return raw, resp.Header.Get("Content-Type"), nil
}

// readBodyForError reads a bounded excerpt of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	body = bytes.TrimSpace(body)
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}

// IsClientError reports whether err was raised before any I/O because
// the request itself was invalid.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidPagination)
}
