// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/cache"
	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/gfw"
)

// fakeClient answers upstream calls from canned payloads and counts them.
type fakeClient struct {
	mu sync.Mutex

	report   string
	events   string
	insights string
	vessel   string
	search   string
	bins     string
	stats    string
	style    string
	tile     []byte
	err      error
	state    string

	calls         map[string]int
	lastEvents    gfw.EventsRequest
	lastInsights  gfw.InsightsRequest
	lastSearch    gfw.SearchRequest
	lastBins      gfw.BinsRequest
	lastVesselID  string
	lastVesselSet string
	lastTile      gfw.TileRequest
	lastStyle     gfw.StyleRequest
}

var _ gfw.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		report:   `{"entries":[]}`,
		events:   `{"entries":[],"total":0}`,
		insights: `{}`,
		vessel:   `{"id":"v1"}`,
		search:   `{"entries":[]}`,
		bins:     `{"entries":[[1,2,3]]}`,
		stats:    `{"entries":[{"detections":5}]}`,
		style:    `{"colorRamp":{"stepsByZoom":{}},"url":"https://gateway.api.globalfishingwatch.org/v3/4wings/tile/heatmap/{z}/{x}/{y}?style=abc123"}`,
		tile:     []byte("\x89PNG tile"),
		calls:    make(map[string]int),
	}
}

func (f *fakeClient) answer(op, payload string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(payload), nil
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) CreateReport(_ context.Context, _ gfw.ReportRequest) (json.RawMessage, error) {
	return f.answer("report", f.report)
}

func (f *fakeClient) GetEvents(_ context.Context, req gfw.EventsRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.lastEvents = req
	f.mu.Unlock()
	return f.answer("events", f.events)
}

func (f *fakeClient) GetVesselInsights(_ context.Context, req gfw.InsightsRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.lastInsights = req
	f.mu.Unlock()
	return f.answer("insights", f.insights)
}

func (f *fakeClient) GetVessel(_ context.Context, vesselID, dataset string) (json.RawMessage, error) {
	f.mu.Lock()
	f.lastVesselID = vesselID
	f.lastVesselSet = dataset
	f.mu.Unlock()
	return f.answer("vessel", f.vessel)
}

func (f *fakeClient) SearchVessels(_ context.Context, req gfw.SearchRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.lastSearch = req
	f.mu.Unlock()
	return f.answer("search", f.search)
}

func (f *fakeClient) GetBins(_ context.Context, req gfw.BinsRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.lastBins = req
	f.mu.Unlock()
	return f.answer("bins", f.bins)
}

func (f *fakeClient) GetStats(_ context.Context, _ gfw.StatsRequest) (json.RawMessage, error) {
	return f.answer("stats", f.stats)
}

func (f *fakeClient) GetTile(_ context.Context, req gfw.TileRequest) (*gfw.Tile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["tile"]++
	f.lastTile = req
	if f.err != nil {
		return nil, f.err
	}
	return &gfw.Tile{Data: f.tile, ContentType: "image/png"}, nil
}

func (f *fakeClient) GeneratePNG(_ context.Context, req gfw.StyleRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.lastStyle = req
	f.mu.Unlock()
	return f.answer("style", f.style)
}

// State makes the fake look like a circuit breaker when state is set.
func (f *fakeClient) State() string {
	if f.state == "" {
		return "closed"
	}
	return f.state
}

type staticTokens bool

func (s staticTokens) Configured() bool { return bool(s) }

// testConfig returns defaults without report pacing or rate limiting.
func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Aggregator.ReportDelay = 0
	cfg.Security.RateLimitDisabled = true
	return cfg
}

// newTestServer wires client (which may be nil) behind the full router.
func newTestServer(t *testing.T, client gfw.Client, respCache *cache.Cache, opts ...HandlerOption) http.Handler {
	t.Helper()
	cfg := testConfig()
	if respCache != nil {
		opts = append(opts, WithResponseCache(respCache))
	}
	h := NewHandler(cfg, client, nil, opts...)
	return NewRouter(h, NewChiMiddlewareFromConfig(cfg.Security), respCache).SetupChi()
}

// doRequest runs one request and decodes the envelope.
func doRequest(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var resp APIResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v (body %s)", method, target, err, w.Body.String())
		}
	}
	return w, resp
}

// decodeData re-decodes the envelope data into out.
func decodeData(t *testing.T, resp APIResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal data: %v (data %s)", err, raw)
	}
}
