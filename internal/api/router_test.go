// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/cache"
	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/models"
)

const (
	dates = "start_date=2025-04-01&end_date=2025-04-01"

	// Two unmatched detections about 2.2 km apart on one day, plus a
	// matched one that must be ignored.
	clusterPayload = `{"entries":[{"public-global-sar-presence:v3.0":[
		{"date":"2025-04-01","detections":1,"lat":10.00,"lon":20.00,"matched":false},
		{"date":"2025-04-01","detections":1,"lat":10.02,"lon":20.00,"matched":false},
		{"date":"2025-04-01","detections":4,"lat":10.01,"lon":20.00,"matched":true}]}]}`

	// Two gaps of one vessel six hours and about 15 km apart.
	routeGapPayload = `{"entries":[
		{"id":"g1","start":"2025-04-01T00:00:00Z","position":{"lat":1.0,"lon":1.0},"vessel":{"id":"v1"}},
		{"id":"g2","start":"2025-04-01T06:00:00Z","position":{"lat":1.1,"lon":1.1},"vessel":{"id":"v1"}}]}`
)

func TestRouterSetup_HealthEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		client     *fakeClient
		opts       []HandlerOption
		path       string
		wantStatus int
	}{
		{"health without client", nil, nil, "/api/v1/health", http.StatusOK},
		{"live without client", nil, nil, "/api/v1/health/live", http.StatusOK},
		{"ready without client", nil, nil, "/api/v1/health/ready", http.StatusServiceUnavailable},
		{"ready with client", newFakeClient(), nil, "/api/v1/health/ready", http.StatusOK},
		{"ready without token", newFakeClient(), []HandlerOption{WithTokenStatus(staticTokens(false))}, "/api/v1/health/ready", http.StatusServiceUnavailable},
		{"ready with open circuit", &fakeClient{state: "open", calls: map[string]int{}}, nil, "/api/v1/health/ready", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var client gfw.Client
			if tt.client != nil {
				client = tt.client
			}
			srv := newTestServer(t, client, nil, tt.opts...)
			w, _ := doRequest(t, srv, http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRouterSetup_HealthReportsDegraded(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil)
	_, resp := doRequest(t, srv, http.MethodGet, "/api/v1/health", "")

	var health HealthStatus
	decodeData(t, resp, &health)
	if health.Status != "degraded" || health.UpstreamConfigured {
		t.Errorf("health = %+v, want degraded without upstream", health)
	}
	if health.CircuitState != "none" {
		t.Errorf("CircuitState = %q, want none", health.CircuitState)
	}
}

func TestRouterSetup_MissingParameters(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeClient(), nil)
	tests := []struct {
		name string
		path string
	}{
		{"detections without dates", "/api/v1/detections?eez_ids=8492"},
		{"detections without regions", "/api/v1/detections?" + dates},
		{"clusters without end date", "/api/v1/detections/proximity-clusters?eez_ids=8492&start_date=2025-04-01"},
		{"routes without regions", "/api/v1/detections/routes?" + dates},
		{"association without dates", "/api/v1/detections/sar-ais-association?eez_ids=8492"},
		{"gaps without regions", "/api/v1/gaps?" + dates},
		{"events without dates", "/api/v1/events"},
		{"summary without regions", "/api/v1/summary?" + dates},
		{"search without query", "/api/v1/vessels/search"},
		{"risk score without dates", "/api/v1/analytics/risk-score/v1"},
		{"analytics without regions", "/api/v1/analytics/dark-vessels?" + dates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, resp := doRequest(t, srv, http.MethodGet, tt.path, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if resp.Success || resp.Error == nil {
				t.Fatalf("response = %+v, want error envelope", resp)
			}
			if resp.Error.Code != ErrCodeValidation {
				t.Errorf("code = %q, want %q", resp.Error.Code, ErrCodeValidation)
			}
			if !strings.Contains(resp.Error.Message, "Missing") {
				t.Errorf("message = %q, want it to mention Missing", resp.Error.Message)
			}
		})
	}
}

func TestRouterSetup_InvalidParameters(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeClient(), nil)
	tests := []struct {
		name string
		path string
	}{
		{"reversed range", "/api/v1/detections?eez_ids=8492&start_date=2025-04-05&end_date=2025-04-01"},
		{"bad date format", "/api/v1/detections?eez_ids=8492&start_date=04/01/2025&end_date=2025-04-01"},
		{"cluster distance above limit", "/api/v1/detections/proximity-clusters?eez_ids=8492&" + dates + "&max_distance_km=100"},
		{"cluster distance zero", "/api/v1/detections/proximity-clusters?eez_ids=8492&" + dates + "&max_distance_km=0"},
		{"cluster distance not a number", "/api/v1/detections/proximity-clusters?eez_ids=8492&" + dates + "&max_distance_km=far"},
		{"route time above limit", "/api/v1/detections/routes?eez_ids=8492&" + dates + "&max_time_hours=1000"},
		{"route length below two", "/api/v1/detections/routes?eez_ids=8492&" + dates + "&min_route_length=1"},
		{"unknown geartype", "/api/v1/detections?eez_ids=8492&" + dates + "&geartype=rowboat"},
		{"limit without offset", "/api/v1/events?" + dates + "&limit=10"},
		{"offset without limit", "/api/v1/events?" + dates + "&offset=0"},
		{"bad group by", "/api/v1/summary?eez_ids=8492&" + dates + "&group_by=COLOR"},
		{"zoom out of range", "/api/v1/bins/13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w, resp := doRequest(t, srv, http.MethodGet, tt.path, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if resp.Error == nil || resp.Error.Code != ErrCodeValidation {
				t.Errorf("error = %+v, want %s", resp.Error, ErrCodeValidation)
			}
		})
	}
}

func TestRouterSetup_ProximityClusters(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.report = clusterPayload
	srv := newTestServer(t, client, nil)

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/detections/proximity-clusters?eez_ids=8492&"+dates, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var out ClustersResponse
	decodeData(t, resp, &out)
	if out.TotalClusters != 1 || len(out.Clusters) != 1 {
		t.Fatalf("clusters = %+v, want one", out.Clusters)
	}
	c := out.Clusters[0]
	if c.VesselCount != 2 || c.DetectionCount != 2 {
		t.Errorf("cluster counts = %d/%d, want 2/2", c.VesselCount, c.DetectionCount)
	}
	if c.RiskTier != models.RiskTierMedium {
		t.Errorf("RiskTier = %q, want medium", c.RiskTier)
	}
	if c.Date == nil || *c.Date != "2025-04-01" {
		t.Errorf("Date = %v, want 2025-04-01", c.Date)
	}
	if out.Parameters.MaxDistanceKm != 5 || !out.Parameters.SameDateOnly {
		t.Errorf("parameters = %+v, want defaults", out.Parameters)
	}
	if out.RiskCounts[models.RiskTierMedium] != 1 {
		t.Errorf("risk counts = %v", out.RiskCounts)
	}
	if client.count("events") != 0 {
		t.Errorf("events calls = %d, want none for clustering", client.count("events"))
	}
}

func TestRouterSetup_ProximityClustersTightDistance(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.report = clusterPayload
	srv := newTestServer(t, client, nil)

	_, resp := doRequest(t, srv, http.MethodGet, "/api/v1/detections/proximity-clusters?eez_ids=8492&"+dates+"&max_distance_km=1", "")
	var out ClustersResponse
	decodeData(t, resp, &out)
	if out.TotalClusters != 0 {
		t.Errorf("clusters = %+v, want none within 1 km", out.Clusters)
	}
}

func TestRouterSetup_Routes(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.events = routeGapPayload
	srv := newTestServer(t, client, nil)

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/detections/routes?eez_ids=8492&"+dates, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var out RoutesResponse
	decodeData(t, resp, &out)
	if out.TotalRoutes != 1 || len(out.Routes) != 1 {
		t.Fatalf("routes = %+v, want one", out.Routes)
	}
	route := out.Routes[0]
	if route.PointCount != 2 {
		t.Errorf("PointCount = %d, want 2", route.PointCount)
	}
	if route.VesselID == nil || *route.VesselID != "v1" {
		t.Errorf("VesselID = %v, want v1", route.VesselID)
	}
	if out.InputPoints != 2 {
		t.Errorf("InputPoints = %d, want 2", out.InputPoints)
	}
}

func TestRouterSetup_SARAISAssociation(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.report = clusterPayload
	srv := newTestServer(t, client, nil)

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/detections/sar-ais-association?eez_ids=8492&"+dates, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", resp.Data)
	}
	if _, ok := data["matched"]; !ok {
		t.Errorf("data = %v, want matched totals", data)
	}
	if _, ok := data["unmatched"]; !ok {
		t.Errorf("data = %v, want unmatched totals", data)
	}
}

func TestRouterSetup_NoClientIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil)
	paths := []string{
		"/api/v1/detections?eez_ids=8492&" + dates,
		"/api/v1/detections/proximity-clusters?eez_ids=8492&" + dates,
		"/api/v1/gaps?eez_ids=8492&" + dates,
		"/api/v1/events?" + dates,
		"/api/v1/vessels/search?query=albatross",
		"/api/v1/vessels/v1",
		"/api/v1/bins/4",
		"/api/v1/analytics/risk-score/v1?" + dates,
	}

	for _, path := range paths {
		w, resp := doRequest(t, srv, http.MethodGet, path, "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, w.Code)
			continue
		}
		if resp.Error == nil || resp.Error.Code != ErrCodeServiceUnavailable {
			t.Errorf("%s: error = %+v", path, resp.Error)
		}
	}
}

func TestRouterSetup_UpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found passes through", &gfw.StatusError{Operation: "get_vessel", StatusCode: 404}, http.StatusNotFound, ErrCodeNotFound},
		{"server error is bad gateway", &gfw.StatusError{Operation: "get_vessel", StatusCode: 500}, http.StatusBadGateway, ErrCodeUpstream},
		{"auth failure is bad gateway", &gfw.StatusError{Operation: "get_vessel", StatusCode: 401}, http.StatusBadGateway, ErrCodeUpstream},
		{"open circuit", gfw.ErrCircuitOpen, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"missing token", gfw.ErrNoToken, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := newFakeClient()
			client.err = tt.err
			srv := newTestServer(t, client, nil)

			w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/vessels/v1", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestRouterSetup_EventsPassThrough(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.events = `{"entries":[{"id":"e1"}],"total":1}`
	srv := newTestServer(t, client, nil)

	w, resp := doRequest(t, srv, http.MethodGet,
		"/api/v1/events?"+dates+"&event_types=encounters,unknown,fishing&limit=5&offset=10&region=8492", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok || data["total"] != float64(1) {
		t.Errorf("data = %v, want upstream payload", resp.Data)
	}

	req := client.lastEvents
	want := []string{gfw.DatasetEncounters, gfw.DatasetFishingEvents}
	if len(req.Datasets) != len(want) || req.Datasets[0] != want[0] || req.Datasets[1] != want[1] {
		t.Errorf("Datasets = %v, want %v", req.Datasets, want)
	}
	if req.Limit == nil || *req.Limit != 5 || req.Offset == nil || *req.Offset != 10 {
		t.Errorf("pagination = %v/%v, want 5/10", req.Limit, req.Offset)
	}
	if req.Region == nil || req.Region.ID != 8492 {
		t.Errorf("Region = %+v, want EEZ 8492", req.Region)
	}
}

func TestRouterSetup_Gaps(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.events = routeGapPayload
	srv := newTestServer(t, client, nil)

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/gaps?eez_ids=8492&"+dates+"&limit=50", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var out GapsResponse
	decodeData(t, resp, &out)
	if out.Total != 2 || len(out.Gaps) != 2 {
		t.Errorf("gaps = %+v, want 2", out.Gaps)
	}

	req := client.lastEvents
	if req.IntentionalOnly == nil || !*req.IntentionalOnly {
		t.Error("IntentionalOnly should default to true")
	}
	if req.Limit == nil || *req.Limit != 50 || req.Offset == nil || *req.Offset != 0 {
		t.Errorf("pagination = %v/%v, want 50/0", req.Limit, req.Offset)
	}
}

func TestRouterSetup_Insights(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.insights = `{"gap":{"periodSelectedCounters":{"events":3}}}`
	srv := newTestServer(t, client, nil)

	body := `{"start_date":"2025-01-01","end_date":"2025-03-31","vessel_ids":["v1","v2"]}`
	w, _ := doRequest(t, srv, http.MethodPost, "/api/v1/insights", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	req := client.lastInsights
	if len(req.Vessels) != 2 || req.Vessels[0].DatasetID != gfw.DatasetVesselIdentity {
		t.Errorf("vessels = %+v", req.Vessels)
	}
	if len(req.Includes) != 2 || req.Includes[0] != gfw.InsightFishing || req.Includes[1] != gfw.InsightIUUVesselList {
		t.Errorf("includes = %v, want default includes", req.Includes)
	}

	w, _ = doRequest(t, srv, http.MethodPost, "/api/v1/insights", `{"start_date":"2025-01-01","end_date":"2025-03-31"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing vessel_ids: status = %d, want 400", w.Code)
	}
	w, _ = doRequest(t, srv, http.MethodPost, "/api/v1/insights", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", w.Code)
	}
	w, _ = doRequest(t, srv, http.MethodGet, "/api/v1/insights", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET insights: status = %d, want 405", w.Code)
	}
}

func TestRouterSetup_DarkVesselAnalytics(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.report = clusterPayload
	srv := newTestServer(t, client, nil)

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/analytics/dark-vessels?eez_ids=8492&"+dates, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var out DarkVesselAnalyticsResponse
	decodeData(t, resp, &out)
	if out.Statistics.SARDetections != 2 || out.Statistics.EEZCount != 1 {
		t.Errorf("statistics = %+v", out.Statistics)
	}
	if len(out.SARGlobal.Data) == 0 || out.SARGlobal.Error != "" {
		t.Errorf("sar_global = %+v, want data", out.SARGlobal)
	}
	if out.EnhancedStatistics.RegionID != "8492" {
		t.Errorf("enhanced statistics region = %q", out.EnhancedStatistics.RegionID)
	}
}

func TestRouterSetup_ResponseCache(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	c := cache.New(10, time.Minute)
	srv := newTestServer(t, client, c)
	path := "/api/v1/vessels/search?query=albatross"

	w, first := doRequest(t, srv, http.MethodGet, path, "")
	if got := w.Header().Get(HeaderCache); got != cacheMiss {
		t.Errorf("first request X-Cache = %q, want MISS", got)
	}
	firstData, _ := json.Marshal(first.Data)

	w, resp := doRequest(t, srv, http.MethodGet, path, "")
	if got := w.Header().Get(HeaderCache); got != cacheHit {
		t.Errorf("second request X-Cache = %q, want HIT", got)
	}
	secondData, _ := json.Marshal(resp.Data)
	if !resp.Success || string(secondData) != string(firstData) {
		t.Error("cached response should replay the stored data")
	}
	if resp.Meta == nil || first.Meta == nil {
		t.Fatal("cached response lost its meta")
	}
	if resp.Meta.RequestID != w.Header().Get("X-Request-ID") || resp.Meta.RequestID == first.Meta.RequestID {
		t.Errorf("meta request id = %q, want the new request's %q", resp.Meta.RequestID, w.Header().Get("X-Request-ID"))
	}
	if client.count("search") != 1 {
		t.Errorf("search calls = %d, want 1", client.count("search"))
	}

	w, _ = doRequest(t, srv, http.MethodGet, path+"&cache=false", "")
	if got := w.Header().Get(HeaderCache); got != cacheBypass {
		t.Errorf("bypass X-Cache = %q, want BYPASS", got)
	}
	if client.count("search") != 2 {
		t.Errorf("search calls = %d, want 2 after bypass", client.count("search"))
	}
}

func TestRouterSetup_ResponseCacheSkipsErrors(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.err = &gfw.StatusError{Operation: "get_vessel", StatusCode: 404}
	c := cache.New(10, time.Minute)
	srv := newTestServer(t, client, c)

	for i := 0; i < 2; i++ {
		w, _ := doRequest(t, srv, http.MethodGet, "/api/v1/vessels/missing", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		if got := w.Header().Get(HeaderCache); got != cacheMiss {
			t.Errorf("request %d X-Cache = %q, want MISS", i, got)
		}
	}
	if client.count("vessel") != 2 {
		t.Errorf("vessel calls = %d, want 2", client.count("vessel"))
	}
	if c.Len() != 0 {
		t.Errorf("cache entries = %d, want 0", c.Len())
	}
}

func TestRouterSetup_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil)
	w, _ := doRequest(t, srv, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRouterSetup_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil)

	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/nope", "")
	if w.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route: status = %d, error = %+v", w.Code, resp.Error)
	}

	w, resp = doRequest(t, srv, http.MethodDelete, "/api/v1/configs", "")
	if w.Code != http.StatusMethodNotAllowed || resp.Error == nil || resp.Error.Code != ErrCodeMethodNotAllowed {
		t.Errorf("wrong method: status = %d, error = %+v", w.Code, resp.Error)
	}
}

func TestRouterSetup_RequestIDEchoed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, nil, nil)
	w, resp := doRequest(t, srv, http.MethodGet, "/api/v1/configs", "")
	id := w.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("X-Request-ID header missing")
	}
	if resp.Meta == nil || resp.Meta.RequestID != id {
		t.Errorf("meta = %+v, want request id %s", resp.Meta, id)
	}
}
