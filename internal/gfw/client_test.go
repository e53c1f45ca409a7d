// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jarcoal/httpmock"

	"github.com/tomtom215/darkwatch/internal/config"
)

const testBaseURL = "https://gfw.test/v3"

func newTestClient(t *testing.T, tokens TokenSource) (*HTTPClient, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	cfg := &config.GFWConfig{
		BaseURL:      testBaseURL + "/",
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}
	return NewHTTPClient(cfg, tokens, WithTransport(mock)), mock
}

func readJSONBody(t *testing.T, req *http.Request) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return body
}

func TestCreateReport_RequestShape(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))

	var gotQuery map[string][]string
	var gotBody map[string]interface{}
	var gotAuth string
	mock.RegisterResponder(http.MethodPost, testBaseURL+"/4wings/report",
		func(req *http.Request) (*http.Response, error) {
			gotQuery = req.URL.Query()
			gotBody = readJSONBody(t, req)
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewStringResponse(http.StatusOK, `{"entries":[]}`), nil
		})

	raw, err := client.CreateReport(context.Background(), ReportRequest{
		Dataset:   DatasetSARPresence,
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		Filter:    DarkFilter().String(),
		RegionID:  "8493",
		GroupBy:   "FLAG",
	})
	if err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}
	if string(raw) != `{"entries":[]}` {
		t.Errorf("payload = %s", raw)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	wantQuery := map[string]string{
		"datasets[0]":         DatasetSARPresence,
		"format":              "JSON",
		"temporal-resolution": TemporalDaily,
		"spatial-resolution":  SpatialHigh,
		"date-range":          "2025-01-01,2025-01-31",
		"filters[0]":          "matched='false'",
		"group-by":            "FLAG",
	}
	for key, want := range wantQuery {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("query %s = %v, want %q", key, got, want)
		}
	}

	region, ok := gotBody["region"].(map[string]interface{})
	if !ok {
		t.Fatalf("body region missing: %v", gotBody)
	}
	if region["dataset"] != DatasetEEZAreas {
		t.Errorf("region dataset = %v", region["dataset"])
	}
	// Numeric ids are sent as JSON numbers.
	if region["id"] != float64(8493) {
		t.Errorf("region id = %#v, want 8493", region["id"])
	}
}

func TestCreateReport_InvalidResolution(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))

	_, err := client.CreateReport(context.Background(), ReportRequest{
		Dataset:            DatasetSARPresence,
		StartDate:          "2025-01-01",
		EndDate:            "2025-01-02",
		TemporalResolution: "HOURLY",
	})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("error = %v, want ErrInvalidRequest", err)
	}
	if mock.GetTotalCallCount() != 0 {
		t.Errorf("made %d upstream calls, want 0", mock.GetTotalCallCount())
	}
}

func TestGetEvents_Pagination(t *testing.T) {
	one, zero, negative := 1, 0, -1

	tests := []struct {
		name      string
		page      Pagination
		wantErr   bool
		wantQuery string
	}{
		{name: "both omitted", page: Pagination{}},
		{name: "both valid", page: Page(1, 0), wantQuery: "limit=1&offset=0"},
		{name: "limit only", page: Pagination{Limit: &one}, wantErr: true},
		{name: "offset only", page: Pagination{Offset: &zero}, wantErr: true},
		{name: "zero limit", page: Pagination{Limit: &zero, Offset: &zero}, wantErr: true},
		{name: "negative offset", page: Pagination{Limit: &one, Offset: &negative}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t, StaticToken("secret"))

			var rawQuery string
			mock.RegisterResponder(http.MethodPost, testBaseURL+"/events",
				func(req *http.Request) (*http.Response, error) {
					rawQuery = req.URL.RawQuery
					return httpmock.NewStringResponse(http.StatusOK, `{"entries":[],"total":0}`), nil
				})

			_, err := client.GetEvents(context.Background(), EventsRequest{
				Datasets:   []string{DatasetGaps},
				Pagination: tt.page,
			})

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPagination) {
					t.Fatalf("error = %v, want ErrInvalidPagination", err)
				}
				if mock.GetTotalCallCount() != 0 {
					t.Errorf("made %d upstream calls before rejecting", mock.GetTotalCallCount())
				}
				return
			}
			if err != nil {
				t.Fatalf("GetEvents() error = %v", err)
			}
			if rawQuery != tt.wantQuery {
				t.Errorf("query = %q, want %q", rawQuery, tt.wantQuery)
			}
		})
	}
}

func TestGetEvents_Body(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))

	var body map[string]interface{}
	mock.RegisterResponder(http.MethodPost, testBaseURL+"/events",
		func(req *http.Request) (*http.Response, error) {
			body = readJSONBody(t, req)
			return httpmock.NewStringResponse(http.StatusOK, `{"entries":[]}`), nil
		})

	intentional := true
	_, err := client.GetEvents(context.Background(), EventsRequest{
		Datasets:        []string{DatasetGaps},
		StartDate:       "2025-01-01",
		EndDate:         "2025-01-30",
		Region:          EEZRegion("FRA"),
		Vessels:         []string{"v1"},
		IntentionalOnly: &intentional,
	})
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}

	if body["start-date"] != "2025-01-01" || body["end-date"] != "2025-01-30" {
		t.Errorf("dates = %v / %v", body["start-date"], body["end-date"])
	}
	if body["gapIntentionalDisabling"] != true {
		t.Errorf("gapIntentionalDisabling = %v", body["gapIntentionalDisabling"])
	}
	region, _ := body["region"].(map[string]interface{})
	if region["id"] != "FRA" {
		t.Errorf("region id = %#v, want string FRA", region["id"])
	}
	if _, ok := body["flags"]; ok {
		t.Error("empty flags should be omitted")
	}
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))

	calls := 0
	mock.RegisterResponder(http.MethodPost, testBaseURL+"/insights/vessels",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				resp := httpmock.NewStringResponse(http.StatusTooManyRequests, `{"error":"slow down"}`)
				resp.Header.Set("Retry-After", "0")
				return resp, nil
			}
			body := readJSONBody(t, req)
			if body["startDate"] != "2025-01-01" {
				t.Errorf("retried body lost: %v", body)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"gap":{}}`), nil
		})

	_, err := client.GetVesselInsights(context.Background(), InsightsRequest{
		Vessels:   []VesselRef{{VesselID: "v1"}},
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
		Includes:  []string{"gap", "iuu"},
	})
	if err != nil {
		t.Fatalf("GetVesselInsights() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestClient_RetriesExhausted(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/4wings/stats",
		httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

	_, err := client.GetStats(context.Background(), StatsRequest{})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
	if code := StatusCode(err); code != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", code)
	}
	if got := mock.GetTotalCallCount(); got != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/vessels/abc",
		httpmock.NewStringResponder(http.StatusNotFound, `{"message":"not found"}`))

	_, err := client.GetVessel(context.Background(), "abc", "")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound || se.Operation != OpGetVessel {
		t.Errorf("StatusError = %+v", se)
	}
	if se.Body != `{"message":"not found"}` {
		t.Errorf("Body = %q", se.Body)
	}
	if got := mock.GetTotalCallCount(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestClient_TransportErrorRetried(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/vessels/search",
		httpmock.NewErrorResponder(errors.New("connection reset")))

	_, err := client.SearchVessels(context.Background(), SearchRequest{Query: "ocean"})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
	if got := mock.GetTotalCallCount(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClient_NoToken(t *testing.T) {
	client, mock := newTestClient(t, StaticToken(""))

	_, err := client.GetBins(context.Background(), BinsRequest{Zoom: 3})
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("error = %v, want ErrNoToken", err)
	}
	if mock.GetTotalCallCount() != 0 {
		t.Error("request sent without a token")
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/4wings/bins/4",
		httpmock.NewStringResponder(http.StatusOK, "<html>"))

	_, err := client.GetBins(context.Background(), BinsRequest{Zoom: 4})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestClient_BinsDefaults(t *testing.T) {
	client, mock := newTestClient(t, StaticToken("secret"))

	var query map[string][]string
	mock.RegisterResponder(http.MethodGet, testBaseURL+"/4wings/bins/2",
		func(req *http.Request) (*http.Response, error) {
			query = req.URL.Query()
			return httpmock.NewStringResponse(http.StatusOK, `{"entries":[[1,2,3]]}`), nil
		})

	if _, err := client.GetBins(context.Background(), BinsRequest{Zoom: 2, StartDate: "2025-01-01", EndDate: "2025-01-02"}); err != nil {
		t.Fatalf("GetBins() error = %v", err)
	}
	if query["num-bins"][0] != "9" || query["interval"][0] != "DAY" {
		t.Errorf("defaults not applied: %v", query)
	}
	if query["date-range"][0] != "2025-01-01,2025-01-02" {
		t.Errorf("date-range = %v", query["date-range"])
	}

	if _, err := client.GetBins(context.Background(), BinsRequest{Zoom: 13}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("zoom 13 error = %v, want ErrInvalidRequest", err)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, StaticToken("secret"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetStats(ctx, StatsRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		value  string
		want   time.Duration
		wantOK bool
	}{
		{"", 0, false},
		{"2", 2 * time.Second, true},
		{"0", 0, true},
		{"600", maxRetryAfter, true},
		{"soon", 0, false},
		{"-3", 0, false},
		{"Mon, 01 Jan 2001 00:00:00 GMT", 0, true},
	}
	for _, tt := range tests {
		got, ok := retryAfter(tt.value)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("retryAfter(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}
