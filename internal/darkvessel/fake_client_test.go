// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/gfw"
)

var errNotStubbed = errors.New("not stubbed")

// fakeClient records calls and answers them through optional hooks.
type fakeClient struct {
	mu sync.Mutex

	reports     []gfw.ReportRequest
	reportTimes []time.Time
	events      []gfw.EventsRequest
	insights    []gfw.InsightsRequest
	stats       []gfw.StatsRequest
	styles      []gfw.StyleRequest

	reportFn   func(gfw.ReportRequest) (json.RawMessage, error)
	eventsFn   func(gfw.EventsRequest) (json.RawMessage, error)
	insightsFn func(gfw.InsightsRequest) (json.RawMessage, error)
	statsFn    func(gfw.StatsRequest) (json.RawMessage, error)
	styleFn    func(gfw.StyleRequest) (json.RawMessage, error)
}

var _ gfw.Client = (*fakeClient)(nil)

func (f *fakeClient) CreateReport(_ context.Context, req gfw.ReportRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.reports = append(f.reports, req)
	f.reportTimes = append(f.reportTimes, time.Now())
	fn := f.reportFn
	f.mu.Unlock()
	if fn == nil {
		return json.RawMessage(`{"entries":[]}`), nil
	}
	return fn(req)
}

func (f *fakeClient) GetEvents(_ context.Context, req gfw.EventsRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.events = append(f.events, req)
	fn := f.eventsFn
	f.mu.Unlock()
	if fn == nil {
		return json.RawMessage(`{"entries":[]}`), nil
	}
	return fn(req)
}

func (f *fakeClient) GetVesselInsights(_ context.Context, req gfw.InsightsRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.insights = append(f.insights, req)
	fn := f.insightsFn
	f.mu.Unlock()
	if fn == nil {
		return json.RawMessage(`{}`), nil
	}
	return fn(req)
}

func (f *fakeClient) GetVessel(context.Context, string, string) (json.RawMessage, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) SearchVessels(context.Context, gfw.SearchRequest) (json.RawMessage, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) GetBins(context.Context, gfw.BinsRequest) (json.RawMessage, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) GetStats(_ context.Context, req gfw.StatsRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.stats = append(f.stats, req)
	fn := f.statsFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errNotStubbed
	}
	return fn(req)
}

func (f *fakeClient) GetTile(context.Context, gfw.TileRequest) (*gfw.Tile, error) {
	return nil, errNotStubbed
}

func (f *fakeClient) GeneratePNG(_ context.Context, req gfw.StyleRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.styles = append(f.styles, req)
	fn := f.styleFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errNotStubbed
	}
	return fn(req)
}

func (f *fakeClient) styleCalls() []gfw.StyleRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gfw.StyleRequest(nil), f.styles...)
}

func (f *fakeClient) reportCalls() []gfw.ReportRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gfw.ReportRequest(nil), f.reports...)
}

func (f *fakeClient) eventCalls() []gfw.EventsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gfw.EventsRequest(nil), f.events...)
}

// testService builds a service without report spacing.
func testService(client gfw.Client) *Service {
	return NewService(client, config.AggregatorConfig{
		ChunkDays:       30,
		InsightCacheTTL: time.Minute,
		MaxVesselIDs:    100,
	})
}

func upstreamDown(op string) error {
	return &gfw.StatusError{Operation: op, StatusCode: 503, Body: "unavailable"}
}
