// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/models"
	"github.com/tomtom215/darkwatch/internal/risk"
)

const insightsPayload = `{
	"period":{"startDate":"2025-01-01","endDate":"2025-03-01"},
	"gap":{"datasets":["public-global-gaps-events:latest"],"periodSelectedCounters":{"events":3,"eventsGapOff":3}},
	"vesselIdentity":{"datasets":["public-global-vessel-identity:latest"],"iuuVesselList":{"valuesInThePeriod":[],"totalTimesListedInThePeriod":1}}
}`

func eventTotals(totals map[string]string) func(gfw.EventsRequest) (json.RawMessage, error) {
	return func(req gfw.EventsRequest) (json.RawMessage, error) {
		body, ok := totals[req.Datasets[0]]
		if !ok {
			return nil, upstreamDown(gfw.OpGetEvents)
		}
		return json.RawMessage(body), nil
	}
}

func TestScoreVessel(t *testing.T) {
	client := &fakeClient{
		insightsFn: func(gfw.InsightsRequest) (json.RawMessage, error) { return json.RawMessage(insightsPayload), nil },
		eventsFn: eventTotals(map[string]string{
			gfw.DatasetFishingEvents: `{"total":0,"entries":[]}`,
			gfw.DatasetEncounters:    `{"total":0,"entries":[]}`,
			gfw.DatasetPortVisits:    `{"total":0,"entries":[]}`,
		}),
	}
	svc := testService(client)

	got, err := svc.ScoreVessel(context.Background(), "vessel-1", "2025-01-01", "2025-03-01")
	if err != nil {
		t.Fatalf("ScoreVessel() error = %v", err)
	}

	if got.RiskScore != 80 {
		t.Errorf("RiskScore = %d, want 80", got.RiskScore)
	}
	if got.RiskTier != models.RiskTierHigh {
		t.Errorf("RiskTier = %q, want high", got.RiskTier)
	}
	if got.Factors[risk.FactorGapEvents] != 3 || got.Factors[risk.FactorIUUListed] != 1 {
		t.Errorf("Factors = %v", got.Factors)
	}
	if len(got.Errors) != 0 {
		t.Errorf("Errors = %v", got.Errors)
	}
	if got.StartDate != "2025-01-01" || got.EndDate != "2025-03-01" {
		t.Errorf("range = %s..%s", got.StartDate, got.EndDate)
	}

	ins := client.insights[0]
	if !reflect.DeepEqual(ins.Includes, []string{gfw.InsightGap, gfw.InsightIUUVesselList}) {
		t.Errorf("Includes = %v", ins.Includes)
	}
	if ins.Vessels[0].VesselID != "vessel-1" || ins.Vessels[0].DatasetID != gfw.DatasetVesselIdentity {
		t.Errorf("Vessels = %+v", ins.Vessels)
	}
	for _, e := range client.eventCalls() {
		if !reflect.DeepEqual(e.Vessels, []string{"vessel-1"}) {
			t.Errorf("events vessels = %v", e.Vessels)
		}
		if e.Limit == nil || *e.Limit != 1 || e.Offset == nil || *e.Offset != 0 {
			t.Errorf("events request not paginated with limit=1 offset=0")
		}
	}
}

func TestScoreVessel_EventFactors(t *testing.T) {
	client := &fakeClient{
		insightsFn: func(gfw.InsightsRequest) (json.RawMessage, error) { return json.RawMessage(`{}`), nil },
		eventsFn: eventTotals(map[string]string{
			gfw.DatasetFishingEvents: `{"total":40}`,
			gfw.DatasetEncounters:    `{"total":3}`,
			gfw.DatasetPortVisits:    `{"entries":[{},{},{},{},{},{},{},{},{},{}]}`,
		}),
	}
	svc := testService(client)

	got, err := svc.ScoreVessel(context.Background(), "vessel-2", "2025-01-01", "2025-03-01")
	if err != nil {
		t.Fatalf("ScoreVessel() error = %v", err)
	}
	// min(40*0.5,15) + 3*2 + 10*0.3 = 15 + 6 + 3
	if got.RiskScore != 24 {
		t.Errorf("RiskScore = %d, want 24", got.RiskScore)
	}
	if got.RiskTier != models.RiskTierLow {
		t.Errorf("RiskTier = %q, want low", got.RiskTier)
	}
	if got.Factors[risk.FactorPortVisits] != 10 {
		t.Errorf("port visits = %v, want entry count fallback 10", got.Factors[risk.FactorPortVisits])
	}
}

func TestScoreVessel_HugeCountersSaturate(t *testing.T) {
	client := &fakeClient{
		insightsFn: func(gfw.InsightsRequest) (json.RawMessage, error) {
			return json.RawMessage(`{"gap":{"periodSelectedCounters":{"events":1e300}}}`), nil
		},
		eventsFn: eventTotals(map[string]string{
			gfw.DatasetFishingEvents: `{"total":1e19}`,
			gfw.DatasetEncounters:    `{"total":0}`,
			gfw.DatasetPortVisits:    `{"total":0}`,
		}),
	}
	svc := testService(client)

	got, err := svc.ScoreVessel(context.Background(), "vessel-9", "2025-01-01", "2025-03-01")
	if err != nil {
		t.Fatalf("ScoreVessel() error = %v", err)
	}
	for _, factor := range []string{risk.FactorGapEvents, risk.FactorFishingEvents} {
		if got.Factors[factor] != math.MaxInt32 {
			t.Errorf("%s counter = %v, want saturated at MaxInt32", factor, got.Factors[factor])
		}
	}
	// gap cap 50 + fishing cap 15
	if got.RiskScore != 65 {
		t.Errorf("RiskScore = %d, want 65", got.RiskScore)
	}
}

func TestCountFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{-3, 0},
		{7, 7},
		{7.9, 7},
		{1e300, math.MaxInt32},
		{math.Inf(1), math.MaxInt32},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := countFromFloat(tt.in); got != tt.want {
			t.Errorf("countFromFloat(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestScoreVessel_PartialFailure(t *testing.T) {
	client := &fakeClient{
		insightsFn: func(gfw.InsightsRequest) (json.RawMessage, error) { return nil, upstreamDown(gfw.OpGetVesselInsights) },
		eventsFn: eventTotals(map[string]string{
			gfw.DatasetEncounters: `{"total":5}`,
		}),
	}
	svc := testService(client)

	got, err := svc.ScoreVessel(context.Background(), "vessel-3", "2025-01-01", "2025-03-01")
	if err != nil {
		t.Fatalf("ScoreVessel() error = %v", err)
	}
	if got.RiskScore != 10 {
		t.Errorf("RiskScore = %d, want 10 from encounters only", got.RiskScore)
	}
	for _, factor := range []string{risk.FactorGapEvents, risk.FactorIUUListed, risk.FactorFishingEvents, risk.FactorPortVisits} {
		if _, ok := got.Errors[factor]; !ok {
			t.Errorf("Errors missing %s: %v", factor, got.Errors)
		}
		if got.Factors[factor] != 0 {
			t.Errorf("Factors[%s] = %v, want 0", factor, got.Factors[factor])
		}
	}
	if _, ok := got.Errors[risk.FactorEncounters]; ok {
		t.Error("encounters reported as failed")
	}
}

func TestScoreVessel_AllFactorsFailed(t *testing.T) {
	client := &fakeClient{
		insightsFn: func(gfw.InsightsRequest) (json.RawMessage, error) { return nil, upstreamDown(gfw.OpGetVesselInsights) },
		eventsFn:   eventTotals(nil),
	}
	svc := testService(client)

	got, err := svc.ScoreVessel(context.Background(), "vessel-4", "2025-01-01", "2025-03-01")
	if err != nil {
		t.Fatalf("ScoreVessel() error = %v", err)
	}
	if got.RiskScore != 0 || got.RiskTier != models.RiskTierUnknown {
		t.Errorf("assessment = %d/%q, want 0/unknown", got.RiskScore, got.RiskTier)
	}
}

func TestScoreVessel_MemoizesInsights(t *testing.T) {
	client := &fakeClient{
		insightsFn: func(gfw.InsightsRequest) (json.RawMessage, error) { return json.RawMessage(insightsPayload), nil },
	}
	svc := testService(client)

	for i := 0; i < 3; i++ {
		if _, err := svc.ScoreVessel(context.Background(), "vessel-1", "2025-01-01", "2025-03-01"); err != nil {
			t.Fatalf("ScoreVessel() error = %v", err)
		}
	}
	if n := len(client.insights); n != 1 {
		t.Errorf("insight calls = %d, want 1", n)
	}

	if _, err := svc.ScoreVessel(context.Background(), "vessel-1", "2025-01-01", "2025-02-01"); err != nil {
		t.Fatalf("ScoreVessel() error = %v", err)
	}
	if n := len(client.insights); n != 2 {
		t.Errorf("insight calls = %d, want 2 after a new range", n)
	}

	svc.FlushInsights()
	if _, err := svc.ScoreVessel(context.Background(), "vessel-1", "2025-01-01", "2025-03-01"); err != nil {
		t.Fatalf("ScoreVessel() error = %v", err)
	}
	if n := len(client.insights); n != 3 {
		t.Errorf("insight calls = %d, want 3 after flush", n)
	}
}

func TestScoreVessel_FailuresNotMemoized(t *testing.T) {
	calls := 0
	client := &fakeClient{
		insightsFn: func(gfw.InsightsRequest) (json.RawMessage, error) {
			calls++
			if calls == 1 {
				return nil, upstreamDown(gfw.OpGetVesselInsights)
			}
			return json.RawMessage(insightsPayload), nil
		},
	}
	svc := testService(client)

	first, _ := svc.ScoreVessel(context.Background(), "vessel-1", "2025-01-01", "2025-03-01")
	second, _ := svc.ScoreVessel(context.Background(), "vessel-1", "2025-01-01", "2025-03-01")

	if _, ok := first.Errors[risk.FactorGapEvents]; !ok {
		t.Error("first assessment should report the insight failure")
	}
	if second.Factors[risk.FactorGapEvents] != 3 {
		t.Errorf("second assessment gap events = %v, want 3", second.Factors[risk.FactorGapEvents])
	}
}

func TestScoreVessel_NoMemoWhenDisabled(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, config.AggregatorConfig{ChunkDays: 30})

	for i := 0; i < 2; i++ {
		if _, err := svc.ScoreVessel(context.Background(), "vessel-1", "2025-01-01", "2025-03-01"); err != nil {
			t.Fatalf("ScoreVessel() error = %v", err)
		}
	}
	if n := len(client.insights); n != 2 {
		t.Errorf("insight calls = %d, want 2", n)
	}
}

func TestScoreVessel_InvalidInput(t *testing.T) {
	svc := testService(&fakeClient{})

	if _, err := svc.ScoreVessel(context.Background(), "  ", "2025-01-01", "2025-03-01"); !errors.Is(err, gfw.ErrInvalidRequest) {
		t.Errorf("empty vessel error = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.ScoreVessel(context.Background(), "v", "2025-03-01", "2025-01-01"); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("reversed range error = %v, want ErrInvalidDateRange", err)
	}
}
