// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
)

// EventStatTypes are the event kinds counted by EventTypeStats, in
// output order.
var EventStatTypes = []string{"fishing", "port_visits", "encounters", "loitering"}

// SummaryQuery selects per-region report summaries.
type SummaryQuery struct {
	RegionIDs          []string
	StartDate          string
	EndDate            string
	Filter             gfw.SARFilter
	GroupBy            string
	TemporalResolution string
}

// RegionSummary is one region's report or the reason it is missing.
type RegionSummary struct {
	RegionID string          `json:"region_id"`
	Data     json.RawMessage `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// RegionSummaries issues one paced SAR report per region, in request
// order. A failed region carries its error instead of data.
func (s *Service) RegionSummaries(ctx context.Context, q SummaryQuery) ([]RegionSummary, error) {
	if _, err := SplitDateRange(q.StartDate, q.EndDate, s.chunkDays); err != nil {
		return nil, err
	}

	out := make([]RegionSummary, 0, len(q.RegionIDs))
	for _, region := range q.RegionIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.report(ctx, gfw.ReportRequest{
			Dataset:            gfw.DatasetSARPresence,
			StartDate:          q.StartDate,
			EndDate:            q.EndDate,
			Filter:             q.Filter.String(),
			RegionID:           region,
			GroupBy:            q.GroupBy,
			TemporalResolution: q.TemporalResolution,
		})
		metrics.RecordAggregatorFetch(KindSummary, err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("region_id", region).Msg("Region summary failed")
			out = append(out, RegionSummary{RegionID: region, Error: err.Error()})
			continue
		}
		out = append(out, RegionSummary{RegionID: region, Data: raw})
	}
	return out, nil
}

// EventStat is the event count for one type.
type EventStat struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// EventTypeStats counts fishing, port visit, encounter and loitering
// events in one region. Each type is fetched with limit=1, offset=0 and
// read from the payload total. A failed type reports a zero count with
// its error.
func (s *Service) EventTypeStats(ctx context.Context, regionID, startDate, endDate string) (map[string]EventStat, error) {
	if _, err := SplitDateRange(startDate, endDate, s.chunkDays); err != nil {
		return nil, err
	}

	out := make(map[string]EventStat, len(EventStatTypes))
	for _, eventType := range EventStatTypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		total, err := s.countEvents(ctx, gfw.EventsRequest{
			Datasets:   []string{gfw.EventDatasets[eventType]},
			StartDate:  startDate,
			EndDate:    endDate,
			Region:     gfw.EEZRegion(regionID),
			Pagination: gfw.Page(1, 0),
		})
		metrics.RecordAggregatorFetch(KindEventStats, err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Str("region_id", regionID).Msg("Event statistics failed")
			out[eventType] = EventStat{Error: err.Error()}
			continue
		}
		out[eventType] = EventStat{Count: total}
	}
	return out, nil
}

// GlobalSARStats fetches global 4Wings statistics for unmatched SAR
// detections. The upstream endpoint has no region filter.
func (s *Service) GlobalSARStats(ctx context.Context, startDate, endDate string) (json.RawMessage, error) {
	raw, err := s.client.GetStats(ctx, gfw.StatsRequest{
		Dataset:   gfw.DatasetSARPresence,
		Filter:    gfw.DarkFilter().String(),
		StartDate: startDate,
		EndDate:   endDate,
	})
	metrics.RecordAggregatorFetch(KindStats, err)
	return raw, err
}

// countEvents runs an events query and reads its total.
func (s *Service) countEvents(ctx context.Context, req gfw.EventsRequest) (int, error) {
	raw, err := s.client.GetEvents(ctx, req)
	if err != nil {
		return 0, err
	}
	return eventTotal(raw)
}

// eventTotal reads "total", falling back to the number of entries.
func eventTotal(raw json.RawMessage) (int, error) {
	var payload struct {
		Total   *float64          `json:"total"`
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedShape, err)
	}
	if payload.Total != nil && *payload.Total >= 0 {
		return countFromFloat(*payload.Total), nil
	}
	return len(payload.Entries), nil
}
