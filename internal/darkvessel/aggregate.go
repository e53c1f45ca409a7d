// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
	"github.com/tomtom215/darkwatch/internal/models"
)

// UniqueVesselCountNote accompanies unique_vessel_count in every summary.
const UniqueVesselCountNote = "Counts only vessels identified through AIS gap events. " +
	"SAR detections carry no vessel identity, so this undercounts the dark vessel population; " +
	"see unique_detection_points for the number of distinct detection locations."

// Query selects what GetDarkVessels fetches.
type Query struct {
	RegionIDs []string
	StartDate string
	EndDate   string

	IncludeSAR      bool
	IncludeGaps     bool
	IntentionalOnly bool
}

// DefaultQuery fetches SAR detections and intentional gaps.
func DefaultQuery(regionIDs []string, startDate, endDate string) Query {
	return Query{
		RegionIDs:       regionIDs,
		StartDate:       startDate,
		EndDate:         endDate,
		IncludeSAR:      true,
		IncludeGaps:     true,
		IntentionalOnly: true,
	}
}

// FetchFailure records one upstream call that contributed nothing.
type FetchFailure struct {
	Kind   string `json:"kind"`
	Region string `json:"region_id"`
	Chunk  string `json:"chunk,omitempty"`
	Error  string `json:"error"`
}

// Summary describes a Result. Counts cover successful fetches only: zero
// detections with a non-zero FailedFetches means missing data, not an
// empty sea.
type Summary struct {
	TotalSARDetections    int    `json:"total_sar_detections"`
	TotalGapEvents        int    `json:"total_gap_events"`
	UniqueVesselCount     int    `json:"unique_vessel_count"`
	UniqueVesselCountNote string `json:"unique_vessel_count_note"`
	UniqueDetectionPoints int    `json:"unique_detection_points"`
	RegionCount           int    `json:"region_count"`
	ChunkCount            int    `json:"chunk_count"`
	FailedFetches         int    `json:"failed_fetches"`
}

// Result is the aggregated dark vessel view.
type Result struct {
	SARDetections     []models.Detection `json:"sar_detections"`
	GapEvents         []models.GapEvent  `json:"gap_events"`
	CombinedVesselIDs []string           `json:"combined_vessel_ids"`
	Summary           Summary            `json:"summary"`
	Failures          []FetchFailure     `json:"failures"`
}

// fetchResult is the tagged outcome of one (region, chunk) call.
type fetchResult struct {
	kind   string
	region string
	chunk  DateChunk
	err    error
}

func (r fetchResult) failure() FetchFailure {
	return FetchFailure{Kind: r.kind, Region: r.region, Chunk: r.chunk.String(), Error: r.err.Error()}
}

// GetDarkVessels fetches unmatched SAR detections and gap events for every
// (region, chunk) pair, strictly serially. A failing pair is logged and
// recorded in Failures; the rest still contribute. The only errors
// returned are an invalid date range and cancellation of ctx.
func (s *Service) GetDarkVessels(ctx context.Context, q Query) (*Result, error) {
	chunks, err := SplitDateRange(q.StartDate, q.EndDate, s.chunkDays)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SARDetections:     []models.Detection{},
		GapEvents:         []models.GapEvent{},
		CombinedVesselIDs: []string{},
		Failures:          []FetchFailure{},
	}
	var outcomes []fetchResult

	if q.IncludeSAR {
		for _, region := range q.RegionIDs {
			for _, chunk := range chunks {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				dets, err := s.fetchUnmatched(ctx, region, chunk)
				outcomes = append(outcomes, fetchResult{kind: KindSAR, region: region, chunk: chunk, err: err})
				result.SARDetections = append(result.SARDetections, dets...)
			}
		}
	}

	if q.IncludeGaps {
		for _, region := range q.RegionIDs {
			for _, chunk := range chunks {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				gaps, err := s.fetchGaps(ctx, region, chunk, q.IntentionalOnly)
				outcomes = append(outcomes, fetchResult{kind: KindGaps, region: region, chunk: chunk, err: err})
				result.GapEvents = append(result.GapEvents, gaps...)
			}
		}
	}

	for _, o := range outcomes {
		metrics.RecordAggregatorFetch(o.kind, o.err)
		if o.err == nil {
			continue
		}
		logging.Ctx(ctx).Warn().
			Err(o.err).
			Str("kind", o.kind).
			Str("region_id", o.region).
			Str("chunk", o.chunk.String()).
			Msg("Upstream fetch failed, continuing with partial data")
		result.Failures = append(result.Failures, o.failure())
	}

	result.CombinedVesselIDs = vesselIDs(result.GapEvents)
	result.Summary = Summary{
		TotalSARDetections:    len(result.SARDetections),
		TotalGapEvents:        len(result.GapEvents),
		UniqueVesselCount:     len(result.CombinedVesselIDs),
		UniqueVesselCountNote: UniqueVesselCountNote,
		UniqueDetectionPoints: uniquePoints(result.SARDetections),
		RegionCount:           len(q.RegionIDs),
		ChunkCount:            len(chunks),
		FailedFetches:         len(result.Failures),
	}
	return result, nil
}

// fetchUnmatched issues one paced report call asking the upstream for
// unmatched rows, then drops any row that still says matched=true.
func (s *Service) fetchUnmatched(ctx context.Context, region string, chunk DateChunk) ([]models.Detection, error) {
	raw, err := s.report(ctx, gfw.ReportRequest{
		Dataset:            gfw.DatasetSARPresence,
		StartDate:          chunk.Start,
		EndDate:            chunk.End,
		RegionID:           region,
		SpatialResolution:  gfw.SpatialHigh,
		TemporalResolution: gfw.TemporalDaily,
		Filter:             gfw.DarkFilter().String(),
	})
	if err != nil {
		return nil, err
	}
	return UnmatchedDetections(raw, region, true)
}

func (s *Service) fetchGaps(ctx context.Context, region string, chunk DateChunk, intentionalOnly bool) ([]models.GapEvent, error) {
	req := gfw.EventsRequest{
		Datasets:  []string{gfw.DatasetGaps},
		StartDate: chunk.Start,
		EndDate:   chunk.End,
		Region:    gfw.EEZRegion(region),
	}
	if intentionalOnly {
		req.IntentionalOnly = &intentionalOnly
	}
	raw, err := s.client.GetEvents(ctx, req)
	if err != nil {
		return nil, err
	}
	return NormalizeGaps(raw, region)
}

// report runs one CreateReport call through the pacer.
func (s *Service) report(ctx context.Context, req gfw.ReportRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	err := s.pacer.Do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = s.client.CreateReport(ctx, req)
		return err
	})
	return raw, err
}

// vesselIDs returns the sorted distinct vessel ids carried by gaps.
func vesselIDs(gaps []models.GapEvent) []string {
	seen := make(map[string]struct{})
	for i := range gaps {
		if gaps[i].Identified() {
			seen[gaps[i].VesselID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// uniquePoints counts distinct detection coordinates at 1e-6 degrees.
func uniquePoints(dets []models.Detection) int {
	seen := make(map[string]struct{}, len(dets))
	for i := range dets {
		seen[fmt.Sprintf("%.6f,%.6f", dets[i].Latitude, dets[i].Longitude)] = struct{}{}
	}
	return len(seen)
}
