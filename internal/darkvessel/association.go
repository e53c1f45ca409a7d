// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"

	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
	"github.com/tomtom215/darkwatch/internal/models"
)

// Tally counts report records and the detections they carry.
type Tally struct {
	Points          int `json:"points"`
	TotalDetections int `json:"total_detections"`
}

func (t *Tally) add(dets []models.Detection) {
	t.Points += len(dets)
	for i := range dets {
		t.TotalDetections += dets[i].DetectionCount
	}
}

// Association compares SAR detections with and without an AIS match.
type Association struct {
	Matched     Tally          `json:"matched"`
	Unmatched   Tally          `json:"unmatched"`
	Totals      Tally          `json:"totals"`
	RegionCount int            `json:"region_count"`
	ChunkCount  int            `json:"chunk_count"`
	Failures    []FetchFailure `json:"failures"`
}

// SARAISAssociation issues two paced reports per (region, chunk), one
// filtered to matched and one to unmatched detections. Here the upstream
// filter does the selection, so every returned record counts.
func (s *Service) SARAISAssociation(ctx context.Context, regionIDs []string, startDate, endDate string) (*Association, error) {
	chunks, err := SplitDateRange(startDate, endDate, s.chunkDays)
	if err != nil {
		return nil, err
	}

	out := &Association{
		RegionCount: len(regionIDs),
		ChunkCount:  len(chunks),
		Failures:    []FetchFailure{},
	}

	matched, unmatched := true, false
	passes := []struct {
		kind  string
		match *bool
		tally *Tally
	}{
		{KindMatched, &matched, &out.Matched},
		{KindUnmatched, &unmatched, &out.Unmatched},
	}

	for _, region := range regionIDs {
		for _, chunk := range chunks {
			for _, pass := range passes {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				raw, err := s.report(ctx, gfw.ReportRequest{
					Dataset:   gfw.DatasetSARPresence,
					StartDate: chunk.Start,
					EndDate:   chunk.End,
					Filter:    gfw.SARFilter{Matched: pass.match}.String(),
					RegionID:  region,
				})
				if err == nil {
					var dets []models.Detection
					dets, err = NormalizeDetections(raw, region)
					pass.tally.add(dets)
				}
				metrics.RecordAggregatorFetch(pass.kind, err)
				if err != nil {
					logging.Ctx(ctx).Warn().Err(err).
						Str("kind", pass.kind).
						Str("region_id", region).
						Str("chunk", chunk.String()).
						Msg("Association report failed")
					out.Failures = append(out.Failures, FetchFailure{
						Kind: pass.kind, Region: region, Chunk: chunk.String(), Error: err.Error(),
					})
				}
			}
		}
	}

	out.Totals = Tally{
		Points:          out.Matched.Points + out.Unmatched.Points,
		TotalDetections: out.Matched.TotalDetections + out.Unmatched.TotalDetections,
	}
	return out, nil
}
