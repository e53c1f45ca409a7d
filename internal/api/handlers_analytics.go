// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/darkvessel"
	"github.com/tomtom215/darkwatch/internal/logging"
)

// DarkVesselStatistics are the headline counts of the analytics view.
type DarkVesselStatistics struct {
	TotalDarkVessels int          `json:"total_dark_vessels"`
	SARDetections    int          `json:"sar_detections"`
	GapEvents        int          `json:"gap_events"`
	EEZCount         int          `json:"eez_count"`
	DateRange        DateRangeOut `json:"date_range"`
}

// SARGlobalStats wraps the global statistics payload or its failure.
type SARGlobalStats struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// EnhancedStatistics are event counts for the first requested region.
type EnhancedStatistics struct {
	RegionID   string                          `json:"region_id"`
	EventTypes map[string]darkvessel.EventStat `json:"event_types,omitempty"`
	Error      string                          `json:"error,omitempty"`
}

// DarkVesselAnalyticsResponse is the body of GET /analytics/dark-vessels.
type DarkVesselAnalyticsResponse struct {
	Statistics         DarkVesselStatistics      `json:"statistics"`
	SARGlobal          SARGlobalStats            `json:"sar_global"`
	EnhancedStatistics EnhancedStatistics        `json:"enhanced_statistics"`
	VesselIDs          []string                  `json:"vessel_ids"`
	VesselIDsTruncated bool                      `json:"vessel_ids_truncated"`
	Summary            darkvessel.Summary        `json:"summary"`
	Failures           []darkvessel.FetchFailure `json:"failures"`
}

// DarkVesselAnalytics combines the aggregate with global SAR statistics
// and event counts. Secondary fetches that fail are annotated in place;
// only the aggregate itself can fail the request.
func (h *Handler) DarkVesselAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := RegionRangeRequest{DateRange: dateRangeParams(q), EEZIDs: regionIDs(q)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "dark_vessel_analytics", err)
		return
	}

	ctx := r.Context()
	result, err := svc.GetDarkVessels(ctx, darkvessel.DefaultQuery(req.EEZIDs, req.StartDate, req.EndDate))
	if err != nil {
		respondServiceError(w, r, "dark_vessel_analytics", err)
		return
	}

	resp := DarkVesselAnalyticsResponse{
		Statistics: DarkVesselStatistics{
			TotalDarkVessels: len(result.CombinedVesselIDs),
			SARDetections:    result.Summary.TotalSARDetections,
			GapEvents:        result.Summary.TotalGapEvents,
			EEZCount:         len(req.EEZIDs),
			DateRange:        echoRange(req.DateRange),
		},
		Summary:  result.Summary,
		Failures: result.Failures,
	}

	stats, err := svc.GlobalSARStats(ctx, req.StartDate, req.EndDate)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Global SAR statistics unavailable")
		resp.SARGlobal.Error = err.Error()
	} else {
		resp.SARGlobal.Data = stats
	}

	first := req.EEZIDs[0]
	resp.EnhancedStatistics.RegionID = first
	events, err := svc.EventTypeStats(ctx, first, req.StartDate, req.EndDate)
	if err != nil {
		resp.EnhancedStatistics.Error = err.Error()
	} else {
		resp.EnhancedStatistics.EventTypes = events
	}

	limit := h.cfg.Aggregator.MaxVesselIDs
	ids := result.CombinedVesselIDs
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
		resp.VesselIDsTruncated = true
	}
	resp.VesselIDs = ids

	respondJSON(w, r, resp)
}

// RiskScore scores one vessel over the requested window.
func (h *Handler) RiskScore(w http.ResponseWriter, r *http.Request) {
	req := RiskScoreRequest{
		DateRange: dateRangeParams(r.URL.Query()),
		VesselID:  strings.TrimSpace(chi.URLParam(r, "vesselID")),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "risk_score", err)
		return
	}

	assessment, err := svc.ScoreVessel(r.Context(), req.VesselID, req.StartDate, req.EndDate)
	if err != nil {
		respondServiceError(w, r, "risk_score", err)
		return
	}
	respondJSON(w, r, assessment)
}
