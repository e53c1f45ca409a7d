// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/darkwatch/internal/darkvessel"
	"github.com/tomtom215/darkwatch/internal/detection"
	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/models"
	"github.com/tomtom215/darkwatch/internal/validation"
)

// DateRangeOut echoes the queried window.
type DateRangeOut struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func echoRange(dr validation.DateRange) DateRangeOut {
	return DateRangeOut{StartDate: dr.StartDate, EndDate: dr.EndDate}
}

// DetectionsResponse is the body of GET /detections.
type DetectionsResponse struct {
	Summaries   []darkvessel.RegionSummary `json:"summaries"`
	DarkVessels *darkvessel.Result         `json:"dark_vessels"`
	Filters     gfw.SARFilter              `json:"filters"`
	DateRange   DateRangeOut               `json:"date_range"`
	EEZIDs      []string                   `json:"eez_ids"`
}

// ClustersResponse is the body of GET /detections/proximity-clusters.
type ClustersResponse struct {
	Clusters      []models.Cluster          `json:"clusters"`
	TotalClusters int                       `json:"total_clusters"`
	RiskCounts    map[models.RiskTier]int   `json:"risk_counts"`
	Parameters    detection.ClusterConfig   `json:"parameters"`
	Detections    int                       `json:"total_detections"`
	Failures      []darkvessel.FetchFailure `json:"failures"`
	DateRange     DateRangeOut              `json:"date_range"`
	EEZIDs        []string                  `json:"eez_ids"`
}

// RoutesResponse is the body of GET /detections/routes.
type RoutesResponse struct {
	Routes      []models.Route            `json:"routes"`
	TotalRoutes int                       `json:"total_routes"`
	Parameters  detection.RouteConfig     `json:"parameters"`
	InputPoints int                       `json:"input_points"`
	Failures    []darkvessel.FetchFailure `json:"failures"`
	DateRange   DateRangeOut              `json:"date_range"`
	EEZIDs      []string                  `json:"eez_ids"`
}

// Detections returns the dark vessel aggregate together with one SAR
// report summary per region. Summaries drop the matched constraint.
func (h *Handler) Detections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := RegionRangeRequest{DateRange: dateRangeParams(q), EEZIDs: regionIDs(q)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	filter, err := sarFilter(q)
	if err != nil {
		respondParamError(w, r, "detections", err)
		return
	}
	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "detections", err)
		return
	}

	result, err := svc.GetDarkVessels(r.Context(), darkvessel.DefaultQuery(req.EEZIDs, req.StartDate, req.EndDate))
	if err != nil {
		respondServiceError(w, r, "detections", err)
		return
	}

	summaries, err := svc.RegionSummaries(r.Context(), darkvessel.SummaryQuery{
		RegionIDs: req.EEZIDs,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Filter:    filter.WithoutMatched(),
	})
	if err != nil {
		respondServiceError(w, r, "detections", err)
		return
	}

	respondJSON(w, r, DetectionsResponse{
		Summaries:   summaries,
		DarkVessels: result,
		Filters:     filter,
		DateRange:   echoRange(req.DateRange),
		EEZIDs:      req.EEZIDs,
	})
}

// ProximityClusters groups unmatched SAR detections into proximity
// clusters.
func (h *Handler) ProximityClusters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := h.cfg.Detection

	maxDistance, perr1 := floatParam(q, "max_distance_km", d.ClusterMaxDistanceKm)
	sameDate, perr2 := boolParam(q, "same_date_only", d.ClusterSameDateOnly)
	if perr := firstParamError(perr1, perr2); perr != nil {
		respondValidation(w, r, perr.apiError())
		return
	}

	req := ClusterRequest{
		RegionRangeRequest: RegionRangeRequest{DateRange: dateRangeParams(q), EEZIDs: regionIDs(q)},
		MaxDistanceKm:      maxDistance,
		SameDateOnly:       sameDate,
	}
	verr := validation.Merge(
		validation.ValidateStruct(&req),
		validation.ValidateVar("max_distance_km", req.MaxDistanceKm, fmt.Sprintf("gt=0,lte=%g", d.ClusterMaxDistanceLimitKm)),
	)
	if verr != nil {
		respondValidation(w, r, verr.ToAPIError())
		return
	}

	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "proximity_clusters", err)
		return
	}

	query := darkvessel.DefaultQuery(req.EEZIDs, req.StartDate, req.EndDate)
	query.IncludeGaps = false
	result, err := svc.GetDarkVessels(r.Context(), query)
	if err != nil {
		respondServiceError(w, r, "proximity_clusters", err)
		return
	}

	cfg := detection.ClusterConfig{MaxDistanceKm: req.MaxDistanceKm, SameDateOnly: req.SameDateOnly}
	clusters := detection.DetectClusters(result.SARDetections, cfg)

	counts := map[models.RiskTier]int{
		models.RiskTierHigh:   0,
		models.RiskTierMedium: 0,
		models.RiskTierLow:    0,
	}
	for _, c := range clusters {
		counts[c.RiskTier]++
	}

	respondJSON(w, r, ClustersResponse{
		Clusters:      clusters,
		TotalClusters: len(clusters),
		RiskCounts:    counts,
		Parameters:    cfg,
		Detections:    len(result.SARDetections),
		Failures:      result.Failures,
		DateRange:     echoRange(req.DateRange),
		EEZIDs:        req.EEZIDs,
	})
}

// Routes stitches unmatched SAR detections and gap events into
// predicted routes.
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := h.cfg.Detection

	maxTime, perr1 := floatParam(q, "max_time_hours", d.RouteMaxTimeHours)
	maxDistance, perr2 := floatParam(q, "max_distance_km", d.RouteMaxDistanceKm)
	minLength, perr3 := intParam(q, "min_route_length", d.MinRouteLength)
	if perr := firstParamError(perr1, perr2, perr3); perr != nil {
		respondValidation(w, r, perr.apiError())
		return
	}

	req := RouteRequest{
		RegionRangeRequest: RegionRangeRequest{DateRange: dateRangeParams(q), EEZIDs: regionIDs(q)},
		MaxTimeHours:       maxTime,
		MaxDistanceKm:      maxDistance,
		MinRouteLength:     minLength,
	}
	verr := validation.Merge(
		validation.ValidateStruct(&req),
		validation.ValidateVar("max_time_hours", req.MaxTimeHours, fmt.Sprintf("gt=0,lte=%g", d.RouteMaxTimeLimitHours)),
		validation.ValidateVar("max_distance_km", req.MaxDistanceKm, fmt.Sprintf("gt=0,lte=%g", d.RouteMaxDistanceLimitKm)),
		validation.ValidateVar("min_route_length", req.MinRouteLength, fmt.Sprintf("gte=2,lte=%d", d.MinRouteLengthLimit)),
	)
	if verr != nil {
		respondValidation(w, r, verr.ToAPIError())
		return
	}

	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "routes", err)
		return
	}

	result, err := svc.GetDarkVessels(r.Context(), darkvessel.DefaultQuery(req.EEZIDs, req.StartDate, req.EndDate))
	if err != nil {
		respondServiceError(w, r, "routes", err)
		return
	}

	cfg := detection.RouteConfig{
		MaxTimeHours:   req.MaxTimeHours,
		MaxDistanceKm:  req.MaxDistanceKm,
		MinRouteLength: req.MinRouteLength,
	}
	routes := detection.PredictRoutes(result.SARDetections, result.GapEvents, cfg)

	respondJSON(w, r, RoutesResponse{
		Routes:      routes,
		TotalRoutes: len(routes),
		Parameters:  cfg,
		InputPoints: len(result.SARDetections) + len(result.GapEvents),
		Failures:    result.Failures,
		DateRange:   echoRange(req.DateRange),
		EEZIDs:      req.EEZIDs,
	})
}

// SARAISAssociation compares SAR detections with and without an AIS
// match.
func (h *Handler) SARAISAssociation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := RegionRangeRequest{DateRange: dateRangeParams(q), EEZIDs: regionIDs(q)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "sar_ais_association", err)
		return
	}

	assoc, err := svc.SARAISAssociation(r.Context(), req.EEZIDs, req.StartDate, req.EndDate)
	if err != nil {
		respondServiceError(w, r, "sar_ais_association", err)
		return
	}
	respondJSON(w, r, assoc)
}
