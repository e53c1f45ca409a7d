// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/validation"
)

const (
	defaultVesselSearchLimit = 20
	maxInsightsBodyBytes     = 64 << 10
)

// defaultInsightIncludes is used when an insights body names none.
var defaultInsightIncludes = []string{gfw.InsightFishing, gfw.InsightIUUVesselList}

// VesselResponse is the body of GET /vessels/{vesselID}.
type VesselResponse struct {
	VesselID string          `json:"vessel_id"`
	Data     json.RawMessage `json:"data"`
}

// InsightsResponse is the body of POST /insights.
type InsightsResponse struct {
	Insights json.RawMessage     `json:"insights"`
	Query    gfw.InsightsRequest `json:"query"`
}

// SearchVessels passes an identity search through.
func (h *Handler) SearchVessels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, perr := intParam(q, "limit", defaultVesselSearchLimit)
	if perr != nil {
		respondValidation(w, r, perr.apiError())
		return
	}

	req := SearchRequest{
		Query:   strings.TrimSpace(q.Get("query")),
		Where:   strings.TrimSpace(q.Get("where")),
		Dataset: strings.TrimSpace(q.Get("dataset")),
		Limit:   limit,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	client, err := h.upstream()
	if err != nil {
		respondServiceError(w, r, "search_vessels", err)
		return
	}

	raw, err := client.SearchVessels(r.Context(), gfw.SearchRequest{
		Query:   req.Query,
		Where:   req.Where,
		Dataset: req.Dataset,
		Limit:   req.Limit,
	})
	if err != nil {
		respondServiceError(w, r, "search_vessels", err)
		return
	}
	respondJSON(w, r, raw)
}

// GetVessel returns one vessel identity record.
func (h *Handler) GetVessel(w http.ResponseWriter, r *http.Request) {
	req := VesselRequest{
		VesselID: strings.TrimSpace(chi.URLParam(r, "vesselID")),
		Dataset:  strings.TrimSpace(r.URL.Query().Get("dataset")),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	client, err := h.upstream()
	if err != nil {
		respondServiceError(w, r, "get_vessel", err)
		return
	}

	raw, err := client.GetVessel(r.Context(), req.VesselID, req.Dataset)
	if err != nil {
		respondServiceError(w, r, "get_vessel", err)
		return
	}
	respondJSON(w, r, VesselResponse{VesselID: req.VesselID, Data: raw})
}

// Insights fetches insight counters for up to 50 vessels.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		NewResponseWriter(w, r).MethodNotAllowed()
		return
	}

	var body InsightsBody
	data, err := io.ReadAll(io.LimitReader(r.Body, maxInsightsBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", err)
		return
	}
	if err := json.Unmarshal(data, &body); err != nil {
		respondValidation(w, r, &validation.APIError{
			Code:    validation.ErrorCode,
			Message: "Request body must be a JSON object",
		})
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	client, err := h.upstream()
	if err != nil {
		respondServiceError(w, r, "insights", err)
		return
	}

	includes := body.Includes
	if len(includes) == 0 {
		includes = append([]string(nil), defaultInsightIncludes...)
	}
	dataset := strings.TrimSpace(body.DatasetID)
	if dataset == "" {
		dataset = gfw.DatasetVesselIdentity
	}
	req := gfw.InsightsRequest{
		Vessels:   make([]gfw.VesselRef, 0, len(body.VesselIDs)),
		StartDate: body.StartDate,
		EndDate:   body.EndDate,
		Includes:  includes,
	}
	for _, id := range body.VesselIDs {
		req.Vessels = append(req.Vessels, gfw.VesselRef{DatasetID: dataset, VesselID: strings.TrimSpace(id)})
	}
	if err := req.Validate(); err != nil {
		respondServiceError(w, r, "insights", err)
		return
	}

	raw, err := client.GetVesselInsights(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, "insights", err)
		return
	}
	respondJSON(w, r, InsightsResponse{Insights: raw, Query: req})
}
