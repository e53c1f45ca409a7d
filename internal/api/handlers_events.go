// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/darkwatch/internal/darkvessel"
	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/models"
	"github.com/tomtom215/darkwatch/internal/validation"
)

const (
	defaultGapsLimit    = 1000
	defaultEventType    = "fishing"
	defaultBinsCount    = 9
	defaultBinsInterval = "DAY"
)

// GapsResponse is the body of GET /gaps.
type GapsResponse struct {
	Gaps      []models.GapEvent         `json:"gaps"`
	Total     int                       `json:"total"`
	Failures  []darkvessel.FetchFailure `json:"failures"`
	DateRange DateRangeOut              `json:"date_range"`
	EEZIDs    []string                  `json:"eez_ids"`
}

// SummaryResponse is the body of GET /summary.
type SummaryResponse struct {
	Summaries          []darkvessel.RegionSummary `json:"summaries"`
	Filters            gfw.SARFilter              `json:"filters"`
	GroupBy            string                     `json:"group_by,omitempty"`
	TemporalResolution string                     `json:"temporal_resolution,omitempty"`
	DateRange          DateRangeOut               `json:"date_range"`
	EEZIDs             []string                   `json:"eez_ids"`
}

// Gaps lists AIS gap events per region. Each region is one events call
// with limit/offset; a failing region is logged and reported under
// failures.
func (h *Handler) Gaps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	intentional, perr1 := boolParam(q, "intentional_only", true)
	limit, perr2 := intParam(q, "limit", defaultGapsLimit)
	if perr := firstParamError(perr1, perr2); perr != nil {
		respondValidation(w, r, perr.apiError())
		return
	}

	req := GapsRequest{
		RegionRangeRequest: RegionRangeRequest{DateRange: dateRangeParams(q), EEZIDs: regionIDs(q)},
		IntentionalOnly:    intentional,
		Limit:              limit,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	client, err := h.upstream()
	if err != nil {
		respondServiceError(w, r, "gaps", err)
		return
	}

	resp := GapsResponse{
		Gaps:      []models.GapEvent{},
		Failures:  []darkvessel.FetchFailure{},
		DateRange: echoRange(req.DateRange),
		EEZIDs:    req.EEZIDs,
	}
	for _, region := range req.EEZIDs {
		if err := r.Context().Err(); err != nil {
			respondServiceError(w, r, "gaps", err)
			return
		}
		raw, err := client.GetEvents(r.Context(), gfw.EventsRequest{
			Datasets:        []string{gfw.DatasetGaps},
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			Region:          gfw.EEZRegion(region),
			IntentionalOnly: &req.IntentionalOnly,
			Pagination:      gfw.Page(req.Limit, 0),
		})
		if err == nil {
			var gaps []models.GapEvent
			gaps, err = darkvessel.NormalizeGaps(raw, region)
			resp.Gaps = append(resp.Gaps, gaps...)
		}
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("region_id", region).Msg("Gap events fetch failed")
			resp.Failures = append(resp.Failures, darkvessel.FetchFailure{
				Kind:   darkvessel.KindGaps,
				Region: region,
				Error:  err.Error(),
			})
		}
	}
	resp.Total = len(resp.Gaps)
	respondJSON(w, r, resp)
}

// Events passes a generic events query through. Unknown event types fall
// back to fishing events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, perr1 := optionalIntParam(q, "limit")
	offset, perr2 := optionalIntParam(q, "offset")
	if perr := firstParamError(perr1, perr2); perr != nil {
		respondValidation(w, r, perr.apiError())
		return
	}

	req := EventsRequest{
		DateRange:  dateRangeParams(q),
		EventTypes: listParam(q, "event_types"),
		Region:     strings.TrimSpace(q.Get("region")),
		Flags:      listParam(q, "flags"),
		Limit:      limit,
		Offset:     offset,
	}
	if len(req.EventTypes) == 0 {
		req.EventTypes = []string{defaultEventType}
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	client, err := h.upstream()
	if err != nil {
		respondServiceError(w, r, "events", err)
		return
	}

	upstreamReq := gfw.EventsRequest{
		Datasets:   eventDatasets(req.EventTypes),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Flags:      req.Flags,
		Pagination: gfw.Pagination{Limit: req.Limit, Offset: req.Offset},
	}
	if req.Region != "" {
		upstreamReq.Region = gfw.EEZRegion(req.Region)
	}
	if err := upstreamReq.Validate(); err != nil {
		respondServiceError(w, r, "events", err)
		return
	}

	raw, err := client.GetEvents(r.Context(), upstreamReq)
	if err != nil {
		respondServiceError(w, r, "events", err)
		return
	}
	respondJSON(w, r, raw)
}

// eventDatasets maps event type names to dataset ids, de-duplicated in
// input order.
func eventDatasets(types []string) []string {
	seen := make(map[string]struct{}, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		ds, ok := gfw.EventDatasets[strings.ToLower(t)]
		if !ok {
			ds = gfw.EventDatasets[defaultEventType]
		}
		if _, dup := seen[ds]; dup {
			continue
		}
		seen[ds] = struct{}{}
		out = append(out, ds)
	}
	return out
}

// Summary returns one SAR report per region with optional grouping.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := SummaryRequest{
		RegionRangeRequest: RegionRangeRequest{DateRange: dateRangeParams(q), EEZIDs: regionIDs(q)},
		GroupBy:            strings.ToUpper(strings.TrimSpace(q.Get("group_by"))),
		TemporalResolution: strings.ToUpper(strings.TrimSpace(q.Get("temporal_resolution"))),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	filter, err := sarFilter(q)
	if err != nil {
		respondParamError(w, r, "summary", err)
		return
	}
	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "summary", err)
		return
	}

	summaries, err := svc.RegionSummaries(r.Context(), darkvessel.SummaryQuery{
		RegionIDs:          req.EEZIDs,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Filter:             filter,
		GroupBy:            req.GroupBy,
		TemporalResolution: req.TemporalResolution,
	})
	if err != nil {
		respondServiceError(w, r, "summary", err)
		return
	}

	respondJSON(w, r, SummaryResponse{
		Summaries:          summaries,
		Filters:            filter,
		GroupBy:            req.GroupBy,
		TemporalResolution: req.TemporalResolution,
		DateRange:          echoRange(req.DateRange),
		EEZIDs:             req.EEZIDs,
	})
}

// Bins passes a 4Wings bins query through for SAR presence. The date
// range is optional here.
func (h *Handler) Bins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	zoom, err := strconv.Atoi(chi.URLParam(r, "zoom"))
	if err != nil {
		respondValidation(w, r, (&paramError{field: "zoom", value: chi.URLParam(r, "zoom"), want: "an integer"}).apiError())
		return
	}

	dr := dateRangeParams(q)
	req := BinsRequest{
		Zoom:     zoom,
		Interval: strings.ToUpper(strings.TrimSpace(q.Get("interval"))),
		NumBins:  getIntParam(r, "num_bins", defaultBinsCount),
	}
	if req.Interval == "" {
		req.Interval = defaultBinsInterval
	}
	var dateErr *validation.RequestValidationError
	if dr.StartDate != "" || dr.EndDate != "" {
		dateErr = validation.ValidateStruct(&dr)
	}
	if verr := validation.Merge(validation.ValidateStruct(&req), dateErr); verr != nil {
		respondValidation(w, r, verr.ToAPIError())
		return
	}
	client, err := h.upstream()
	if err != nil {
		respondServiceError(w, r, "bins", err)
		return
	}

	raw, err := client.GetBins(r.Context(), gfw.BinsRequest{
		Zoom:      req.Zoom,
		Dataset:   gfw.DatasetSARPresence,
		Interval:  req.Interval,
		Filter:    strings.TrimSpace(q.Get("filter")),
		StartDate: dr.StartDate,
		EndDate:   dr.EndDate,
		NumBins:   req.NumBins,
	})
	if err != nil {
		respondServiceError(w, r, "bins", err)
		return
	}
	respondJSON(w, r, raw)
}
