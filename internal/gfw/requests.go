// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/darkwatch/internal/eez"
)

// Region selects an upstream area. ID is an int for numeric EEZ ids and
// a string otherwise.
type Region struct {
	Dataset string      `json:"dataset"`
	ID      interface{} `json:"id"`
}

// EEZRegion builds a Region for an EEZ id.
func EEZRegion(id string) *Region {
	return &Region{Dataset: DatasetEEZAreas, ID: eez.RegionID(id)}
}

// Pagination is the limit/offset pair accepted by list endpoints. Both
// must be nil or both set with Limit >= 1 and Offset >= 0.
type Pagination struct {
	Limit  *int
	Offset *int
}

// Page returns a Pagination with both fields set.
func Page(limit, offset int) Pagination {
	return Pagination{Limit: &limit, Offset: &offset}
}

// Validate enforces the all-or-nothing contract.
func (p Pagination) Validate() error {
	if p.Limit == nil && p.Offset == nil {
		return nil
	}
	if p.Limit == nil || p.Offset == nil {
		return ErrInvalidPagination
	}
	if *p.Limit < 1 || *p.Offset < 0 {
		return ErrInvalidPagination
	}
	return nil
}

func (p Pagination) apply(q url.Values) {
	if p.Limit == nil || p.Offset == nil {
		return
	}
	q.Set("limit", strconv.Itoa(*p.Limit))
	q.Set("offset", strconv.Itoa(*p.Offset))
}

// ReportRequest describes a 4Wings report.
type ReportRequest struct {
	Dataset            string
	StartDate          string
	EndDate            string
	Filter             string
	RegionID           string
	SpatialResolution  string
	TemporalResolution string
	GroupBy            string
}

// Validate fills resolution defaults and checks them.
func (r *ReportRequest) Validate() error {
	if r.Dataset == "" {
		return fmt.Errorf("%w: report dataset is required", ErrInvalidRequest)
	}
	if r.StartDate == "" || r.EndDate == "" {
		return fmt.Errorf("%w: report date range is required", ErrInvalidRequest)
	}
	if r.SpatialResolution == "" {
		r.SpatialResolution = SpatialHigh
	}
	if r.TemporalResolution == "" {
		r.TemporalResolution = TemporalDaily
	}
	if !ValidTemporalResolution(r.TemporalResolution) {
		return fmt.Errorf("%w: temporal resolution must be DAILY, MONTHLY or ENTIRE, got %q", ErrInvalidRequest, r.TemporalResolution)
	}
	if !ValidSpatialResolution(r.SpatialResolution) {
		return fmt.Errorf("%w: spatial resolution must be LOW or HIGH, got %q", ErrInvalidRequest, r.SpatialResolution)
	}
	if r.GroupBy != "" && !ValidGroupBy(r.GroupBy) {
		return fmt.Errorf("%w: unknown group-by %q", ErrInvalidRequest, r.GroupBy)
	}
	return nil
}

func (r *ReportRequest) query() url.Values {
	q := url.Values{}
	q.Set("datasets[0]", r.Dataset)
	q.Set("format", reportFormatJSON)
	q.Set("temporal-resolution", r.TemporalResolution)
	q.Set("spatial-resolution", r.SpatialResolution)
	q.Set("date-range", dateRange(r.StartDate, r.EndDate))
	if r.Filter != "" {
		q.Set("filters[0]", r.Filter)
	}
	if r.GroupBy != "" {
		q.Set("group-by", r.GroupBy)
	}
	return q
}

type reportBody struct {
	Region *Region `json:"region"`
}

// body returns nil when no region is selected.
func (r *ReportRequest) body() interface{} {
	if r.RegionID == "" {
		return nil
	}
	return reportBody{Region: EEZRegion(r.RegionID)}
}

// EventsRequest describes a generic events query.
type EventsRequest struct {
	Datasets  []string
	StartDate string
	EndDate   string
	Region    *Region
	Vessels   []string
	Flags     []string

	// IntentionalOnly maps to gapIntentionalDisabling; nil omits it.
	IntentionalOnly *bool

	Pagination
}

// Validate checks datasets and pagination before any I/O.
func (r *EventsRequest) Validate() error {
	if len(r.Datasets) == 0 {
		return fmt.Errorf("%w: at least one event dataset is required", ErrInvalidRequest)
	}
	return r.Pagination.Validate()
}

type eventsBody struct {
	Datasets                []string `json:"datasets"`
	StartDate               string   `json:"start-date,omitempty"`
	EndDate                 string   `json:"end-date,omitempty"`
	Region                  *Region  `json:"region,omitempty"`
	Vessels                 []string `json:"vessels,omitempty"`
	Flags                   []string `json:"flags,omitempty"`
	GapIntentionalDisabling *bool    `json:"gapIntentionalDisabling,omitempty"`
}

func (r *EventsRequest) body() eventsBody {
	return eventsBody{
		Datasets:                r.Datasets,
		StartDate:               r.StartDate,
		EndDate:                 r.EndDate,
		Region:                  r.Region,
		Vessels:                 r.Vessels,
		Flags:                   r.Flags,
		GapIntentionalDisabling: r.IntentionalOnly,
	}
}

// VesselRef identifies a vessel within a dataset.
type VesselRef struct {
	DatasetID string `json:"datasetId"`
	VesselID  string `json:"vesselId"`
}

// InsightsRequest describes a vessel insights query.
type InsightsRequest struct {
	Vessels   []VesselRef `json:"vessels"`
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
	Includes  []string    `json:"includes"`
}

// Validate normalizes includes and fills missing vessel datasets.
func (r *InsightsRequest) Validate() error {
	if len(r.Vessels) == 0 {
		return fmt.Errorf("%w: at least one vessel is required", ErrInvalidRequest)
	}
	if r.StartDate == "" || r.EndDate == "" {
		return fmt.Errorf("%w: insights date range is required", ErrInvalidRequest)
	}
	for i := range r.Vessels {
		if r.Vessels[i].VesselID == "" {
			return fmt.Errorf("%w: vessel %d has no id", ErrInvalidRequest, i)
		}
		if r.Vessels[i].DatasetID == "" {
			r.Vessels[i].DatasetID = DatasetVesselIdentity
		}
	}
	if len(r.Includes) == 0 {
		return fmt.Errorf("%w: at least one insight type is required", ErrInvalidRequest)
	}
	for i, inc := range r.Includes {
		normalized, ok := NormalizeInsightType(inc)
		if !ok {
			return fmt.Errorf("%w: unknown insight type %q", ErrInvalidRequest, inc)
		}
		r.Includes[i] = normalized
	}
	return nil
}

// BinsRequest describes a 4Wings bins query.
type BinsRequest struct {
	Zoom      int
	Dataset   string
	Interval  string
	Filter    string
	StartDate string
	EndDate   string
	NumBins   int
}

// Validate fills defaults and bounds the zoom level.
func (r *BinsRequest) Validate() error {
	if r.Zoom < 0 || r.Zoom > maxBinsZoom {
		return fmt.Errorf("%w: zoom must be between 0 and %d", ErrInvalidRequest, maxBinsZoom)
	}
	if r.Dataset == "" {
		r.Dataset = DatasetSARPresence
	}
	if r.Interval == "" {
		r.Interval = defaultBinsInterval
	}
	if r.NumBins <= 0 {
		r.NumBins = defaultBinsCount
	}
	return nil
}

func (r *BinsRequest) query() url.Values {
	q := url.Values{}
	q.Set("datasets[0]", r.Dataset)
	q.Set("interval", r.Interval)
	q.Set("num-bins", strconv.Itoa(r.NumBins))
	if r.Filter != "" {
		q.Set("filters[0]", r.Filter)
	}
	if r.StartDate != "" && r.EndDate != "" {
		q.Set("date-range", dateRange(r.StartDate, r.EndDate))
	}
	return q
}

// StatsRequest describes a 4Wings global statistics query.
type StatsRequest struct {
	Dataset   string
	Fields    []string
	Filter    string
	StartDate string
	EndDate   string
}

func (r *StatsRequest) query() url.Values {
	q := url.Values{}
	dataset := r.Dataset
	if dataset == "" {
		dataset = DatasetSARPresence
	}
	q.Set("datasets[0]", dataset)
	if len(r.Fields) > 0 {
		q.Set("fields", strings.Join(r.Fields, ","))
	}
	if r.Filter != "" {
		q.Set("filters[0]", r.Filter)
	}
	if r.StartDate != "" && r.EndDate != "" {
		q.Set("date-range", dateRange(r.StartDate, r.EndDate))
	}
	return q
}

// SearchRequest describes a vessel identity search.
type SearchRequest struct {
	Query   string
	Where   string
	Dataset string
	Limit   int
}

// Validate requires a query or where clause and clamps the limit.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" && strings.TrimSpace(r.Where) == "" {
		return fmt.Errorf("%w: search query is required", ErrInvalidRequest)
	}
	if r.Dataset == "" {
		r.Dataset = DatasetVesselIdentity
	}
	if r.Limit <= 0 {
		r.Limit = defaultSearchLimit
	}
	if r.Limit > maxSearchLimit {
		r.Limit = maxSearchLimit
	}
	return nil
}

func (r *SearchRequest) query() url.Values {
	q := url.Values{}
	q.Set("datasets[0]", r.Dataset)
	q.Set("limit", strconv.Itoa(r.Limit))
	if r.Query != "" {
		q.Set("query", r.Query)
	}
	if r.Where != "" {
		q.Set("where", r.Where)
	}
	return q
}

func dateRange(start, end string) string {
	return start + "," + end
}
