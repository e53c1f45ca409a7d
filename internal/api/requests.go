// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

// Request structs carry go-playground/validator tags. Field names in
// error messages come from the query tag, then the json tag.
//
// Bounds that come from configuration (cluster and route limits) are
// checked with validation.ValidateVar in the handler instead of a tag.
package api

import (
	"github.com/tomtom215/darkwatch/internal/validation"
)

// RegionRangeRequest is the common eez_ids + date window query.
type RegionRangeRequest struct {
	validation.DateRange
	EEZIDs []string `query:"eez_ids" validate:"required,dive,required"`
}

// ClusterRequest is the query of /detections/proximity-clusters.
type ClusterRequest struct {
	RegionRangeRequest
	MaxDistanceKm float64 `query:"max_distance_km"`
	SameDateOnly  bool    `query:"same_date_only"`
}

// RouteRequest is the query of /detections/routes.
type RouteRequest struct {
	RegionRangeRequest
	MaxTimeHours   float64 `query:"max_time_hours"`
	MaxDistanceKm  float64 `query:"max_distance_km"`
	MinRouteLength int     `query:"min_route_length"`
}

// GapsRequest is the query of /gaps.
type GapsRequest struct {
	RegionRangeRequest
	IntentionalOnly bool `query:"intentional_only"`
	Limit           int  `query:"limit" validate:"gte=1,lte=10000"`
}

// EventsRequest is the query of /events. Limit and Offset are passed
// through as given; the upstream client rejects one without the other.
type EventsRequest struct {
	validation.DateRange
	EventTypes []string `query:"event_types" validate:"dive,required"`
	Region     string   `query:"region"`
	Flags      []string `query:"flags"`
	Limit      *int     `query:"limit" validate:"omitempty,gte=1,lte=10000"`
	Offset     *int     `query:"offset" validate:"omitempty,gte=0"`
}

// SummaryRequest is the query of /summary.
type SummaryRequest struct {
	RegionRangeRequest
	GroupBy            string `query:"group_by" validate:"omitempty,groupby"`
	TemporalResolution string `query:"temporal_resolution" validate:"omitempty,oneof=DAILY MONTHLY ENTIRE"`
}

// BinsRequest is the query of /bins/{zoom}. Its date window is
// optional and checked separately when either end is given.
type BinsRequest struct {
	Zoom     int    `query:"zoom" validate:"gte=0,lte=12"`
	Interval string `query:"interval" validate:"omitempty,oneof=HOUR DAY MONTH YEAR"`
	NumBins  int    `query:"num_bins" validate:"gte=1,lte=100"`
}

// SearchRequest is the query of /vessels/search.
type SearchRequest struct {
	Query   string `query:"query" validate:"required_without=Where,max=200"`
	Where   string `query:"where" validate:"max=500"`
	Dataset string `query:"dataset"`
	Limit   int    `query:"limit" validate:"gte=1,lte=100"`
}

// VesselRequest is the path and query of /vessels/{vesselID}.
type VesselRequest struct {
	VesselID string `query:"vessel_id" validate:"required,max=128"`
	Dataset  string `query:"dataset"`
}

// InsightsBody is the JSON body of POST /insights.
type InsightsBody struct {
	validation.DateRange
	VesselIDs []string `json:"vessel_ids" validate:"required,min=1,max=50,dive,required"`
	DatasetID string   `json:"dataset_id"`
	Includes  []string `json:"includes"`
}

// RiskScoreRequest is the path and query of /analytics/risk-score/{vesselID}.
type RiskScoreRequest struct {
	validation.DateRange
	VesselID string `query:"vessel_id" validate:"required,max=128"`
}
