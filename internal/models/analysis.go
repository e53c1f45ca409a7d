// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package models

// RiskTier is a discrete risk bucket.
type RiskTier string

const (
	RiskTierLow     RiskTier = "low"
	RiskTierMedium  RiskTier = "medium"
	RiskTierHigh    RiskTier = "high"
	RiskTierUnknown RiskTier = "unknown"
)

// Cluster is a connected component of detections lying within the
// configured distance of at least one other member.
// VesselCount sums member detection counts, so VesselCount >= DetectionCount.
type Cluster struct {
	CenterLat             float64     `json:"center_lat"`
	CenterLon             float64     `json:"center_lon"`
	Date                  *string     `json:"date"`
	VesselCount           int         `json:"vessel_count"`
	DetectionCount        int         `json:"detection_count"`
	MemberDetections      []Detection `json:"member_detections"`
	MaxInternalDistanceKm float64     `json:"max_internal_distance_km"`
	RiskTier              RiskTier    `json:"risk_tier"`
}

// RoutePoint is one stop on a predicted route. Timestamp holds the raw
// upstream value (ISO-8601 or YYYY-MM-DD) and may be empty.
type RoutePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp,omitempty"`
	Source    string  `json:"source"`
}

// Route is a frozen record of a stitching decision. Consecutive points
// satisfied the distance and time bounds when the route was built.
type Route struct {
	RouteID         string       `json:"route_id"`
	Points          []RoutePoint `json:"points"`
	TotalDistanceKm float64      `json:"total_distance_km"`
	DurationHours   *float64     `json:"duration_hours"`
	Confidence      float64      `json:"confidence"`
	VesselID        *string      `json:"vessel_id"`
	PointCount      int          `json:"point_count"`
}

// RiskAssessment is a per-request vessel risk score.
// Factors holds each factor's raw counter; a factor whose fetch failed
// is recorded as 0 and its error message lands in Errors.
type RiskAssessment struct {
	VesselID  string             `json:"vessel_id"`
	RiskScore int                `json:"risk_score"`
	RiskTier  RiskTier           `json:"risk_tier"`
	Factors   map[string]float64 `json:"factors"`
	Errors    map[string]string  `json:"errors,omitempty"`
	StartDate string             `json:"start_date,omitempty"`
	EndDate   string             `json:"end_date,omitempty"`
}
