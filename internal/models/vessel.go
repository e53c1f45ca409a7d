// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package models

// Detection is a single SAR presence record.
// Matched is false when no AIS position correlates with the detection.
type Detection struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Date           string  `json:"date,omitempty"`
	DetectionCount int     `json:"detection_count"`
	Matched        bool    `json:"matched"`
	RegionID       string  `json:"region_id,omitempty"`
}

// GapEvent is an AIS-disabling event.
// VesselID is empty when the upstream could not attribute the gap.
// PositionUnknown gaps count towards totals but never enter routing.
type GapEvent struct {
	ID              string  `json:"id,omitempty"`
	VesselID        string  `json:"vessel_id,omitempty"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	PositionUnknown bool    `json:"position_unknown,omitempty"`
	Start           string  `json:"start,omitempty"`
	End             string  `json:"end,omitempty"`
	Date            string  `json:"date,omitempty"`
	Intentional     bool    `json:"intentional"`
	RegionID        string  `json:"region_id,omitempty"`
}

// Identified reports whether the gap carries a known vessel identity.
func (g *GapEvent) Identified() bool {
	return g.VesselID != ""
}

// Timestamp returns the most precise time field available, preferring
// the gap start over the end and the end over the bare date.
func (g *GapEvent) Timestamp() string {
	switch {
	case g.Start != "":
		return g.Start
	case g.End != "":
		return g.End
	default:
		return g.Date
	}
}
