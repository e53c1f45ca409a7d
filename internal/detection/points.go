// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package detection

import (
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/darkwatch/internal/geo"
	"github.com/tomtom215/darkwatch/internal/models"
)

// Point sources.
const (
	SourceDetection = "detection"
	SourceGap       = "gap"
)

// Point is the routing view of a detection or gap event.
type Point struct {
	Latitude  float64
	Longitude float64

	// Time is zero when HasTime is false.
	Time    time.Time
	HasTime bool

	// RawTime is the upstream timestamp string, kept for output.
	RawTime string

	VesselID string
	Source   string
}

// Field aliases accepted when reading raw upstream records.
var (
	latitudeKeys  = []string{"latitude", "lat", "Latitude", "Lat", "LAT"}
	longitudeKeys = []string{"longitude", "lon", "lng", "long", "Longitude", "Lon", "LON"}
	timeKeys      = []string{"timestamp", "start", "date", "datetime", "time", "end"}
	vesselIDKeys  = []string{"vessel_id", "vesselId", "vesselID"}
)

// PointFromDetection converts a canonical detection. ok is false when
// the coordinates are out of range.
func PointFromDetection(d models.Detection) (Point, bool) {
	if !geo.ValidCoordinates(d.Latitude, d.Longitude) {
		return Point{}, false
	}
	p := Point{
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		RawTime:   d.Date,
		Source:    SourceDetection,
	}
	p.Time, p.HasTime = ParseTimestamp(d.Date)
	return p, true
}

// PointFromGap converts a canonical gap event. Gaps without a known
// position are not routable.
func PointFromGap(g models.GapEvent) (Point, bool) {
	if g.PositionUnknown || !geo.ValidCoordinates(g.Latitude, g.Longitude) {
		return Point{}, false
	}
	raw := g.Timestamp()
	p := Point{
		Latitude:  g.Latitude,
		Longitude: g.Longitude,
		RawTime:   raw,
		VesselID:  g.VesselID,
		Source:    SourceGap,
	}
	p.Time, p.HasTime = ParseTimestamp(raw)
	return p, true
}

// ExtractPoint reads a point from a raw upstream record. It accepts the
// usual coordinate aliases, a nested "position" object and a GeoJSON
// Point geometry. Records without usable coordinates return ok=false.
func ExtractPoint(record map[string]interface{}, source string) (Point, bool) {
	if record == nil {
		return Point{}, false
	}

	lat, latOK := firstFloat(record, latitudeKeys)
	lon, lonOK := firstFloat(record, longitudeKeys)

	if !latOK || !lonOK {
		if pos, ok := record["position"].(map[string]interface{}); ok {
			lat, latOK = firstFloat(pos, latitudeKeys)
			lon, lonOK = firstFloat(pos, longitudeKeys)
		}
	}

	if !latOK || !lonOK {
		lat, lon, latOK = geoJSONPoint(record)
		lonOK = latOK
	}

	if !latOK || !lonOK || !geo.ValidCoordinates(lat, lon) {
		return Point{}, false
	}

	p := Point{
		Latitude:  lat,
		Longitude: lon,
		Source:    source,
		VesselID:  RecordVesselID(record),
	}
	for _, key := range timeKeys {
		if s, ok := record[key].(string); ok && s != "" {
			p.RawTime = s
			p.Time, p.HasTime = ParseTimestamp(s)
			break
		}
	}
	return p, true
}

// geoJSONPoint reads [lon, lat] from a Point geometry, either the record
// itself or its "geometry" member.
func geoJSONPoint(record map[string]interface{}) (float64, float64, bool) {
	geometry := record
	if g, ok := record["geometry"].(map[string]interface{}); ok {
		geometry = g
	}
	if t, _ := geometry["type"].(string); !strings.EqualFold(t, "Point") {
		return 0, 0, false
	}
	coords, ok := geometry["coordinates"].([]interface{})
	if !ok || len(coords) < 2 {
		return 0, 0, false
	}
	lon, lonOK := toFloat(coords[0])
	lat, latOK := toFloat(coords[1])
	if !lonOK || !latOK {
		return 0, 0, false
	}
	return lat, lon, true
}

// RecordVesselID reads the vessel id of a raw record from a flat alias
// or a nested "vessel" object.
func RecordVesselID(record map[string]interface{}) string {
	for _, key := range vesselIDKeys {
		if s, ok := record[key].(string); ok && s != "" {
			return s
		}
	}
	if vessel, ok := record["vessel"].(map[string]interface{}); ok {
		if s, ok := vessel["id"].(string); ok {
			return s
		}
	}
	return ""
}

func firstFloat(record map[string]interface{}, keys []string) (float64, bool) {
	for _, key := range keys {
		if v, ok := record[key]; ok {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// toFloat accepts JSON numbers and numeric strings.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses ISO-8601 (with or without a zone suffix) or a
// bare YYYY-MM-DD date. Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
