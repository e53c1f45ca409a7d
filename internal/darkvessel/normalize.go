// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/detection"
	"github.com/tomtom215/darkwatch/internal/models"
)

// ErrMalformedShape marks an upstream payload with none of the known
// record containers. The call contributes zero records.
var ErrMalformedShape = errors.New("malformed upstream response shape")

// recordContainers are the keys under which upstream payloads carry
// their record lists, in lookup order.
var recordContainers = []string{"entries", "data", "results"}

var (
	detectionCountKeys = []string{"detections", "detection_count", "count"}
	intentionalKeys    = []string{"intentionalDisabling", "intentional"}
)

// extractRecords flattens any known payload shape into a list of
// records:
//
//	{"entries": [{"<dataset>": [record, ...]}, ...]}
//	{"entries"|"data"|"results": [record, ...]}
//	{"<dataset>": [record, ...], ...}
//	[record, ...]
//
// Dataset-keyed groups are flattened in sorted key order. Non-object
// list items are skipped.
func extractRecords(raw json.RawMessage) ([]map[string]interface{}, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShape, err)
	}

	switch v := payload.(type) {
	case []interface{}:
		return flattenList(v), nil
	case map[string]interface{}:
		for _, key := range recordContainers {
			if list, ok := v[key].([]interface{}); ok {
				return flattenList(list), nil
			}
		}
		if groups, ok := datasetGroups(v); ok {
			return groups, nil
		}
		return nil, fmt.Errorf("%w: object without entries, data or results", ErrMalformedShape)
	default:
		return nil, fmt.Errorf("%w: unexpected %T payload", ErrMalformedShape, payload)
	}
}

func flattenList(items []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if groups, ok := datasetGroups(record); ok {
			out = append(out, groups...)
			continue
		}
		out = append(out, record)
	}
	return out
}

// datasetGroups reports whether m maps dataset keys to record lists and
// returns the flattened records. Empty maps are not groups.
func datasetGroups(m map[string]interface{}) ([]map[string]interface{}, bool) {
	if len(m) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if _, ok := v.([]interface{}); !ok {
			return nil, false
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []map[string]interface{}
	for _, k := range keys {
		for _, item := range m[k].([]interface{}) {
			if record, ok := item.(map[string]interface{}); ok {
				out = append(out, record)
			}
		}
	}
	return out, true
}

// parsedDetection carries whether the record stated its AIS match.
type parsedDetection struct {
	models.Detection
	matchedKnown bool
}

func parseDetections(raw json.RawMessage, regionID string) ([]parsedDetection, error) {
	records, err := extractRecords(raw)
	if err != nil {
		return nil, err
	}
	out := make([]parsedDetection, 0, len(records))
	for _, record := range records {
		p, ok := detection.ExtractPoint(record, detection.SourceDetection)
		if !ok {
			continue
		}
		matched, known := matchedValue(record["matched"])
		out = append(out, parsedDetection{
			Detection: models.Detection{
				Latitude:       p.Latitude,
				Longitude:      p.Longitude,
				Date:           p.RawTime,
				DetectionCount: detectionCount(record),
				Matched:        matched,
				RegionID:       regionID,
			},
			matchedKnown: known,
		})
	}
	return out, nil
}

// NormalizeDetections converts a report payload into detections. Records
// without usable coordinates are skipped; a missing matched flag reads
// as false.
func NormalizeDetections(raw json.RawMessage, regionID string) ([]models.Detection, error) {
	parsed, err := parseDetections(raw, regionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Detection, len(parsed))
	for i := range parsed {
		out[i] = parsed[i].Detection
	}
	return out, nil
}

// UnmatchedDetections keeps the records that are not AIS-matched. A record
// stating matched=true is always dropped. A record without the flag is
// kept only when the upstream was asked for unmatched rows
// (upstreamFiltered), since report rows omit the field under that filter.
func UnmatchedDetections(raw json.RawMessage, regionID string, upstreamFiltered bool) ([]models.Detection, error) {
	parsed, err := parseDetections(raw, regionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Detection, 0, len(parsed))
	for i := range parsed {
		switch {
		case parsed[i].matchedKnown && parsed[i].Matched:
			// AIS-matched, not dark.
		case parsed[i].matchedKnown, upstreamFiltered:
			out = append(out, parsed[i].Detection)
		}
	}
	return out, nil
}

// NormalizeGaps converts an events payload into gap events. Gaps without
// usable coordinates are kept with PositionUnknown set so that totals and
// vessel cross-references still see them.
func NormalizeGaps(raw json.RawMessage, regionID string) ([]models.GapEvent, error) {
	records, err := extractRecords(raw)
	if err != nil {
		return nil, err
	}
	out := make([]models.GapEvent, 0, len(records))
	for _, record := range records {
		g := models.GapEvent{
			ID:          stringField(record, "id"),
			Start:       stringField(record, "start"),
			End:         stringField(record, "end"),
			Date:        stringField(record, "date"),
			Intentional: gapIntentional(record),
			RegionID:    regionID,
		}
		if p, ok := detection.ExtractPoint(record, detection.SourceGap); ok {
			g.VesselID = p.VesselID
			g.Latitude = p.Latitude
			g.Longitude = p.Longitude
		} else {
			g.VesselID = detection.RecordVesselID(record)
			g.PositionUnknown = true
		}
		if g.Date == "" && len(g.Start) >= len(DateLayout) {
			g.Date = g.Start[:len(DateLayout)]
		}
		out = append(out, g)
	}
	return out, nil
}

// matchedValue reads a bool or a "true"/"false" string.
func matchedValue(v interface{}) (matched, known bool) {
	switch m := v.(type) {
	case bool:
		return m, true
	case string:
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "false":
			return false, true
		case "true":
			return true, true
		}
	}
	return false, false
}

// detectionCount is at least 1; a record is itself one detection.
func detectionCount(record map[string]interface{}) int {
	for _, key := range detectionCountKeys {
		switch n := record[key].(type) {
		case float64:
			if n >= 1 {
				return countFromFloat(math.Round(n))
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil && f >= 1 {
				return countFromFloat(math.Round(f))
			}
		}
	}
	return 1
}

func gapIntentional(record map[string]interface{}) bool {
	if gap, ok := record["gap"].(map[string]interface{}); ok {
		for _, key := range intentionalKeys {
			if b, ok := gap[key].(bool); ok {
				return b
			}
		}
	}
	for _, key := range intentionalKeys {
		if b, ok := record[key].(bool); ok {
			return b
		}
	}
	return false
}

func stringField(record map[string]interface{}, key string) string {
	s, _ := record[key].(string)
	return s
}
