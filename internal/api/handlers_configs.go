// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"net/http"
	"sort"

	"github.com/tomtom215/darkwatch/internal/eez"
	"github.com/tomtom215/darkwatch/internal/gfw"
)

// ConfigsResponse is the catalog the frontend needs to build queries.
type ConfigsResponse struct {
	Datasets            map[string]string   `json:"datasets"`
	EventTypes          []string            `json:"event_types"`
	GearTypes           []string            `json:"gear_types"`
	ShipTypes           []string            `json:"ship_types"`
	NeuralVesselTypes   []string            `json:"neural_vessel_types"`
	InsightTypes        []string            `json:"insight_types"`
	GroupBy             []string            `json:"group_by"`
	TemporalResolutions []string            `json:"temporal_resolutions"`
	EEZHierarchy        map[string][]string `json:"eez_hierarchy"`
	Detection           DetectionDefaults   `json:"detection"`
	CacheEnabled        bool                `json:"cache_enabled"`
	CacheDefaultTTLSecs int                 `json:"cache_default_ttl_seconds"`
}

// DetectionDefaults are the default and maximum algorithm parameters.
type DetectionDefaults struct {
	Clusters ParameterBounds `json:"proximity_clusters"`
	Routes   ParameterBounds `json:"routes"`
}

// ParameterBounds pairs parameter defaults with their accepted maxima.
type ParameterBounds struct {
	Defaults map[string]interface{} `json:"defaults"`
	Limits   map[string]interface{} `json:"limits"`
}

// Configs returns dataset ids, enums, the EEZ hierarchy and detection
// defaults.
func (h *Handler) Configs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		NewResponseWriter(w, r).MethodNotAllowed()
		return
	}

	d := h.cfg.Detection
	eventTypes := make([]string, 0, len(gfw.EventDatasets))
	for name := range gfw.EventDatasets {
		eventTypes = append(eventTypes, name)
	}
	sort.Strings(eventTypes)

	respondJSON(w, r, ConfigsResponse{
		Datasets:            gfw.Datasets,
		EventTypes:          eventTypes,
		GearTypes:           gfw.GearTypes,
		ShipTypes:           gfw.ShipTypes,
		NeuralVesselTypes:   gfw.NeuralVesselTypes,
		InsightTypes:        gfw.InsightTypes,
		GroupBy:             []string{gfw.GroupByGearType, gfw.GroupByFlag, gfw.GroupByVesselID, gfw.GroupByShipType},
		TemporalResolutions: []string{gfw.TemporalDaily, gfw.TemporalMonthly, gfw.TemporalEntire},
		EEZHierarchy:        eez.Hierarchy,
		Detection: DetectionDefaults{
			Clusters: ParameterBounds{
				Defaults: map[string]interface{}{
					"max_distance_km": d.ClusterMaxDistanceKm,
					"same_date_only":  d.ClusterSameDateOnly,
				},
				Limits: map[string]interface{}{
					"max_distance_km": d.ClusterMaxDistanceLimitKm,
				},
			},
			Routes: ParameterBounds{
				Defaults: map[string]interface{}{
					"max_time_hours":   d.RouteMaxTimeHours,
					"max_distance_km":  d.RouteMaxDistanceKm,
					"min_route_length": d.MinRouteLength,
				},
				Limits: map[string]interface{}{
					"max_time_hours":   d.RouteMaxTimeLimitHours,
					"max_distance_km":  d.RouteMaxDistanceLimitKm,
					"min_route_length": d.MinRouteLengthLimit,
				},
			},
		},
		CacheEnabled:        h.cfg.Cache.Enabled,
		CacheDefaultTTLSecs: h.cfg.Cache.DefaultTTLSeconds,
	})
}
