// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import "strings"

// Dataset identifiers.
const (
	DatasetSARPresence    = "public-global-sar-presence:latest"
	DatasetFishingEvents  = "public-global-fishing-events:latest"
	DatasetPortVisits     = "public-global-port-visits-events:latest"
	DatasetEncounters     = "public-global-encounters-events:latest"
	DatasetLoitering      = "public-global-loitering-events:latest"
	DatasetGaps           = "public-global-gaps-events:latest"
	DatasetVesselIdentity = "public-global-vessel-identity:latest"
	DatasetEEZAreas       = "public-eez-areas"
)

// Datasets maps the short names used by the HTTP API to dataset ids.
var Datasets = map[string]string{
	"sar":         DatasetSARPresence,
	"fishing":     DatasetFishingEvents,
	"port_visits": DatasetPortVisits,
	"encounters":  DatasetEncounters,
	"loitering":   DatasetLoitering,
	"gaps":        DatasetGaps,
	"identity":    DatasetVesselIdentity,
	"eez":         DatasetEEZAreas,
}

// EventDatasets are the event types accepted by the events endpoint.
var EventDatasets = map[string]string{
	"fishing":     DatasetFishingEvents,
	"port_visits": DatasetPortVisits,
	"encounters":  DatasetEncounters,
	"loitering":   DatasetLoitering,
	"gaps":        DatasetGaps,
}

// Report temporal resolutions.
const (
	TemporalDaily   = "DAILY"
	TemporalMonthly = "MONTHLY"
	TemporalEntire  = "ENTIRE"
)

// Report spatial resolutions.
const (
	SpatialLow  = "LOW"
	SpatialHigh = "HIGH"
)

// Report group-by values.
const (
	GroupByGearType = "GEARTYPE"
	GroupByFlag     = "FLAG"
	GroupByVesselID = "VESSEL_ID"
	GroupByShipType = "SHIPTYPE"
)

// Insight types.
const (
	InsightFishing       = "FISHING"
	InsightGap           = "GAP"
	InsightCoverage      = "COVERAGE"
	InsightIUUVesselList = "VESSEL-IDENTITY-IUU-VESSEL-LIST"

	insightIUUShorthand = "IUU"
)

// Request defaults and limits.
const (
	reportFormatJSON    = "JSON"
	defaultBinsCount    = 9
	defaultBinsInterval = "DAY"
	maxBinsZoom         = 12
	defaultSearchLimit  = 20
	maxSearchLimit      = 100
)

// GearTypes lists the accepted SAR geartype filter values.
var GearTypes = []string{
	"tuna_purse_seines", "driftnets", "trollers", "set_longlines", "purse_seines",
	"pots_and_traps", "other_fishing", "dredge_fishing", "set_gillnets", "fixed_gear",
	"trawlers", "fishing", "seiners", "squid_jigger", "pole_and_line", "drifting_longlines",
}

// ShipTypes lists the accepted SAR shiptype filter values.
var ShipTypes = []string{
	"carrier", "seismic_vessel", "passenger", "other", "support",
	"bunker", "gear", "cargo", "fishing", "discrepancy",
}

// NeuralVesselTypes lists the SAR classifier labels.
var NeuralVesselTypes = []string{"Likely Fishing", "Likely non-fishing", "Unknown"}

// InsightTypes lists the accepted insight includes.
var InsightTypes = []string{InsightFishing, InsightGap, InsightCoverage, InsightIUUVesselList}

// ValidTemporalResolution reports whether r is DAILY, MONTHLY or ENTIRE.
func ValidTemporalResolution(r string) bool {
	switch r {
	case TemporalDaily, TemporalMonthly, TemporalEntire:
		return true
	}
	return false
}

// ValidGroupBy reports whether g is an accepted report grouping.
func ValidGroupBy(g string) bool {
	switch g {
	case GroupByGearType, GroupByFlag, GroupByVesselID, GroupByShipType:
		return true
	}
	return false
}

// ValidSpatialResolution reports whether r is LOW or HIGH.
func ValidSpatialResolution(r string) bool {
	return r == SpatialLow || r == SpatialHigh
}

// NormalizeInsightType upper-cases t and expands the IUU shorthand.
// ok is false for unknown types.
func NormalizeInsightType(t string) (string, bool) {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == insightIUUShorthand {
		t = InsightIUUVesselList
	}
	for _, known := range InsightTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
