// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"fmt"
	"strings"
)

// SARFilter is the structured form of a 4Wings filters[0] expression.
// A nil Matched leaves AIS matching unconstrained.
type SARFilter struct {
	Matched          *bool    `json:"matched,omitempty"`
	Flags            []string `json:"flag,omitempty"`
	GearTypes        []string `json:"geartype,omitempty"`
	ShipTypes        []string `json:"shiptype,omitempty"`
	NeuralVesselType string   `json:"neural_vessel_type,omitempty"`
	VesselID         string   `json:"vessel_id,omitempty"`
}

// DarkFilter returns a filter selecting detections with no AIS match.
func DarkFilter() SARFilter {
	matched := false
	return SARFilter{Matched: &matched}
}

// Validate checks gear, ship and classifier values against the catalog.
func (f SARFilter) Validate() error {
	for _, g := range f.GearTypes {
		if !contains(GearTypes, g) {
			return fmt.Errorf("%w: unknown geartype %q", ErrInvalidRequest, g)
		}
	}
	for _, s := range f.ShipTypes {
		if !contains(ShipTypes, s) {
			return fmt.Errorf("%w: unknown shiptype %q", ErrInvalidRequest, s)
		}
	}
	if f.NeuralVesselType != "" && !contains(NeuralVesselTypes, f.NeuralVesselType) {
		return fmt.Errorf("%w: unknown neural_vessel_type %q", ErrInvalidRequest, f.NeuralVesselType)
	}
	return nil
}

// HasMatched reports whether the filter constrains AIS matching.
func (f SARFilter) HasMatched() bool {
	return f.Matched != nil
}

// WithoutMatched returns a copy with the matched constraint removed.
// Report summaries use it because upstream boolean handling is unreliable.
func (f SARFilter) WithoutMatched() SARFilter {
	f.Matched = nil
	return f
}

// IsEmpty reports whether the filter renders to an empty expression.
func (f SARFilter) IsEmpty() bool {
	return f.String() == ""
}

// String renders the upstream expression. matched is sent as a quoted
// string, which is the form the 4Wings endpoints accept.
func (f SARFilter) String() string {
	parts := make([]string, 0, 6)
	if f.Matched != nil {
		parts = append(parts, fmt.Sprintf("matched='%t'", *f.Matched))
	}
	if len(f.Flags) > 0 {
		parts = append(parts, "flag in ("+quoteList(f.Flags)+")")
	}
	if len(f.GearTypes) > 0 {
		parts = append(parts, "geartype in ("+quoteList(f.GearTypes)+")")
	}
	if len(f.ShipTypes) > 0 {
		parts = append(parts, "shiptype in ("+quoteList(f.ShipTypes)+")")
	}
	if f.NeuralVesselType != "" {
		parts = append(parts, fmt.Sprintf("neural_vessel_type='%s'", f.NeuralVesselType))
	}
	if f.VesselID != "" {
		parts = append(parts, fmt.Sprintf("vessel_id='%s'", f.VesselID))
	}
	return strings.Join(parts, " AND ")
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ",")
}
