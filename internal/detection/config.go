// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package detection

import "fmt"

// ClusterConfig configures DetectClusters.
type ClusterConfig struct {
	// MaxDistanceKm is the link distance between two detections.
	MaxDistanceKm float64 `json:"max_distance_km"`

	// SameDateOnly restricts links to detections sharing a date.
	SameDateOnly bool `json:"same_date_only"`
}

// DefaultClusterConfig returns the default clustering parameters.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		MaxDistanceKm: 5.0,
		SameDateOnly:  true,
	}
}

// Validate checks the configuration.
func (c ClusterConfig) Validate() error {
	if c.MaxDistanceKm <= 0 {
		return fmt.Errorf("max_distance_km must be positive")
	}
	return nil
}

// RouteConfig configures PredictRoutes.
type RouteConfig struct {
	// MaxTimeHours bounds the time gap between consecutive route points.
	MaxTimeHours float64 `json:"max_time_hours"`

	// MaxDistanceKm bounds the distance between consecutive route points.
	MaxDistanceKm float64 `json:"max_distance_km"`

	// MinRouteLength is the minimum number of points for a reported route.
	MinRouteLength int `json:"min_route_length"`
}

// DefaultRouteConfig returns the default route stitching parameters.
func DefaultRouteConfig() RouteConfig {
	return RouteConfig{
		MaxTimeHours:   48,
		MaxDistanceKm:  100,
		MinRouteLength: 2,
	}
}

// Validate checks the configuration.
func (c RouteConfig) Validate() error {
	if c.MaxTimeHours <= 0 {
		return fmt.Errorf("max_time_hours must be positive")
	}
	if c.MaxDistanceKm <= 0 {
		return fmt.Errorf("max_distance_km must be positive")
	}
	if c.MinRouteLength < 2 {
		return fmt.Errorf("min_route_length must be at least 2")
	}
	return nil
}
