// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package detection

import (
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/darkwatch/internal/geo"
	"github.com/tomtom215/darkwatch/internal/models"
)

// Speed bands used to discount route confidence, in km/h.
const (
	driftSpeedKmH       = 5.0
	implausibleSpeedKmH = 60.0

	driftFactor       = 0.8
	implausibleFactor = 0.6

	// fullConfidencePoints is the point count at which the base confidence saturates.
	fullConfidencePoints = 10.0
)

// PredictRoutes stitches detections and gap events into candidate
// trajectories. Points with out-of-range coordinates are dropped first.
func PredictRoutes(detections []models.Detection, gaps []models.GapEvent, cfg RouteConfig) []models.Route {
	points := make([]Point, 0, len(detections)+len(gaps))
	for _, d := range detections {
		if p, ok := PointFromDetection(d); ok {
			points = append(points, p)
		}
	}
	for _, g := range gaps {
		if p, ok := PointFromGap(g); ok {
			points = append(points, p)
		}
	}
	return PredictRoutesFromPoints(points, cfg)
}

// PredictRoutesFromRecords is PredictRoutes over raw upstream records.
func PredictRoutesFromRecords(records []map[string]interface{}, source string, cfg RouteConfig) []models.Route {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		if p, ok := ExtractPoint(r, source); ok {
			points = append(points, p)
		}
	}
	return PredictRoutesFromPoints(points, cfg)
}

// PredictRoutesFromPoints runs the two routing phases.
//
// Phase A groups points carrying a vessel identity, orders each group
// chronologically and splits it wherever a leg breaks the distance or
// time bound. Phase B connects the remaining points by greedy nearest
// plausible neighbor. The greedy search is a local heuristic and is not
// globally optimal.
func PredictRoutesFromPoints(points []Point, cfg RouteConfig) []models.Route {
	identified := make(map[string][]Point)
	anonymous := make([]Point, 0, len(points))
	for _, p := range points {
		if !geo.ValidCoordinates(p.Latitude, p.Longitude) {
			continue
		}
		if p.VesselID != "" {
			identified[p.VesselID] = append(identified[p.VesselID], p)
		} else {
			anonymous = append(anonymous, p)
		}
	}

	routes := make([]models.Route, 0)
	routes = append(routes, identifiedRoutes(identified, cfg)...)
	routes = append(routes, greedyRoutes(anonymous, cfg)...)
	return routes
}

// identifiedRoutes is phase A.
func identifiedRoutes(groups map[string][]Point, cfg RouteConfig) []models.Route {
	vesselIDs := make([]string, 0, len(groups))
	for id := range groups {
		vesselIDs = append(vesselIDs, id)
	}
	sort.Strings(vesselIDs)

	routes := make([]models.Route, 0)
	for _, vesselID := range vesselIDs {
		group := chronological(groups[vesselID])

		segment := []Point{group[0]}
		segments := make([][]Point, 0, 1)
		for _, p := range group[1:] {
			prev := segment[len(segment)-1]
			if legWithinBounds(prev, p, cfg) {
				segment = append(segment, p)
				continue
			}
			segments = append(segments, segment)
			segment = []Point{p}
		}
		segments = append(segments, segment)

		seq := 0
		for _, s := range segments {
			if len(s) < cfg.MinRouteLength {
				continue
			}
			seq++
			id := vesselID
			routes = append(routes, buildRoute(fmt.Sprintf("vessel-%s-%d", vesselID, seq), s, &id))
		}
	}
	return routes
}

// legWithinBounds checks one phase A leg. A missing timestamp on either
// side satisfies the time bound.
func legWithinBounds(prev, next Point, cfg RouteConfig) bool {
	if geo.DistanceKm(prev.Latitude, prev.Longitude, next.Latitude, next.Longitude) > cfg.MaxDistanceKm {
		return false
	}
	if prev.HasTime && next.HasTime {
		if math.Abs(next.Time.Sub(prev.Time).Hours()) > cfg.MaxTimeHours {
			return false
		}
	}
	return true
}

// greedyRoutes is phase B. Each chain starts at the earliest unvisited
// point and repeatedly takes the reachable unvisited candidate with the
// highest 1/(1+km) * 1/(1+hours) score. Ties keep the earlier candidate;
// the grid yields candidates in index order so this holds.
// Points consumed by a chain shorter than MinRouteLength stay visited.
func greedyRoutes(points []Point, cfg RouteConfig) []models.Route {
	ordered := chronological(points)
	visited := make([]bool, len(ordered))

	grid := geo.NewSpatialHashGrid(cfg.MaxDistanceKm)
	for _, p := range ordered {
		grid.Insert(p.Latitude, p.Longitude)
	}

	routes := make([]models.Route, 0)
	seq := 0
	for start := range ordered {
		if visited[start] {
			continue
		}
		visited[start] = true
		chain := []Point{ordered[start]}
		current := start

		for {
			best := -1
			bestScore := -1.0
			from := ordered[current]
			for _, candidate := range grid.Nearby(from.Latitude, from.Longitude, cfg.MaxDistanceKm) {
				if visited[candidate] {
					continue
				}
				score, ok := reachScore(from, ordered[candidate], cfg)
				if ok && score > bestScore {
					best = candidate
					bestScore = score
				}
			}
			if best < 0 {
				break
			}
			visited[best] = true
			chain = append(chain, ordered[best])
			current = best
		}

		if len(chain) >= cfg.MinRouteLength {
			seq++
			routes = append(routes, buildRoute(fmt.Sprintf("sar-%d", seq), chain, nil))
		}
	}
	return routes
}

// reachScore scores a candidate next point. Candidates must be within the
// distance bound and, when both times are known, not earlier than the
// current point and within the time bound.
func reachScore(from, to Point, cfg RouteConfig) (float64, bool) {
	distance := geo.DistanceKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	if distance > cfg.MaxDistanceKm {
		return 0, false
	}

	hours := 0.0
	if from.HasTime && to.HasTime {
		hours = to.Time.Sub(from.Time).Hours()
		if hours < 0 || hours > cfg.MaxTimeHours {
			return 0, false
		}
	}

	return (1 / (1 + distance)) * (1 / (1 + hours)), true
}

// chronological returns a copy ordered by time. Untimed points follow the
// timed ones and keep their input order.
func chronological(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HasTime != out[j].HasTime {
			return out[i].HasTime
		}
		if !out[i].HasTime {
			return false
		}
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// buildRoute computes distance, duration and confidence for a chain.
func buildRoute(id string, chain []Point, vesselID *string) models.Route {
	points := make([]models.RoutePoint, len(chain))
	total := 0.0
	for i, p := range chain {
		points[i] = models.RoutePoint{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Timestamp: p.RawTime,
			Source:    p.Source,
		}
		if i > 0 {
			total += geo.DistanceKm(chain[i-1].Latitude, chain[i-1].Longitude, p.Latitude, p.Longitude)
		}
	}

	duration := routeDuration(chain)

	return models.Route{
		RouteID:         id,
		Points:          points,
		TotalDistanceKm: geo.RoundTo2Decimals(total),
		DurationHours:   duration,
		Confidence:      RouteConfidence(len(chain), total, duration),
		VesselID:        vesselID,
		PointCount:      len(chain),
	}
}

// routeDuration spans the first and last timed points. It returns nil
// when fewer than two points carry a timestamp.
func routeDuration(chain []Point) *float64 {
	first, last := -1, -1
	for i, p := range chain {
		if !p.HasTime {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || first == last {
		return nil
	}
	hours := math.Abs(chain[last].Time.Sub(chain[first].Time).Hours())
	return &hours
}

// RouteConfidence is min(points/10, 1) scaled by a speed plausibility
// factor. Unknown or zero duration leaves the factor at 1.
func RouteConfidence(pointCount int, distanceKm float64, durationHours *float64) float64 {
	confidence := math.Min(float64(pointCount)/fullConfidencePoints, 1.0)

	if durationHours != nil && *durationHours > 0 {
		speed := distanceKm / *durationHours
		switch {
		case speed < driftSpeedKmH:
			confidence *= driftFactor
		case speed > implausibleSpeedKmH:
			confidence *= implausibleFactor
		}
	}

	return math.Round(confidence*1000) / 1000
}
