// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package detection

import (
	"sort"

	"github.com/tomtom215/darkwatch/internal/geo"
	"github.com/tomtom215/darkwatch/internal/models"
)

// unknownDatePartition holds detections without a date when partitioning.
const unknownDatePartition = "\x00unknown"

// DetectClusters groups detections into connected components where every
// member lies within cfg.MaxDistanceKm of at least one other member.
// A component can therefore span a chain longer than the link distance.
//
// Singleton components are dropped, as are components with fewer than two
// members holding valid coordinates. Results are ordered by descending
// vessel count, then by ascending date with undated clusters last.
func DetectClusters(detections []models.Detection, cfg ClusterConfig) []models.Cluster {
	if len(detections) == 0 {
		return []models.Cluster{}
	}

	keys, parts := partitionByDate(detections, cfg.SameDateOnly)

	clusters := make([]models.Cluster, 0)
	for _, key := range keys {
		partition := parts[key]
		if len(partition) < 2 {
			continue
		}

		for _, component := range connectedComponents(partition, cfg.MaxDistanceKm) {
			if len(component) < 2 {
				continue
			}
			cluster, ok := buildCluster(component, key, cfg.SameDateOnly)
			if ok {
				clusters = append(clusters, cluster)
			}
		}
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].VesselCount != clusters[j].VesselCount {
			return clusters[i].VesselCount > clusters[j].VesselCount
		}
		return dateLess(clusters[i].Date, clusters[j].Date)
	})

	return clusters
}

// partitionByDate splits detections by date, or returns a single
// partition. Keys come back sorted so repeated runs produce identical output.
func partitionByDate(detections []models.Detection, sameDateOnly bool) ([]string, map[string][]models.Detection) {
	parts := make(map[string][]models.Detection)
	keys := make([]string, 0)
	for _, d := range detections {
		key := ""
		if sameDateOnly {
			key = d.Date
			if key == "" {
				key = unknownDatePartition
			}
		}
		if _, ok := parts[key]; !ok {
			keys = append(keys, key)
		}
		parts[key] = append(parts[key], d)
	}
	sort.Strings(keys)
	return keys, parts
}

// connectedComponents runs a breadth-first expansion over the implicit
// proximity graph. Each new member is compared against every unvisited
// detection in its neighbouring grid cells, not only against the seed.
func connectedComponents(partition []models.Detection, maxDistanceKm float64) [][]models.Detection {
	grid := geo.NewSpatialHashGrid(maxDistanceKm)
	for _, d := range partition {
		grid.Insert(d.Latitude, d.Longitude)
	}

	visited := make([]bool, len(partition))
	components := make([][]models.Detection, 0)

	for seed := range partition {
		if visited[seed] {
			continue
		}
		visited[seed] = true

		queue := []int{seed}
		members := make([]int, 0, 4)
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			members = append(members, current)

			for _, candidate := range grid.Nearby(partition[current].Latitude, partition[current].Longitude, maxDistanceKm) {
				if visited[candidate] {
					continue
				}
				d := geo.DistanceKm(
					partition[current].Latitude, partition[current].Longitude,
					partition[candidate].Latitude, partition[candidate].Longitude,
				)
				if d <= maxDistanceKm {
					visited[candidate] = true
					queue = append(queue, candidate)
				}
			}
		}

		component := make([]models.Detection, len(members))
		for i, idx := range members {
			component[i] = partition[idx]
		}
		components = append(components, component)
	}

	return components
}

// buildCluster summarizes a component. It returns false when fewer than
// two members have valid coordinates.
func buildCluster(component []models.Detection, partitionKey string, sameDateOnly bool) (models.Cluster, bool) {
	valid := make([]models.Detection, 0, len(component))
	for _, d := range component {
		if geo.ValidCoordinates(d.Latitude, d.Longitude) {
			valid = append(valid, d)
		}
	}
	if len(valid) < 2 {
		return models.Cluster{}, false
	}

	var sumLat, sumLon float64
	vesselCount := 0
	for _, d := range valid {
		sumLat += d.Latitude
		sumLon += d.Longitude
		vesselCount += claimedVessels(d)
	}

	maxDistance := 0.0
	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			d := geo.DistanceKm(valid[i].Latitude, valid[i].Longitude, valid[j].Latitude, valid[j].Longitude)
			if d > maxDistance {
				maxDistance = d
			}
		}
	}

	return models.Cluster{
		CenterLat:             sumLat / float64(len(valid)),
		CenterLon:             sumLon / float64(len(valid)),
		Date:                  clusterDate(valid, partitionKey, sameDateOnly),
		VesselCount:           vesselCount,
		DetectionCount:        len(valid),
		MemberDetections:      valid,
		MaxInternalDistanceKm: maxDistance,
		RiskTier:              ClusterRiskTier(vesselCount),
	}, true
}

// claimedVessels returns the vessels a detection stands for; never below 1.
func claimedVessels(d models.Detection) int {
	if d.DetectionCount < 1 {
		return 1
	}
	return d.DetectionCount
}

// clusterDate returns the partition date, or the common member date when
// clustering across dates. Mixed or missing dates yield nil.
func clusterDate(members []models.Detection, partitionKey string, sameDateOnly bool) *string {
	if sameDateOnly {
		if partitionKey == unknownDatePartition {
			return nil
		}
		date := partitionKey
		return &date
	}

	date := members[0].Date
	if date == "" {
		return nil
	}
	for _, m := range members[1:] {
		if m.Date != date {
			return nil
		}
	}
	return &date
}

// ClusterRiskTier maps a vessel count to a risk tier.
func ClusterRiskTier(vesselCount int) models.RiskTier {
	switch {
	case vesselCount >= 3:
		return models.RiskTierHigh
	case vesselCount >= 2:
		return models.RiskTierMedium
	default:
		return models.RiskTierLow
	}
}

// dateLess orders dates ascending with nil last.
func dateLess(a, b *string) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}
