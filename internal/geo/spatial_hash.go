// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package geo

import (
	"math"
	"sort"
)

// kmPerDegree is the length of one degree of latitude at EarthRadiusKm.
const kmPerDegree = EarthRadiusKm * math.Pi / 180

// DefaultCellSizeKm is used when a grid is created with a non-positive
// cell size.
const DefaultCellSizeKm = 5.0

// SpatialHashGrid divides the globe into fixed-size lat/lon cells so a
// proximity query only visits the cells around the query point instead of
// every point.
//
// Entries are identified by insertion index. Nearby returns a superset of
// the entries within the radius, in ascending index order, so callers keep
// their exact distance check and their iteration order. Longitude cells
// wrap at the antimeridian and the longitude window widens with latitude.
//
// A grid is built once per computation and is not safe for concurrent
// mutation.
//
// Time Complexity:
//   - Insert: O(1)
//   - Nearby: O(k log k) where k = entries in the visited cells
type SpatialHashGrid struct {
	cellSize float64 // degrees
	lonCells int
	cells    map[CellKey][]int
	keys     []CellKey

	// invalid holds entries with unusable coordinates. Distances to them
	// are undefined, so every query returns them.
	invalid []int
}

// CellKey is a grid cell coordinate. X wraps modulo the longitude cell
// count.
type CellKey struct {
	X, Y int
}

// NewSpatialHashGrid creates a grid with cells of roughly cellSizeKm on a
// side at the equator. Using the query radius as cell size keeps each
// query to a few cells.
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if !(cellSizeKm > 0) || math.IsInf(cellSizeKm, 1) {
		cellSizeKm = DefaultCellSizeKm
	}
	cellSize := math.Min(cellSizeKm/kmPerDegree, 180)
	return &SpatialHashGrid{
		cellSize: cellSize,
		lonCells: int(math.Ceil(360 / cellSize)),
		cells:    make(map[CellKey][]int),
	}
}

// Len returns the number of inserted entries.
func (g *SpatialHashGrid) Len() int {
	return len(g.keys) + len(g.invalid)
}

func (g *SpatialHashGrid) cellKey(lat, lon float64) CellKey {
	x := int(math.Floor((lon + 180) / g.cellSize))
	y := int(math.Floor((lat + 90) / g.cellSize))
	return CellKey{X: g.wrapX(x), Y: y}
}

func (g *SpatialHashGrid) wrapX(x int) int {
	x %= g.lonCells
	if x < 0 {
		x += g.lonCells
	}
	return x
}

// Insert adds a point and returns its index.
func (g *SpatialHashGrid) Insert(lat, lon float64) int {
	idx := len(g.keys) + len(g.invalid)
	if !ValidCoordinates(lat, lon) {
		g.invalid = append(g.invalid, idx)
		return idx
	}
	key := g.cellKey(lat, lon)
	g.cells[key] = append(g.cells[key], idx)
	g.keys = append(g.keys, key)
	return idx
}

// all returns every index in ascending order.
func (g *SpatialHashGrid) all() []int {
	out := make([]int, g.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// Nearby returns the indices of every entry that may lie within radiusKm
// of (lat, lon), in ascending order. An unusable query point or radius
// returns every entry.
func (g *SpatialHashGrid) Nearby(lat, lon, radiusKm float64) []int {
	if !ValidCoordinates(lat, lon) || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 1) {
		return g.all()
	}
	if radiusKm < 0 {
		radiusKm = 0
	}
	angular := radiusKm / EarthRadiusKm
	if angular >= math.Pi/2 {
		return g.all()
	}

	// |dlat| <= d/R always holds. For dlon, haversine gives
	// sin(dlon/2) <= sin(d/2R) / cos(maxLat) once both points sit at or
	// below maxLat.
	latSpan := angular * 180 / math.Pi
	dy := int(math.Ceil(latSpan/g.cellSize)) + 1
	dx := -1
	if maxLat := math.Abs(lat) + latSpan; maxLat < 90 {
		if ratio := math.Sin(angular/2) / math.Cos(maxLat*math.Pi/180); ratio < 1 {
			lonSpan := 2 * math.Asin(ratio) * 180 / math.Pi
			dx = int(math.Ceil(lonSpan/g.cellSize)) + 2
		}
	}
	if dx >= 0 && 2*dx+1 >= g.lonCells {
		dx = -1
	}

	center := g.cellKey(lat, lon)
	xCount := g.lonCells
	if dx >= 0 {
		xCount = 2*dx + 1
	}

	out := make([]int, 0, 8)
	if boxCells := xCount * (2*dy + 1); boxCells <= len(g.cells) {
		for y := center.Y - dy; y <= center.Y+dy; y++ {
			for i := 0; i < xCount; i++ {
				x := i
				if dx >= 0 {
					x = g.wrapX(center.X - dx + i)
				}
				out = append(out, g.cells[CellKey{X: x, Y: y}]...)
			}
		}
	} else {
		for key, members := range g.cells {
			if key.Y < center.Y-dy || key.Y > center.Y+dy {
				continue
			}
			if dx >= 0 && g.xDistance(key.X, center.X) > dx {
				continue
			}
			out = append(out, members...)
		}
	}
	out = append(out, g.invalid...)
	sort.Ints(out)
	return out
}

// xDistance is the wrapped cell distance between two longitude columns.
func (g *SpatialHashGrid) xDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= g.lonCells
	if alt := g.lonCells - d; alt < d {
		return alt
	}
	return d
}
