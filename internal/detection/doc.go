// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

// Package detection derives spatiotemporal patterns from dark-vessel data.
//
// Detection Architecture:
//
//	Detections + GapEvents -> Point extraction -> Route Predictor -> Routes
//	Detections             -> Proximity graph  -> Cluster Detector -> Clusters
//
// Proximity clusters flag candidate ship-to-ship transfers: detections on
// the same day that form a connected component under a distance threshold.
// Clusters are tiered by the number of vessels they claim.
//
// Route prediction runs in two phases. Points with a known vessel identity
// are walked chronologically and split where a leg breaks the configured
// bounds. SAR-only points are stitched by greedy nearest plausible neighbor,
// scored by 1/(1+km) * 1/(1+hours). Route confidence grows with point count
// and is discounted for drift-like or implausibly fast implied speeds.
//
// Everything here is pure computation over in-memory values. The same
// input always yields the same output.
package detection
