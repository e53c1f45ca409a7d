// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package models defines the canonical records shared by the aggregator,
the pattern engine and the HTTP layer.

Model Categories:

1. Canonical upstream records (normalized at the aggregator boundary):
  - Detection: one SAR presence cell for one day
  - GapEvent: one AIS-disabling event

2. Derived, request-scoped results:
  - Cluster: connected component of nearby same-day detections
  - Route: stitched sequence of detections and gap positions
  - RiskAssessment: bounded 0-100 vessel risk score

None of these values are persisted. Each request builds them from upstream
data and discards them once the response is written.
*/
package models
