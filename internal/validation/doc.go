// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package validation wraps go-playground/validator for the HTTP API.

Request structs declare their constraints with validate tags and name
their fields with query tags, so messages read the way callers spelled
the parameter:

	type RouteRequest struct {
	    validation.DateRange
	    EEZIDs       []string `query:"eez_ids" validate:"required,min=1"`
	    MaxTimeHours float64  `query:"max_time_hours" validate:"gt=0,lte=720"`
	}

A missing required parameter yields "Missing required parameter: eez_ids".
Bounds that depend on configuration are checked with ValidateVar and the
results combined with Merge.
*/
package validation
