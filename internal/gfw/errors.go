// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable wraps every network failure and non-2xx
	// response from the upstream API.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidPagination is returned before any I/O when exactly one of
	// limit and offset is supplied, or either is out of range.
	ErrInvalidPagination = errors.New("limit and offset must be supplied together with limit >= 1 and offset >= 0")

	// ErrInvalidRequest reports a request rejected before any I/O.
	ErrInvalidRequest = errors.New("invalid upstream request")

	// ErrNoToken is returned when no bearer token is configured.
	ErrNoToken = errors.New("no API token configured")
)

// maxErrorBodySize bounds the response excerpt kept on a StatusError.
const maxErrorBodySize = 2048

// StatusError is a non-2xx upstream response. It matches
// ErrUpstreamUnavailable under errors.Is.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream returned status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Is makes every StatusError an ErrUpstreamUnavailable.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
