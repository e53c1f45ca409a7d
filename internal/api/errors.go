// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/darkwatch/internal/darkvessel"
	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
)

// ErrClientNotConfigured is returned when no upstream client was wired.
var ErrClientNotConfigured = errors.New("upstream API client not configured")

// passThroughStatus lists upstream statuses returned to the caller as-is.
// Auth failures are ours, not the caller's, and surface as 502.
var passThroughStatus = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusNotFound:            true,
	http.StatusUnprocessableEntity: true,
}

// classifyError maps an error from the upstream client or the aggregator
// to an HTTP status, error code and client-safe message.
func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, gfw.ErrInvalidPagination),
		errors.Is(err, gfw.ErrInvalidRequest),
		errors.Is(err, darkvessel.ErrInvalidDateRange):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()

	case errors.Is(err, ErrClientNotConfigured),
		errors.Is(err, gfw.ErrNoToken):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Upstream API client not configured"

	case errors.Is(err, gfw.ErrCircuitOpen):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Upstream API temporarily unavailable"

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, ErrCodeUpstream, "Upstream request timed out"
	}

	if status := gfw.StatusCode(err); status != 0 {
		if passThroughStatus[status] {
			code := ErrCodeBadRequest
			if status == http.StatusNotFound {
				code = ErrCodeNotFound
			}
			return status, code, err.Error()
		}
		return http.StatusBadGateway, ErrCodeUpstream, "Upstream API request failed"
	}

	if errors.Is(err, gfw.ErrUpstreamUnavailable) {
		return http.StatusBadGateway, ErrCodeUpstream, "Upstream API request failed"
	}
	return http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"
}

// respondServiceError logs err and writes the mapped error envelope.
func respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, message := classifyError(err)

	event := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.
		Str("operation", op).
		Str("code", code).
		Int("status", status).
		Str("error", sanitizeLogValue(err.Error())).
		Msg("Request failed")

	NewResponseWriter(w, r).Error(status, code, message)
}
