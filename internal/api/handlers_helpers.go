// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/darkwatch/internal/eez"
	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, data interface{}) {
	NewResponseWriter(w, r).Success(data)
}

// respondError writes an error envelope and logs err when present.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}
	NewResponseWriter(w, r).Error(status, code, message)
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *validation.APIError {
	if err := validation.ValidateStruct(v); err != nil {
		return err.ToAPIError()
	}
	return nil
}

// respondValidation writes a 400 VALIDATION_ERROR envelope.
func respondValidation(w http.ResponseWriter, r *http.Request, apiErr *validation.APIError) {
	logging.Ctx(r.Context()).Debug().
		Str("path", r.URL.Path).
		Str("message", sanitizeLogValue(apiErr.Message)).
		Msg("Request rejected by validation")
	NewResponseWriter(w, r).ValidationError(apiErr)
}

// paramError reports a query parameter that could not be parsed.
type paramError struct {
	field string
	value string
	want  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be %s", e.field, e.want)
}

func (e *paramError) apiError() *validation.APIError {
	return &validation.APIError{
		Code:    validation.ErrorCode,
		Message: e.Error(),
		Details: map[string]interface{}{
			"field": e.field,
			"value": e.value,
		},
	}
}

// floatParam reads a float query parameter, returning def when absent.
func floatParam(q url.Values, key string, def float64) (float64, *paramError) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &paramError{field: key, value: raw, want: "a number"}
	}
	return f, nil
}

// intParam reads an integer query parameter, returning def when absent.
func intParam(q url.Values, key string, def int) (int, *paramError) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{field: key, value: raw, want: "an integer"}
	}
	return n, nil
}

// optionalIntParam reads an integer query parameter, nil when absent.
func optionalIntParam(q url.Values, key string) (*int, *paramError) {
	if strings.TrimSpace(q.Get(key)) == "" {
		return nil, nil
	}
	n, perr := intParam(q, key, 0)
	if perr != nil {
		return nil, perr
	}
	return &n, nil
}

// boolParam reads a boolean query parameter. Accepts true/false, 1/0,
// yes/no and on/off.
func boolParam(q url.Values, key string, def bool) (bool, *paramError) {
	raw := strings.ToLower(strings.TrimSpace(q.Get(key)))
	switch raw {
	case "":
		return def, nil
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, &paramError{field: key, value: raw, want: "a boolean"}
}

// getIntParam extracts an integer query parameter, falling back to
// defaultValue on absence or parse failure.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// parseCommaSeparated parses a comma-separated string into a slice
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	parts := strings.Split(value, ",")
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// listParam merges repeated and comma-separated values of key.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		out = append(out, parseCommaSeparated(v)...)
	}
	return out
}

// regionIDs parses and expands eez_ids. It returns nil when none are
// given so a required tag reports the parameter as missing.
func regionIDs(q url.Values) []string {
	ids := eez.ParseIDs(q["eez_ids"])
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// sarFilter reads SAR filter parameters. Values are checked against the
// dataset catalog.
func sarFilter(q url.Values) (gfw.SARFilter, error) {
	f := gfw.SARFilter{
		Flags:            listParam(q, "flag"),
		GearTypes:        listParam(q, "geartype"),
		ShipTypes:        listParam(q, "shiptype"),
		NeuralVesselType: strings.TrimSpace(q.Get("neural_vessel_type")),
		VesselID:         strings.TrimSpace(q.Get("vessel_id")),
	}
	if len(f.Flags) == 0 {
		f.Flags = listParam(q, "flags")
	}
	if q.Get("matched") != "" {
		matched, perr := boolParam(q, "matched", false)
		if perr != nil {
			return gfw.SARFilter{}, perr
		}
		f.Matched = &matched
	}
	if err := f.Validate(); err != nil {
		return gfw.SARFilter{}, err
	}
	return f, nil
}

// dateRangeParams reads start_date and end_date.
func dateRangeParams(q url.Values) validation.DateRange {
	return validation.DateRange{
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
	}
}

// firstParamError returns the first non-nil parse failure.
func firstParamError(errs ...*paramError) *paramError {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// respondParamError writes a parse failure as a validation error and
// anything else through respondServiceError.
func respondParamError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var pe *paramError
	if errors.As(err, &pe) {
		respondValidation(w, r, pe.apiError())
		return
	}
	respondServiceError(w, r, op, err)
}
