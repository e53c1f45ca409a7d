// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package api

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/validation"
)

const (
	tileCacheControl      = "public, max-age=3600"
	emptyTileCacheControl = "public, max-age=300"
	maxStyleBodyBytes     = 16 << 10
)

// emptyTile is a 1x1 fully transparent PNG. Map layers render it in
// place of a missing or failed tile.
var emptyTile = encodeEmptyTile()

func encodeEmptyTile() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// StyleBody is the JSON body of POST /generate-style. DateRange may be
// given as "start,end" instead of start_date and end_date.
type StyleBody struct {
	validation.DateRange
	Range    string        `json:"date_range"`
	Dataset  string        `json:"dataset" validate:"max=128"`
	Interval string        `json:"interval" validate:"omitempty,oneof=HOUR DAY MONTH YEAR"`
	Color    string        `json:"color" validate:"omitempty,hexcolor"`
	Filters  gfw.SARFilter `json:"filters"`
}

// TileProxy streams one upstream 4Wings tile. Upstream 404s and failures
// answer with a transparent tile so the map keeps rendering.
func (h *Handler) TileProxy(w http.ResponseWriter, r *http.Request) {
	client, err := h.upstream()
	if err != nil {
		writeEmptyTile(w, r, err)
		return
	}

	tile, err := client.GetTile(r.Context(), gfw.TileRequest{
		Path:  chi.URLParam(r, "*"),
		Query: r.URL.Query(),
	})
	if err != nil {
		writeEmptyTile(w, r, err)
		return
	}

	w.Header().Set("Content-Type", tile.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(tile.Data)))
	w.Header().Set("Cache-Control", tileCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tile.Data)
}

func writeEmptyTile(w http.ResponseWriter, r *http.Request, err error) {
	event := logging.Ctx(r.Context()).Warn()
	if gfw.StatusCode(err) == http.StatusNotFound {
		event = logging.Ctx(r.Context()).Debug()
	}
	event.
		Str("path", sanitizeLogValue(r.URL.Path)).
		Str("error", sanitizeLogValue(err.Error())).
		Msg("Serving empty tile")

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(emptyTile)))
	w.Header().Set("Cache-Control", emptyTileCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(emptyTile)
}

// GenerateStyle registers a heatmap style and returns its tile URLs.
func (h *Handler) GenerateStyle(w http.ResponseWriter, r *http.Request) {
	var body StyleBody
	data, err := io.ReadAll(io.LimitReader(r.Body, maxStyleBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", err)
		return
	}
	if err := json.Unmarshal(data, &body); err != nil {
		respondValidation(w, r, &validation.APIError{
			Code:    validation.ErrorCode,
			Message: "Request body must be a JSON object",
		})
		return
	}
	if body.Range != "" && body.StartDate == "" && body.EndDate == "" {
		start, end, _ := strings.Cut(body.Range, ",")
		body.StartDate = strings.TrimSpace(start)
		body.EndDate = strings.TrimSpace(end)
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondValidation(w, r, apiErr)
		return
	}
	if err := body.Filters.Validate(); err != nil {
		respondServiceError(w, r, "generate_style", err)
		return
	}
	svc, err := h.service()
	if err != nil {
		respondServiceError(w, r, "generate_style", err)
		return
	}

	style, err := svc.GenerateStyle(r.Context(), gfw.StyleRequest{
		Dataset:   strings.TrimSpace(body.Dataset),
		Interval:  body.Interval,
		DateRange: body.StartDate + "," + body.EndDate,
		Color:     body.Color,
		Filter:    body.Filters.String(),
	})
	if err != nil {
		respondServiceError(w, r, "generate_style", err)
		return
	}
	respondJSON(w, r, style)
}
