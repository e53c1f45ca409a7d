// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// tilePrefix is the upstream tile route. Callers may pass paths with or
// without it.
const tilePrefix = "4wings/tile/"

// Style defaults.
const (
	DefaultStyleColor = "#002457"
	maxTileSegments   = 8
)

var (
	styleColorPattern     = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
	styleDateRangePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2},\d{4}-\d{2}-\d{2}$`)
)

// Tile is a rendered map tile.
type Tile struct {
	Data        []byte
	ContentType string
}

// TileRequest addresses one 4Wings tile, e.g. heatmap/3/4/2 with the
// style and date range in Query.
type TileRequest struct {
	Path  string
	Query url.Values
}

// Validate strips the upstream prefix and rejects paths that could
// leave the tile route.
func (r *TileRequest) Validate() error {
	p := strings.Trim(r.Path, "/") + "/"
	p = strings.TrimSuffix(strings.TrimPrefix(p, tilePrefix), "/")
	if p == "" {
		return fmt.Errorf("%w: tile path is required", ErrInvalidRequest)
	}
	segments := strings.Split(p, "/")
	if len(segments) > maxTileSegments {
		return fmt.Errorf("%w: tile path has too many segments", ErrInvalidRequest)
	}
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: invalid tile path %q", ErrInvalidRequest, r.Path)
		}
	}
	r.Path = p
	return nil
}

func (r *TileRequest) path() string {
	segments := strings.Split(r.Path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/" + tilePrefix + strings.Join(segments, "/")
}

// StyleRequest describes a heatmap style registration.
type StyleRequest struct {
	Dataset   string
	Interval  string
	DateRange string
	Color     string
	Filter    string
}

// Validate fills defaults and checks the color and date range format.
func (r *StyleRequest) Validate() error {
	if r.Dataset == "" {
		r.Dataset = DatasetSARPresence
	}
	if r.Interval == "" {
		r.Interval = defaultBinsInterval
	}
	if r.Color == "" {
		r.Color = DefaultStyleColor
	}
	if !ValidStyleInterval(r.Interval) {
		return fmt.Errorf("%w: unknown interval %q", ErrInvalidRequest, r.Interval)
	}
	if !styleColorPattern.MatchString(r.Color) {
		return fmt.Errorf("%w: color must be a hex code such as #002457", ErrInvalidRequest)
	}
	if r.DateRange != "" && !styleDateRangePattern.MatchString(r.DateRange) {
		return fmt.Errorf("%w: date range must be YYYY-MM-DD,YYYY-MM-DD", ErrInvalidRequest)
	}
	return nil
}

// TileQuery returns the query a tile request needs to render this
// style once the upstream style id is known.
func (r *StyleRequest) TileQuery(styleID string) url.Values {
	q := url.Values{}
	q.Set("format", "PNG")
	q.Set("interval", r.Interval)
	q.Set("datasets[0]", r.Dataset)
	if r.Filter != "" {
		q.Set("filters[0]", r.Filter)
	}
	if r.DateRange != "" {
		q.Set("date-range", r.DateRange)
	}
	if styleID != "" {
		q.Set("style", styleID)
	}
	return q
}

func (r *StyleRequest) query() url.Values {
	q := url.Values{}
	q.Set("interval", r.Interval)
	q.Set("color", r.Color)
	q.Set("datasets[0]", r.Dataset)
	if r.Filter != "" {
		q.Set("filters[0]", r.Filter)
	}
	if r.DateRange != "" {
		q.Set("date-range", r.DateRange)
	}
	return q
}

// ValidStyleInterval reports whether i is an accepted heatmap interval.
func ValidStyleInterval(i string) bool {
	switch i {
	case "HOUR", "DAY", "MONTH", "YEAR":
		return true
	}
	return false
}
