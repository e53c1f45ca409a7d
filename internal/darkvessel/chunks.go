// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the YYYY-MM-DD form used by every upstream date parameter.
const DateLayout = "2006-01-02"

// DefaultChunkDays is the longest range the activity API accepts per call.
const DefaultChunkDays = 30

// ErrInvalidDateRange is returned for unparseable or reversed ranges.
var ErrInvalidDateRange = errors.New("invalid date range")

// DateChunk is one upstream-sized slice of a requested range. Both dates
// are inclusive and consecutive chunks never share a day.
type DateChunk struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// String renders the chunk as start/end for logs and failure records.
func (c DateChunk) String() string {
	return c.Start + "/" + c.End
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDateRange, s)
	}
	return t, nil
}

// SplitDateRange cuts the inclusive range [start, end] into
// ceil(days/chunkDays) chunks of at most chunkDays calendar days each.
// A range of at most chunkDays days, including a single day, yields one
// chunk equal to the input.
func SplitDateRange(start, end string, chunkDays int) ([]DateChunk, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, start, end)
	}
	if chunkDays < 1 {
		chunkDays = DefaultChunkDays
	}

	var chunks []DateChunk
	for cur := from; !cur.After(to); {
		last := cur.AddDate(0, 0, chunkDays-1)
		if last.After(to) {
			last = to
		}
		chunks = append(chunks, DateChunk{Start: cur.Format(DateLayout), End: last.Format(DateLayout)})
		cur = last.AddDate(0, 0, 1)
	}
	return chunks, nil
}
