// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package darkvessel aggregates Global Fishing Watch activity data into the
dark vessel views served by the API: unmatched SAR detections, AIS gap
events, SAR/AIS association totals, per-region report summaries, event
statistics and per-vessel risk assessments.

Fetch Model:

Every operation issues its upstream calls one after another. Date ranges
longer than the chunk length (30 days by default) are split with
SplitDateRange and fetched chunk by chunk, region by region. Report
generation calls additionally go through a process-wide Pacer, which
allows one report at a time with a fixed spacing between them; the
upstream answers concurrent report generation with HTTP 429.

Partial Failure:

A failed (region, chunk) fetch does not fail the operation. It is logged,
counted in the aggregator metrics and recorded as a FetchFailure next to
the data. Summary counts cover successful fetches only, so callers must
inspect Failures before reading a zero count as "no dark vessels".
Unknown response shapes are reported as ErrMalformedShape and contribute
zero records.

Normalization:

Reports and event lists arrive as entries[].{dataset}[], data[],
results[], dataset-keyed objects or bare lists. NormalizeDetections and
NormalizeGaps turn all of them into models.Detection and models.GapEvent.
SAR detections used for the dark vessel view are filtered locally to
records stating matched=false.
*/
package darkvessel
