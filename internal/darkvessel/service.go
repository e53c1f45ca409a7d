// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/tomtom215/darkwatch/internal/config"
	"github.com/tomtom215/darkwatch/internal/gfw"
)

// Fetch kinds, used in failure records, logs and metrics.
const (
	KindSAR        = "sar"
	KindGaps       = "gaps"
	KindMatched    = "sar_matched"
	KindUnmatched  = "sar_unmatched"
	KindSummary    = "summary"
	KindEventStats = "event_stats"
	KindInsights   = "insights"
	KindEvents     = "events"
	KindStats      = "stats"
	KindStyle      = "style"
)

// Service aggregates upstream activity data into dark vessel views.
// It is safe for concurrent use; report calls from every caller share
// one Pacer.
type Service struct {
	client       gfw.Client
	pacer        *Pacer
	chunkDays    int
	maxVesselIDs int

	// insights memoizes vessel insight payloads; nil disables it.
	insights *gocache.Cache
	// styles memoizes registered heatmap styles; nil disables it.
	styles *gocache.Cache
}

// NewService creates a service over client.
func NewService(client gfw.Client, cfg config.AggregatorConfig) *Service {
	s := &Service{
		client:       client,
		pacer:        NewPacer(cfg.ReportDelay),
		chunkDays:    cfg.ChunkDays,
		maxVesselIDs: cfg.MaxVesselIDs,
	}
	if s.chunkDays < 1 {
		s.chunkDays = DefaultChunkDays
	}
	if s.maxVesselIDs < 1 {
		s.maxVesselIDs = 100
	}
	if cfg.InsightCacheTTL > 0 {
		s.insights = gocache.New(cfg.InsightCacheTTL, 2*cfg.InsightCacheTTL)
	}
	if cfg.StyleCacheTTL > 0 {
		s.styles = gocache.New(cfg.StyleCacheTTL, 2*cfg.StyleCacheTTL)
	}
	return s
}

// Pacer returns the shared report pacer.
func (s *Service) Pacer() *Pacer {
	return s.pacer
}

// ChunkDays returns the configured chunk length.
func (s *Service) ChunkDays() int {
	return s.chunkDays
}

// FlushInsights drops memoized insight payloads.
func (s *Service) FlushInsights() {
	if s.insights != nil {
		s.insights.Flush()
	}
}

func insightKey(vesselID, start, end string) string {
	return vesselID + "|" + start + "|" + end
}
