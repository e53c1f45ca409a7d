// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"

	"github.com/tomtom215/darkwatch/internal/gfw"
	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
	"github.com/tomtom215/darkwatch/internal/models"
	"github.com/tomtom215/darkwatch/internal/risk"
)

// insightCounters is the part of an insights payload risk scoring reads.
// Absent sections decode as zero.
type insightCounters struct {
	Gap struct {
		PeriodSelectedCounters struct {
			Events float64 `json:"events"`
		} `json:"periodSelectedCounters"`
	} `json:"gap"`
	VesselIdentity struct {
		IUUVesselList struct {
			TotalTimesListedInThePeriod float64 `json:"totalTimesListedInThePeriod"`
		} `json:"iuuVesselList"`
	} `json:"vesselIdentity"`
}

// ScoreVessel fetches every risk factor for one vessel and scores it.
// Gap and IUU counters come from one insights call; fishing, encounter
// and port visit counts from one events call each. A failed fetch zeroes
// only the factors it feeds and is reported in the assessment's errors.
func (s *Service) ScoreVessel(ctx context.Context, vesselID, startDate, endDate string) (models.RiskAssessment, error) {
	vesselID = strings.TrimSpace(vesselID)
	if vesselID == "" {
		return models.RiskAssessment{}, fmt.Errorf("%w: vessel id is required", gfw.ErrInvalidRequest)
	}
	if _, err := SplitDateRange(startDate, endDate, s.chunkDays); err != nil {
		return models.RiskAssessment{}, err
	}

	var counters risk.Counters
	failed := make(map[string]error)

	insights, err := s.vesselInsights(ctx, vesselID, startDate, endDate)
	if err != nil {
		failed[risk.FactorGapEvents] = err
		failed[risk.FactorIUUListed] = err
	} else {
		counters.GapEvents = countFromFloat(insights.Gap.PeriodSelectedCounters.Events)
		counters.IUUListings = countFromFloat(insights.VesselIdentity.IUUVesselList.TotalTimesListedInThePeriod)
	}

	eventFactors := []struct {
		factor  string
		dataset string
		dst     *int
	}{
		{risk.FactorFishingEvents, gfw.DatasetFishingEvents, &counters.FishingEvents},
		{risk.FactorEncounters, gfw.DatasetEncounters, &counters.Encounters},
		{risk.FactorPortVisits, gfw.DatasetPortVisits, &counters.PortVisits},
	}
	for _, ef := range eventFactors {
		total, err := s.countEvents(ctx, gfw.EventsRequest{
			Datasets:   []string{ef.dataset},
			StartDate:  startDate,
			EndDate:    endDate,
			Vessels:    []string{vesselID},
			Pagination: gfw.Page(1, 0),
		})
		metrics.RecordAggregatorFetch(KindEvents, err)
		if err != nil {
			failed[ef.factor] = err
			continue
		}
		*ef.dst = total
	}

	for factor, err := range failed {
		logging.Ctx(ctx).Warn().Err(err).Str("vessel_id", vesselID).Str("factor", factor).Msg("Risk factor unavailable, scoring it as 0")
	}

	assessment := risk.Score(vesselID, counters, failed)
	assessment.StartDate = startDate
	assessment.EndDate = endDate
	metrics.RecordRiskAssessment(string(assessment.RiskTier))
	return assessment, nil
}

// vesselInsights returns the GAP and IUU insight counters, memoized per
// (vessel, range). Failures are not memoized.
func (s *Service) vesselInsights(ctx context.Context, vesselID, startDate, endDate string) (*insightCounters, error) {
	key := insightKey(vesselID, startDate, endDate)
	if s.insights != nil {
		if cached, ok := s.insights.Get(key); ok {
			return cached.(*insightCounters), nil
		}
	}

	raw, err := s.client.GetVesselInsights(ctx, gfw.InsightsRequest{
		Vessels:   []gfw.VesselRef{{DatasetID: gfw.DatasetVesselIdentity, VesselID: vesselID}},
		StartDate: startDate,
		EndDate:   endDate,
		Includes:  []string{gfw.InsightGap, gfw.InsightIUUVesselList},
	})
	metrics.RecordAggregatorFetch(KindInsights, err)
	if err != nil {
		return nil, err
	}

	var counters insightCounters
	if err := json.Unmarshal(raw, &counters); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedShape, err)
	}
	if s.insights != nil {
		s.insights.Set(key, &counters, gocache.DefaultExpiration)
	}
	return &counters, nil
}

// countFromFloat converts an upstream counter, clamping in float64 first
// so huge values saturate instead of wrapping.
func countFromFloat(v float64) int {
	if !(v > 0) {
		return 0
	}
	return int(math.Min(v, math.MaxInt32))
}
