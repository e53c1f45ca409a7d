// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

// Package risk turns pre-fetched vessel activity counters into a bounded
// 0-100 risk score with a discrete tier.
//
// Scoring is additive with a cap per factor:
//
//	gap_events     min(count * 10, 50)
//	iuu_listed     +50 when listed at least once
//	fishing_events min(count * 0.5, 15)
//	encounters     min(count * 2, 20)
//	port_visits    min(count * 0.3, 15)
//
// The total is clamped to 100 and rounded to the nearest integer. The
// package performs no I/O; fetching the counters belongs to the caller.
package risk

import (
	"math"
	"sort"

	"github.com/tomtom215/darkwatch/internal/models"
)

// Factor names as they appear in RiskAssessment.Factors.
const (
	FactorGapEvents     = "gap_events"
	FactorIUUListed     = "iuu_listed"
	FactorFishingEvents = "fishing_events"
	FactorEncounters    = "encounters"
	FactorPortVisits    = "port_visits"
)

// Tier thresholds.
const (
	HighThreshold   = 70
	MediumThreshold = 40
	MaxScore        = 100
)

type factorRule struct {
	weight float64
	cap    float64
	// flat scores the cap once the counter is positive, ignoring weight.
	flat bool
}

var rules = map[string]factorRule{
	FactorGapEvents:     {weight: 10, cap: 50},
	FactorIUUListed:     {cap: 50, flat: true},
	FactorFishingEvents: {weight: 0.5, cap: 15},
	FactorEncounters:    {weight: 2, cap: 20},
	FactorPortVisits:    {weight: 0.3, cap: 15},
}

// Factors returns every factor name in a stable order.
func Factors() []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Counters are the raw per-vessel activity counts for a date range.
type Counters struct {
	GapEvents     int
	IUUListings   int
	FishingEvents int
	Encounters    int
	PortVisits    int
}

func (c Counters) byFactor() map[string]int {
	return map[string]int{
		FactorGapEvents:     c.GapEvents,
		FactorIUUListed:     c.IUUListings,
		FactorFishingEvents: c.FishingEvents,
		FactorEncounters:    c.Encounters,
		FactorPortVisits:    c.PortVisits,
	}
}

// Contribution returns the points a single factor adds to the score.
// Unknown factors and non-positive counts contribute nothing.
func Contribution(factor string, count int) float64 {
	rule, ok := rules[factor]
	if !ok || count <= 0 {
		return 0
	}
	if rule.flat {
		return rule.cap
	}
	return math.Min(float64(count)*rule.weight, rule.cap)
}

// Tier maps a score onto low, medium or high.
func Tier(score int) models.RiskTier {
	switch {
	case score >= HighThreshold:
		return models.RiskTierHigh
	case score >= MediumThreshold:
		return models.RiskTierMedium
	default:
		return models.RiskTierLow
	}
}

// Score computes the assessment for one vessel. failed maps factor names
// to the error that prevented fetching them; those factors contribute 0
// and are recorded as 0. When every factor failed the tier is unknown.
func Score(vesselID string, counters Counters, failed map[string]error) models.RiskAssessment {
	assessment := models.RiskAssessment{
		VesselID: vesselID,
		Factors:  make(map[string]float64, len(rules)),
	}

	total := 0.0
	for factor, count := range counters.byFactor() {
		if err, bad := failed[factor]; bad {
			assessment.Factors[factor] = 0
			if assessment.Errors == nil {
				assessment.Errors = make(map[string]string)
			}
			assessment.Errors[factor] = errorMessage(err)
			continue
		}
		if count < 0 {
			count = 0
		}
		assessment.Factors[factor] = float64(count)
		total += Contribution(factor, count)
	}

	score := int(math.Round(math.Min(total, MaxScore)))
	assessment.RiskScore = score

	if len(assessment.Errors) == len(rules) {
		assessment.RiskTier = models.RiskTierUnknown
	} else {
		assessment.RiskTier = Tier(score)
	}
	return assessment
}

func errorMessage(err error) string {
	if err == nil {
		return "unavailable"
	}
	return err.Error()
}
