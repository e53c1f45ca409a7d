// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
)

// BreakerName labels the upstream breaker in logs and metrics.
const BreakerName = "gfw-api"

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("upstream circuit breaker is open")

// CircuitBreakerClient wraps a Client with a circuit breaker so a
// failing upstream is not hammered by every aggregator fan-out.
//
// Settings:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 2 minute open period before trying again
//   - Opens at >= 60% failures over at least 10 requests
//
// Client-side rejections, cancellations and 4xx answers other than 429
// count as successes: they say nothing about upstream health.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker[json.RawMessage]
	name   string
}

// NewCircuitBreakerClient wraps client.
func NewCircuitBreakerClient(client Client) *CircuitBreakerClient {
	name := BreakerName

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: countsAsSuccess,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: name}
}

// countsAsSuccess decides what the breaker records as a failure.
func countsAsSuccess(err error) bool {
	if err == nil || IsClientError(err) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	code := StatusCode(err)
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}

// State returns the breaker state as closed, half-open or open.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// execute runs fn under the breaker and records the outcome.
func (cbc *CircuitBreakerClient) execute(fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, errors.Join(ErrCircuitOpen, ErrUpstreamUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		counts := cbc.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	return result, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CreateReport implements Client.
func (cbc *CircuitBreakerClient) CreateReport(ctx context.Context, req ReportRequest) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.CreateReport(ctx, req)
	})
}

// GetEvents implements Client.
func (cbc *CircuitBreakerClient) GetEvents(ctx context.Context, req EventsRequest) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.GetEvents(ctx, req)
	})
}

// GetVesselInsights implements Client.
func (cbc *CircuitBreakerClient) GetVesselInsights(ctx context.Context, req InsightsRequest) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.GetVesselInsights(ctx, req)
	})
}

// GetVessel implements Client.
func (cbc *CircuitBreakerClient) GetVessel(ctx context.Context, vesselID, dataset string) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.GetVessel(ctx, vesselID, dataset)
	})
}

// SearchVessels implements Client.
func (cbc *CircuitBreakerClient) SearchVessels(ctx context.Context, req SearchRequest) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.SearchVessels(ctx, req)
	})
}

// GetBins implements Client.
func (cbc *CircuitBreakerClient) GetBins(ctx context.Context, req BinsRequest) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.GetBins(ctx, req)
	})
}

// GetStats implements Client.
func (cbc *CircuitBreakerClient) GetStats(ctx context.Context, req StatsRequest) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.GetStats(ctx, req)
	})
}

// GetTile implements Client. Tiles share the breaker so a failing
// upstream also stops map traffic.
func (cbc *CircuitBreakerClient) GetTile(ctx context.Context, req TileRequest) (*Tile, error) {
	var tile *Tile
	_, err := cbc.execute(func() (json.RawMessage, error) {
		t, err := cbc.client.GetTile(ctx, req)
		tile = t
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return tile, nil
}

// GeneratePNG implements Client.
func (cbc *CircuitBreakerClient) GeneratePNG(ctx context.Context, req StyleRequest) (json.RawMessage, error) {
	return cbc.execute(func() (json.RawMessage, error) {
		return cbc.client.GeneratePNG(ctx, req)
	})
}
