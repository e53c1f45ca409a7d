// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer runs report-generation calls one at a time, process-wide, with
// at least delay between the starts of consecutive calls. The upstream
// refuses concurrent report generation with HTTP 429.
type Pacer struct {
	limiter *rate.Limiter
	slot    chan struct{}
}

// NewPacer creates a pacer. delay <= 0 only serializes.
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		slot:    make(chan struct{}, 1),
	}
}

// Do waits for the slot and the spacing, then runs fn while holding the
// slot. Waiting is abandoned when ctx is done.
func (p *Pacer) Do(ctx context.Context, fn func(context.Context) error) error {
	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slot }()

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return fn(ctx)
}
