// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
)

// maxRetryAfter caps a server supplied Retry-After delay.
const maxRetryAfter = 30 * time.Second

// retryTransport authenticates every request and retries throttled,
// failing or unreachable upstream calls with exponential backoff
// (backoff, 2*backoff, 4*backoff, ...). A Retry-After header replaces
// the computed delay. Requests with a body are only retried when the
// body can be rewound through GetBody.
type retryTransport struct {
	base       http.RoundTripper
	tokens     TokenSource
	maxRetries int
	backoff    time.Duration
}

func newRetryTransport(base http.RoundTripper, tokens TokenSource, maxRetries int, backoff time.Duration) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryTransport{
		base:       base,
		tokens:     tokens,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// retryableStatus lists the statuses worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// RoundTrip implements http.RoundTripper.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	rewindable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptReq, err := t.prepare(req, token, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(attemptReq)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= t.maxRetries || !rewindable {
			return resp, err
		}

		delay := t.backoff * time.Duration(1<<uint(attempt))
		reason := "transport"
		if err == nil {
			reason = strconv.Itoa(resp.StatusCode)
			if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				delay = d
			}
			drainAndClose(resp.Body)
		}

		metrics.RecordUpstreamRetry(reason)
		logging.Ctx(ctx).Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("reason", reason).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying upstream request")

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// prepare clones req for one attempt, attaching auth and a fresh body.
func (t *retryTransport) prepare(req *http.Request, token string, attempt int) (*http.Request, error) {
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+token)
	if attempt > 0 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		out.Body = body
	}
	return out, nil
}

// retryAfter parses delta-seconds or an HTTP date.
func retryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(value + "s"); err == nil && d >= 0 {
		return min(d, maxRetryAfter), true
	}
	if at, err := http.ParseTime(value); err == nil {
		d := time.Until(at)
		if d < 0 {
			d = 0
		}
		return min(d, maxRetryAfter), true
	}
	return 0, false
}

// wait sleeps for d unless ctx is done first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodySize))
	_ = body.Close()
}
