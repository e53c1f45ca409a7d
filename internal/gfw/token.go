// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package gfw

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/darkwatch/internal/logging"
	"github.com/tomtom215/darkwatch/internal/metrics"
)

// TokenSource supplies the upstream bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that never refreshes.
type StaticToken string

// Token returns the fixed token, or ErrNoToken when it is empty.
func (s StaticToken) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// EnvTokenSource reads the token from a configured value or an
// environment variable and caches it until it is within margin of the
// JWT exp claim. Tokens that do not parse as JWTs, or carry no exp, are
// cached for the life of the process.
type EnvTokenSource struct {
	configured string
	envVar     string
	margin     time.Duration
	now        func() time.Time

	mu     sync.RWMutex
	token  string
	expiry time.Time
}

// NewEnvTokenSource creates a token source. configured takes precedence
// over envVar when non-empty.
func NewEnvTokenSource(configured, envVar string, margin time.Duration) *EnvTokenSource {
	return &EnvTokenSource{
		configured: strings.TrimSpace(configured),
		envVar:     envVar,
		margin:     margin,
		now:        time.Now,
	}
}

// Configured reports whether a token can currently be resolved.
func (s *EnvTokenSource) Configured() bool {
	return s.read() != ""
}

// Token returns the cached token, reloading it when near expiry.
func (s *EnvTokenSource) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	token, expiry := s.token, s.expiry
	s.mu.RUnlock()

	if token != "" && !s.nearExpiry(expiry) {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited.
	if s.token != "" && !s.nearExpiry(s.expiry) {
		return s.token, nil
	}

	fresh := s.read()
	if fresh == "" {
		metrics.RecordTokenRefresh(ErrNoToken)
		return "", ErrNoToken
	}

	s.token = fresh
	s.expiry = tokenExpiry(fresh)
	metrics.RecordTokenRefresh(nil)

	if s.nearExpiry(s.expiry) {
		logging.Warn().Time("expires_at", s.expiry).Msg("Upstream API token is expired or about to expire")
	} else {
		logging.Debug().Bool("expiring", !s.expiry.IsZero()).Msg("Upstream API token loaded")
	}
	return s.token, nil
}

func (s *EnvTokenSource) read() string {
	if s.configured != "" {
		return s.configured
	}
	if s.envVar == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(s.envVar))
}

func (s *EnvTokenSource) nearExpiry(expiry time.Time) bool {
	if expiry.IsZero() {
		return false
	}
	return !s.now().Add(s.margin).Before(expiry)
}

// tokenExpiry reads exp without verifying the signature; verification
// is the upstream's job. A zero time means no known expiry.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
