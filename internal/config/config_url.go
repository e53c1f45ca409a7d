// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// normalizeBaseURL checks that raw is an absolute http(s) URL suitable as
// an API root and returns it without a trailing slash. Paths are kept
// because the gateway is versioned (/v3). Query strings, fragments and
// embedded credentials are rejected; the token travels as a header.
func normalizeBaseURL(raw, field string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return "", fmt.Errorf("%s scheme must be http or https, got %q", field, u.Scheme)
	case u.Host == "":
		return "", fmt.Errorf("%s host is required", field)
	case u.User != nil:
		return "", fmt.Errorf("%s must not embed credentials", field)
	case u.RawQuery != "" || u.Fragment != "":
		return "", fmt.Errorf("%s must not carry a query or fragment", field)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
