// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

// Package eez parses Exclusive Economic Zone selections from request
// parameters and resolves grouped selections into upstream region ids.
package eez

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Hierarchy maps grouped selections offered by the frontend to the
// zones they stand for.
var Hierarchy = map[string][]string{
	"France - All Territories":             {"France", "French Guiana", "Guadeloupe", "Martinique"},
	"Dominican Republic - All Territories": {"Dominican Republic"},
}

// ParseIDs reads zone ids from query values. It accepts repeated
// parameters (?eez_ids=1&eez_ids=2), a comma separated list
// (?eez_ids=1,2) or a JSON array (?eez_ids=[1,2]). The result is
// deduplicated, expanded through Hierarchy and sorted.
func ParseIDs(values []string) []string {
	var ids []string
	switch len(values) {
	case 0:
		return []string{}
	case 1:
		ids = parseSingle(values[0])
	default:
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				ids = append(ids, v)
			}
		}
	}
	return Expand(ids)
}

func parseSingle(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		var arr []interface{}
		if err := json.Unmarshal([]byte(value), &arr); err != nil {
			return nil
		}
		ids := make([]string, 0, len(arr))
		for _, item := range arr {
			if s := formatID(item); s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	}
	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		ids := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				ids = append(ids, p)
			}
		}
		return ids
	}
	return []string{value}
}

func formatID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

// Expand resolves grouped selections. A group selected on its own is
// replaced by all of its members. A group selected together with some
// of its members narrows to those members.
func Expand(ids []string) []string {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	final := make(map[string]bool, len(ids))
	for id := range selected {
		children, isGroup := Hierarchy[id]
		if !isGroup {
			final[id] = true
			continue
		}
		narrowed := false
		for _, child := range children {
			if selected[child] {
				narrowed = true
				break
			}
		}
		if narrowed {
			continue
		}
		for _, child := range children {
			final[child] = true
		}
	}

	out := make([]string, 0, len(final))
	for id := range final {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RegionID converts an id for an upstream region body: all-digit ids
// become ints, anything else stays a string.
func RegionID(id string) interface{} {
	id = strings.TrimSpace(id)
	if id == "" {
		return id
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return id
	}
	return n
}
