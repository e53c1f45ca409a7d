// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package cache

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// ControlParam is the query parameter that controls caching for a single
// request. It never takes part in the cache key.
const ControlParam = "cache"

type keyParam struct {
	Name   string   `json:"n"`
	Values []string `json:"v"`
}

type keyMaterial struct {
	Method string     `json:"m"`
	Path   string     `json:"p"`
	Query  []keyParam `json:"q"`
}

// GenerateKey builds a deterministic key from the request method, path
// and query. Parameter order and value order do not affect the key.
func GenerateKey(method, path string, query url.Values) string {
	names := make([]string, 0, len(query))
	for name := range query {
		if name == ControlParam {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	material := keyMaterial{
		Method: strings.ToUpper(method),
		Path:   path,
		Query:  make([]keyParam, 0, len(names)),
	}
	for _, name := range names {
		values := append([]string(nil), query[name]...)
		sort.Strings(values)
		material.Query = append(material.Query, keyParam{Name: name, Values: values})
	}

	data, err := json.Marshal(material)
	if err != nil {
		// Strings and slices always marshal; keep a usable key regardless.
		return fmt.Sprintf("%s:%s?%s", material.Method, path, query.Encode())
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", material.Method, hash[:16])
}

// Bypass reports whether the request asked to skip the cache with
// cache=0, false, no or off.
func Bypass(query url.Values) bool {
	switch strings.ToLower(strings.TrimSpace(query.Get(ControlParam))) {
	case "0", "false", "no", "off":
		return true
	}
	return false
}
