// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

/*
Package cache provides the bounded TTL response cache that sits in front
of the proxy's read endpoints.

# Overview

Entries hold a response body, its status code and content type. The
cache is keyed by GenerateKey, which hashes the request method, path and
sorted query string. The cache control parameter (cache=0|false|no|off)
never takes part in the key; Bypass reports when a request asked to skip
the cache.

# Eviction

The cache holds at most MaxItems entries. When a Set would exceed that
bound, every expired entry is dropped first; if the cache is still full
the entry closest to expiry is evicted. Expired entries are never served
and reads do not refresh an entry's lifetime. A background janitor calls
PruneExpired on a fixed interval.

# Persistence

An optional BadgerStore can be attached with WithPersister. Writes go
through to Badger with a matching TTL and memory misses fall back to it,
so warm responses survive a restart:

	store, err := cache.OpenBadger("/var/lib/darkwatch/cache")
	if err != nil {
	    return err
	}
	defer store.Close()

	c := cache.New(512, 5*time.Minute, cache.WithPersister(store))

	key := cache.GenerateKey(r.Method, r.URL.Path, r.URL.Query())
	if entry, ok := c.Get(key); ok {
	    w.WriteHeader(entry.Status)
	    w.Write(entry.Payload)
	}

# Thread Safety

All Cache and BadgerStore methods are safe for concurrent use.
*/
package cache
