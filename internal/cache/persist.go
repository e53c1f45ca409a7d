// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrStoreClosed is returned by a BadgerStore after Close.
var ErrStoreClosed = errors.New("cache: persistent store is closed")

// DefaultKeyPrefix namespaces response entries inside a shared database.
const DefaultKeyPrefix = "resp:"

// BadgerStore persists cache entries in BadgerDB so that warm responses
// survive a restart. Badger's own TTL drops entries once they expire.
type BadgerStore struct {
	db     *badger.DB
	prefix []byte
	owned  bool

	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) a Badger database at path and wraps it.
// The returned store owns the database and closes it on Close.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	s := NewBadgerStore(db, DefaultKeyPrefix)
	s.owned = true
	return s, nil
}

// NewBadgerStore wraps an existing database. The caller keeps ownership.
func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &BadgerStore{
		db:     db,
		prefix: []byte(prefix),
	}
}

func (s *BadgerStore) makeKey(key string) []byte {
	out := make([]byte, 0, len(s.prefix)+len(key))
	out = append(out, s.prefix...)
	return append(out, key...)
}

func (s *BadgerStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Load returns the entry stored under key. A missing or expired entry
// is reported as not found without an error.
func (s *BadgerStore) Load(key string) (Entry, bool, error) {
	if err := s.checkOpen(); err != nil {
		return Entry{}, false, err
	}

	var (
		entry Entry
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entry); err != nil {
				return fmt.Errorf("decode cache entry: %w", err)
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return Entry{}, false, err
	}
	if !found || entry.Expired(time.Now()) {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Save writes entry under key with a Badger TTL matching its expiry.
// Entries that are already expired are skipped.
func (s *BadgerStore) Save(key string, entry Entry) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(s.makeKey(key), data).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BadgerStore) Delete(key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.makeKey(key))
	})
}

// RunGC reclaims value log space. badger.ErrNoRewrite means there was
// nothing to collect and is not reported.
func (s *BadgerStore) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	err := s.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return err
	}
	return nil
}

// Close marks the store closed and closes the database if the store
// opened it.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.owned {
		return s.db.Close()
	}
	return nil
}
