// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package cache

import "time"

// item is a stored entry plus its position in the expiry queue.
type item struct {
	key   string
	entry Entry
	index int
}

// expiryQueue is a min-heap of items ordered by expiry, so the entry
// closest to expiry is always at the root. Callers hold the cache lock.
type expiryQueue struct {
	items []*item
}

func (q *expiryQueue) len() int {
	return len(q.items)
}

// peek returns the item expiring first, or nil.
func (q *expiryQueue) peek() *item {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *expiryQueue) push(it *item) {
	it.index = len(q.items)
	q.items = append(q.items, it)
	q.up(it.index)
}

// remove drops it from the queue.
func (q *expiryQueue) remove(it *item) {
	i := it.index
	n := len(q.items) - 1
	if i < 0 || i > n || q.items[i] != it {
		return
	}
	if i != n {
		q.items[i] = q.items[n]
		q.items[i].index = i
	}
	q.items[n] = nil
	q.items = q.items[:n]
	if i != n {
		q.fix(i)
	}
	it.index = -1
}

// update re-positions it after its expiry changed.
func (q *expiryQueue) update(it *item) {
	q.fix(it.index)
}

// popExpired removes and returns every item expired at now.
func (q *expiryQueue) popExpired(now time.Time) []*item {
	var out []*item
	for len(q.items) > 0 && !q.items[0].entry.ExpiresAt.After(now) {
		it := q.items[0]
		q.remove(it)
		out = append(out, it)
	}
	return out
}

func (q *expiryQueue) reset() {
	q.items = nil
}

func (q *expiryQueue) fix(i int) {
	if !q.up(i) {
		q.down(i)
	}
}

func (q *expiryQueue) less(i, j int) bool {
	return q.items[i].entry.ExpiresAt.Before(q.items[j].entry.ExpiresAt)
}

// up moves the item at i towards the root and reports whether it moved.
func (q *expiryQueue) up(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

func (q *expiryQueue) down(i int) {
	n := len(q.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && q.less(left, smallest) {
			smallest = left
		}
		if right < n && q.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}

func (q *expiryQueue) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}
