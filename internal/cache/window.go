// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package cache

import (
	"sync"
	"time"
)

// DefaultCapacity bounds a Window created with a non-positive capacity.
const DefaultCapacity = 10000

type windowEntry struct {
	key       string
	expiresAt time.Time
	prev      *windowEntry
	next      *windowEntry
}

// Window remembers keys for a fixed duration. It answers "was this key seen
// in the last d?" in O(1) and keeps memory bounded by evicting the least
// recently seen key once capacity is reached.
//
// The list is ordered by last sighting: head.next is the newest entry and
// tail.prev the oldest. Expired entries are dropped lazily on access and
// in bulk by Prune.
type Window struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*windowEntry
	head  *windowEntry
	tail  *windowEntry

	hits   int64
	misses int64
}

// NewWindow creates a window remembering keys for ttl.
func NewWindow(capacity int, ttl time.Duration) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	w := &Window{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*windowEntry),
		head:     &windowEntry{},
		tail:     &windowEntry{},
	}
	w.head.next = w.tail
	w.tail.prev = w.head
	return w
}

// Seen reports whether key was recorded within the window. A key that was
// not seen is recorded, so of two concurrent calls exactly one gets false.
// A repeat sighting does not extend the window.
func (w *Window) Seen(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if e, ok := w.items[key]; ok {
		if now.Before(e.expiresAt) {
			w.hits++
			return true
		}
		w.unlink(e)
	}

	e := &windowEntry{key: key, expiresAt: now.Add(w.ttl)}
	w.pushFront(e)
	w.items[key] = e
	for len(w.items) > w.capacity {
		w.unlink(w.tail.prev)
	}
	w.misses++
	return false
}

// Forget drops key so the next Seen reports false.
func (w *Window) Forget(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.items[key]
	if ok {
		w.unlink(e)
	}
	return ok
}

// Prune removes expired keys and returns how many were dropped.
func (w *Window) Prune() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	removed := 0
	for e := w.tail.prev; e != w.head; {
		prev := e.prev
		if !now.Before(e.expiresAt) {
			w.unlink(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Len returns the number of remembered keys, expired ones included.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Stats returns repeat and first sightings.
func (w *Window) Stats() (hits, misses int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hits, w.misses
}

// caller holds mu
func (w *Window) pushFront(e *windowEntry) {
	e.prev = w.head
	e.next = w.head.next
	w.head.next.prev = e
	w.head.next = e
}

// caller holds mu
func (w *Window) unlink(e *windowEntry) {
	if e == w.head || e == w.tail {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(w.items, e.key)
}
