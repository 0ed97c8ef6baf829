// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package cache provides result caches for the non-personalized
// recommendation paths: a bounded in-process LRU and a Redis backend.
package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a node of the LRU list.
type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Keys      int
}

// Memory is a thread-safe LRU cache with per-entry TTLs. Get, Set and
// eviction are O(1): a map finds nodes and a doubly linked list keeps
// recency order, head.next being the most recently used.
type Memory struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry
	head     *entry
	tail     *entry
	now      func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// NewMemory creates a cache holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 10000
	}
	m := &Memory{
		capacity: capacity,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
		now:      time.Now,
	}
	m.head.next = m.tail
	m.tail.prev = m.head
	return m
}

// Get returns a copy of the value stored under key. Expired entries are
// removed lazily and count as misses.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		m.misses++
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		m.remove(e)
		m.evictions++
		m.misses++
		return nil, false
	}
	m.moveToFront(e)
	m.hits++
	return append([]byte(nil), e.value...), true
}

// Set stores a copy of value for ttl. A non-positive ttl is ignored.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt := m.now().Add(ttl)
	if e, ok := m.items[key]; ok {
		e.value = append([]byte(nil), value...)
		e.expiresAt = expiresAt
		m.moveToFront(e)
		return
	}

	if len(m.items) >= m.capacity {
		if lru := m.tail.prev; lru != m.head {
			m.remove(lru)
			m.evictions++
		}
	}
	e := &entry{key: key, value: append([]byte(nil), value...), expiresAt: expiresAt}
	m.items[key] = e
	m.pushFront(e)
}

// Delete removes key if present.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.items[key]; ok {
		m.remove(e)
	}
}

// Clear drops every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictions += int64(len(m.items))
	m.items = make(map[string]*entry, m.capacity)
	m.head.next = m.tail
	m.tail.prev = m.head
}

// Prune removes expired entries and returns how many were dropped.
func (m *Memory) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, e := range m.items {
		if !now.Before(e.expiresAt) {
			m.remove(e)
			n++
		}
	}
	m.evictions += int64(n)
	return n
}

// Stats returns the current counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Hits: m.hits, Misses: m.misses, Evictions: m.evictions, Keys: len(m.items)}
}

func (m *Memory) pushFront(e *entry) {
	e.prev = m.head
	e.next = m.head.next
	m.head.next.prev = e
	m.head.next = e
}

func (m *Memory) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	m.pushFront(e)
}

func (m *Memory) remove(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(m.items, e.key)
}
