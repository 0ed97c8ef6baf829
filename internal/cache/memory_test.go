// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory(capacity int) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory(capacity)
	m.now = clock.Now
	return m, clock
}

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestMemory(10)

	if _, ok := m.Get(ctx, "missing"); ok {
		t.Fatal("Get() on empty cache should miss")
	}

	value := []byte(`{"a":1}`)
	m.Set(ctx, "k", value, time.Minute)
	value[0] = 'X'

	got, ok := m.Get(ctx, "k")
	if !ok || string(got) != `{"a":1}` {
		t.Fatalf("Get() = %q, %v", got, ok)
	}
	got[0] = 'Y'
	again, _ := m.Get(ctx, "k")
	if string(again) != `{"a":1}` {
		t.Errorf("cached value was mutated through a returned slice: %q", again)
	}

	s := m.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Keys != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, clock := newTestMemory(10)
	m.Set(ctx, "short", []byte("1"), time.Second)
	m.Set(ctx, "long", []byte("2"), time.Hour)
	m.Set(ctx, "ignored", []byte("3"), 0)

	clock.Advance(2 * time.Second)
	if _, ok := m.Get(ctx, "short"); ok {
		t.Error("expired entry should miss")
	}
	if _, ok := m.Get(ctx, "long"); !ok {
		t.Error("live entry should hit")
	}
	if _, ok := m.Get(ctx, "ignored"); ok {
		t.Error("zero ttl entries must not be stored")
	}

	clock.Advance(2 * time.Hour)
	if n := m.Prune(); n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if m.Stats().Keys != 0 {
		t.Errorf("Keys = %d after prune", m.Stats().Keys)
	}
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestMemory(3)
	for i := 0; i < 3; i++ {
		m.Set(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)}, time.Minute)
	}

	// Touch k0 so k1 becomes the eviction victim.
	m.Get(ctx, "k0")
	m.Set(ctx, "k3", []byte{3}, time.Minute)

	if _, ok := m.Get(ctx, "k1"); ok {
		t.Error("k1 should have been evicted")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if _, ok := m.Get(ctx, k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if s := m.Stats(); s.Evictions != 1 || s.Keys != 3 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestMemory_OverwriteAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestMemory(2)
	m.Set(ctx, "k", []byte("old"), time.Minute)
	m.Set(ctx, "k", []byte("new"), time.Minute)
	if got, _ := m.Get(ctx, "k"); string(got) != "new" {
		t.Errorf("Get() = %q, want new", got)
	}
	if m.Stats().Keys != 1 {
		t.Errorf("overwrite should not add keys")
	}

	m.Delete("k")
	if _, ok := m.Get(ctx, "k"); ok {
		t.Error("deleted key should miss")
	}

	m.Set(ctx, "a", []byte("1"), time.Minute)
	m.Set(ctx, "b", []byte("2"), time.Minute)
	m.Clear()
	if m.Stats().Keys != 0 {
		t.Error("Clear() should drop every entry")
	}
	m.Set(ctx, "c", []byte("3"), time.Minute)
	if _, ok := m.Get(ctx, "c"); !ok {
		t.Error("cache should be usable after Clear()")
	}
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*i)%100)
				m.Set(ctx, key, []byte(key), time.Minute)
				m.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	if s := m.Stats(); s.Keys > 64 {
		t.Errorf("Keys = %d exceeds capacity", s.Keys)
	}
}
