// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// mockService runs until canceled, optionally failing its first runs.
type mockService struct {
	name     string
	starts   atomic.Int32
	stops    atomic.Int32
	failures int32
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.starts.Add(1)
	defer m.stops.Add(1)
	if n <= m.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewTree_Defaults(t *testing.T) {
	t.Parallel()

	tree := NewTree(quietLogger(), TreeConfig{})
	if got, want := tree.Config(), DefaultTreeConfig(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}

	tree = NewTree(quietLogger(), TreeConfig{FailureThreshold: 2, FailureBackoff: time.Second})
	if cfg := tree.Config(); cfg.FailureThreshold != 2 || cfg.FailureBackoff != time.Second || cfg.FailureDecay != 30 {
		t.Errorf("Config() = %+v, want explicit values kept and the rest defaulted", cfg)
	}
}

func TestTree_RunsAndStopsServices(t *testing.T) {
	t.Parallel()

	tree := NewTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	index := &mockService{name: "index"}
	events := &mockService{name: "events"}
	api := &mockService{name: "api"}
	tree.AddIndexService(index)
	tree.AddEventService(events)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	waitFor(t, func() bool {
		return index.starts.Load() == 1 && events.starts.Load() == 1 && api.starts.Load() == 1
	})

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tree did not stop")
	}

	for _, svc := range []*mockService{index, events, api} {
		if svc.stops.Load() != 1 {
			t.Errorf("%s stopped %d times, want 1", svc.name, svc.stops.Load())
		}
	}
}

func TestTree_RestartsFailedService(t *testing.T) {
	t.Parallel()

	tree := NewTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	flaky := &mockService{name: "flaky", failures: 2}
	tree.AddEventService(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return flaky.starts.Load() >= 3 })

	cancel()
	<-done
}
