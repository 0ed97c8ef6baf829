// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/config"
	"github.com/tomtom215/cookrank/internal/recommend"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// exerciseBus publishes a favorite and a view through bus and checks that
// only the favorite marks the user dirty.
func exerciseBus(t *testing.T, bus *Bus) {
	t.Helper()

	index := recommend.NewNeighborIndex(recommend.DefaultConfig().Similarity)
	index.Load(&recommend.IndexSnapshot{})
	consumer := NewIndexConsumer(bus.Subscriber, bus.Topic(), index, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Serve(ctx) }()

	select {
	case <-consumer.Ready():
	case <-time.After(10 * time.Second):
		t.Fatal("consumer did not subscribe")
	}

	pub := NewPublisher(bus.Publisher, bus.Topic())
	user := primitive.NewObjectID()
	for _, typ := range []recommend.InteractionType{recommend.InteractionFavorite, recommend.InteractionView} {
		err := pub.PublishInteraction(context.Background(), &recommend.InteractionEvent{
			UserID:     user.Hex(),
			DishID:     primitive.NewObjectID().Hex(),
			Type:       typ,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("PublishInteraction(%s) error = %v", typ, err)
		}
	}

	waitFor(t, 10*time.Second, func() bool { return consumer.Processed() == 2 })
	if n := index.DirtyCount(); n != 1 {
		t.Errorf("DirtyCount() = %d, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestBus_Memory(t *testing.T) {
	t.Parallel()

	cfg := &config.EventsConfig{Enabled: true, Broker: config.BrokerMemory, Topic: "cookrank.interactions"}
	bus, err := Open(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer bus.Close()

	exerciseBus(t, bus)
}

func TestBus_EmbeddedNATS(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an embedded NATS server")
	}
	t.Parallel()

	cfg := &config.EventsConfig{
		Enabled:      true,
		Broker:       config.BrokerNATS,
		Topic:        "cookrank.interactions",
		Stream:       "COOKRANK_TEST",
		Embedded:     true,
		EmbeddedPort: -1,
		StoreDir:     t.TempDir(),
		DurableName:  "cookrank-test",
		QueueGroup:   "cookrank-test",
		CloseTimeout: 5 * time.Second,
	}
	bus, err := Open(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer bus.Close()

	if !bus.server.IsRunning() {
		t.Fatal("embedded server not running")
	}
	exerciseBus(t, bus)
}

func TestOpen_UnknownBroker(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), &config.EventsConfig{Broker: "kafka"}, zerolog.Nop())
	if err == nil {
		t.Error("Open() should reject unknown brokers")
	}
}

func TestIndexConsumer_DropsMalformed(t *testing.T) {
	t.Parallel()

	bus, err := Open(context.Background(), &config.EventsConfig{Broker: config.BrokerMemory, Topic: "t"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer bus.Close()

	index := recommend.NewNeighborIndex(recommend.DefaultConfig().Similarity)
	consumer := NewIndexConsumer(bus.Subscriber, "t", index, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Serve(ctx) }()
	<-consumer.Ready()

	// A favorite with an unparseable user id is acked and ignored.
	pub := NewPublisher(bus.Publisher, "t")
	_ = pub.PublishInteraction(ctx, &recommend.InteractionEvent{UserID: "nope", Type: recommend.InteractionFavorite})

	waitFor(t, 5*time.Second, func() bool { return consumer.Processed() == 1 })
	if index.DirtyCount() != 0 {
		t.Errorf("DirtyCount() = %d, want 0", index.DirtyCount())
	}
}
