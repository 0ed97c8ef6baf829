// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cookrank/internal/metrics"
	"github.com/tomtom215/cookrank/internal/recommend"
)

// ErrSubscriptionClosed is returned by Serve when the broker closes the
// message channel while the service is still running.
var ErrSubscriptionClosed = errors.New("subscription closed")

// IndexConsumer marks users dirty in the neighbor index when their
// favorites change on any node. It implements suture.Service.
type IndexConsumer struct {
	sub    message.Subscriber
	topic  string
	index  *recommend.NeighborIndex
	logger zerolog.Logger

	processed atomic.Int64
	ready     chan struct{}
	readyOnce sync.Once
}

// NewIndexConsumer creates a consumer for topic.
func NewIndexConsumer(sub message.Subscriber, topic string, index *recommend.NeighborIndex, logger zerolog.Logger) *IndexConsumer {
	return &IndexConsumer{
		sub:    sub,
		topic:  topic,
		index:  index,
		logger: logger.With().Str("component", "index-consumer").Logger(),
		ready:  make(chan struct{}),
	}
}

// Serve consumes messages until ctx is canceled.
func (c *IndexConsumer) Serve(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}
	c.readyOnce.Do(func() { close(c.ready) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrSubscriptionClosed
			}
			c.handle(msg)
		}
	}
}

// Ready is closed once the first subscription is established.
func (c *IndexConsumer) Ready() <-chan struct{} {
	return c.ready
}

// Processed returns the number of messages handled.
func (c *IndexConsumer) Processed() int64 {
	return c.processed.Load()
}

// String implements fmt.Stringer for supervisor logs.
func (c *IndexConsumer) String() string {
	return "index-consumer"
}

// handle always acks: a malformed message would fail again on redelivery.
func (c *IndexConsumer) handle(msg *message.Message) {
	defer msg.Ack()
	defer c.processed.Add(1)
	metrics.EventsConsumed.Inc()

	ev, err := DecodeMessage(msg)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed interaction message")
		return
	}
	if !ev.ChangesFavorites() {
		return
	}
	uid, err := recommend.ParseID(ev.UserID)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping interaction with invalid user id")
		return
	}
	c.index.MarkDirty(uid)
	c.logger.Debug().Str("user_id", ev.UserID).Msg("Marked user dirty in neighbor index")
}
