// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/cookrank/internal/metrics"
	"github.com/tomtom215/cookrank/internal/recommend"
)

// Publisher publishes interaction events to a topic.
type Publisher struct {
	pub   message.Publisher
	topic string
}

var _ recommend.InteractionSink = (*Publisher)(nil)

// NewPublisher wraps a Watermill publisher.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{pub: pub, topic: topic}
}

// PublishInteraction implements recommend.InteractionSink. The message UUID
// doubles as the JetStream deduplication id.
func (p *Publisher) PublishInteraction(ctx context.Context, ev *recommend.InteractionEvent) error {
	msg, err := NewMessage(ev)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	metrics.EventsPublished.Inc()
	return nil
}
