// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cookrank/internal/config"
	"github.com/tomtom215/cookrank/internal/logging"
)

// Bus owns the publisher, subscriber and optional embedded server for the
// configured broker.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	topic        string
	server       *EmbeddedServer
	closeTimeout time.Duration
	logger       zerolog.Logger
}

// Open creates the broker clients described by cfg.
func Open(ctx context.Context, cfg *config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger("events"))
	b := &Bus{
		topic:        cfg.Topic,
		closeTimeout: cfg.CloseTimeout,
		logger:       logger.With().Str("component", "events").Logger(),
	}

	switch cfg.Broker {
	case config.BrokerMemory:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wmLogger)
		b.Publisher = ch
		b.Subscriber = ch

	case config.BrokerNATS:
		if err := b.openNATS(ctx, cfg, wmLogger); err != nil {
			_ = b.Close()
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.Broker)
	}

	b.logger.Info().
		Str("broker", cfg.Broker).
		Str("topic", cfg.Topic).
		Bool("embedded", b.server != nil).
		Msg("Event bus ready")
	return b, nil
}

func (b *Bus) openNATS(ctx context.Context, cfg *config.EventsConfig, wmLogger watermill.LoggerAdapter) error {
	url := cfg.NATSURL
	if cfg.Embedded {
		srv, err := NewEmbeddedServer(cfg.EmbeddedPort, cfg.StoreDir)
		if err != nil {
			return err
		}
		b.server = srv
		url = srv.ClientURL()
	}

	err := EnsureStream(ctx, url, StreamConfig{
		Name:            cfg.Stream,
		Subjects:        []string{cfg.Topic},
		MaxAge:          24 * time.Hour,
		DuplicateWindow: 2 * time.Minute,
	})
	if err != nil {
		return err
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("cookrank"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				b.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			b.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, wmLogger)
	if err != nil {
		return fmt.Errorf("create watermill publisher: %w", err)
	}
	b.Publisher = pub

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			DurablePrefix: cfg.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(cfg.Stream),
				natsgo.DeliverNew(),
				natsgo.MaxDeliver(5),
				natsgo.AckWait(30 * time.Second),
			},
		},
	}, wmLogger)
	if err != nil {
		return fmt.Errorf("create watermill subscriber: %w", err)
	}
	b.Subscriber = sub
	return nil
}

// Topic returns the interaction topic.
func (b *Bus) Topic() string {
	return b.topic
}

// Close closes the clients and stops the embedded server.
func (b *Bus) Close() error {
	var errs []error
	if b.Publisher != nil {
		if err := b.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	// GoChannel is both ends; closing it twice is a no-op.
	if b.Subscriber != nil {
		if err := b.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if b.server != nil {
		timeout := b.closeTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := b.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown NATS server: %w", err))
		}
	}
	return errors.Join(errs...)
}
