package natsutil

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Game events are fire-and-forget notifications, so they travel over core
// NATS subjects rather than JetStream streams.
var coreNATS = nats.JetStreamConfig{Disabled: true}

// NewWatermillPublisher creates a watermill publisher on core NATS.
func NewWatermillPublisher(cfg ConnectionConfig, logger *slog.Logger) (message.Publisher, error) {
	opts, err := Options(cfg, logger)
	if err != nil {
		return nil, err
	}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: opts,
		Marshaler:   &nats.NATSMarshaler{},
		JetStream:   coreNATS,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}
	return pub, nil
}

// NewWatermillSubscriber creates a watermill subscriber on core NATS. Every
// subscriber sharing queueGroup gets each message once.
func NewWatermillSubscriber(cfg ConnectionConfig, queueGroup string, logger *slog.Logger) (message.Subscriber, error) {
	opts, err := Options(cfg, logger)
	if err != nil {
		return nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              cfg.URL,
		NatsOptions:      opts,
		Unmarshaler:      &nats.NATSMarshaler{},
		QueueGroupPrefix: queueGroup,
		SubscribersCount: 1,
		JetStream:        coreNATS,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}
	return sub, nil
}
