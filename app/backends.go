package app

import (
	"context"
	"fmt"
	"log/slog"

	gamedb "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories"
	"github.com/Black-And-White-Club/crownkeeper/config"
	"github.com/Black-And-White-Club/crownkeeper/internal/db/bundb"
	jetstreamutil "github.com/Black-And-White-Club/crownkeeper/internal/jetstream"
	natsutil "github.com/Black-And-White-Club/crownkeeper/internal/nats"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ArchiverQueueGroup shares game.completed between archiver replicas.
const ArchiverQueueGroup = "crownkeeper-archiver"

type closer func() error

// newKeyValueStore opens the configured storage backend.
func newKeyValueStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gamedb.KeyValueStore, closer, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return gamedb.NewMemoryStore(), noop, nil

	case config.BackendFile:
		return gamedb.NewFileStore(cfg.Storage.Dir, cfg.Storage.SessionTTL), noop, nil

	case config.BackendJetStream:
		conn, err := natsutil.Connect(natsConnection(cfg), logger)
		if err != nil {
			return nil, nil, err
		}
		kv, err := jetstreamutil.OpenKeyValue(ctx, conn, jetstreamutil.BucketConfig{
			Name: cfg.NATS.Bucket,
			TTL:  cfg.Storage.SessionTTL,
		})
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return gamedb.NewJetStreamStore(kv), func() error { return conn.Drain() }, nil

	case config.BackendPostgres:
		db, err := bundb.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return gamedb.NewBunStore(db, cfg.Storage.SessionTTL), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", gamedb.ErrUnknownBackend, cfg.Storage.Backend)
	}
}

// eventBus is the publisher, and optionally the in-process subscriber, for game events.
type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	close      closer
}

// newEventBus wires game events. The in-process channel delivers straight to
// the local handlers and blocks until they ack; NATS only publishes, and a
// separate archiver process consumes.
func newEventBus(cfg *config.Config, logger *slog.Logger) (eventBus, error) {
	switch cfg.Events.Backend {
	case config.EventsNATS:
		pub, err := natsutil.NewWatermillPublisher(natsConnection(cfg), logger)
		if err != nil {
			return eventBus{}, err
		}
		return eventBus{publisher: pub, close: pub.Close}, nil

	default:
		pubsub := gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NewSlogLogger(logger))
		return eventBus{publisher: pubsub, subscriber: pubsub, close: pubsub.Close}, nil
	}
}

func natsConnection(cfg *config.Config) natsutil.ConnectionConfig {
	return natsutil.ConnectionConfig{
		URL:          cfg.NATS.URL,
		Name:         "crownkeeper",
		NKeySeedFile: cfg.NATS.NKeySeedFile,
	}
}
