package jetstreamutil

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ErrInvalidBucket is returned for bucket names NATS would reject.
var ErrInvalidBucket = errors.New("invalid key-value bucket name")

var bucketName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// BucketConfig describes the session bucket.
type BucketConfig struct {
	Name string
	// TTL expires idle sessions server-side. Zero keeps values forever.
	TTL time.Duration
}

// EnsureKeyValue creates the bucket or updates its settings in place.
func EnsureKeyValue(ctx context.Context, js jetstream.JetStream, cfg BucketConfig) (jetstream.KeyValue, error) {
	if !bucketName.MatchString(cfg.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBucket, cfg.Name)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Name,
		Description: "crownkeeper game sessions",
		History:     1,
		TTL:         cfg.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create key-value bucket %s: %w", cfg.Name, err)
	}
	return kv, nil
}

// OpenKeyValue wraps conn in a JetStream context and ensures the bucket.
func OpenKeyValue(ctx context.Context, conn *nats.Conn, cfg BucketConfig) (jetstream.KeyValue, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}
	return EnsureKeyValue(ctx, js, cfg)
}
