package gamedb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamStore keeps values in a JetStream key-value bucket. Session
// lifetime comes from the bucket TTL.
type JetStreamStore struct {
	kv jetstream.KeyValue
}

func NewJetStreamStore(kv jetstream.KeyValue) *JetStreamStore {
	return &JetStreamStore{kv: kv}
}

func (s *JetStreamStore) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.kv.Get(ctx, bucketKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return string(entry.Value()), true, nil
}

func (s *JetStreamStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.kv.Put(ctx, bucketKey(key), []byte(value)); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (s *JetStreamStore) Remove(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, bucketKey(key)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// bucketKey maps a storage key onto the character set JetStream allows.
func bucketKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.', r == '=', r == '/':
			return r
		default:
			return '_'
		}
	}, key)
}
