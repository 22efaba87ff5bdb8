package gamedb

import "context"

// KeyValueStore is the storage medium behind the persistence adapter. A
// missing key is reported as ok=false with a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var (
	_ KeyValueStore = (*MemoryStore)(nil)
	_ KeyValueStore = (*FileStore)(nil)
	_ KeyValueStore = (*JetStreamStore)(nil)
	_ KeyValueStore = (*BunStore)(nil)
)

// ExpiringStore is implemented by backends that need an explicit sweep to
// drop stale sessions.
type ExpiringStore interface {
	DeleteExpired(ctx context.Context) (int, error)
}
