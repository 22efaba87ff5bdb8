package gamedb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared KeyValueStore contract against a backend.
func exerciseStore(t *testing.T, s KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, DefaultKey, `{"players":[],"rounds":[]}`))
	v, ok, err := s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"players":[],"rounds":[]}`, v)

	require.NoError(t, s.Set(ctx, DefaultKey, "second"))
	v, _, _ = s.Get(ctx, DefaultKey)
	assert.Equal(t, "second", v)

	require.NoError(t, s.Remove(ctx, DefaultKey))
	_, ok, err = s.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Remove(ctx, DefaultKey), "removing a missing key is not an error")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFileStore(t.TempDir(), time.Hour))
}

func TestFileStoreExpiry(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "old", "x"))
	require.NoError(t, s.Set(ctx, "fresh", "y"))

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.json"), stale, stale))

	_, ok, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok, "expired session should read as missing")

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(filepath.Join(dir, "old.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, ok, _ = s.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, 0)
	require.NoError(t, s.Set(context.Background(), "../escape/attempt", "v"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "..%2Fescape%2Fattempt.json", entries[0].Name())
}

func TestFileStoreDefaultDir(t *testing.T) {
	s := NewFileStore("", 0)
	assert.Equal(t, DefaultSessionDir(), s.dir)
}

func TestJetStreamStore(t *testing.T) {
	exerciseStore(t, NewJetStreamStore(NewFakeKeyValue()))
}

func TestJetStreamStoreSanitisesKeys(t *testing.T) {
	kv := NewFakeKeyValue()
	s := NewJetStreamStore(kv)
	require.NoError(t, s.Set(context.Background(), "table 7:game", "v"))

	_, ok := kv.data["table_7_game"]
	assert.True(t, ok)
	assert.Equal(t, []string{"Put:table_7_game"}, kv.trace)
}

func TestJetStreamStoreErrors(t *testing.T) {
	boom := errors.New("nats unavailable")
	kv := NewFakeKeyValue()
	kv.GetErr, kv.PutErr, kv.DeleteErr = boom, boom, boom
	s := NewJetStreamStore(kv)
	ctx := context.Background()

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), boom)
	assert.ErrorIs(t, s.Remove(ctx, "k"), boom)

	kv.GetErr = jetstream.ErrKeyDeleted
	_, ok, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}
