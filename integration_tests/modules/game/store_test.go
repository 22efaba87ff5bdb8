package gameintegration

import (
	"context"
	"fmt"
	"testing"
	"time"

	gamedb "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories"
	gamemigrations "github.com/Black-And-White-Club/crownkeeper/app/modules/game/infrastructure/repositories/migrations"
	gameutil "github.com/Black-And-White-Club/crownkeeper/app/modules/game/utils"
	"github.com/Black-And-White-Club/crownkeeper/integration_tests/testutils"
	"github.com/Black-And-White-Club/crownkeeper/internal/db/bundb"
	jetstreamutil "github.com/Black-And-White-Club/crownkeeper/internal/jetstream"
	natsutil "github.com/Black-And-White-Club/crownkeeper/internal/nats"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var savedAt = time.Date(2026, 10, 18, 22, 5, 9, 0, time.UTC)

func newAdapter(kv gamedb.KeyValueStore, key string) *gamedb.Adapter {
	return gamedb.NewAdapter(kv, key, observability.Discard(), observability.NoOpMetrics{}, gameutil.NewAnchorClock(savedAt))
}

func openDB(t *testing.T, dsn string) *bun.DB {
	t.Helper()
	ctx := context.Background()
	db, err := bundb.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := migrate.NewMigrator(db, gamemigrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)
	return db
}

// exerciseAdapter runs the save, load and clear cycle every backend must support.
func exerciseAdapter(t *testing.T, kv gamedb.KeyValueStore, key string) {
	t.Helper()
	ctx := context.Background()
	gen := testutils.NewTestDataGenerator(7)
	adapter := newAdapter(kv, key)

	_, ok := adapter.Load(ctx)
	assert.False(t, ok, "nothing stored yet")
	assert.False(t, adapter.Exists(ctx))

	want := gen.GenerateGame(4, 6)
	adapter.Save(ctx, want)
	want.LastUpdatedAt = savedAt

	got, ok := adapter.Load(ctx)
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loaded game mismatch (seed %d) (-want +got):\n%s", gen.Seed(), diff)
	}
	assert.True(t, adapter.Exists(ctx))

	adapter.Clear(ctx)
	_, ok = adapter.Load(ctx)
	assert.False(t, ok)
	assert.False(t, adapter.Exists(ctx))
}

func TestJetStreamStore(t *testing.T) {
	env := testutils.GetOrCreateTestEnv(t)
	ctx := context.Background()

	conn, err := natsutil.Connect(natsutil.ConnectionConfig{URL: env.NatsURL}, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	kv, err := jetstreamutil.OpenKeyValue(ctx, conn, jetstreamutil.BucketConfig{
		Name: fmt.Sprintf("sessions_%d", time.Now().UnixNano()),
		TTL:  time.Hour,
	})
	require.NoError(t, err)

	exerciseAdapter(t, gamedb.NewJetStreamStore(kv), gamedb.DefaultKey)
}

func TestBunStore(t *testing.T) {
	env := testutils.GetOrCreateTestEnv(t)
	db := openDB(t, env.PostgresDSN)

	exerciseAdapter(t, gamedb.NewBunStore(db, time.Hour), "bun-roundtrip")
}

func TestBunStoreExpiry(t *testing.T) {
	env := testutils.GetOrCreateTestEnv(t)
	db := openDB(t, env.PostgresDSN)
	ctx := context.Background()

	store := gamedb.NewBunStore(db, 50*time.Millisecond)
	require.NoError(t, store.Set(ctx, "bun-expiry", `{"players":[]}`))

	_, ok, err := store.Get(ctx, "bun-expiry")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok, err = store.Get(ctx, "bun-expiry")
	require.NoError(t, err)
	assert.False(t, ok, "stale sessions read as missing")

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	count, err := db.NewSelect().Model((*gamedb.GameSession)(nil)).Where("session_key = ?", "bun-expiry").Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
