package gamedb

import (
	"context"
	"log/slog"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	gameutil "github.com/Black-And-White-Club/crownkeeper/app/modules/game/utils"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability"
	"github.com/Black-And-White-Club/crownkeeper/internal/observability/attr"
)

// DefaultKey is the storage key a game is mirrored under.
const DefaultKey = "five-crowns-game-state"

// Adapter mirrors game snapshots into a KeyValueStore. None of its methods
// return errors: storage trouble is logged, counted and otherwise ignored so
// the game keeps working in memory.
type Adapter struct {
	kv      KeyValueStore
	key     string
	logger  *slog.Logger
	metrics observability.GameMetrics
	clock   gameutil.Clock
}

// NewAdapter builds an Adapter. A blank key falls back to DefaultKey.
func NewAdapter(kv KeyValueStore, key string, logger *slog.Logger, metrics observability.GameMetrics, clock gameutil.Clock) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = observability.Discard()
	}
	if metrics == nil {
		metrics = observability.NoOpMetrics{}
	}
	if clock == nil {
		clock = gameutil.RealClock{}
	}
	return &Adapter{kv: kv, key: key, logger: logger, metrics: metrics, clock: clock}
}

// Key reports the storage key in use.
func (a *Adapter) Key() string { return a.key }

// Save writes state with a fresh lastUpdatedAt.
func (a *Adapter) Save(ctx context.Context, state gamedomain.GameState) {
	raw, err := EncodeSnapshot(state, a.clock.NowUTC())
	if err != nil {
		a.fail(ctx, "save", "Failed to encode game state", err)
		return
	}
	if err := a.kv.Set(ctx, a.key, raw); err != nil {
		a.fail(ctx, "save", "Failed to save game state", err)
		return
	}
	a.logger.DebugContext(ctx, "Game state saved",
		attr.String("key", a.key),
		attr.Int("players", len(state.Players)),
		attr.Int("rounds", len(state.Rounds)),
	)
}

// Load returns the stored state, or false when nothing usable is stored.
func (a *Adapter) Load(ctx context.Context) (gamedomain.GameState, bool) {
	raw, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.fail(ctx, "load", "Failed to load game state", err)
		return gamedomain.GameState{}, false
	}
	if !ok || raw == "" {
		return gamedomain.GameState{}, false
	}

	state, err := DecodeSnapshot(raw)
	if err != nil {
		a.fail(ctx, "load", "Discarding stored game state", err)
		return gamedomain.GameState{}, false
	}
	return state, true
}

// Clear removes the stored game.
func (a *Adapter) Clear(ctx context.Context) {
	if err := a.kv.Remove(ctx, a.key); err != nil {
		a.fail(ctx, "clear", "Failed to clear game state", err)
	}
}

// Exists reports whether anything is stored under the key, valid or not.
func (a *Adapter) Exists(ctx context.Context) bool {
	_, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.fail(ctx, "exists", "Failed to check for stored game", err)
		return false
	}
	return ok
}

func (a *Adapter) fail(ctx context.Context, op, msg string, err error) {
	a.metrics.RecordStorageFailure(ctx, op)
	a.logger.WarnContext(ctx, msg,
		attr.String("key", a.key),
		attr.Operation(op),
		attr.Error(err),
	)
}
