package gameservice

import (
	"context"
	"io"
	"time"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
)

// Service owns the current game. Mutating operations never fail: input that
// does not apply is a silent no-op and the bool result reports whether the
// game changed.
type Service interface {
	Snapshot() gamedomain.GameState
	Rankings() []gamedomain.PlayerRanking

	AddPlayer(ctx context.Context, name string) (gamedomain.Player, bool)
	RemovePlayer(ctx context.Context, playerID string) bool
	UpdatePlayer(ctx context.Context, playerID, name string) bool
	SetManagementVisible(ctx context.Context, visible bool) bool

	AddRound(ctx context.Context) bool
	UpdateRoundScore(ctx context.Context, roundIndex int, playerID string, score int) bool
	ToggleRoundWinner(ctx context.Context, roundIndex int, playerID string) bool

	StartNewGame(ctx context.Context, startedAt time.Time)
	HasStoredGame(ctx context.Context) bool

	RenderScoreChart(w io.Writer) error
	ExportScoresheet(w io.Writer) error
}

// Persistence mirrors committed snapshots. Implementations swallow their own
// failures.
type Persistence interface {
	Save(ctx context.Context, state gamedomain.GameState)
	Load(ctx context.Context) (gamedomain.GameState, bool)
	Clear(ctx context.Context)
	Exists(ctx context.Context) bool
}
