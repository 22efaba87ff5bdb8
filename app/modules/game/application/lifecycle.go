package gameservice

import (
	"context"
	"time"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
)

// StartNewGame discards the current game and erases the stored copy. A
// non-zero startedAt pre-stamps the new game and is saved right away so it
// survives until the first round.
func (s *GameService) StartNewGame(ctx context.Context, startedAt time.Time) {
	withTelemetry(s, ctx, "StartNewGame", func(ctx context.Context) (struct{}, bool) {
		s.reset(ctx, startedAt)
		s.publish(ctx, gamedomain.GameResetTopic, gamedomain.GameResetPayload{ResetAt: s.clock.NowUTC()})
		return struct{}{}, true
	})
}

func (s *GameService) reset(ctx context.Context, startedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := gamedomain.NewGameState()
	fresh.GameStartedAt = startedAt
	s.state = fresh
	s.store.Clear(ctx)
	if !startedAt.IsZero() {
		s.store.Save(ctx, fresh)
	}
}

// HasStoredGame reports whether storage holds a game.
func (s *GameService) HasStoredGame(ctx context.Context) bool {
	return s.store.Exists(ctx)
}
