package gameservice

import (
	"context"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
)

// AddPlayer adds a player under a fresh id. The name is stored as given.
func (s *GameService) AddPlayer(ctx context.Context, name string) (gamedomain.Player, bool) {
	return withTelemetry(s, ctx, "AddPlayer", func(ctx context.Context) (gamedomain.Player, bool) {
		player := gamedomain.Player{ID: s.newID(), Name: name}
		_, _, changed := s.commit(ctx, func(g gamedomain.GameState) (gamedomain.GameState, bool) {
			return g.AddPlayer(player)
		})
		if !changed {
			return gamedomain.Player{}, false
		}
		return player, true
	})
}

// RemovePlayer removes a player and every score they recorded.
func (s *GameService) RemovePlayer(ctx context.Context, playerID string) bool {
	_, changed := withTelemetry(s, ctx, "RemovePlayer", func(ctx context.Context) (struct{}, bool) {
		before, after, changed := s.commit(ctx, func(g gamedomain.GameState) (gamedomain.GameState, bool) {
			return g.RemovePlayer(playerID)
		})
		if changed {
			s.afterCommit(ctx, before, after, false)
		}
		return struct{}{}, changed
	})
	return changed
}

// UpdatePlayer renames a player.
func (s *GameService) UpdatePlayer(ctx context.Context, playerID, name string) bool {
	_, changed := withTelemetry(s, ctx, "UpdatePlayer", func(ctx context.Context) (struct{}, bool) {
		before, after, changed := s.commit(ctx, func(g gamedomain.GameState) (gamedomain.GameState, bool) {
			return g.UpdatePlayer(playerID, name)
		})
		if changed {
			s.afterCommit(ctx, before, after, false)
		}
		return struct{}{}, changed
	})
	return changed
}

// SetManagementVisible shows or hides the player management panel.
func (s *GameService) SetManagementVisible(ctx context.Context, visible bool) bool {
	_, changed := withTelemetry(s, ctx, "SetManagementVisible", func(ctx context.Context) (struct{}, bool) {
		_, _, changed := s.commit(ctx, func(g gamedomain.GameState) (gamedomain.GameState, bool) {
			return g.SetManagementVisible(visible)
		})
		return struct{}{}, changed
	})
	return changed
}
