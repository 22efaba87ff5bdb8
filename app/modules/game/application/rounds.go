package gameservice

import (
	"context"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
)

// AddRound appends the next round. Ignored with no players or at the cap.
func (s *GameService) AddRound(ctx context.Context) bool {
	_, changed := withTelemetry(s, ctx, "AddRound", func(ctx context.Context) (struct{}, bool) {
		now := s.clock.NowUTC()
		before, after, changed := s.commit(ctx, func(g gamedomain.GameState) (gamedomain.GameState, bool) {
			return g.AddRound(s.orderer, now)
		})
		if changed {
			s.afterCommit(ctx, before, after, false)
		}
		return struct{}{}, changed
	})
	return changed
}

// UpdateRoundScore records a player's score for the round at roundIndex (0-based).
func (s *GameService) UpdateRoundScore(ctx context.Context, roundIndex int, playerID string, score int) bool {
	_, changed := withTelemetry(s, ctx, "UpdateRoundScore", func(ctx context.Context) (struct{}, bool) {
		before, after, changed := s.commit(ctx, func(g gamedomain.GameState) (gamedomain.GameState, bool) {
			return g.UpdateRoundScore(roundIndex, playerID, score)
		})
		if changed {
			s.afterCommit(ctx, before, after, false)
		}
		return struct{}{}, changed
	})
	return changed
}

// ToggleRoundWinner flips the winner of the round at roundIndex (0-based).
// Selecting a winner on the latest round may start the next one.
func (s *GameService) ToggleRoundWinner(ctx context.Context, roundIndex int, playerID string) bool {
	_, changed := withTelemetry(s, ctx, "ToggleRoundWinner", func(ctx context.Context) (struct{}, bool) {
		before, after, changed := s.commit(ctx, func(g gamedomain.GameState) (gamedomain.GameState, bool) {
			return g.ToggleRoundWinner(roundIndex, playerID)
		})
		if !changed {
			return struct{}{}, false
		}

		isWinner := false
		for _, sc := range after.Rounds[roundIndex].Scores {
			if sc.PlayerID == playerID {
				isWinner = sc.IsWinner
			}
		}
		s.publish(ctx, gamedomain.WinnerToggledTopic, gamedomain.WinnerToggledPayload{
			RoundNumber: after.Rounds[roundIndex].RoundNumber,
			PlayerID:    playerID,
			IsWinner:    isWinner,
		})
		s.afterCommit(ctx, before, after, true)
		return struct{}{}, true
	})
	return changed
}
