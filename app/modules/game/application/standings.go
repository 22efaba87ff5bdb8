package gameservice

import gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"

// Rankings derives the current standings.
func (s *GameService) Rankings() []gamedomain.PlayerRanking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Rankings()
}

// CumulativeScores returns each player's running total after every round,
// keyed by player id.
func CumulativeScores(g gamedomain.GameState) map[string][]int {
	out := make(map[string][]int, len(g.Players))
	for _, p := range g.Players {
		running := 0
		totals := make([]int, len(g.Rounds))
		for i, r := range g.Rounds {
			for _, sc := range r.Scores {
				if sc.PlayerID == p.ID {
					running += sc.Score
				}
			}
			totals[i] = running
		}
		out[p.ID] = totals
	}
	return out
}
