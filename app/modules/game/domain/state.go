package gamedomain

import (
	"slices"
	"time"
)

// Transitions below never mutate the receiver. Each returns the next state
// and whether anything changed; a false flag means the call was a no-op.

// AddPlayer appends a player. The name is taken as given.
func (g GameState) AddPlayer(p Player) (GameState, bool) {
	next := g.Clone()
	next.Players = append(next.Players, p)
	return next, true
}

// RemovePlayer drops the player and every score they hold in any round.
// Round numbering and round count are untouched.
func (g GameState) RemovePlayer(id string) (GameState, bool) {
	idx := g.playerIndex(id)
	if idx < 0 {
		return g, false
	}
	next := g.Clone()
	next.Players = slices.Delete(next.Players, idx, idx+1)
	for i := range next.Rounds {
		next.Rounds[i].Scores = slices.DeleteFunc(next.Rounds[i].Scores, func(s RoundScore) bool {
			return s.PlayerID == id
		})
	}
	return next, true
}

// UpdatePlayer renames a player.
func (g GameState) UpdatePlayer(id, name string) (GameState, bool) {
	idx := g.playerIndex(id)
	// Renaming to the current name changes nothing, so it is reported as a no-op.
	if idx < 0 || g.Players[idx].Name == name {
		return g, false
	}
	next := g.Clone()
	next.Players[idx].Name = name
	return next, true
}

// AddRound appends the next round with a zeroed score per current player.
// The very first round also hides player management, draws the turn order
// and stamps the start time if none was set.
func (g GameState) AddRound(orderer Orderer, now time.Time) (GameState, bool) {
	if len(g.Players) == 0 || len(g.Rounds) >= MaxRounds {
		return g, false
	}
	first := len(g.Rounds) == 0

	next := g.Clone()
	next.Rounds = append(next.Rounds, next.newRound())

	if first {
		next.ShowPlayerManagement = false
		next.PlayerOrder = orderer.Order(next.playerIDs())
		if next.GameStartedAt.IsZero() {
			next.GameStartedAt = now
		}
	}
	return next, true
}

// UpdateRoundScore sets one player's score in one round.
// Negative scores are ignored; there is no upper bound.
func (g GameState) UpdateRoundScore(roundIndex int, playerID string, score int) (GameState, bool) {
	if score < 0 || roundIndex < 0 || roundIndex >= len(g.Rounds) {
		return g, false
	}
	si := scoreIndex(g.Rounds[roundIndex].Scores, playerID)
	if si < 0 || g.Rounds[roundIndex].Scores[si].Score == score {
		return g, false
	}
	next := g.Clone()
	next.Rounds[roundIndex].Scores[si].Score = score
	return next, true
}

// ToggleRoundWinner flips the winner flag for a player and clears it for
// everyone else in that round. Selecting a winner on the last round advances
// the game by one round unless it is already at MaxRounds.
func (g GameState) ToggleRoundWinner(roundIndex int, playerID string) (GameState, bool) {
	if roundIndex < 0 || roundIndex >= len(g.Rounds) {
		return g, false
	}
	si := scoreIndex(g.Rounds[roundIndex].Scores, playerID)
	if si < 0 {
		return g, false
	}

	next := g.Clone()
	scores := next.Rounds[roundIndex].Scores
	selected := !scores[si].IsWinner
	for i := range scores {
		scores[i].IsWinner = i == si && selected
	}

	if selected && roundIndex == len(next.Rounds)-1 && len(next.Rounds) < MaxRounds {
		next.Rounds = append(next.Rounds, next.newRound())
	}
	return next, true
}

// SetManagementVisible shows or hides the player management panel.
func (g GameState) SetManagementVisible(visible bool) (GameState, bool) {
	if g.ShowPlayerManagement == visible {
		return g, false
	}
	next := g.Clone()
	next.ShowPlayerManagement = visible
	return next, true
}

// TotalScore sums a player's scores; rounds without an entry count as zero.
func (g GameState) TotalScore(playerID string) int {
	total := 0
	for _, r := range g.Rounds {
		if si := scoreIndex(r.Scores, playerID); si >= 0 {
			total += r.Scores[si].Score
		}
	}
	return total
}

// Wins counts the rounds the player is marked as winner.
func (g GameState) Wins(playerID string) int {
	wins := 0
	for _, r := range g.Rounds {
		if si := scoreIndex(r.Scores, playerID); si >= 0 && r.Scores[si].IsWinner {
			wins++
		}
	}
	return wins
}

// Rankings returns ranked standings for every current player.
func (g GameState) Rankings() []PlayerRanking {
	rows := make([]PlayerRanking, 0, len(g.Players))
	for _, p := range g.Players {
		rows = append(rows, PlayerRanking{
			ID:         p.ID,
			Name:       p.Name,
			TotalScore: g.TotalScore(p.ID),
			Wins:       g.Wins(p.ID),
		})
	}
	return Rank(rows)
}

// IsComplete reports whether every round has been played.
func (g GameState) IsComplete() bool {
	return len(g.Rounds) == MaxRounds
}

// IsDecided reports whether the game is complete and its final round has a
// winner, which is when the result is final.
func (g GameState) IsDecided() bool {
	if !g.IsComplete() {
		return false
	}
	for _, sc := range g.Rounds[MaxRounds-1].Scores {
		if sc.IsWinner {
			return true
		}
	}
	return false
}

// Winner is the leader of a complete game.
func (g GameState) Winner() (PlayerRanking, bool) {
	if !g.IsComplete() {
		return PlayerRanking{}, false
	}
	ranked := g.Rankings()
	if len(ranked) == 0 {
		return PlayerRanking{}, false
	}
	return ranked[0], true
}

// Phase derives the lifecycle phase. Round count takes precedence over the
// roster so a game whose players were all removed still reads as started.
func (g GameState) Phase() Phase {
	switch {
	case g.IsComplete():
		return PhaseComplete
	case len(g.Rounds) > 0:
		return PhaseInProgress
	case len(g.Players) == 0:
		return PhaseEmpty
	default:
		return PhaseSetup
	}
}

// CurrentRoundNumber is the number of the latest round, 0 before play starts.
func (g GameState) CurrentRoundNumber() int {
	return len(g.Rounds)
}

// TurnFor returns who leads the given round. The turn order is frozen at the
// first round; ids of players removed since then are skipped.
func (g GameState) TurnFor(roundNumber int) (Player, bool) {
	active := make([]Player, 0, len(g.PlayerOrder))
	for _, id := range g.PlayerOrder {
		if idx := g.playerIndex(id); idx >= 0 {
			active = append(active, g.Players[idx])
		}
	}
	return TurnPlayer(active, roundNumber)
}

// CurrentTurn returns who leads the latest round.
func (g GameState) CurrentTurn() (Player, bool) {
	if len(g.Rounds) == 0 {
		return Player{}, false
	}
	return g.TurnFor(g.CurrentRoundNumber())
}

// PlayerByID looks up a player on the roster.
func (g GameState) PlayerByID(id string) (Player, bool) {
	if idx := g.playerIndex(id); idx >= 0 {
		return g.Players[idx], true
	}
	return Player{}, false
}

func (g GameState) newRound() Round {
	scores := make([]RoundScore, 0, len(g.Players))
	for _, p := range g.Players {
		scores = append(scores, RoundScore{PlayerID: p.ID})
	}
	return Round{RoundNumber: len(g.Rounds) + 1, Scores: scores}
}

func (g GameState) playerIDs() []string {
	ids := make([]string, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.ID
	}
	return ids
}

func (g GameState) playerIndex(id string) int {
	return slices.IndexFunc(g.Players, func(p Player) bool { return p.ID == id })
}

func scoreIndex(scores []RoundScore, playerID string) int {
	return slices.IndexFunc(scores, func(s RoundScore) bool { return s.PlayerID == playerID })
}
