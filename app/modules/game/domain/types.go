package gamedomain

import "time"

// MaxRounds is the number of rounds in a full game (3s wild through Ks wild, plus two).
const MaxRounds = 13

// Player is a participant at the table.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoundScore is one player's result for a single round.
type RoundScore struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
	IsWinner bool   `json:"isWinner"`
}

// Round is one scored hand. RoundNumber is 1-indexed.
type Round struct {
	RoundNumber int          `json:"roundNumber"`
	Scores      []RoundScore `json:"scores"`
}

// PlayerRanking is a derived standings row. It is never persisted.
type PlayerRanking struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalScore int    `json:"totalScore"`
	Wins       int    `json:"wins"`
}

// GameState is the aggregate root for a single game.
type GameState struct {
	Players              []Player
	Rounds               []Round
	ShowPlayerManagement bool
	PlayerOrder          []string
	GameStartedAt        time.Time
	LastUpdatedAt        time.Time
}

// Phase is derived from the state, never stored.
type Phase string

const (
	PhaseEmpty      Phase = "empty"
	PhaseSetup      Phase = "setup"
	PhaseInProgress Phase = "in_progress"
	PhaseComplete   Phase = "complete"
)

// NewGameState returns the state a fresh session starts in.
func NewGameState() GameState {
	return GameState{
		Players:              []Player{},
		Rounds:               []Round{},
		ShowPlayerManagement: true,
		PlayerOrder:          []string{},
	}
}

// Clone returns a deep copy so callers can never alias the store's slices.
func (g GameState) Clone() GameState {
	out := g
	out.Players = append([]Player{}, g.Players...)
	out.PlayerOrder = append([]string{}, g.PlayerOrder...)
	out.Rounds = make([]Round, len(g.Rounds))
	for i, r := range g.Rounds {
		out.Rounds[i] = Round{
			RoundNumber: r.RoundNumber,
			Scores:      append([]RoundScore{}, r.Scores...),
		}
	}
	return out
}
