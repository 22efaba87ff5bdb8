package gamedomain

import "time"

// Topics published by the game service after a committed transition.
const (
	RoundAddedTopic    = "game.round.added"
	WinnerToggledTopic = "game.winner.toggled"
	GameCompletedTopic = "game.completed"
	GameResetTopic     = "game.reset"
)

// RoundAddedPayload announces a new round, whether added by hand or by
// selecting the previous round's winner.
type RoundAddedPayload struct {
	RoundNumber int    `json:"round_number"`
	CardLabel   string `json:"card_label"`
	TurnPlayer  string `json:"turn_player,omitempty"`
	Automatic   bool   `json:"automatic"`
}

// WinnerToggledPayload reports the winner flag after a toggle.
type WinnerToggledPayload struct {
	RoundNumber int    `json:"round_number"`
	PlayerID    string `json:"player_id"`
	IsWinner    bool   `json:"is_winner"`
}

// GameCompletedPayload carries everything needed to archive a finished game.
type GameCompletedPayload struct {
	Winner        PlayerRanking   `json:"winner"`
	Standings     []PlayerRanking `json:"standings"`
	Players       []Player        `json:"players"`
	Rounds        []Round         `json:"rounds"`
	GameStartedAt time.Time       `json:"game_started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// GameResetPayload is published when a new game is started.
type GameResetPayload struct {
	ResetAt time.Time `json:"reset_at"`
}
