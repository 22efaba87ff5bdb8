package gameservice

import "errors"

// ErrNoPlayers is returned by exports that need at least one player.
var ErrNoPlayers = errors.New("no players in game")
