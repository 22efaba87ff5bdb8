package gamedb

import (
	"encoding/json"
	"fmt"
	"time"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	"github.com/tidwall/gjson"
)

// isoMillis matches the millisecond ISO-8601 form older saves were written in.
const isoMillis = "2006-01-02T15:04:05.000Z"

type snapshotRecord struct {
	Players              []gamedomain.Player `json:"players"`
	Rounds               []gamedomain.Round  `json:"rounds"`
	ShowPlayerManagement bool                `json:"showPlayerManagement"`
	PlayerOrder          []string            `json:"playerOrder"`
	GameStartedAt        string              `json:"gameStartedAt,omitempty"`
	LastUpdatedAt        string              `json:"lastUpdatedAt"`
}

// EncodeSnapshot serialises state for storage, stamping updatedAt.
func EncodeSnapshot(state gamedomain.GameState, updatedAt time.Time) (string, error) {
	rec := snapshotRecord{
		Players:              nonNil(state.Players),
		Rounds:               make([]gamedomain.Round, len(state.Rounds)),
		ShowPlayerManagement: state.ShowPlayerManagement,
		PlayerOrder:          nonNil(state.PlayerOrder),
		LastUpdatedAt:        formatTimestamp(updatedAt),
	}
	for i, r := range state.Rounds {
		rec.Rounds[i] = gamedomain.Round{RoundNumber: r.RoundNumber, Scores: nonNil(r.Scores)}
	}
	if !state.GameStartedAt.IsZero() {
		rec.GameStartedAt = formatTimestamp(state.GameStartedAt)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal game snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot validates and decodes a stored value. Only players and
// rounds are required; everything else falls back to a default.
func DecodeSnapshot(raw string) (gamedomain.GameState, error) {
	if !gjson.Valid(raw) {
		return gamedomain.GameState{}, fmt.Errorf("%w: not valid JSON", ErrInvalidSnapshot)
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return gamedomain.GameState{}, fmt.Errorf("%w: not an object", ErrInvalidSnapshot)
	}

	players := doc.Get("players")
	if !players.IsArray() {
		return gamedomain.GameState{}, fmt.Errorf("%w: players missing or not an array", ErrInvalidSnapshot)
	}
	rounds := doc.Get("rounds")
	if !rounds.IsArray() {
		return gamedomain.GameState{}, fmt.Errorf("%w: rounds missing or not an array", ErrInvalidSnapshot)
	}

	state := gamedomain.NewGameState()
	for _, p := range players.Array() {
		state.Players = append(state.Players, decodePlayer(p))
	}
	for i, r := range rounds.Array() {
		state.Rounds = append(state.Rounds, decodeRound(r, i))
	}

	if v := doc.Get("showPlayerManagement"); v.Type == gjson.True || v.Type == gjson.False {
		state.ShowPlayerManagement = v.Bool()
	} else {
		state.ShowPlayerManagement = len(state.Rounds) == 0
	}

	state.PlayerOrder = []string{}
	if order := doc.Get("playerOrder"); order.IsArray() {
		order.ForEach(func(_, id gjson.Result) bool {
			if id.Type == gjson.String {
				state.PlayerOrder = append(state.PlayerOrder, id.String())
			}
			return true
		})
	}

	state.GameStartedAt = parseTimestamp(doc.Get("gameStartedAt"))
	state.LastUpdatedAt = parseTimestamp(doc.Get("lastUpdatedAt"))
	return state, nil
}

// decodePlayer and the helpers below give any field of the wrong type its
// zero value.
func decodePlayer(v gjson.Result) gamedomain.Player {
	return gamedomain.Player{
		ID:   stringField(v, "id"),
		Name: stringField(v, "name"),
	}
}

func decodeRound(v gjson.Result, index int) gamedomain.Round {
	r := gamedomain.Round{RoundNumber: index + 1, Scores: []gamedomain.RoundScore{}}
	if n := v.Get("roundNumber"); n.Type == gjson.Number {
		r.RoundNumber = int(n.Int())
	}
	if scores := v.Get("scores"); scores.IsArray() {
		for _, sc := range scores.Array() {
			r.Scores = append(r.Scores, decodeScore(sc))
		}
	}
	return r
}

func decodeScore(v gjson.Result) gamedomain.RoundScore {
	rs := gamedomain.RoundScore{PlayerID: stringField(v, "playerId")}
	if n := v.Get("score"); n.Type == gjson.Number {
		rs.Score = int(n.Int())
	}
	rs.IsWinner = v.Get("isWinner").Type == gjson.True
	return rs
}

func stringField(v gjson.Result, name string) string {
	if !v.IsObject() {
		return ""
	}
	if f := v.Get(name); f.Type == gjson.String {
		return f.String()
	}
	return ""
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func parseTimestamp(v gjson.Result) time.Time {
	if v.Type != gjson.String {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v.String())
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
