package testutils

import (
	"time"

	gamedomain "github.com/Black-And-White-Club/crownkeeper/app/modules/game/domain"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// TestDataGenerator builds plausible games for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator creates a generator. Without a seed it uses the clock.
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	s := uint64(time.Now().UnixNano())
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(s), seed: s}
}

// Seed reports the seed so a failing run can be replayed.
func (g *TestDataGenerator) Seed() uint64 { return g.seed }

// GeneratePlayers returns count players with distinct first names.
func (g *TestDataGenerator) GeneratePlayers(count int) []gamedomain.Player {
	players := make([]gamedomain.Player, 0, count)
	seen := make(map[string]bool, count)
	for len(players) < count {
		name := g.faker.FirstName()
		if seen[name] {
			continue
		}
		seen[name] = true
		players = append(players, gamedomain.Player{ID: uuid.NewString(), Name: name})
	}
	return players
}

// GenerateGame returns a game with the given roster size and rounds played.
// Every round has one winner on zero and scores for everyone else.
func (g *TestDataGenerator) GenerateGame(playerCount, rounds int) gamedomain.GameState {
	state := gamedomain.NewGameState()
	state.Players = g.GeneratePlayers(playerCount)
	for _, p := range state.Players {
		state.PlayerOrder = append(state.PlayerOrder, p.ID)
	}

	started := g.faker.DateRange(time.Now().Add(-6*time.Hour), time.Now().Add(-time.Hour)).UTC().Truncate(time.Millisecond)
	if rounds > 0 {
		state.GameStartedAt = started
	}

	for n := 1; n <= rounds; n++ {
		winner := g.faker.Number(0, playerCount-1)
		scores := make([]gamedomain.RoundScore, playerCount)
		for i, p := range state.Players {
			scores[i] = gamedomain.RoundScore{PlayerID: p.ID}
			if i == winner {
				scores[i].IsWinner = true
				continue
			}
			scores[i].Score = g.faker.Number(1, 80)
		}
		state.Rounds = append(state.Rounds, gamedomain.Round{RoundNumber: n, Scores: scores})
	}

	state.ShowPlayerManagement = rounds == 0
	state.LastUpdatedAt = started.Add(time.Duration(rounds) * 5 * time.Minute)
	return state
}
