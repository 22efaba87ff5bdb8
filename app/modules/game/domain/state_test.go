package gamedomain

import (
	"slices"
	"testing"
	"time"
)

var testNow = time.Date(2026, 10, 18, 19, 0, 0, 0, time.UTC)

func gameWith(ids ...string) GameState {
	g := NewGameState()
	for _, id := range ids {
		g, _ = g.AddPlayer(Player{ID: id, Name: "name-" + id})
	}
	return g
}

func mustAddRound(t *testing.T, g GameState) GameState {
	t.Helper()
	next, ok := g.AddRound(NewOrderer(OrderRotation, seeded(5)), testNow)
	if !ok {
		t.Fatalf("AddRound was a no-op with %d rounds", len(g.Rounds))
	}
	return next
}

func TestNewGameState(t *testing.T) {
	g := NewGameState()
	if !g.ShowPlayerManagement || len(g.Players) != 0 || len(g.Rounds) != 0 || len(g.PlayerOrder) != 0 {
		t.Fatalf("unexpected fresh state: %+v", g)
	}
	if g.Phase() != PhaseEmpty {
		t.Fatalf("expected empty phase, got %s", g.Phase())
	}
}

func TestAddPlayerKeepsNameAsGiven(t *testing.T) {
	g, changed := NewGameState().AddPlayer(Player{ID: "p1", Name: "  Ada  "})
	if !changed || len(g.Players) != 1 || g.Players[0].Name != "  Ada  " {
		t.Fatalf("unexpected state after AddPlayer: %+v", g.Players)
	}
	if g.Phase() != PhaseSetup {
		t.Fatalf("expected setup phase, got %s", g.Phase())
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	g := mustAddRound(t, gameWith("p1", "p2"))
	before := g.Clone()

	_, _ = g.UpdateRoundScore(0, "p1", 12)
	_, _ = g.ToggleRoundWinner(0, "p2")
	_, _ = g.RemovePlayer("p1")
	_, _ = g.UpdatePlayer("p2", "renamed")

	if g.Rounds[0].Scores[0].Score != before.Rounds[0].Scores[0].Score ||
		g.Rounds[0].Scores[1].IsWinner != before.Rounds[0].Scores[1].IsWinner ||
		len(g.Players) != 2 || g.Players[1].Name != before.Players[1].Name ||
		len(g.Rounds) != 1 {
		t.Fatalf("receiver was mutated: %+v", g)
	}
}

func TestAddRoundNoopWithoutPlayers(t *testing.T) {
	g, changed := NewGameState().AddRound(NewOrderer(OrderRotation, nil), testNow)
	if changed || len(g.Rounds) != 0 {
		t.Fatalf("expected no-op, got %+v", g)
	}
}

func TestAddRoundFirstRoundSideEffects(t *testing.T) {
	g := mustAddRound(t, gameWith("p1", "p2", "p3"))

	if g.ShowPlayerManagement {
		t.Fatal("first round should hide player management")
	}
	if len(g.PlayerOrder) != 3 {
		t.Fatalf("expected 3 ids in turn order, got %v", g.PlayerOrder)
	}
	if !g.GameStartedAt.Equal(testNow) {
		t.Fatalf("expected start time stamped, got %v", g.GameStartedAt)
	}

	r := g.Rounds[0]
	if r.RoundNumber != 1 || len(r.Scores) != 3 {
		t.Fatalf("unexpected first round: %+v", r)
	}
	for _, s := range r.Scores {
		if s.Score != 0 || s.IsWinner {
			t.Fatalf("expected zeroed score, got %+v", s)
		}
	}
}

func TestAddRoundDoesNotRedrawOrder(t *testing.T) {
	g := mustAddRound(t, gameWith("p1", "p2", "p3"))
	order := slices.Clone(g.PlayerOrder)
	g.ShowPlayerManagement = true

	g, _ = g.AddPlayer(Player{ID: "p4", Name: "late"})
	g = mustAddRound(t, g)

	if !slices.Equal(g.PlayerOrder, order) {
		t.Fatalf("turn order changed from %v to %v", order, g.PlayerOrder)
	}
	if !g.ShowPlayerManagement {
		t.Fatal("later rounds must not touch panel visibility")
	}
	if len(g.Rounds[1].Scores) != 4 {
		t.Fatalf("second round should score the late player too, got %+v", g.Rounds[1].Scores)
	}
}

func TestKeepsExistingStartTime(t *testing.T) {
	g := gameWith("p1")
	started := testNow.Add(-time.Hour)
	g.GameStartedAt = started
	g = mustAddRound(t, g)
	if !g.GameStartedAt.Equal(started) {
		t.Fatalf("start time overwritten: %v", g.GameStartedAt)
	}
}

func TestRoundCap(t *testing.T) {
	g := gameWith("p1")
	for i := 1; i <= MaxRounds; i++ {
		g = mustAddRound(t, g)
		if i == MaxRounds-1 && g.IsComplete() {
			t.Fatal("game complete at 12 rounds")
		}
	}
	if !g.IsComplete() || g.Phase() != PhaseComplete {
		t.Fatalf("expected complete game at %d rounds", len(g.Rounds))
	}

	g, changed := g.AddRound(NewOrderer(OrderRotation, nil), testNow)
	if changed || len(g.Rounds) != MaxRounds {
		t.Fatalf("14th AddRound should be a no-op, have %d rounds", len(g.Rounds))
	}
	for i, r := range g.Rounds {
		if r.RoundNumber != i+1 {
			t.Fatalf("round %d numbered %d", i, r.RoundNumber)
		}
	}
}

func TestIsDecided(t *testing.T) {
	g := gameWith("p1", "p2")
	for i := 0; i < MaxRounds; i++ {
		g = mustAddRound(t, g)
	}
	if !g.IsComplete() || g.IsDecided() {
		t.Fatal("complete game without a final winner is not decided")
	}

	g, _ = g.ToggleRoundWinner(MaxRounds-2, "p1")
	if g.IsDecided() {
		t.Fatal("a winner in round 12 does not decide the game")
	}
	g, _ = g.ToggleRoundWinner(MaxRounds-1, "p2")
	if !g.IsDecided() {
		t.Fatal("final round winner should decide the game")
	}
	g, _ = g.ToggleRoundWinner(MaxRounds-1, "p2")
	if g.IsDecided() {
		t.Fatal("clearing the final winner reopens the game")
	}
}

func TestToggleRoundWinnerSingleWinner(t *testing.T) {
	g := mustAddRound(t, gameWith("p1", "p2"))
	g = mustAddRound(t, g)

	g, _ = g.ToggleRoundWinner(0, "p1")
	g, _ = g.ToggleRoundWinner(0, "p2")

	winners := 0
	for _, s := range g.Rounds[0].Scores {
		if s.IsWinner {
			winners++
			if s.PlayerID != "p2" {
				t.Fatalf("expected p2 as winner, got %s", s.PlayerID)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestToggleRoundWinnerAutoAdvance(t *testing.T) {
	t.Run("selecting on last round appends next round", func(t *testing.T) {
		g := mustAddRound(t, gameWith("p1", "p2"))
		g, changed := g.ToggleRoundWinner(0, "p1")
		if !changed || len(g.Rounds) != 2 {
			t.Fatalf("expected auto-advance to round 2, have %d rounds", len(g.Rounds))
		}
		r := g.Rounds[1]
		if r.RoundNumber != 2 || len(r.Scores) != 2 {
			t.Fatalf("unexpected auto round: %+v", r)
		}
		for _, s := range r.Scores {
			if s.Score != 0 || s.IsWinner {
				t.Fatalf("auto round not zeroed: %+v", s)
			}
		}
	})

	t.Run("deselecting never appends", func(t *testing.T) {
		g := mustAddRound(t, gameWith("p1", "p2"))
		g, _ = g.ToggleRoundWinner(0, "p1")
		g, _ = g.ToggleRoundWinner(1, "p1")
		count := len(g.Rounds)

		g, _ = g.ToggleRoundWinner(2, "p1")
		g, _ = g.ToggleRoundWinner(2, "p1")
		if len(g.Rounds) != count+1 {
			t.Fatalf("select then deselect should add exactly one round, have %d want %d", len(g.Rounds), count+1)
		}
		if g.Rounds[2].Scores[0].IsWinner {
			t.Fatal("expected winner cleared after deselect")
		}
	})

	t.Run("non-last round never appends", func(t *testing.T) {
		g := mustAddRound(t, gameWith("p1", "p2"))
		g = mustAddRound(t, g)
		g, _ = g.ToggleRoundWinner(0, "p2")
		if len(g.Rounds) != 2 {
			t.Fatalf("expected 2 rounds, have %d", len(g.Rounds))
		}
	})

	t.Run("at cap never appends", func(t *testing.T) {
		g := gameWith("p1", "p2")
		for i := 0; i < MaxRounds; i++ {
			g = mustAddRound(t, g)
		}
		g, changed := g.ToggleRoundWinner(MaxRounds-1, "p1")
		if !changed || len(g.Rounds) != MaxRounds {
			t.Fatalf("expected toggle without advance, have %d rounds", len(g.Rounds))
		}
	})

	t.Run("advance uses the roster at toggle time", func(t *testing.T) {
		g := mustAddRound(t, gameWith("p1", "p2"))
		g, _ = g.AddPlayer(Player{ID: "p3", Name: "late"})
		g, _ = g.ToggleRoundWinner(0, "p1")
		if len(g.Rounds[1].Scores) != 3 {
			t.Fatalf("expected 3 scores in auto round, got %d", len(g.Rounds[1].Scores))
		}
	})
}

func TestToggleRoundWinnerNoops(t *testing.T) {
	g := mustAddRound(t, gameWith("p1", "p2"))
	for _, tc := range []struct {
		name  string
		index int
		id    string
	}{
		{"negative index", -1, "p1"},
		{"index past end", 5, "p1"},
		{"unknown player", 0, "ghost"},
	} {
		next, changed := g.ToggleRoundWinner(tc.index, tc.id)
		if changed || len(next.Rounds) != 1 {
			t.Fatalf("%s: expected no-op", tc.name)
		}
	}
}

func TestUpdateRoundScore(t *testing.T) {
	g := mustAddRound(t, gameWith("p1", "p2"))

	g, changed := g.UpdateRoundScore(0, "p2", 250)
	if !changed || g.Rounds[0].Scores[1].Score != 250 {
		t.Fatalf("expected score 250, got %+v", g.Rounds[0].Scores)
	}

	for _, tc := range []struct {
		name  string
		index int
		id    string
		score int
	}{
		{"negative score", 0, "p1", -5},
		{"bad index", 3, "p1", 5},
		{"unknown player", 0, "ghost", 5},
		{"same value", 0, "p2", 250},
	} {
		if _, changed := g.UpdateRoundScore(tc.index, tc.id, tc.score); changed {
			t.Fatalf("%s: expected no-op", tc.name)
		}
	}
}

func TestRemovePlayerCascades(t *testing.T) {
	g := mustAddRound(t, gameWith("p1", "p2", "p3"))
	g, _ = g.UpdateRoundScore(0, "p2", 7)
	g, _ = g.ToggleRoundWinner(0, "p1")
	g = mustAddRound(t, g)

	g, changed := g.RemovePlayer("p1")
	if !changed {
		t.Fatal("expected removal")
	}
	if _, ok := g.PlayerByID("p1"); ok {
		t.Fatal("p1 still on roster")
	}
	if len(g.Rounds) != 3 {
		t.Fatalf("round count changed to %d", len(g.Rounds))
	}
	for i, r := range g.Rounds {
		if r.RoundNumber != i+1 {
			t.Fatalf("round numbering changed: %+v", r)
		}
		if len(r.Scores) != 2 {
			t.Fatalf("round %d has %d scores, want 2", r.RoundNumber, len(r.Scores))
		}
		for _, s := range r.Scores {
			if s.PlayerID == "p1" {
				t.Fatalf("round %d still holds p1", r.RoundNumber)
			}
		}
	}
	if g.TotalScore("p2") != 7 {
		t.Fatalf("p2 score lost: %d", g.TotalScore("p2"))
	}
	if !slices.Contains(g.PlayerOrder, "p1") {
		t.Fatal("turn order is frozen and keeps the removed id")
	}

	if _, changed := g.RemovePlayer("nobody"); changed {
		t.Fatal("removing unknown id should be a no-op")
	}
}

func TestUpdatePlayer(t *testing.T) {
	g := gameWith("p1")
	g, changed := g.UpdatePlayer("p1", "Grace")
	if !changed || g.Players[0].Name != "Grace" {
		t.Fatalf("rename failed: %+v", g.Players)
	}
	if _, changed := g.UpdatePlayer("p9", "x"); changed {
		t.Fatal("unknown id should be a no-op")
	}
	if _, changed := g.UpdatePlayer("p1", "Grace"); changed {
		t.Fatal("same name should be a no-op")
	}
}

func TestTotalsWinsAndWinner(t *testing.T) {
	g := gameWith("p1", "p2")
	for i := 0; i < MaxRounds; i++ {
		g = mustAddRound(t, g)
		g, _ = g.UpdateRoundScore(i, "p1", 10)
		g, _ = g.UpdateRoundScore(i, "p2", 5)
	}
	g, _ = g.ToggleRoundWinner(0, "p1")

	if g.TotalScore("p1") != 130 || g.TotalScore("p2") != 65 {
		t.Fatalf("unexpected totals: %d, %d", g.TotalScore("p1"), g.TotalScore("p2"))
	}
	if g.Wins("p1") != 1 || g.Wins("p2") != 0 {
		t.Fatalf("unexpected wins: %d, %d", g.Wins("p1"), g.Wins("p2"))
	}
	if g.TotalScore("ghost") != 0 {
		t.Fatal("unknown player should total zero")
	}

	w, ok := g.Winner()
	if !ok || w.ID != "p2" {
		t.Fatalf("expected p2 to win, got %+v (%v)", w, ok)
	}
}

func TestWinnerAbsentBeforeCompletion(t *testing.T) {
	g := mustAddRound(t, gameWith("p1"))
	if _, ok := g.Winner(); ok {
		t.Fatal("winner should be absent before the last round")
	}
}

func TestTurnForSkipsRemovedPlayers(t *testing.T) {
	g := gameWith("p1", "p2", "p3")
	g.PlayerOrder = []string{"p2", "p3", "p1"}
	g.Rounds = []Round{{RoundNumber: 1}}

	if p, ok := g.CurrentTurn(); !ok || p.ID != "p2" {
		t.Fatalf("round 1 turn = %+v, want p2", p)
	}
	if p, _ := g.TurnFor(4); p.ID != "p2" {
		t.Fatalf("round 4 turn = %+v, want p2", p)
	}

	g, _ = g.RemovePlayer("p3")
	if p, _ := g.TurnFor(2); p.ID != "p1" {
		t.Fatalf("after removal round 2 turn = %+v, want p1", p)
	}

	if _, ok := NewGameState().CurrentTurn(); ok {
		t.Fatal("no turn before the first round")
	}
}

func TestSetManagementVisible(t *testing.T) {
	g := NewGameState()
	if _, changed := g.SetManagementVisible(true); changed {
		t.Fatal("already visible")
	}
	g, changed := g.SetManagementVisible(false)
	if !changed || g.ShowPlayerManagement {
		t.Fatal("expected panel hidden")
	}
}
