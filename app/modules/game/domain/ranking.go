package gamedomain

import (
	"cmp"
	"slices"
	"strconv"
)

// Rank orders standings: lowest total first, then most round wins.
// Full ties keep their input order. The input is not mutated.
func Rank(players []PlayerRanking) []PlayerRanking {
	sorted := make([]PlayerRanking, len(players))
	copy(sorted, players)

	slices.SortStableFunc(sorted, func(a, b PlayerRanking) int {
		if c := cmp.Compare(a.TotalScore, b.TotalScore); c != 0 {
			return c
		}
		return cmp.Compare(b.Wins, a.Wins)
	})
	return sorted
}

// Placement is a ranked row with its 1-based position.
type Placement struct {
	Position int
	PlayerRanking
}

// Placements ranks players and numbers them in order.
func Placements(players []PlayerRanking) []Placement {
	ranked := Rank(players)
	out := make([]Placement, len(ranked))
	for i, p := range ranked {
		out[i] = Placement{Position: i + 1, PlayerRanking: p}
	}
	return out
}

// CrownMarker is the standings marker for a position: three crowns for the
// leader down to one for third, plain numbers after that.
func CrownMarker(position int) string {
	switch position {
	case 1:
		return "♛♛♛"
	case 2:
		return "♛♛"
	case 3:
		return "♛"
	default:
		return strconv.Itoa(position)
	}
}
