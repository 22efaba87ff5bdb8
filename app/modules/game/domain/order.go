package gamedomain

import (
	"fmt"
	"math/rand/v2"
)

// OrderStrategy selects how the starting turn order is drawn.
type OrderStrategy string

const (
	// OrderRotation keeps the seating order and picks a random first player.
	OrderRotation OrderStrategy = "rotation"
	// OrderShuffle draws a fully random order (Fisher-Yates).
	OrderShuffle OrderStrategy = "shuffle"
)

// ParseOrderStrategy validates a configured strategy name.
func ParseOrderStrategy(s string) (OrderStrategy, error) {
	switch OrderStrategy(s) {
	case OrderRotation, OrderShuffle:
		return OrderStrategy(s), nil
	case "":
		return OrderRotation, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOrderStrategy, s)
	}
}

// RandomRotation returns ids rotated to start at a uniformly random index.
// Cyclic adjacency is preserved and the input is never mutated.
func RandomRotation[T any](ids []T, rng *rand.Rand) []T {
	out := make([]T, 0, len(ids))
	if len(ids) <= 1 {
		return append(out, ids...)
	}
	start := rng.IntN(len(ids))
	out = append(out, ids[start:]...)
	return append(out, ids[:start]...)
}

// Shuffle returns a Fisher-Yates permutation of ids without mutating the input.
func Shuffle[T any](ids []T, rng *rand.Rand) []T {
	out := append(make([]T, 0, len(ids)), ids...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// TurnPlayer returns the entry whose turn it is in the given 1-indexed round.
func TurnPlayer[T any](order []T, roundNumber int) (T, bool) {
	var zero T
	n := len(order)
	if n == 0 {
		return zero, false
	}
	idx := ((roundNumber-1)%n + n) % n
	return order[idx], true
}

// Orderer binds a strategy to a random source.
type Orderer struct {
	Strategy OrderStrategy
	rng      *rand.Rand
}

// NewOrderer returns an Orderer. A nil rng gets a randomly seeded PCG source.
func NewOrderer(strategy OrderStrategy, rng *rand.Rand) Orderer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if strategy == "" {
		strategy = OrderRotation
	}
	return Orderer{Strategy: strategy, rng: rng}
}

// Order draws a starting order for ids.
func (o Orderer) Order(ids []string) []string {
	if o.rng == nil {
		o = NewOrderer(o.Strategy, nil)
	}
	if o.Strategy == OrderShuffle {
		return Shuffle(ids, o.rng)
	}
	return RandomRotation(ids, o.rng)
}
