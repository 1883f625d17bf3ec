// Package tiebreak spreads candidates that received the same oracle score.
//
// Every candidate in a batch gets a small random adjustment. The values are
// drawn once per batch, before any scoring, and are pairwise distinct so two
// equal base scores never end in an exact tie.
package tiebreak

import (
	"fmt"
	"math/rand/v2"
)

const DefaultSpread = 5.0

// Key identifies a task within a batch. Duplicate filenames are allowed, so the
// submission index is part of the key.
func Key(index int, name string) string {
	return fmt.Sprintf("%d:%s", index, name)
}

// Adjustments are the values drawn for one batch.
type Adjustments struct {
	Seed   uint64
	Spread float64
	values map[string]float64
}

// For returns the adjustment for a key, zero for unknown keys.
func (a Adjustments) For(key string) float64 {
	return a.values[key]
}

func (a Adjustments) Len() int {
	return len(a.values)
}

// Breaker draws adjustments uniformly from [-spread, +spread).
type Breaker struct {
	spread float64
	seed   uint64
}

// New returns a Breaker. A zero seed draws a fresh seed for every batch; any
// other value makes the draws reproducible.
func New(spread float64, seed uint64) *Breaker {
	if spread <= 0 {
		spread = DefaultSpread
	}
	return &Breaker{spread: spread, seed: seed}
}

func (b *Breaker) Spread() float64 {
	return b.spread
}

// Draw assigns one adjustment per key. Repeated keys share a value.
func (b *Breaker) Draw(keys []string) Adjustments {
	seed := b.seed
	for seed == 0 {
		seed = rand.Uint64()
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	values := make(map[string]float64, len(keys))
	used := make(map[float64]struct{}, len(keys))

	for _, key := range keys {
		if _, ok := values[key]; ok {
			continue
		}
		for {
			v := -b.spread + rng.Float64()*2*b.spread
			if v >= b.spread {
				continue
			}
			if _, dup := used[v]; dup {
				continue
			}
			used[v] = struct{}{}
			values[key] = v
			break
		}
	}

	return Adjustments{Seed: seed, Spread: b.spread, values: values}
}
