package chart

import "math/rand/v2"

// Rand is the session-scoped randomness source. Every generator in this
// package draws from an explicitly passed *Rand; there is no package-level
// generator, so two sessions in one process never share state.
//
// A Rand is not safe for concurrent use.
type Rand struct {
	r *rand.Rand
}

// NewRand returns a source seeded deterministically from seed.
func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// Float64 returns a uniform float in [0, 1).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

// Float returns a uniform float in [lo, hi).
func (r *Rand) Float(lo, hi float64) float64 {
	return lo + r.r.Float64()*(hi-lo)
}

// IntRange returns a uniform integer in [lo, hi], both ends inclusive.
func (r *Rand) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.IntN(hi-lo+1)
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func (r *Rand) IntN(n int) int {
	return r.r.IntN(n)
}

// Coin is a fair coin flip.
func (r *Rand) Coin() bool {
	return r.IntRange(0, 1) == 1
}
