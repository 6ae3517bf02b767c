// Package noise provides the deterministic pseudo-random generator used
// for sensor measurement error: a multiplicative congruential generator
// modulo 2^32, so that a run with a fixed seed reproduces the exact same
// measurement noise end to end. One Generator instance is shared by
// reference across every consumer in a run; each call advances it, so
// call order is part of the observable contract.
package noise

import (
	"fmt"
	"math/rand"
)

const (
	multiplier = 9228907
	modulus    = 1 << 32
)

// InvalidSeedError reports a reseed attempt with a value the generator
// cannot start from.
type InvalidSeedError struct {
	Seed int64
}

func (e *InvalidSeedError) Error() string {
	return fmt.Sprintf("seed %d is invalid: must be positive and nonzero modulo 2^32", e.Seed)
}

// Generator is a deterministic noise source. It is not safe for
// concurrent use; the simulation is single-threaded by design.
type Generator struct {
	seed int64
}

// New creates a generator with the given positive seed.
func New(seed int64) (*Generator, error) {
	g := &Generator{}
	if err := g.Reseed(seed); err != nil {
		return nil, err
	}
	return g, nil
}

// NewRandom creates a generator with an arbitrary positive seed, for
// runs where reproducibility is not required.
func NewRandom() *Generator {
	return &Generator{seed: rand.Int63n(1_000_000) + 1}
}

// Reseed resets the generator state. The seed must be positive; it is
// reduced modulo 2^32, and a seed that reduces to zero is rejected so
// the state can never collapse to the fixed point at 0. Keeping the
// state below 2^32 also keeps Next's product inside int64.
func (g *Generator) Reseed(seed int64) error {
	reduced := seed % modulus
	if seed <= 0 || reduced == 0 {
		return &InvalidSeedError{Seed: seed}
	}
	g.seed = reduced
	return nil
}

// Seed returns the current state without advancing it.
func (g *Generator) Seed() int64 { return g.seed }

// Next advances the generator and returns the new state in [0, 2^32).
func (g *Generator) Next() int64 {
	g.seed = (g.seed * multiplier) % modulus
	return g.seed
}

// UniformSigned returns a draw in [-1, 1].
func (g *Generator) UniformSigned() float64 {
	return 2*float64(g.Next())/modulus - 1
}

// UniformUnit returns a draw in [0, 1].
func (g *Generator) UniformUnit() float64 {
	return float64(g.Next()) / modulus
}

// Gaussian returns approximately normal noise with the given standard
// deviation, built as a sum of twelve signed uniform draws.
func (g *Generator) Gaussian(stdv float64) float64 {
	sum := 0.0
	for i := 0; i < 12; i++ {
		sum += g.UniformSigned()
	}
	return (sum - 6) * stdv
}
