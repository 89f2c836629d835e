// Package rng provides a small deterministic pseudo-random generator keyed by strings.
//
// The generator is mulberry32 seeded from a 32-bit FNV-1a hash of the seed string.
// All arithmetic is done on uint32 so the sequence is identical on every platform.
// It is not suitable for anything security related.
package rng

import (
	"errors"
	"hash/fnv"
)

// ErrEmptyPool is returned when picking from an empty slice.
var ErrEmptyPool = errors.New("rng: cannot pick from an empty pool")

// Source is a reproducible stream of floats in [0,1).
// A Source is not safe for concurrent use.
type Source struct {
	seed  string
	state uint32
}

// HashSeed derives the 32-bit starting state for a seed string.
func HashSeed(seed string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return h.Sum32()
}

// New returns a Source whose sequence depends only on seed.
func New(seed string) *Source {
	return &Source{seed: seed, state: HashSeed(seed)}
}

// Seed returns the string the source was created from.
func (s *Source) Seed() string {
	return s.seed
}

// Derive returns an independent Source keyed by the parent seed plus suffix.
// The parent's position in its own stream does not affect the child.
func (s *Source) Derive(suffix string) *Source {
	return New(s.seed + suffix)
}

// Next returns the next value in [0,1).
func (s *Source) Next() float64 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0
}

// Intn returns a value in [0,n). It returns 0 when n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
