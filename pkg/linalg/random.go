package linalg

import "math/rand"

// Rand is the random source threaded through initialisation, permutation
// and noise injection. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Int63() int64
}

// NewRand returns a seeded source.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Fork seeds a new source from r. The fork's stream no longer depends on
// how many draws are later taken from r.
func Fork(r Rand) *rand.Rand {
	return NewRand(r.Int63())
}

// Uniform draws from [lo, hi).
func Uniform(r Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Identity fills order with 0..len(order)-1.
func Identity(order []int) {
	for i := range order {
		order[i] = i
	}
}

// Shuffle permutes order in place with Fisher-Yates.
func Shuffle(order []int, r Rand) {
	for i := len(order) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
}
