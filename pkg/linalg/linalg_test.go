package linalg

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotAndNorm(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{-1, 0, 2}
	assert.InDelta(t, 5.0, Dot(x, y), 1e-12)
	assert.InDelta(t, 14.0, SqrNorm(x), 1e-12)
	assert.Equal(t, 0.0, SqrNorm(nil))

	AddScaled(y, 2, x)
	assert.Equal(t, []float64{1, 4, 8}, y)

	Zero(y)
	assert.Equal(t, []float64{0, 0, 0}, y)
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite([]float64{0, -1, 1e300}))
	assert.False(t, Finite([]float64{0, math.NaN()}))
	assert.False(t, Finite([]float64{math.Inf(-1)}))
}

func TestFastSigmoid(t *testing.T) {
	s := NewSigmoidTable()
	assert.Equal(t, 0.0, s.FastSigmoid(-9))
	assert.Equal(t, 1.0, s.FastSigmoid(9))
	assert.InDelta(t, 0.5, s.FastSigmoid(0), 1e-2)
	assert.InDelta(t, 1/(1+math.Exp(-2)), s.FastSigmoid(2), 1e-2)
}

func TestShuffleIsPermutation(t *testing.T) {
	r := NewRand(7)
	order := make([]int, 50)
	Identity(order)
	Shuffle(order, r)

	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	for i, v := range sorted {
		require.Equal(t, i, v)
	}

	again := make([]int, 50)
	Identity(again)
	Shuffle(again, NewRand(7))
	assert.Equal(t, order, again, "same seed must give the same permutation")
}

func TestUniformRange(t *testing.T) {
	r := NewRand(1)
	for i := 0; i < 1000; i++ {
		v := Uniform(r, -0.5, 0.25)
		require.GreaterOrEqual(t, v, -0.5)
		require.Less(t, v, 0.25)
	}
}

func TestForkIgnoresLaterParentDraws(t *testing.T) {
	a := NewRand(5)
	fa := Fork(a)

	b := NewRand(5)
	fb := Fork(b)
	b.Float64()
	b.Intn(10)

	for i := 0; i < 20; i++ {
		require.Equal(t, fa.Intn(1000), fb.Intn(1000))
	}
}
