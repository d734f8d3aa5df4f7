// Package linalg holds the small vector primitives shared by the solvers
// and the embedding variants.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Dot returns the inner product of x and y.
// x and y must have the same length.
func Dot(x, y []float64) float64 {
	return floats.Dot(x, y)
}

// SqrNorm returns the squared Euclidean norm of x.
func SqrNorm(x []float64) float64 {
	return floats.Dot(x, x)
}

// AddScaled performs dst += alpha * s.
func AddScaled(dst []float64, alpha float64, s []float64) {
	floats.AddScaled(dst, alpha, s)
}

// Zero sets every element of dst to 0.
func Zero(dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
}

// Finite reports whether v contains no NaN or Inf entries.
func Finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
