package linalg

import "math"

const (
	// SigmoidTableSize is the number of intervals the lookup table splits
	// [-MaxSigmoid, MaxSigmoid] into.
	SigmoidTableSize = 1000
	// MaxSigmoid is the input magnitude beyond which FastSigmoid saturates.
	MaxSigmoid = 8.0
)

// SigmoidTable caches sigmoid values on [-MaxSigmoid, MaxSigmoid].
type SigmoidTable struct {
	cached []float64
}

// NewSigmoidTable builds the lookup table.
func NewSigmoidTable() *SigmoidTable {
	t := &SigmoidTable{cached: make([]float64, SigmoidTableSize+1)}
	for i := 0; i <= SigmoidTableSize; i++ {
		x := float64(i)*2.0*MaxSigmoid/float64(SigmoidTableSize) - MaxSigmoid
		t.cached[i] = 1.0 / (1.0 + math.Exp(-x))
	}
	return t
}

// FastSigmoid returns sigmoid(x) from the table, saturating outside the range.
func (t *SigmoidTable) FastSigmoid(x float64) float64 {
	if x < -MaxSigmoid {
		return 0.0
	} else if x > MaxSigmoid {
		return 1.0
	}
	idx := int((x + MaxSigmoid) * float64(SigmoidTableSize) / MaxSigmoid / 2.0)
	if idx >= len(t.cached) {
		idx = len(t.cached) - 1
	}
	return t.cached[idx]
}
