// Package embed holds what every embedding variant shares: the evaluation
// interface, the embedding arena, per-node dual coefficients, and the
// randomised coordinate-ascent loop that drives the per-node updates.
package embed

import (
	"errors"
	"fmt"

	"github.com/cnclabs/svmembed/pkg/linalg"
)

// ErrInvalidConfig is returned for hyperparameters no variant can train with.
var ErrInvalidConfig = errors.New("embed: invalid configuration")

// Model is a trained embedding as seen by downstream evaluation.
type Model interface {
	// Evaluate scores the pair (x, y); larger means more likely linked.
	Evaluate(x, y int) float64
	// Embedding returns x's feature vector. The slice must not be modified.
	Embedding(x int) []float64
}

// CheckRand rejects a missing random source before any training starts.
func CheckRand(r linalg.Rand) error {
	if r == nil {
		return fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}
	return nil
}
