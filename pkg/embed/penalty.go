package embed

import (
	"fmt"
	"math"
)

// Penalties turns the misclassification-cost hyperparameters into
// per-example penalty coefficients.
type Penalties struct {
	// NegPenalty scales the cost of a negative example relative to a positive one.
	NegPenalty float64 `yaml:"neg_penalty"`
	// Regularizer divides every penalty; larger means a smoother embedding.
	Regularizer float64 `yaml:"regularizer"`
	// DegreeNormPower rescales penalties by max(degree, 1)^power.
	DegreeNormPower float64 `yaml:"degree_norm_power"`
}

// Validate rejects a non-positive regularizer and a negative NegPenalty.
func (p Penalties) Validate() error {
	if !(p.Regularizer > 0) || math.IsInf(p.Regularizer, 0) {
		return fmt.Errorf("%w: regularizer must be > 0, got %v", ErrInvalidConfig, p.Regularizer)
	}
	if !(p.NegPenalty >= 0) || math.IsInf(p.NegPenalty, 0) {
		return fmt.Errorf("%w: neg_penalty must be >= 0, got %v", ErrInvalidConfig, p.NegPenalty)
	}
	if math.IsNaN(p.DegreeNormPower) || math.IsInf(p.DegreeNormPower, 0) {
		return fmt.Errorf("%w: degree_norm_power must be finite", ErrInvalidConfig)
	}
	return nil
}

// DegreeNorm returns max(deg, 1)^DegreeNormPower.
func (p Penalties) DegreeNorm(deg int) float64 {
	if p.DegreeNormPower == 0 {
		return 1
	}
	return math.Pow(float64(max(deg, 1)), p.DegreeNormPower)
}

// Positive returns the penalty of a positive example at a node of degree deg.
func (p Penalties) Positive(deg int) float64 {
	return p.DegreeNorm(deg) / p.Regularizer
}

// Negative returns the penalty of a negative example at a node of degree deg.
func (p Penalties) Negative(deg int) float64 {
	return p.NegPenalty * p.DegreeNorm(deg) / p.Regularizer
}
