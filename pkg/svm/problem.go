// Package svm implements warm-started dual coordinate descent for the
// hinge-loss subproblems solved once per node and epoch.
package svm

import (
	"fmt"
	"math"
)

// Problem is one node's training set. Features are borrowed views into the
// caller's embedding storage; the solvers read them during Solve only.
type Problem struct {
	Features  [][]float64
	SqrNorms  []float64
	Labels    []int
	Penalties []float64
	Margins   []float64
}

// Append adds one example.
func (p *Problem) Append(feature []float64, sqrNorm float64, label int, penalty, margin float64) {
	p.Features = append(p.Features, feature)
	p.SqrNorms = append(p.SqrNorms, sqrNorm)
	p.Labels = append(p.Labels, label)
	p.Penalties = append(p.Penalties, penalty)
	p.Margins = append(p.Margins, margin)
}

// Len returns the number of examples.
func (p *Problem) Len() int {
	return len(p.Labels)
}

// Reset empties the problem and keeps the backing arrays.
func (p *Problem) Reset() {
	for i := range p.Features {
		p.Features[i] = nil
	}
	p.Features = p.Features[:0]
	p.SqrNorms = p.SqrNorms[:0]
	p.Labels = p.Labels[:0]
	p.Penalties = p.Penalties[:0]
	p.Margins = p.Margins[:0]
}

// Validate checks that every array has the same length and that every
// feature has dimension dim.
func (p *Problem) Validate(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimension, dim)
	}
	n := len(p.Labels)
	if len(p.Features) != n || len(p.SqrNorms) != n {
		return fmt.Errorf("%w: %d labels, %d features, %d norms",
			ErrLengthMismatch, n, len(p.Features), len(p.SqrNorms))
	}
	if err := validateExamples(p.Labels, p.Penalties, p.Margins); err != nil {
		return err
	}
	for i, f := range p.Features {
		if len(f) != dim {
			return fmt.Errorf("%w: feature %d has dimension %d, want %d", ErrLengthMismatch, i, len(f), dim)
		}
	}
	return nil
}

func validateExamples(labels []int, penalties, margins []float64) error {
	n := len(labels)
	if len(penalties) != n || len(margins) != n {
		return fmt.Errorf("%w: %d labels, %d penalties, %d margins",
			ErrLengthMismatch, n, len(penalties), len(margins))
	}
	for i := 0; i < n; i++ {
		if labels[i] != 1 && labels[i] != -1 {
			return fmt.Errorf("%w: example %d has label %d", ErrInvalidLabel, i, labels[i])
		}
		if c := penalties[i]; c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: example %d has penalty %v", ErrInvalidPenalty, i, c)
		}
		if m := margins[i]; math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: example %d has margin %v", ErrInvalidMargin, i, m)
		}
	}
	return nil
}

// project clamps the warm-start coefficients into the feasible box and
// returns alpha (the unsigned dual variables) for each example.
func project(loss Loss, labels []int, penalties, coeff, alpha, upper, diag []float64) {
	for i := range coeff {
		upper[i], diag[i] = loss.bounds(penalties[i])
		a := coeff[i] * float64(labels[i])
		a = math.Min(math.Max(a, 0), upper[i])
		alpha[i] = a
		coeff[i] = a * float64(labels[i])
	}
}
