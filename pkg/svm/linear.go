package svm

import (
	"fmt"

	"github.com/cnclabs/svmembed/pkg/linalg"
)

// DefaultLinearEpochs is the number of passes one Solve call makes.
const DefaultLinearEpochs = 2

// LinearSolver runs dual coordinate descent against explicit feature
// vectors, keeping the primal weight vector in sync with the coefficients.
type LinearSolver struct {
	Epochs int
	Loss   Loss

	alpha, upper, diag, curv []float64
	perm                     []int
}

// NewLinearSolver returns a hinge-loss solver with the default epoch budget.
func NewLinearSolver() *LinearSolver {
	return &LinearSolver{Epochs: DefaultLinearEpochs, Loss: Hinge}
}

// Solve improves coeff in place (warm start) and writes the matching
// weight vector into w. coeff holds signed values, coeff[i] = alpha_i*label_i,
// and must have one entry per example; w must have the feature dimension.
func (s *LinearSolver) Solve(p *Problem, coeff, w []float64, r linalg.Rand) error {
	if err := p.Validate(len(w)); err != nil {
		return err
	}
	n := p.Len()
	if len(coeff) != n {
		return fmt.Errorf("%w: %d coefficients for %d examples", ErrLengthMismatch, len(coeff), n)
	}
	linalg.Zero(w)
	if n == 0 {
		return nil
	}

	s.grow(n)
	alpha, upper, diag, q := s.alpha[:n], s.upper[:n], s.diag[:n], s.curv[:n]
	project(s.Loss, p.Labels, p.Penalties, coeff, alpha, upper, diag)
	for i, f := range p.Features {
		if coeff[i] != 0 {
			linalg.AddScaled(w, coeff[i], f)
		}
		q[i] = p.SqrNorms[i] + diag[i]
	}

	perm := s.perm[:n]
	linalg.Identity(perm)
	epochs := s.Epochs
	if epochs <= 0 {
		epochs = DefaultLinearEpochs
	}
	for epoch := 0; epoch < epochs; epoch++ {
		linalg.Shuffle(perm, r)
		for _, i := range perm {
			y := float64(p.Labels[i])
			g := y*linalg.Dot(w, p.Features[i]) - p.Margins[i] + alpha[i]*diag[i]
			next, ok := step(alpha[i], g, q[i], upper[i])
			if !ok {
				continue
			}
			old := coeff[i]
			alpha[i] = next
			coeff[i] = next * y
			linalg.AddScaled(w, coeff[i]-old, p.Features[i])
		}
	}
	return nil
}

func (s *LinearSolver) grow(n int) {
	if cap(s.alpha) < n {
		s.alpha = make([]float64, n)
		s.upper = make([]float64, n)
		s.diag = make([]float64, n)
		s.curv = make([]float64, n)
		s.perm = make([]int, n)
	}
}
