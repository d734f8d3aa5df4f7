package svm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/svmembed/pkg/linalg"
)

// DefaultKernelEpochs is the number of passes one kernel Solve call makes.
const DefaultKernelEpochs = 10

// KernelSolver runs the same dual coordinate descent as LinearSolver over
// a Gram matrix. The weight vector is never materialised; the gradient of
// every example is maintained instead.
type KernelSolver struct {
	Epochs int
	Loss   Loss

	alpha, upper, diag, grad []float64
	perm                     []int
}

// NewKernelSolver returns a hinge-loss kernel solver with the default epoch budget.
func NewKernelSolver() *KernelSolver {
	return &KernelSolver{Epochs: DefaultKernelEpochs, Loss: Hinge}
}

// Solve improves the signed coefficients in place. gram is the local Gram
// matrix of the examples, gram.At(i, j) = <x_i, x_j>.
func (s *KernelSolver) Solve(gram mat.Symmetric, labels []int, penalties, margins, coeff []float64, r linalg.Rand) error {
	if err := validateExamples(labels, penalties, margins); err != nil {
		return err
	}
	n := len(labels)
	if len(coeff) != n {
		return fmt.Errorf("%w: %d coefficients for %d examples", ErrLengthMismatch, len(coeff), n)
	}
	if n == 0 {
		return nil
	}
	if gram == nil {
		return fmt.Errorf("%w: nil gram matrix for %d examples", ErrLengthMismatch, n)
	}
	if d := gram.SymmetricDim(); d != n {
		return fmt.Errorf("%w: gram matrix is %dx%d for %d examples", ErrLengthMismatch, d, d, n)
	}

	s.grow(n)
	alpha, upper, diag, grad := s.alpha[:n], s.upper[:n], s.diag[:n], s.grad[:n]
	project(s.Loss, labels, penalties, coeff, alpha, upper, diag)
	for j := 0; j < n; j++ {
		grad[j] = float64(labels[j])*Decision(gram, coeff, j) - margins[j]
	}

	perm := s.perm[:n]
	linalg.Identity(perm)
	epochs := s.Epochs
	if epochs <= 0 {
		epochs = DefaultKernelEpochs
	}
	for epoch := 0; epoch < epochs; epoch++ {
		linalg.Shuffle(perm, r)
		for _, i := range perm {
			y := float64(labels[i])
			g := grad[i] + alpha[i]*diag[i]
			next, ok := step(alpha[i], g, gram.At(i, i)+diag[i], upper[i])
			if !ok {
				continue
			}
			delta := next*y - coeff[i]
			alpha[i] = next
			coeff[i] = next * y
			for j := 0; j < n; j++ {
				grad[j] += float64(labels[j]) * gram.At(i, j) * delta
			}
		}
	}
	return nil
}

// Decision returns sum_i coeff[i] * K[i][j], the implicit w.x_j.
func Decision(gram mat.Symmetric, coeff []float64, j int) float64 {
	var v float64
	for i, c := range coeff {
		if c != 0 {
			v += c * gram.At(i, j)
		}
	}
	return v
}

func (s *KernelSolver) grow(n int) {
	if cap(s.alpha) < n {
		s.alpha = make([]float64, n)
		s.upper = make([]float64, n)
		s.diag = make([]float64, n)
		s.grad = make([]float64, n)
		s.perm = make([]int, n)
	}
}
