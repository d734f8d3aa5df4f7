package embed

import (
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

// LinearUpdate solves one node's subproblem against a feature table and
// writes the resulting weight vector back as that node's new vector.
type LinearUpdate struct {
	Solver *svm.LinearSolver
	Coeff  *Coefficients
	Rand   linalg.Rand

	problem svm.Problem
	scratch []float64
}

// NewLinearUpdate creates an updater for size nodes with the given solver.
func NewLinearUpdate(size int, solver *svm.LinearSolver, r linalg.Rand) *LinearUpdate {
	return &LinearUpdate{
		Solver: solver,
		Coeff:  NewCoefficients(size),
		Rand:   r,
	}
}

// Begin empties and returns the scratch problem for the next node.
func (u *LinearUpdate) Begin() *svm.Problem {
	u.problem.Reset()
	return &u.problem
}

// AppendRows adds one example per node in nodes, reading features from t.
// skip is excluded so a node never trains against its own vector.
func (u *LinearUpdate) AppendRows(t *Table, nodes []int, skip, label int, penalty, margin float64) {
	for _, i := range nodes {
		if i == skip {
			continue
		}
		u.problem.Append(t.Row(i), t.SqrNorm(i), label, penalty, margin)
	}
}

// Finish runs the solver for node x and stores the weight vector in target.
// A non-finite result leaves target untouched and restarts x's coefficients.
func (u *LinearUpdate) Finish(x int, target []float64) error {
	return u.FinishRounds(x, target, 1)
}

// FinishRounds is Finish with rounds consecutive solver calls.
func (u *LinearUpdate) FinishRounds(x int, target []float64, rounds int) error {
	coeff := u.Coeff.Ensure(x, u.problem.Len())
	if cap(u.scratch) < len(target) {
		u.scratch = make([]float64, len(target))
	}
	w := u.scratch[:len(target)]
	for i := 0; i < rounds; i++ {
		if err := u.Solver.Solve(&u.problem, coeff, w, u.Rand); err != nil {
			return err
		}
	}
	if !linalg.Finite(w) || !linalg.Finite(coeff) {
		linalg.Zero(coeff)
		return nil
	}
	copy(target, w)
	return nil
}
