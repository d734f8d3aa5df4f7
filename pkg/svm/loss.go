package svm

import (
	"fmt"
	"math"
)

// Loss selects the hinge variant the dual problem is built for.
type Loss int

const (
	// Hinge is the L1-loss SVM: box [0, penalty], no diagonal term.
	Hinge Loss = iota
	// SquaredHinge is the L2-loss SVM: unbounded box, 1/(2*penalty) on
	// the diagonal of the dual Hessian.
	SquaredHinge
)

// MinCurvature is the smallest Q treated as a genuine quadratic term.
const MinCurvature = 1e-12

func (l Loss) String() string {
	switch l {
	case Hinge:
		return "hinge"
	case SquaredHinge:
		return "squared_hinge"
	default:
		return fmt.Sprintf("Loss(%d)", int(l))
	}
}

// ParseLoss accepts the names produced by String, plus "l1" and "l2".
func ParseLoss(s string) (Loss, error) {
	switch s {
	case "hinge", "l1", "":
		return Hinge, nil
	case "squared_hinge", "l2":
		return SquaredHinge, nil
	}
	return Hinge, fmt.Errorf("svm: unknown loss %q", s)
}

// bounds returns the upper bound U on alpha and the diagonal term D for
// one example. A zero penalty pins alpha to 0 in both modes.
func (l Loss) bounds(penalty float64) (upper, diag float64) {
	if penalty == 0 {
		return 0, 0
	}
	if l == SquaredHinge {
		return math.Inf(1), 0.5 / penalty
	}
	return penalty, 0
}

// step runs one coordinate update on alpha and returns the new value.
// ok is false when the projected gradient is exactly zero.
func step(alpha, grad, q, upper float64) (next float64, ok bool) {
	pg := grad
	if alpha == 0 {
		pg = math.Min(pg, 0)
	}
	if alpha == upper {
		pg = math.Max(pg, 0)
	}
	if pg == 0 {
		return alpha, false
	}
	if q < MinCurvature {
		// Linear in alpha: move to the boundary the gradient points at.
		if grad < 0 {
			next = upper
		} else {
			next = 0
		}
		if math.IsInf(next, 1) {
			return alpha, false
		}
		return next, next != alpha
	}
	next = math.Min(math.Max(alpha-grad/q, 0), upper)
	return next, next != alpha
}

// MarshalText implements encoding.TextMarshaler.
func (l Loss) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Loss) UnmarshalText(text []byte) error {
	v, err := ParseLoss(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Set implements flag.Value.
func (l *Loss) Set(s string) error {
	return l.UnmarshalText([]byte(s))
}
