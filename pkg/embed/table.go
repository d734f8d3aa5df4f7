package embed

import (
	"github.com/cnclabs/svmembed/pkg/linalg"
)

// Table stores size fixed-length vectors in a single arena. Rows are views
// into the arena, so an update to one node is immediately visible to every
// later subproblem that reads it.
type Table struct {
	size, dim int
	data      []float64
	sqrNorm   []float64
}

// NewTable allocates a zeroed size x dim table.
func NewTable(size, dim int) *Table {
	return &Table{
		size:    size,
		dim:     dim,
		data:    make([]float64, size*dim),
		sqrNorm: make([]float64, size),
	}
}

// Size returns the number of rows.
func (t *Table) Size() int { return t.size }

// Dim returns the row length.
func (t *Table) Dim() int { return t.dim }

// Row returns a view of row i.
func (t *Table) Row(i int) []float64 {
	return t.data[i*t.dim : (i+1)*t.dim : (i+1)*t.dim]
}

// SqrNorm returns the cached squared norm of row i.
func (t *Table) SqrNorm(i int) float64 {
	return t.sqrNorm[i]
}

// RefreshNorm recomputes the cached squared norm of row i.
func (t *Table) RefreshNorm(i int) {
	t.sqrNorm[i] = linalg.SqrNorm(t.Row(i))
}

// Dot returns the inner product of rows i and j.
func (t *Table) Dot(i, j int) float64 {
	return linalg.Dot(t.Row(i), t.Row(j))
}

// RandomInit fills the table with uniform values in [lo, hi) and refreshes
// every cached norm.
func (t *Table) RandomInit(r linalg.Rand, lo, hi float64) {
	for k := range t.data {
		t.data[k] = linalg.Uniform(r, lo, hi)
	}
	for i := 0; i < t.size; i++ {
		t.RefreshNorm(i)
	}
}

// Coefficients keeps each node's dual coefficient vector between solver
// calls so every call warm-starts from the previous one.
type Coefficients struct {
	coeff [][]float64
}

// NewCoefficients creates empty coefficient vectors for size nodes.
func NewCoefficients(size int) *Coefficients {
	return &Coefficients{coeff: make([][]float64, size)}
}

// Ensure returns x's coefficients sized to n. If the example count changed
// the vector restarts from zero.
func (c *Coefficients) Ensure(x, n int) []float64 {
	if len(c.coeff[x]) != n {
		c.coeff[x] = make([]float64, n)
	}
	return c.coeff[x]
}

// Get returns x's current coefficients.
func (c *Coefficients) Get(x int) []float64 {
	return c.coeff[x]
}
