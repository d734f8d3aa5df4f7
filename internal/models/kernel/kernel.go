// Package kernel trains an implicit embedding held as a symmetric kernel
// matrix. Each node update solves the dual problem over the local Gram
// matrix of its neighbours and rewrites the node's row and column.
package kernel

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

// DefaultEpochs is the number of coordinate-ascent passes.
const DefaultEpochs = 10

// Config holds the kernel embedding hyperparameters.
type Config struct {
	Epochs          int      `yaml:"epochs"`
	SolverEpochs    int      `yaml:"solver_epochs"`
	Loss            svm.Loss `yaml:"loss"`
	embed.Penalties `yaml:",inline"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Epochs:       DefaultEpochs,
		SolverEpochs: svm.DefaultKernelEpochs,
		Loss:         svm.Hinge,
		Penalties:    embed.Penalties{NegPenalty: 0.03, Regularizer: 30},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0, got %d", embed.ErrInvalidConfig, c.Epochs)
	}
	if c.SolverEpochs <= 0 {
		return fmt.Errorf("%w: solver_epochs must be > 0, got %d", embed.ErrInvalidConfig, c.SolverEpochs)
	}
	return c.Penalties.Validate()
}

// Model is a trained kernel embedding.
type Model struct {
	kernel *mat.SymDense
}

type trainer struct {
	cfg    Config
	kernel *mat.SymDense
	solver *svm.KernelSolver
	coeff  *embed.Coefficients
	r      linalg.Rand

	local     mat.SymDense
	instances []int
	labels    []int
	penalties []float64
	margins   []float64
	row       []float64
}

// Train starts from the adjacency kernel (1 per edge, the degree on the
// diagonal) and re-estimates one node's row and column per visit.
func Train(ctx context.Context, pos, neg *graph.Graph, cfg Config, r linalg.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := embed.CheckRand(r); err != nil {
		return nil, err
	}
	if pos == nil || neg == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrSizeMismatch)
	}
	if err := graph.CheckCompatible(pos, neg); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := pos.Size()

	logger.Info("model setting", "model", "kernel", "vertices", size)
	logger.Info("learning parameters", "epochs", cfg.Epochs, "solver_epochs", cfg.SolverEpochs,
		"loss", cfg.Loss, "neg_penalty", cfg.NegPenalty, "regularizer", cfg.Regularizer,
		"degree_norm_power", cfg.DegreeNormPower)

	t := &trainer{
		cfg:    cfg,
		kernel: AdjacencyKernel(pos),
		solver: &svm.KernelSolver{Epochs: cfg.SolverEpochs, Loss: cfg.Loss},
		coeff:  embed.NewCoefficients(size),
		r:      r,
		row:    make([]float64, size),
	}
	if size == 0 {
		return &Model{kernel: t.kernel}, nil
	}

	loop := &embed.Loop{Epochs: cfg.Epochs, Rand: linalg.Fork(r), Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(_, x int) error {
		if err := t.visit(pos, neg, x); err != nil {
			return fmt.Errorf("node %d: %w", x, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Model{kernel: t.kernel}, nil
}

// AdjacencyKernel returns the initial kernel of g: K[i][j] = 1 for every
// edge i-j and K[i][i] = deg(i). It is nil for an empty graph.
func AdjacencyKernel(g *graph.Graph) *mat.SymDense {
	size := g.Size()
	if size == 0 {
		return nil
	}
	k := mat.NewSymDense(size, nil)
	for i := 0; i < size; i++ {
		for _, j := range g.Neighbors(i) {
			if j != i {
				k.SetSym(i, j, 1)
			}
		}
		k.SetSym(i, i, float64(g.Degree(i)))
	}
	return k
}

func (t *trainer) visit(pos, neg *graph.Graph, x int) error {
	deg := pos.Degree(x)
	t.instances, t.labels, t.penalties, t.margins = t.instances[:0], t.labels[:0], t.penalties[:0], t.margins[:0]
	t.appendInstances(pos.Neighbors(x), x, 1, t.cfg.Positive(deg), 1)
	t.appendInstances(neg.Neighbors(x), x, -1, t.cfg.Negative(deg), 0)

	n := len(t.instances)
	t.local.Reset()
	if n > 0 {
		t.local.ReuseAsSym(n)
		for i, a := range t.instances {
			for j := i; j < n; j++ {
				t.local.SetSym(i, j, t.kernel.At(a, t.instances[j]))
			}
		}
	}
	coeff := t.coeff.Ensure(x, n)
	if err := t.solver.Solve(&t.local, t.labels, t.penalties, t.margins, coeff, t.r); err != nil {
		return err
	}
	if !linalg.Finite(coeff) {
		linalg.Zero(coeff)
		return nil
	}
	t.writeBack(x, coeff)
	return nil
}

func (t *trainer) appendInstances(nodes []int, x, label int, penalty, margin float64) {
	for _, i := range nodes {
		if i == x {
			continue
		}
		t.instances = append(t.instances, i)
		t.labels = append(t.labels, label)
		t.penalties = append(t.penalties, penalty)
		t.margins = append(t.margins, margin)
	}
}

// writeBack sets K[x][i] = sum_j coeff[j] K[inst_j][i] for i != x, then
// K[x][x] = sum_j coeff[j] K[x][inst_j] from the new row. The row is
// computed in full before any entry is written.
func (t *trainer) writeBack(x int, coeff []float64) {
	size := len(t.row)
	for i := 0; i < size; i++ {
		if i == x {
			continue
		}
		var v float64
		for j, a := range t.instances {
			v += coeff[j] * t.kernel.At(a, i)
		}
		t.row[i] = v
	}
	var diag float64
	for j, a := range t.instances {
		diag += coeff[j] * t.row[a]
	}
	for i := 0; i < size; i++ {
		if i != x {
			t.kernel.SetSym(x, i, t.row[i])
		}
	}
	t.kernel.SetSym(x, x, diag)
}

// Evaluate returns K[x][y].
func (m *Model) Evaluate(x, y int) float64 {
	return m.kernel.At(x, y)
}

// Embedding returns a copy of x's kernel row.
func (m *Model) Embedding(x int) []float64 {
	return mat.Row(nil, x, m.kernel)
}

// Kernel returns the trained kernel matrix.
func (m *Model) Kernel() mat.Symmetric {
	return m.kernel
}

// SaveWeights writes the kernel rows of the named nodes to filename.
func (m *Model) SaveWeights(filename string, names []string) error {
	return embed.SaveWeights(filename, names, m)
}
