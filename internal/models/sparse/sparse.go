// Package sparse trains an embedding whose coordinates are node indices:
// node x may only be non-zero on its own index and its neighbours'.
package sparse

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

// DefaultEpochs is the number of coordinate-ascent passes.
const DefaultEpochs = 10

// Config holds the sparse embedding hyperparameters.
type Config struct {
	Epochs          int      `yaml:"epochs"`
	Loss            svm.Loss `yaml:"loss"`
	embed.Penalties `yaml:",inline"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Epochs:    DefaultEpochs,
		Loss:      svm.Hinge,
		Penalties: embed.Penalties{NegPenalty: 0.015, Regularizer: 15},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0, got %d", embed.ErrInvalidConfig, c.Epochs)
	}
	return c.Penalties.Validate()
}

// Vector is a sparse vector with strictly increasing indices.
type Vector struct {
	Index []int
	Value []float64
}

// Dot returns the inner product of two sparse vectors.
func Dot(a, b Vector) float64 {
	var v float64
	for i, j := 0, 0; i < len(a.Index) && j < len(b.Index); {
		switch {
		case a.Index[i] < b.Index[j]:
			i++
		case a.Index[i] > b.Index[j]:
			j++
		default:
			v += a.Value[i] * b.Value[j]
			i++
			j++
		}
	}
	return v
}

// project writes v restricted to support into dst, in support order.
func project(dst []float64, support []int, v Vector) {
	linalg.Zero(dst)
	for i, j := 0, 0; i < len(support) && j < len(v.Index); {
		switch {
		case support[i] < v.Index[j]:
			i++
		case support[i] > v.Index[j]:
			j++
		default:
			dst[i] = v.Value[j]
			i++
			j++
		}
	}
}

// Model is a trained sparse embedding.
type Model struct {
	vectors []Vector
}

// Train starts every node at the indicator of its own index and refits it
// against its neighbours projected onto its support {x} and N(x).
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

	logger.Info("model setting", "model", "sparse", "vertices", size)
	logger.Info("learning parameters", "epochs", cfg.Epochs, "loss", cfg.Loss,
		"neg_penalty", cfg.NegPenalty, "regularizer", cfg.Regularizer,
		"degree_norm_power", cfg.DegreeNormPower)

	vectors := make([]Vector, size)
	for x := range vectors {
		vectors[x] = initialVector(x, pos.Neighbors(x))
	}
	solver := &svm.LinearSolver{Epochs: svm.DefaultLinearEpochs, Loss: cfg.Loss}
	coeff := embed.NewCoefficients(size)
	var (
		problem svm.Problem
		arena   []float64
		w       []float64
	)

	loop := &embed.Loop{Epochs: cfg.Epochs, Rand: linalg.Fork(r), Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(_, x int) error {
		support := vectors[x].Index
		dim := len(support)
		deg := pos.Degree(x)
		n := countOthers(pos.Neighbors(x), x) + countOthers(neg.Neighbors(x), x)
		if cap(arena) < n*dim {
			arena = make([]float64, n*dim)
		}
		if cap(w) < dim {
			w = make([]float64, dim)
		}

		problem.Reset()
		k := 0
		appendProjected := func(nodes []int, label int, penalty, margin float64) {
			for _, i := range nodes {
				if i == x {
					continue
				}
				f := arena[k*dim : (k+1)*dim : (k+1)*dim]
				project(f, support, vectors[i])
				problem.Append(f, linalg.SqrNorm(f), label, penalty, margin)
				k++
			}
		}
		appendProjected(pos.Neighbors(x), 1, cfg.Positive(deg), 1)
		appendProjected(neg.Neighbors(x), -1, cfg.Negative(deg), 0)

		c := coeff.Ensure(x, n)
		if err := solver.Solve(&problem, c, w[:dim], r); err != nil {
			return fmt.Errorf("node %d: %w", x, err)
		}
		if !linalg.Finite(w[:dim]) || !linalg.Finite(c) {
			linalg.Zero(c)
			return nil
		}
		copy(vectors[x].Value, w[:dim])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Model{vectors: vectors}, nil
}

func initialVector(x int, neighbors []int) Vector {
	index := append([]int{x}, neighbors...)
	slices.Sort(index)
	index = slices.Compact(index)
	value := make([]float64, len(index))
	self, _ := slices.BinarySearch(index, x)
	value[self] = 1
	return Vector{Index: index, Value: value}
}

func countOthers(nodes []int, x int) int {
	n := 0
	for _, i := range nodes {
		if i != x {
			n++
		}
	}
	return n
}

// Evaluate returns the sparse inner product of x's and y's vectors.
func (m *Model) Evaluate(x, y int) float64 {
	return Dot(m.vectors[x], m.vectors[y])
}

// Embedding returns x's vector expanded to one coordinate per node.
func (m *Model) Embedding(x int) []float64 {
	dense := make([]float64, len(m.vectors))
	v := m.vectors[x]
	for i, idx := range v.Index {
		dense[idx] = v.Value[i]
	}
	return dense
}

// Sparse returns x's vector. The slices are owned by the model.
func (m *Model) Sparse(x int) Vector {
	return m.vectors[x]
}

// SaveWeights writes the expanded vectors of the named nodes to filename.
func (m *Model) SaveWeights(filename string, names []string) error {
	return embed.SaveWeights(filename, names, m)
}
