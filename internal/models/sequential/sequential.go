// Package sequential builds a finite embedding in a single randomised pass:
// each node is fitted only against the neighbours already placed before it.
package sequential

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

// DefaultSolverRounds is how many solver calls each node receives.
const DefaultSolverRounds = 10

// Config holds the sequential embedding hyperparameters.
type Config struct {
	Dimension       int      `yaml:"dimension"`
	SolverRounds    int      `yaml:"solver_rounds"`
	Loss            svm.Loss `yaml:"loss"`
	embed.Penalties `yaml:",inline"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Dimension:    100,
		SolverRounds: DefaultSolverRounds,
		Loss:         svm.Hinge,
		Penalties:    embed.Penalties{NegPenalty: 0.1, Regularizer: 2},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be > 0, got %d", embed.ErrInvalidConfig, c.Dimension)
	}
	if c.SolverRounds <= 0 {
		return fmt.Errorf("%w: solver_rounds must be > 0, got %d", embed.ErrInvalidConfig, c.SolverRounds)
	}
	return c.Penalties.Validate()
}

// Model is a trained sequential embedding.
type Model struct {
	table *embed.Table
}

// Train visits every node once in random order. A node's examples are its
// already-estimated neighbours, all with margin 1; its embedding is the
// solver's weight vector plus uniform noise in [-1/sqrt(dim), 1/sqrt(dim)),
// which keeps early nodes with few estimated neighbours from collapsing
// onto the zero vector.
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

	logger.Info("model setting", "model", "sequential", "dimension", cfg.Dimension, "vertices", size)
	logger.Info("learning parameters", "solver_rounds", cfg.SolverRounds, "loss", cfg.Loss,
		"neg_penalty", cfg.NegPenalty, "regularizer", cfg.Regularizer,
		"degree_norm_power", cfg.DegreeNormPower)

	table := embed.NewTable(size, cfg.Dimension)
	estimated := make([]bool, size)
	update := embed.NewLinearUpdate(size, &svm.LinearSolver{Epochs: svm.DefaultLinearEpochs, Loss: cfg.Loss}, r)
	noise := 1 / math.Sqrt(float64(cfg.Dimension))
	var ready []int

	loop := &embed.Loop{Epochs: 1, Rand: linalg.Fork(r), Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(_, x int) error {
		deg := pos.Degree(x)
		update.Begin()
		ready = filter(ready[:0], pos.Neighbors(x), estimated)
		update.AppendRows(table, ready, x, 1, cfg.Positive(deg), 1)
		ready = filter(ready[:0], neg.Neighbors(x), estimated)
		update.AppendRows(table, ready, x, -1, cfg.Negative(deg), 1)
		if err := update.FinishRounds(x, table.Row(x), cfg.SolverRounds); err != nil {
			return fmt.Errorf("node %d: %w", x, err)
		}
		row := table.Row(x)
		for d := range row {
			row[d] += linalg.Uniform(r, -noise, noise)
		}
		table.RefreshNorm(x)
		estimated[x] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Model{table: table}, nil
}

// filter appends the estimated nodes of nodes to dst.
func filter(dst, nodes []int, estimated []bool) []int {
	for _, i := range nodes {
		if estimated[i] {
			dst = append(dst, i)
		}
	}
	return dst
}

// Evaluate returns the inner product of x's and y's embeddings.
func (m *Model) Evaluate(x, y int) float64 {
	return m.table.Dot(x, y)
}

// Embedding returns x's embedding.
func (m *Model) Embedding(x int) []float64 {
	return m.table.Row(x)
}

// SaveWeights writes the embeddings of the named nodes to filename.
func (m *Model) SaveWeights(filename string, names []string) error {
	return embed.SaveWeights(filename, names, m)
}
