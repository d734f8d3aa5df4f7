// Package finite trains a fixed-dimension embedding per node by solving,
// for every node in turn, a linear SVM whose features are the current
// embeddings of the node's positive and negative neighbours.
package finite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

// DefaultEpochs is the number of coordinate-ascent passes.
const DefaultEpochs = 10

// Config holds the finite embedding hyperparameters.
type Config struct {
	Dimension       int      `yaml:"dimension"`
	Epochs          int      `yaml:"epochs"`
	Loss            svm.Loss `yaml:"loss"`
	embed.Penalties `yaml:",inline"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Dimension: 100,
		Epochs:    DefaultEpochs,
		Loss:      svm.Hinge,
		Penalties: embed.Penalties{NegPenalty: 0.03, Regularizer: 1},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be > 0, got %d", embed.ErrInvalidConfig, c.Dimension)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0, got %d", embed.ErrInvalidConfig, c.Epochs)
	}
	return c.Penalties.Validate()
}

// Model is a trained finite embedding.
type Model struct {
	table *embed.Table
}

// Train fits an embedding of cfg.Dimension per node. Positive examples
// carry margin 1 and negative examples margin 0; both penalties are
// rescaled by the node's degree raised to cfg.DegreeNormPower.
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

	logger.Info("model setting", "model", "finite", "dimension", cfg.Dimension, "vertices", size)
	logger.Info("learning parameters", "epochs", cfg.Epochs, "loss", cfg.Loss,
		"neg_penalty", cfg.NegPenalty, "regularizer", cfg.Regularizer,
		"degree_norm_power", cfg.DegreeNormPower)

	table := embed.NewTable(size, cfg.Dimension)
	table.RandomInit(r, -1, 1)
	update := embed.NewLinearUpdate(size, &svm.LinearSolver{Epochs: svm.DefaultLinearEpochs, Loss: cfg.Loss}, r)

	loop := &embed.Loop{Epochs: cfg.Epochs, Rand: linalg.Fork(r), Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(_, x int) error {
		deg := pos.Degree(x)
		update.Begin()
		update.AppendRows(table, pos.Neighbors(x), x, 1, cfg.Positive(deg), 1)
		update.AppendRows(table, neg.Neighbors(x), x, -1, cfg.Negative(deg), 0)
		if err := update.Finish(x, table.Row(x)); err != nil {
			return fmt.Errorf("node %d: %w", x, err)
		}
		table.RefreshNorm(x)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Model{table: table}, nil
}

// Evaluate returns the inner product of x's and y's embeddings.
func (m *Model) Evaluate(x, y int) float64 {
	return m.table.Dot(x, y)
}

// Embedding returns x's embedding.
func (m *Model) Embedding(x int) []float64 {
	return m.table.Row(x)
}

// Dim returns the embedding dimension.
func (m *Model) Dim() int {
	return m.table.Dim()
}

// SaveWeights writes the embeddings of the named nodes to filename.
func (m *Model) SaveWeights(filename string, names []string) error {
	return embed.SaveWeights(filename, names, m)
}
