// Package finitesgd fits the same per-node objective as package finite
// with logistic loss and a decaying stochastic-gradient step instead of the
// dual solver. It is the baseline the coordinate-descent variants are
// compared against.
package finitesgd

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
)

// DefaultEpochs is the number of passes over the nodes.
const DefaultEpochs = 100

// Config holds the SGD hyperparameters. NegPenalty weights the negative
// examples' gradient and Regularizer is the ridge coefficient.
type Config struct {
	Dimension       int `yaml:"dimension"`
	Epochs          int `yaml:"epochs"`
	embed.Penalties `yaml:",inline"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Dimension: 100,
		Epochs:    DefaultEpochs,
		Penalties: embed.Penalties{NegPenalty: 1, Regularizer: 0.01},
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

// LearningRate is the step size of the given zero-based epoch.
func LearningRate(epoch int) float64 {
	return 1 / math.Sqrt(float64(epoch+10))
}

// Model is a trained SGD embedding.
type Model struct {
	table *embed.Table
}

// Train runs cfg.Epochs passes; each node takes one gradient step per
// neighbour followed by a ridge shrink, with the step scaled by the
// node's degree normalisation.
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

	logger.Info("model setting", "model", "finite-sgd", "dimension", cfg.Dimension, "vertices", size)
	logger.Info("learning parameters", "epochs", cfg.Epochs, "neg_penalty", cfg.NegPenalty,
		"regularizer", cfg.Regularizer, "degree_norm_power", cfg.DegreeNormPower)

	table := embed.NewTable(size, cfg.Dimension)
	table.RandomInit(r, -1, 1)
	sigmoid := linalg.NewSigmoidTable()

	loop := &embed.Loop{Epochs: cfg.Epochs, Rand: linalg.Fork(r), Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(epoch, x int) error {
		rate := LearningRate(epoch) * cfg.DegreeNorm(pos.Degree(x))
		vx := table.Row(x)
		for _, i := range pos.Neighbors(x) {
			if i == x {
				continue
			}
			f := table.Row(i)
			// d/dv -log(sigmoid(v.f)) = -sigmoid(-v.f) f
			linalg.AddScaled(vx, rate*sigmoid.FastSigmoid(-linalg.Dot(vx, f)), f)
		}
		for _, i := range neg.Neighbors(x) {
			if i == x {
				continue
			}
			f := table.Row(i)
			linalg.AddScaled(vx, -rate*cfg.NegPenalty*sigmoid.FastSigmoid(linalg.Dot(vx, f)), f)
		}
		shrink := 1 - 2*cfg.Regularizer*LearningRate(epoch)
		for d := range vx {
			vx[d] *= shrink
		}
		if !linalg.Finite(vx) {
			return fmt.Errorf("node %d: embedding diverged", x)
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

// SaveWeights writes the embeddings of the named nodes to filename.
func (m *Model) SaveWeights(filename string, names []string) error {
	return embed.SaveWeights(filename, names, m)
}
