// Package contrast trains a finite embedding from triplet examples: every
// positive edge is paired with sampled negative edges, and each example's
// margin follows the current score of its paired edge.
package contrast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

const (
	// DefaultEpochs is the number of coordinate-ascent passes.
	DefaultEpochs = 10
	// DefaultSampleRatio is the number of negative edges paired with each positive edge.
	DefaultSampleRatio = 4
)

// Config holds the contrastive embedding hyperparameters.
type Config struct {
	Dimension       int      `yaml:"dimension"`
	Epochs          int      `yaml:"epochs"`
	SampleRatio     int      `yaml:"sample_ratio"`
	Loss            svm.Loss `yaml:"loss"`
	Regularizer     float64  `yaml:"regularizer"`
	DegreeNormPower float64  `yaml:"degree_norm_power"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Dimension:   100,
		Epochs:      DefaultEpochs,
		SampleRatio: DefaultSampleRatio,
		Loss:        svm.Hinge,
		Regularizer: 30,
	}
}

func (c Config) penalties() embed.Penalties {
	return embed.Penalties{Regularizer: c.Regularizer, DegreeNormPower: c.DegreeNormPower}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be > 0, got %d", embed.ErrInvalidConfig, c.Dimension)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0, got %d", embed.ErrInvalidConfig, c.Epochs)
	}
	if c.SampleRatio <= 0 {
		return fmt.Errorf("%w: sample_ratio must be > 0, got %d", embed.ErrInvalidConfig, c.SampleRatio)
	}
	return c.penalties().Validate()
}

// Model is a trained contrastive embedding.
type Model struct {
	table *embed.Table
}

// Train fits one vector per node. The triplet table is sampled once before
// the first epoch; every example of node x then carries the penalty
// max(|examples of x|, 1)^DegreeNormPower / Regularizer.
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
	penalties := cfg.penalties()

	logger.Info("model setting", "model", "contrast", "dimension", cfg.Dimension, "vertices", size)
	logger.Info("learning parameters", "epochs", cfg.Epochs, "sample_ratio", cfg.SampleRatio,
		"loss", cfg.Loss, "regularizer", cfg.Regularizer, "degree_norm_power", cfg.DegreeNormPower)

	table := embed.NewTable(size, cfg.Dimension)
	table.RandomInit(r, -1, 1)
	triplets := embed.BuildContrastTable(pos, neg, cfg.SampleRatio, r)
	logger.Debug("contrast table built", "examples", countExamples(triplets))
	update := embed.NewLinearUpdate(size, &svm.LinearSolver{Epochs: svm.DefaultLinearEpochs, Loss: cfg.Loss}, r)

	loop := &embed.Loop{Epochs: cfg.Epochs, Rand: linalg.Fork(r), Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(_, x int) error {
		penalty := penalties.Positive(len(triplets[x]))
		p := update.Begin()
		for _, t := range triplets[x] {
			if t.B == x {
				continue
			}
			p.Append(table.Row(t.B), table.SqrNorm(t.B), t.Label, penalty, 1+float64(t.Label)*table.Dot(t.C, t.D))
		}
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

func countExamples(t embed.ContrastTable) int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
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
