// Package directed trains two vectors per node of a directed graph. The
// in-vector of x is fitted against the out-vectors of the tails of x's
// incoming arcs, and the out-vector against the in-vectors of the heads of
// its outgoing arcs; an arc x->y scores out[x].in[y].
package directed

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
	// DefaultSampleRatio is the number of negative arcs paired with each
	// positive arc in contrastive mode.
	DefaultSampleRatio = 4
)

// Config holds the directed embedding hyperparameters.
type Config struct {
	Dimension       int      `yaml:"dimension"`
	Epochs          int      `yaml:"epochs"`
	Loss            svm.Loss `yaml:"loss"`
	embed.Penalties `yaml:",inline"`

	// Contrastive replaces the per-neighbour examples with triplets whose
	// margins follow the score of a paired arc.
	Contrastive bool `yaml:"contrastive"`
	SampleRatio int  `yaml:"sample_ratio"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Dimension:   100,
		Epochs:      DefaultEpochs,
		Loss:        svm.Hinge,
		Penalties:   embed.Penalties{NegPenalty: 0.03, Regularizer: 5},
		SampleRatio: DefaultSampleRatio,
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
	if c.Contrastive && c.SampleRatio <= 0 {
		return fmt.Errorf("%w: sample_ratio must be > 0, got %d", embed.ErrInvalidConfig, c.SampleRatio)
	}
	return c.Penalties.Validate()
}

// Model is a trained directed embedding.
type Model struct {
	in, out  *embed.Table
	combined *embed.Table
}

type trainer struct {
	cfg             Config
	in, out         *embed.Table
	inUpd, outUpd   *embed.LinearUpdate
	inPair, outPair embed.ContrastTable
}

// Train fits an in- and an out-vector per node. Each visit of node x
// updates its in-vector first and its out-vector second, so the out update
// already sees the new in-vector when x has a self-loop.
func Train(ctx context.Context, pos, neg *graph.DGraph, cfg Config, r linalg.Rand) (*Model, error) {
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

	logger.Info("model setting", "model", "directed", "dimension", cfg.Dimension,
		"vertices", size, "contrastive", cfg.Contrastive)
	logger.Info("learning parameters", "epochs", cfg.Epochs, "loss", cfg.Loss,
		"neg_penalty", cfg.NegPenalty, "regularizer", cfg.Regularizer,
		"degree_norm_power", cfg.DegreeNormPower, "sample_ratio", cfg.SampleRatio)

	solver := func() *svm.LinearSolver {
		return &svm.LinearSolver{Epochs: svm.DefaultLinearEpochs, Loss: cfg.Loss}
	}
	t := &trainer{
		cfg:    cfg,
		in:     embed.NewTable(size, cfg.Dimension),
		out:    embed.NewTable(size, cfg.Dimension),
		inUpd:  embed.NewLinearUpdate(size, solver(), r),
		outUpd: embed.NewLinearUpdate(size, solver(), r),
	}
	t.in.RandomInit(r, -1, 1)
	t.out.RandomInit(r, -1, 1)
	if cfg.Contrastive {
		t.inPair, t.outPair = embed.BuildDirectedContrastTables(pos, neg, cfg.SampleRatio, r)
	}

	loop := &embed.Loop{Epochs: cfg.Epochs, Rand: linalg.Fork(r), Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(_, x int) error {
		if cfg.Contrastive {
			return t.visitContrast(x)
		}
		return t.visit(pos, neg, x)
	})
	if err != nil {
		return nil, err
	}

	combined := embed.NewTable(size, 2*cfg.Dimension)
	for x := 0; x < size; x++ {
		row := combined.Row(x)
		copy(row, t.in.Row(x))
		copy(row[cfg.Dimension:], t.out.Row(x))
		combined.RefreshNorm(x)
	}
	return &Model{in: t.in, out: t.out, combined: combined}, nil
}

func (t *trainer) visit(pos, neg *graph.DGraph, x int) error {
	deg := len(pos.In(x))
	t.inUpd.Begin()
	t.inUpd.AppendRows(t.out, pos.In(x), -1, 1, t.cfg.Positive(deg), 1)
	t.inUpd.AppendRows(t.out, neg.In(x), -1, -1, t.cfg.Negative(deg), 0)
	if err := t.inUpd.Finish(x, t.in.Row(x)); err != nil {
		return fmt.Errorf("node %d in-vector: %w", x, err)
	}
	t.in.RefreshNorm(x)

	deg = len(pos.Out(x))
	t.outUpd.Begin()
	t.outUpd.AppendRows(t.in, pos.Out(x), -1, 1, t.cfg.Positive(deg), 1)
	t.outUpd.AppendRows(t.in, neg.Out(x), -1, -1, t.cfg.Negative(deg), 0)
	if err := t.outUpd.Finish(x, t.out.Row(x)); err != nil {
		return fmt.Errorf("node %d out-vector: %w", x, err)
	}
	t.out.RefreshNorm(x)
	return nil
}

func (t *trainer) visitContrast(x int) error {
	if err := t.fitPairs(t.inUpd, t.inPair[x], t.out, t.in, x); err != nil {
		return fmt.Errorf("node %d in-vector: %w", x, err)
	}
	if err := t.fitPairs(t.outUpd, t.outPair[x], t.in, t.out, x); err != nil {
		return fmt.Errorf("node %d out-vector: %w", x, err)
	}
	return nil
}

// fitPairs fits target's row x against the feature rows named by pairs.
// The paired arc (C, D) always scores out[C].in[D].
func (t *trainer) fitPairs(u *embed.LinearUpdate, pairs []embed.ContrastPair, features, target *embed.Table, x int) error {
	penalty := t.cfg.Positive(len(pairs))
	p := u.Begin()
	for _, pair := range pairs {
		margin := 1 + float64(pair.Label)*linalg.Dot(t.out.Row(pair.C), t.in.Row(pair.D))
		p.Append(features.Row(pair.B), features.SqrNorm(pair.B), pair.Label, penalty, margin)
	}
	if err := u.Finish(x, target.Row(x)); err != nil {
		return err
	}
	target.RefreshNorm(x)
	return nil
}

// Evaluate scores the arc x->y as out[x].in[y].
func (m *Model) Evaluate(x, y int) float64 {
	return linalg.Dot(m.out.Row(x), m.in.Row(y))
}

// Embedding returns x's in-vector followed by its out-vector.
func (m *Model) Embedding(x int) []float64 {
	return m.combined.Row(x)
}

// In returns x's in-vector.
func (m *Model) In(x int) []float64 {
	return m.in.Row(x)
}

// Out returns x's out-vector.
func (m *Model) Out(x int) []float64 {
	return m.out.Row(x)
}

// SaveWeights writes the concatenated embeddings of the named nodes to filename.
func (m *Model) SaveWeights(filename string, names []string) error {
	return embed.SaveWeights(filename, names, m)
}
