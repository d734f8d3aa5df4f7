package baseline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
)

// DefaultPropagationEpochs is the number of sweeps PropagateLabels makes.
const DefaultPropagationEpochs = 100

// PropagationConfig holds the label propagation settings.
type PropagationConfig struct {
	Epochs int          `yaml:"epochs"`
	Logger *slog.Logger `yaml:"-"`
}

// DefaultPropagationConfig returns the settings used by the score tool.
func DefaultPropagationConfig() PropagationConfig {
	return PropagationConfig{Epochs: DefaultPropagationEpochs}
}

// LabelPropagation embeds every node as a distribution over classes. A
// labeled node keeps its one-hot row; every other node repeatedly takes the
// mean of its neighbours' rows.
type LabelPropagation struct {
	table   *embed.Table
	labeled []bool
}

// PropagateLabels runs cfg.Epochs randomised sweeps over g. labels maps
// node index to class; the number of classes is the largest class plus one.
func PropagateLabels(ctx context.Context, g *graph.Graph, labels map[int]int, cfg PropagationConfig, r linalg.Rand) (*LabelPropagation, error) {
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("%w: epochs must be > 0, got %d", embed.ErrInvalidConfig, cfg.Epochs)
	}
	if err := embed.CheckRand(r); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", graph.ErrSizeMismatch)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labeled node", embed.ErrInvalidConfig)
	}
	size := g.Size()
	classes := 0
	for x, c := range labels {
		if x < 0 || x >= size {
			return nil, fmt.Errorf("%w: labeled node %d not in [0, %d)", graph.ErrNodeOutOfRange, x, size)
		}
		if c < 0 {
			return nil, fmt.Errorf("%w: node %d has class %d", embed.ErrInvalidConfig, x, c)
		}
		classes = max(classes, c+1)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("model setting", "model", "label-propagation", "classes", classes,
		"vertices", size, "labeled", len(labels))

	m := &LabelPropagation{
		table:   embed.NewTable(size, classes),
		labeled: make([]bool, size),
	}
	for x, c := range labels {
		m.table.Row(x)[c] = 1
		m.table.RefreshNorm(x)
		m.labeled[x] = true
	}

	mean := make([]float64, classes)
	loop := &embed.Loop{Epochs: cfg.Epochs, Rand: r, Logger: logger}
	logger.Info("start training")
	err := loop.Run(ctx, size, func(_, x int) error {
		if m.labeled[x] {
			return nil
		}
		linalg.Zero(mean)
		neighbors := g.Neighbors(x)
		for _, y := range neighbors {
			linalg.AddScaled(mean, 1/float64(len(neighbors)), m.table.Row(y))
		}
		copy(m.table.Row(x), mean)
		m.table.RefreshNorm(x)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("training finished")
	return m, nil
}

// Evaluate returns the inner product of x's and y's class distributions.
func (m *LabelPropagation) Evaluate(x, y int) float64 {
	return m.table.Dot(x, y)
}

// Embedding returns x's class distribution.
func (m *LabelPropagation) Embedding(x int) []float64 {
	return m.table.Row(x)
}

// Class returns the most likely class of x, or -1 when nothing reached it.
func (m *LabelPropagation) Class(x int) int {
	best, class := 0.0, -1
	for c, v := range m.table.Row(x) {
		if v > best {
			best, class = v, c
		}
	}
	return class
}

// Random scores every pair with an independent uniform draw from [0, 1).
type Random struct {
	r linalg.Rand
}

// NewRandom returns a scorer drawing from r.
func NewRandom(r linalg.Rand) *Random {
	return &Random{r: r}
}

// Evaluate ignores x and y.
func (m *Random) Evaluate(x, y int) float64 {
	return m.r.Float64()
}

// Embedding is empty; a random scorer has no features.
func (m *Random) Embedding(x int) []float64 {
	return nil
}
