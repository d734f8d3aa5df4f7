package finite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnclabs/svmembed/internal/testgraph"
	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sevenNodeConfig() Config {
	cfg := DefaultConfig()
	cfg.Dimension = 5
	cfg.NegPenalty = 0.2
	cfg.Regularizer = 1
	cfg.DegreeNormPower = 0
	cfg.Logger = quiet()
	return cfg
}

func TestTrain_RanksSameClusterHigher(t *testing.T) {
	pos, neg := testgraph.SevenNode()
	for _, seed := range []int64{1, 2, 3} {
		m, err := Train(context.Background(), pos, neg, sevenNodeConfig(), linalg.NewRand(seed))
		require.NoError(t, err)

		assert.Greater(t, m.Evaluate(1, 2), m.Evaluate(2, 6), "seed %d", seed)
		assert.Greater(t, m.Evaluate(1, 2), m.Evaluate(1, 5), "seed %d", seed)
		assert.Equal(t, 5, m.Dim())
		var _ embed.Model = m
	}
}

func TestTrain_DegreeNormalisedAndSquaredHinge(t *testing.T) {
	pos, neg := testgraph.SevenNode()
	cfg := sevenNodeConfig()
	cfg.DegreeNormPower = -0.5
	cfg.Loss = svm.SquaredHinge
	m, err := Train(context.Background(), pos, neg, cfg, linalg.NewRand(4))
	require.NoError(t, err)
	for x := 0; x < pos.Size(); x++ {
		assert.True(t, linalg.Finite(m.Embedding(x)))
	}
	assert.Greater(t, m.Evaluate(1, 2), m.Evaluate(2, 6))
}

func TestTrain_Deterministic(t *testing.T) {
	pos, neg := testgraph.SevenNode()
	a, err := Train(context.Background(), pos, neg, sevenNodeConfig(), linalg.NewRand(8))
	require.NoError(t, err)
	b, err := Train(context.Background(), pos, neg, sevenNodeConfig(), linalg.NewRand(8))
	require.NoError(t, err)
	for x := 0; x < 7; x++ {
		assert.Equal(t, a.Embedding(x), b.Embedding(x))
	}
}

func TestTrain_IsolatedNode(t *testing.T) {
	pos := graph.New(3)
	require.NoError(t, pos.AddEdge(0, 1))
	neg := graph.New(3)
	m, err := Train(context.Background(), pos, neg, sevenNodeConfig(), linalg.NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 5), m.Embedding(2))
	assert.Equal(t, 0.0, m.Evaluate(0, 2))
}

func TestTrain_InvalidInput(t *testing.T) {
	pos, neg := testgraph.SevenNode()
	ctx := context.Background()

	cfg := sevenNodeConfig()
	cfg.Dimension = 0
	_, err := Train(ctx, pos, neg, cfg, linalg.NewRand(1))
	require.ErrorIs(t, err, embed.ErrInvalidConfig)

	cfg = sevenNodeConfig()
	cfg.Regularizer = 0
	_, err = Train(ctx, pos, neg, cfg, linalg.NewRand(1))
	require.ErrorIs(t, err, embed.ErrInvalidConfig)

	_, err = Train(ctx, pos, graph.New(3), sevenNodeConfig(), linalg.NewRand(1))
	require.ErrorIs(t, err, graph.ErrSizeMismatch)

	_, err = Train(ctx, nil, neg, sevenNodeConfig(), linalg.NewRand(1))
	require.ErrorIs(t, err, graph.ErrSizeMismatch)

	_, err = Train(ctx, pos, neg, sevenNodeConfig(), nil)
	require.ErrorIs(t, err, embed.ErrInvalidConfig)
}
