package contrast

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
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Dimension = 5
	cfg.Regularizer = 1
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func TestTrain_SeparatesEdgesFromNonEdges(t *testing.T) {
	pos, neg := testgraph.SevenNode()
	var posScore, negScore float64
	for seed := int64(1); seed <= 3; seed++ {
		m, err := Train(context.Background(), pos, neg, quietConfig(), linalg.NewRand(seed))
		require.NoError(t, err)
		for _, e := range pos.Edges() {
			posScore += m.Evaluate(e.X, e.Y)
		}
		for _, e := range neg.Edges() {
			negScore += m.Evaluate(e.X, e.Y)
		}
	}
	assert.Greater(t, posScore/float64(len(pos.Edges())), negScore/float64(len(neg.Edges())))
}

func TestTrain_NoNegativesGivesZeroEmbedding(t *testing.T) {
	// Without negative edges no triplet can be formed, so every subproblem
	// is empty and its weight vector is zero.
	pos, _ := testgraph.SevenNode()
	m, err := Train(context.Background(), pos, graph.New(7), quietConfig(), linalg.NewRand(1))
	require.NoError(t, err)
	for x := 0; x < 7; x++ {
		assert.Equal(t, make([]float64, 5), m.Embedding(x))
	}
}

func TestTrain_Deterministic(t *testing.T) {
	pos, neg := testgraph.SevenNode()
	a, err := Train(context.Background(), pos, neg, quietConfig(), linalg.NewRand(9))
	require.NoError(t, err)
	b, err := Train(context.Background(), pos, neg, quietConfig(), linalg.NewRand(9))
	require.NoError(t, err)
	for x := 0; x < 7; x++ {
		assert.Equal(t, a.Embedding(x), b.Embedding(x))
		assert.True(t, linalg.Finite(a.Embedding(x)))
	}
}

func TestTrain_InvalidInput(t *testing.T) {
	cfg := quietConfig()
	cfg.SampleRatio = 0
	_, err := Train(context.Background(), graph.New(2), graph.New(2), cfg, linalg.NewRand(1))
	require.ErrorIs(t, err, embed.ErrInvalidConfig)

	_, err = Train(context.Background(), graph.New(2), graph.New(3), quietConfig(), linalg.NewRand(1))
	require.ErrorIs(t, err, graph.ErrSizeMismatch)
}
