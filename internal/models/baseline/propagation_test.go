package baseline

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

func quietPropagation() PropagationConfig {
	cfg := DefaultPropagationConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func TestPropagateLabels_Path(t *testing.T) {
	// 0 - 1 - 2 - 3, plus the isolated node 4.
	g := graph.New(5)
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(1, 2))
	require.NoError(t, g.AddEdge(2, 3))

	m, err := PropagateLabels(context.Background(), g, map[int]int{0: 0, 3: 1}, quietPropagation(), linalg.NewRand(1))
	require.NoError(t, err)
	var _ embed.Model = m

	assert.Equal(t, []float64{1, 0}, m.Embedding(0))
	assert.Equal(t, []float64{0, 1}, m.Embedding(3))
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, m.Embedding(1), 1e-9)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3}, m.Embedding(2), 1e-9)
	assert.Equal(t, []float64{0, 0}, m.Embedding(4))

	assert.Equal(t, 0, m.Class(1))
	assert.Equal(t, 1, m.Class(2))
	assert.Equal(t, -1, m.Class(4))
	assert.InDelta(t, 2.0/3, m.Evaluate(0, 1), 1e-9)
}

func TestPropagateLabels_RowsStayConvex(t *testing.T) {
	pos, _ := testgraph.SevenNode()
	labels := map[int]int{0: 0, 5: 1, 6: 2}
	for _, seed := range []int64{1, 2, 3} {
		m, err := PropagateLabels(context.Background(), pos, labels, quietPropagation(), linalg.NewRand(seed))
		require.NoError(t, err)
		for x := 0; x < pos.Size(); x++ {
			row := m.Embedding(x)
			if c, ok := labels[x]; ok {
				want := make([]float64, 3)
				want[c] = 1
				assert.Equal(t, want, row, "labeled node %d", x)
				continue
			}
			sum := 0.0
			for _, v := range row {
				assert.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.LessOrEqual(t, sum, 1+1e-12, "node %d", x)
		}
	}
}

func TestPropagateLabels_InvalidInput(t *testing.T) {
	ctx := context.Background()
	g := graph.New(3)

	cfg := quietPropagation()
	cfg.Epochs = 0
	_, err := PropagateLabels(ctx, g, map[int]int{0: 0}, cfg, linalg.NewRand(1))
	require.ErrorIs(t, err, embed.ErrInvalidConfig)

	_, err = PropagateLabels(ctx, g, nil, quietPropagation(), linalg.NewRand(1))
	require.ErrorIs(t, err, embed.ErrInvalidConfig)

	_, err = PropagateLabels(ctx, g, map[int]int{0: -1}, quietPropagation(), linalg.NewRand(1))
	require.ErrorIs(t, err, embed.ErrInvalidConfig)

	_, err = PropagateLabels(ctx, g, map[int]int{3: 0}, quietPropagation(), linalg.NewRand(1))
	require.ErrorIs(t, err, graph.ErrNodeOutOfRange)

	_, err = PropagateLabels(ctx, g, map[int]int{0: 0}, quietPropagation(), nil)
	require.ErrorIs(t, err, embed.ErrInvalidConfig)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = PropagateLabels(cancelled, g, map[int]int{0: 0}, quietPropagation(), linalg.NewRand(1))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRandom(t *testing.T) {
	a := NewRandom(linalg.NewRand(4))
	b := NewRandom(linalg.NewRand(4))
	var _ embed.Model = a
	for i := 0; i < 50; i++ {
		v := a.Evaluate(0, 1)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
		assert.Equal(t, v, b.Evaluate(2, 3))
	}
	assert.Empty(t, a.Embedding(0))
}
