package baseline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnclabs/svmembed/internal/testgraph"
	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
)

func TestCommonNeighbor(t *testing.T) {
	pos, _ := testgraph.SevenNode()
	m, err := NewCommonNeighbor(pos, 2)
	require.NoError(t, err)
	var _ embed.Model = m

	// 1 and 2 share 0 and 3 but are not adjacent.
	assert.Equal(t, 1.0, m.Evaluate(1, 2))
	// 3 and 4 share nothing but are adjacent: (sqrt(3) + sqrt(3)) / 2.
	assert.InDelta(t, math.Sqrt(3), m.Evaluate(3, 4), 1e-12)
	// 5 and 6 share 4 and are adjacent.
	assert.InDelta(t, (1+2*math.Sqrt(2))/2, m.Evaluate(5, 6), 1e-12)
	assert.Equal(t, 0.0, m.Evaluate(0, 6))

	assert.Equal(t, 2.0, linalg.Dot(m.Embedding(1), m.Embedding(2)))

	_, err = NewCommonNeighbor(pos, 0)
	require.ErrorIs(t, err, embed.ErrInvalidConfig)
}

func TestAdamicAdar(t *testing.T) {
	pos, _ := testgraph.SevenNode()
	m := NewAdamicAdar(pos)
	var _ embed.Model = m

	want := 1/math.Log(2) + 1/math.Log(3)
	assert.InDelta(t, want, m.Evaluate(1, 2), 1e-12)
	assert.InDelta(t, 1/math.Log(3), m.Evaluate(3, 5), 1e-12)
	assert.InDelta(t, m.Evaluate(1, 2), linalg.Dot(m.Embedding(1), m.Embedding(2)), 1e-12)

	// A shared neighbour of degree 1 adds nothing.
	g := graph.New(2)
	require.NoError(t, g.AddEdge(0, 1))
	assert.Equal(t, 0.0, NewAdamicAdar(g).Evaluate(0, 0))
}

func TestPredefined(t *testing.T) {
	tb := embed.NewTable(2, 2)
	copy(tb.Row(0), []float64{1, 2})
	copy(tb.Row(1), []float64{3, -1})
	m := NewPredefined(tb)
	assert.Equal(t, 1.0, m.Evaluate(0, 1))
	assert.Equal(t, []float64{3, -1}, m.Embedding(1))
}
