package embed

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
	"github.com/cnclabs/svmembed/pkg/svm"
)

func TestTable_RowsShareArena(t *testing.T) {
	tb := NewTable(3, 2)
	row := tb.Row(1)
	row[0], row[1] = 3, 4
	tb.RefreshNorm(1)

	assert.Equal(t, []float64{3, 4}, tb.Row(1))
	assert.Equal(t, 25.0, tb.SqrNorm(1))
	assert.Equal(t, 0.0, tb.Dot(0, 1))
	assert.Equal(t, 2, cap(tb.Row(0)), "rows must not grow into their neighbour")

	tb.RandomInit(linalg.NewRand(1), -1, 1)
	for i := 0; i < tb.Size(); i++ {
		assert.InDelta(t, linalg.SqrNorm(tb.Row(i)), tb.SqrNorm(i), 1e-12)
		for _, v := range tb.Row(i) {
			assert.True(t, v >= -1 && v < 1)
		}
	}
}

func TestCoefficients_EnsureResetsOnResize(t *testing.T) {
	c := NewCoefficients(2)
	v := c.Ensure(0, 3)
	v[1] = 0.7
	assert.Equal(t, 0.7, c.Ensure(0, 3)[1], "same size keeps the warm start")
	assert.Equal(t, []float64{0, 0}, c.Ensure(0, 2))
	assert.Empty(t, c.Get(1))
}

func TestLoop_VisitsEveryNodeOncePerEpoch(t *testing.T) {
	const size, epochs = 9, 4
	counts := make([][]int, epochs)
	for i := range counts {
		counts[i] = make([]int, size)
	}
	l := &Loop{Epochs: epochs, Rand: linalg.NewRand(3)}
	err := l.Run(context.Background(), size, func(epoch, x int) error {
		counts[epoch][x]++
		return nil
	})
	require.NoError(t, err)
	for e := range counts {
		for x := range counts[e] {
			assert.Equal(t, 1, counts[e][x], "epoch %d node %d", e, x)
		}
	}
}

func TestLoop_StopsOnErrorAndCancel(t *testing.T) {
	boom := errors.New("boom")
	l := &Loop{Epochs: 3, Rand: linalg.NewRand(1)}
	calls := 0
	err := l.Run(context.Background(), 5, func(epoch, x int) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = l.Run(ctx, 5, func(epoch, x int) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestPenalties(t *testing.T) {
	p := Penalties{NegPenalty: 0.5, Regularizer: 2, DegreeNormPower: 0}
	require.NoError(t, p.Validate())
	assert.Equal(t, 0.5, p.Positive(10))
	assert.Equal(t, 0.25, p.Negative(10))

	p.DegreeNormPower = -0.5
	assert.InDelta(t, 0.5/math.Sqrt(4), p.Positive(4), 1e-12)
	assert.InDelta(t, 0.5, p.Positive(0), 1e-12, "degree is floored at one")

	for _, bad := range []Penalties{
		{NegPenalty: 1, Regularizer: 0},
		{NegPenalty: -1, Regularizer: 1},
		{NegPenalty: 1, Regularizer: math.NaN()},
		{NegPenalty: 1, Regularizer: 1, DegreeNormPower: math.Inf(1)},
	} {
		require.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
	}
}

func TestBuildContrastTable(t *testing.T) {
	pos := graph.New(6)
	require.NoError(t, pos.AddEdge(0, 1))
	require.NoError(t, pos.AddEdge(2, 3))
	neg := graph.New(6)
	require.NoError(t, neg.AddEdge(0, 4))
	require.NoError(t, neg.AddEdge(2, 5))

	table := BuildContrastTable(pos, neg, 3, linalg.NewRand(9))
	total := 0
	for a, pairs := range table {
		for _, p := range pairs {
			total++
			assert.NotEqual(t, a, p.B)
			assert.NotContains(t, []int{p.C, p.D}, a, "paired edge must be disjoint")
			assert.NotContains(t, []int{p.C, p.D}, p.B)
			assert.Contains(t, []int{1, -1}, p.Label)
		}
	}
	// 4 adjacency entries, 3 pairs each, 4 examples per pair.
	assert.Equal(t, 4*3*4, total)

	empty := BuildContrastTable(pos, graph.New(6), 3, linalg.NewRand(9))
	for _, pairs := range empty {
		assert.Empty(t, pairs)
	}

	// Every negative edge touches the positive edge: nothing can be paired.
	tight := graph.New(3)
	require.NoError(t, tight.AddEdge(0, 1))
	touching := graph.New(3)
	require.NoError(t, touching.AddEdge(1, 2))
	for _, pairs := range BuildContrastTable(tight, touching, 2, linalg.NewRand(1)) {
		assert.Empty(t, pairs)
	}
}

func TestBuildDirectedContrastTables(t *testing.T) {
	pos := graph.NewDirected(4)
	require.NoError(t, pos.AddEdge(0, 1))
	neg := graph.NewDirected(4)
	require.NoError(t, neg.AddEdge(2, 3))

	in, out := BuildDirectedContrastTables(pos, neg, 2, linalg.NewRand(1))
	assert.Equal(t, []ContrastPair{{B: 1, C: 2, D: 3, Label: 1}, {B: 1, C: 2, D: 3, Label: 1}}, out[0])
	assert.Equal(t, []ContrastPair{{B: 0, C: 2, D: 3, Label: 1}, {B: 0, C: 2, D: 3, Label: 1}}, in[1])
	assert.Equal(t, []ContrastPair{{B: 3, C: 0, D: 1, Label: -1}, {B: 3, C: 0, D: 1, Label: -1}}, out[2])
	assert.Equal(t, []ContrastPair{{B: 2, C: 0, D: 1, Label: -1}, {B: 2, C: 0, D: 1, Label: -1}}, in[3])
	assert.Empty(t, in[0])
	assert.Empty(t, out[1])
}

type fixedModel [][]float64

func (m fixedModel) Evaluate(x, y int) float64 { return linalg.Dot(m[x], m[y]) }
func (m fixedModel) Embedding(x int) []float64 { return m[x] }

func TestWriteEmbeddings(t *testing.T) {
	var buf bytes.Buffer
	m := fixedModel{{1, 0.5}, {-2, 0}}
	require.NoError(t, WriteEmbeddings(&buf, []string{"a", "b"}, m))
	assert.Equal(t, "2 2\na 1.000000 0.500000\nb -2.000000 0.000000\n", buf.String())

	path := filepath.Join(t.TempDir(), "rep.txt")
	require.NoError(t, SaveWeights(path, []string{"a", "b"}, m))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))

	require.Error(t, WriteEmbeddings(&bytes.Buffer{}, []string{"a", "b"}, fixedModel{{1, 2}, {1}}))
}

func TestReadEmbeddings(t *testing.T) {
	vocab := graph.NewVocabulary()
	vocab.Index("c")
	tb, err := ReadEmbeddings(strings.NewReader("2 2\na 1.000000 0.500000\n\nb -2.000000 0.000000\n"), vocab)
	require.NoError(t, err)
	require.Equal(t, 3, tb.Size())
	assert.Equal(t, []float64{0, 0}, tb.Row(0))
	assert.Equal(t, []float64{1, 0.5}, tb.Row(vocab.Index("a")))
	assert.Equal(t, []float64{-2, 0}, tb.Row(vocab.Index("b")))
	assert.Equal(t, 4.0, tb.SqrNorm(2))

	path := filepath.Join(t.TempDir(), "rep.txt")
	require.NoError(t, SaveWeights(path, []string{"a", "b"}, fixedModel{{1, 0.5}, {-2, 0}}))
	loaded, err := LoadEmbeddings(path, graph.NewVocabulary())
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, 0}, loaded.Row(1))

	for _, bad := range []string{"", "x 2\n", "1 2\na 1\n", "1 2\na 1 z\n", "2 2\na 1 2\n"} {
		_, err := ReadEmbeddings(strings.NewReader(bad), graph.NewVocabulary())
		assert.Error(t, err, "input %q", bad)
	}
}

func TestLinearUpdate_WritesWeightVector(t *testing.T) {
	tb := NewTable(3, 2)
	copy(tb.Row(1), []float64{1, 0})
	copy(tb.Row(2), []float64{0, 1})
	tb.RefreshNorm(1)
	tb.RefreshNorm(2)

	u := NewLinearUpdate(3, &svm.LinearSolver{Epochs: 2}, linalg.NewRand(1))
	u.Begin()
	u.AppendRows(tb, []int{1, 0}, 0, 1, 0.5, 1)
	u.AppendRows(tb, []int{2}, 0, -1, 0.5, 0)
	require.NoError(t, u.Finish(0, tb.Row(0)))

	assert.Equal(t, []float64{0.5, 0}, tb.Row(0))
	assert.Equal(t, []float64{0.5, 0}, u.Coeff.Get(0))

	// An isolated node gets the zero weight vector.
	u.Begin()
	require.NoError(t, u.Finish(1, tb.Row(1)))
	assert.Equal(t, []float64{0, 0}, tb.Row(1))
}

func TestLinearUpdate_ConvergedNodeIsUnchanged(t *testing.T) {
	tb := NewTable(4, 2)
	copy(tb.Row(1), []float64{1, 0})
	copy(tb.Row(2), []float64{0, 1})
	copy(tb.Row(3), []float64{-1, 0})
	for i := 1; i < 4; i++ {
		tb.RefreshNorm(i)
	}

	u := NewLinearUpdate(4, &svm.LinearSolver{Epochs: 2}, linalg.NewRand(1))
	solve := func() {
		u.Begin()
		u.AppendRows(tb, []int{1}, 0, 1, 0.5, 1)
		u.AppendRows(tb, []int{2, 3}, 0, -1, 0.5, 0)
		require.NoError(t, u.Finish(0, tb.Row(0)))
	}

	// The positive example ends at its upper bound and both negatives meet
	// their margin, so further calls must not move anything.
	solve()
	row := append([]float64(nil), tb.Row(0)...)
	coeff := append([]float64(nil), u.Coeff.Get(0)...)
	assert.Equal(t, []float64{0.5, 0}, row)
	assert.Equal(t, []float64{0.5, 0, 0}, coeff)

	for i := 0; i < 2; i++ {
		solve()
		assert.Equal(t, row, tb.Row(0))
		assert.Equal(t, coeff, u.Coeff.Get(0))
	}
}
