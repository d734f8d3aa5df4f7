// Package baseline provides reference models behind the same Model
// interface as the trained embeddings: neighbourhood-overlap scorers, label
// propagation, a random scorer, and a model backed by an embedding file
// written by any of the trainers.
package baseline

import (
	"fmt"
	"math"
	"slices"

	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
)

// DefaultNormalizer divides common-neighbour scores.
const DefaultNormalizer = 120

type neighborhoods struct {
	adj [][]int
	deg []int
}

func newNeighborhoods(g *graph.Graph) neighborhoods {
	n := neighborhoods{adj: make([][]int, g.Size()), deg: make([]int, g.Size())}
	for x := range n.adj {
		adj := slices.Clone(g.Neighbors(x))
		slices.Sort(adj)
		n.adj[x] = slices.Compact(adj)
		n.deg[x] = g.Degree(x)
	}
	return n
}

// common calls fn for every node adjacent to both x and y.
func (n neighborhoods) common(x, y int, fn func(p int)) {
	a, b := n.adj[x], n.adj[y]
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			fn(a[i])
			i++
			j++
		}
	}
}

func (n neighborhoods) adjacent(x, y int) bool {
	_, ok := slices.BinarySearch(n.adj[x], y)
	return ok
}

// CommonNeighbor scores a pair by its number of shared neighbours. A pair
// that is already an edge gets sqrt(deg x) + sqrt(deg y) on top.
type CommonNeighbor struct {
	neighborhoods
	normalizer float64
}

// NewCommonNeighbor builds the scorer over g.
func NewCommonNeighbor(g *graph.Graph, normalizer float64) (*CommonNeighbor, error) {
	if !(normalizer > 0) || math.IsInf(normalizer, 0) {
		return nil, fmt.Errorf("%w: normalizer must be > 0, got %v", embed.ErrInvalidConfig, normalizer)
	}
	return &CommonNeighbor{neighborhoods: newNeighborhoods(g), normalizer: normalizer}, nil
}

// Evaluate returns the normalised common-neighbour score of x and y.
func (m *CommonNeighbor) Evaluate(x, y int) float64 {
	var v float64
	m.common(x, y, func(int) { v++ })
	if m.adjacent(x, y) {
		v += math.Sqrt(float64(m.deg[x])) + math.Sqrt(float64(m.deg[y]))
	}
	return v / m.normalizer
}

// Embedding returns x's adjacency indicator; the inner product of two rows
// is the raw shared-neighbour count.
func (m *CommonNeighbor) Embedding(x int) []float64 {
	row := make([]float64, len(m.adj))
	for _, p := range m.adj[x] {
		row[p] = 1
	}
	return row
}

// AdamicAdar scores a pair by summing 1/log(deg p) over shared neighbours p.
// Shared neighbours of degree below 2 contribute nothing.
type AdamicAdar struct {
	neighborhoods
}

// NewAdamicAdar builds the scorer over g.
func NewAdamicAdar(g *graph.Graph) *AdamicAdar {
	return &AdamicAdar{neighborhoods: newNeighborhoods(g)}
}

func (m *AdamicAdar) weight(p int) float64 {
	if m.deg[p] < 2 {
		return 0
	}
	return 1 / math.Log(float64(m.deg[p]))
}

// Evaluate returns the Adamic-Adar index of x and y.
func (m *AdamicAdar) Evaluate(x, y int) float64 {
	var v float64
	m.common(x, y, func(p int) { v += m.weight(p) })
	return v
}

// Embedding returns x's adjacency row weighted by sqrt(1/log(deg p)), so
// the inner product of two rows is their Adamic-Adar index.
func (m *AdamicAdar) Embedding(x int) []float64 {
	row := make([]float64, len(m.adj))
	for _, p := range m.adj[x] {
		row[p] = math.Sqrt(m.weight(p))
	}
	return row
}

// Predefined scores pairs with embeddings loaded from a file.
type Predefined struct {
	table *embed.Table
}

// NewPredefined wraps the rows of t.
func NewPredefined(t *embed.Table) *Predefined {
	return &Predefined{table: t}
}

// Evaluate returns the inner product of x's and y's rows.
func (m *Predefined) Evaluate(x, y int) float64 {
	return linalg.Dot(m.table.Row(x), m.table.Row(y))
}

// Embedding returns x's row.
func (m *Predefined) Embedding(x int) []float64 {
	return m.table.Row(x)
}
