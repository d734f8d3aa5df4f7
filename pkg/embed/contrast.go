package embed

import (
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
)

// ContrastPair is one triplet example owned by some node a: the feature is
// node B's embedding, and the example's margin is tied to the current score
// of the paired edge (C, D). Label is +1 when (a, B) is the positive edge
// and -1 when it is the sampled negative one.
type ContrastPair struct {
	B, C, D int
	Label   int
}

// ContrastTable lists each node's triplet examples.
type ContrastTable [][]ContrastPair

// maxRejections bounds the draws spent looking for a negative edge disjoint
// from one positive edge, per requested pair.
const maxRejections = 100

// BuildContrastTable pairs every positive adjacency entry (a, b) with ratio
// negative edges (c, d) that share no endpoint with it. Both endpoints of
// both edges receive one example each. Pairs that cannot be found within
// the rejection budget are skipped.
func BuildContrastTable(pos, neg *graph.Graph, ratio int, r linalg.Rand) ContrastTable {
	table := make(ContrastTable, pos.Size())
	negEdges := neg.Edges()
	for _, e := range pos.Edges() {
		forEachDisjoint(e, negEdges, ratio, r, func(c, d int) {
			a, b := e.X, e.Y
			table[a] = append(table[a], ContrastPair{B: b, C: c, D: d, Label: 1})
			table[b] = append(table[b], ContrastPair{B: a, C: c, D: d, Label: 1})
			table[c] = append(table[c], ContrastPair{B: d, C: a, D: b, Label: -1})
			table[d] = append(table[d], ContrastPair{B: c, C: a, D: b, Label: -1})
		})
	}
	return table
}

// BuildDirectedContrastTables is BuildContrastTable for arcs. The out table
// holds the examples of a node's out-vector (features are heads' in-vectors)
// and the in table those of its in-vector.
func BuildDirectedContrastTables(pos, neg *graph.DGraph, ratio int, r linalg.Rand) (in, out ContrastTable) {
	in = make(ContrastTable, pos.Size())
	out = make(ContrastTable, pos.Size())
	negEdges := neg.Edges()
	for _, e := range pos.Edges() {
		forEachDisjoint(e, negEdges, ratio, r, func(c, d int) {
			a, b := e.X, e.Y
			out[a] = append(out[a], ContrastPair{B: b, C: c, D: d, Label: 1})
			in[b] = append(in[b], ContrastPair{B: a, C: c, D: d, Label: 1})
			out[c] = append(out[c], ContrastPair{B: d, C: a, D: b, Label: -1})
			in[d] = append(in[d], ContrastPair{B: c, C: a, D: b, Label: -1})
		})
	}
	return in, out
}

func forEachDisjoint(e graph.Edge, negEdges []graph.Edge, ratio int, r linalg.Rand, emit func(c, d int)) {
	if len(negEdges) == 0 {
		return
	}
	found := 0
	for tries := 0; found < ratio && tries < ratio*maxRejections; tries++ {
		n := negEdges[r.Intn(len(negEdges))]
		if n.X == e.X || n.X == e.Y || n.Y == e.X || n.Y == e.Y {
			continue
		}
		emit(n.X, n.Y)
		found++
	}
}
