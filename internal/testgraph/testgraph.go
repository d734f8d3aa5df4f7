// Package testgraph builds the small fixtures the model tests share.
package testgraph

import (
	"github.com/cnclabs/svmembed/pkg/graph"
)

// Edges of the seven-node graph: the 4-cycle 0-1-3-2 and the triangle
// 4-5-6, joined by the bridge 3-4.
var Edges = [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}, {3, 4}, {4, 5}, {4, 6}, {5, 6}}

// Clusters of the seven-node graph.
var (
	Near = []int{0, 1, 2, 3}
	Far  = []int{4, 5, 6}
)

// SevenNode returns the seven-node graph and a negative graph holding every
// non-adjacent pair that crosses the two clusters.
func SevenNode() (pos, neg *graph.Graph) {
	pos = graph.New(7)
	for _, e := range Edges {
		mustAdd(pos.AddEdge(e[0], e[1]))
	}
	neg = graph.New(7)
	for _, a := range Near {
		for _, b := range Far {
			if a == 3 && b == 4 {
				continue
			}
			mustAdd(neg.AddEdge(a, b))
		}
	}
	return pos, neg
}

// SevenNodeDirected orients every edge of SevenNode both ways, so a
// directed model sees the same structure through its in and out halves.
func SevenNodeDirected() (pos, neg *graph.DGraph) {
	upos, uneg := SevenNode()
	pos = graph.NewDirected(7)
	for _, e := range upos.Edges() {
		mustAdd(pos.AddEdge(e.X, e.Y))
	}
	neg = graph.NewDirected(7)
	for _, e := range uneg.Edges() {
		mustAdd(neg.AddEdge(e.X, e.Y))
	}
	return pos, neg
}

func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}
