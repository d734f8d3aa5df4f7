// Package graph provides the adjacency-list graphs the embedding variants
// train on: the positive graph of observed edges and the negative graph of
// sampled non-edges.
package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeOutOfRange is returned for a node index outside [0, Size).
	ErrNodeOutOfRange = errors.New("graph: node index out of range")

	// ErrSizeMismatch is returned when two graphs that must share node
	// indices have different sizes.
	ErrSizeMismatch = errors.New("graph: node count mismatch")
)

// Edge is an (x, y) node pair.
type Edge struct {
	X, Y int
}

// Graph is an undirected graph over nodes 0..Size()-1. Each undirected edge
// appears in both endpoints' adjacency lists.
type Graph struct {
	edges [][]int
}

// New creates an undirected graph with size nodes and no edges.
func New(size int) *Graph {
	return &Graph{edges: make([][]int, size)}
}

// Size returns the number of nodes.
func (g *Graph) Size() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}

// AddEdge adds the undirected edge x-y.
func (g *Graph) AddEdge(x, y int) error {
	if err := checkNode(x, len(g.edges)); err != nil {
		return err
	}
	if err := checkNode(y, len(g.edges)); err != nil {
		return err
	}
	g.edges[x] = append(g.edges[x], y)
	g.edges[y] = append(g.edges[y], x)
	return nil
}

// Neighbors returns x's adjacency list. The slice is owned by the graph.
func (g *Graph) Neighbors(x int) []int {
	return g.edges[x]
}

// Degree returns the length of x's adjacency list.
func (g *Graph) Degree(x int) int {
	return len(g.edges[x])
}

// Edges lists every adjacency entry as a directed pair, so an undirected
// edge x-y is reported as both (x, y) and (y, x).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for x, adj := range g.edges {
		for _, y := range adj {
			out = append(out, Edge{X: x, Y: y})
		}
	}
	return out
}

// DGraph is a directed graph keeping both out- and in-adjacency.
type DGraph struct {
	out, in [][]int
}

// NewDirected creates a directed graph with size nodes and no edges.
func NewDirected(size int) *DGraph {
	return &DGraph{out: make([][]int, size), in: make([][]int, size)}
}

// Size returns the number of nodes.
func (g *DGraph) Size() int {
	if g == nil {
		return 0
	}
	return len(g.out)
}

// AddEdge adds the arc x->y.
func (g *DGraph) AddEdge(x, y int) error {
	if err := checkNode(x, len(g.out)); err != nil {
		return err
	}
	if err := checkNode(y, len(g.out)); err != nil {
		return err
	}
	g.out[x] = append(g.out[x], y)
	g.in[y] = append(g.in[y], x)
	return nil
}

// Out returns the heads of x's outgoing arcs.
func (g *DGraph) Out(x int) []int {
	return g.out[x]
}

// In returns the tails of x's incoming arcs.
func (g *DGraph) In(x int) []int {
	return g.in[x]
}

// Edges lists every arc.
func (g *DGraph) Edges() []Edge {
	var out []Edge
	for x, adj := range g.out {
		for _, y := range adj {
			out = append(out, Edge{X: x, Y: y})
		}
	}
	return out
}

// Sized is implemented by Graph and DGraph.
type Sized interface {
	Size() int
}

// CheckCompatible verifies that the negative graph shares the positive
// graph's node indices.
func CheckCompatible(pos, neg Sized) error {
	if isNil(pos) || isNil(neg) {
		return fmt.Errorf("%w: nil graph", ErrSizeMismatch)
	}
	if pos.Size() != neg.Size() {
		return fmt.Errorf("%w: positive has %d nodes, negative has %d", ErrSizeMismatch, pos.Size(), neg.Size())
	}
	return nil
}

func isNil(g Sized) bool {
	switch g := g.(type) {
	case nil:
		return true
	case *Graph:
		return g == nil
	case *DGraph:
		return g == nil
	}
	return false
}

func checkNode(x, size int) error {
	if x < 0 || x >= size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrNodeOutOfRange, x, size)
	}
	return nil
}
