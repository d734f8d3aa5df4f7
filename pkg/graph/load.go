package graph

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Monitor is how many lines are read between progress records.
const Monitor = 10000

// Vocabulary maps vertex names to dense node indices. Loading a positive
// and a negative edge list through the same Vocabulary gives both graphs
// the same index space.
type Vocabulary struct {
	hash map[string]int
	keys []string
}

// NewVocabulary creates an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{hash: make(map[string]int)}
}

// Index returns name's index, assigning the next free one if it is new.
func (v *Vocabulary) Index(name string) int {
	if id, ok := v.hash[name]; ok {
		return id
	}
	id := len(v.keys)
	v.hash[name] = id
	v.keys = append(v.keys, name)
	return id
}

// Lookup returns name's index without assigning one.
func (v *Vocabulary) Lookup(name string) (int, bool) {
	id, ok := v.hash[name]
	return id, ok
}

// Name returns the vertex name of index id, or "" if unknown.
func (v *Vocabulary) Name(id int) string {
	if id < 0 || id >= len(v.keys) {
		return ""
	}
	return v.keys[id]
}

// Names returns all names in index order.
func (v *Vocabulary) Names() []string {
	return v.keys
}

// Size returns the number of known vertices.
func (v *Vocabulary) Size() int {
	return len(v.keys)
}

// ReadEdgeList reads "from to [weight]" lines, registering vertex names in
// vocab. Blank lines and lines starting with '#' are skipped; weights are
// accepted but not used.
func ReadEdgeList(filename string, vocab *Vocabulary) ([]Edge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	slog.Info("loading network", "file", filename)

	var edges []Edge
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%s:%d: want \"from to [weight]\", got %q", filename, lineNo, line)
		}
		edges = append(edges, Edge{X: vocab.Index(parts[0]), Y: vocab.Index(parts[1])})
		if len(edges)%Monitor == 0 {
			slog.Debug("reading edges", "file", filename, "connections", len(edges))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filename, err)
	}
	slog.Info("network loaded", "file", filename, "connections", len(edges), "vertices", vocab.Size())
	return edges, nil
}

// Build creates an undirected graph with size nodes from edges.
func Build(size int, edges []Edge) (*Graph, error) {
	g := New(size)
	for _, e := range edges {
		if err := g.AddEdge(e.X, e.Y); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// BuildDirected creates a directed graph with size nodes from edges.
func BuildDirected(size int, edges []Edge) (*DGraph, error) {
	g := NewDirected(size)
	for _, e := range edges {
		if err := g.AddEdge(e.X, e.Y); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ReadLabels reads "vertex class" lines, where class is a non-negative
// integer. Vertex names are registered in vocab. Blank lines and lines
// starting with '#' are skipped; a vertex listed twice keeps its last class.
func ReadLabels(filename string, vocab *Vocabulary) (map[int]int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	labels := make(map[int]int)
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s:%d: want \"vertex class\", got %q", filename, lineNo, line)
		}
		class, err := strconv.Atoi(parts[1])
		if err != nil || class < 0 {
			return nil, fmt.Errorf("%s:%d: bad class %q", filename, lineNo, parts[1])
		}
		labels[vocab.Index(parts[0])] = class
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filename, err)
	}
	slog.Info("labels loaded", "file", filename, "labeled", len(labels))
	return labels, nil
}
