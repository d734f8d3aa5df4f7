package embed

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cnclabs/svmembed/pkg/graph"
)

// ReadEmbeddings parses the format written by WriteEmbeddings. Vertex names
// are registered in vocab; the returned table has one row per vocabulary
// entry, and vertices missing from the input keep a zero row.
func ReadEmbeddings(r io.Reader, vocab *graph.Vocabulary) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("missing \"size dim\" header")
	}
	var size, dim int
	if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &size, &dim); err != nil {
		return nil, fmt.Errorf("line 1: bad header %q: %w", scanner.Text(), err)
	}
	if size < 0 || dim <= 0 {
		return nil, fmt.Errorf("line 1: bad header %q", scanner.Text())
	}

	ids := make([]int, 0, size)
	values := make([]float64, 0, size*dim)
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		if len(parts) != dim+1 {
			return nil, fmt.Errorf("line %d: want name and %d values, got %d fields", lineNo, dim, len(parts))
		}
		for _, s := range parts[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			values = append(values, v)
		}
		ids = append(ids, vocab.Index(parts[0]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(ids) != size {
		return nil, fmt.Errorf("header declares %d vertices, read %d", size, len(ids))
	}

	t := NewTable(vocab.Size(), dim)
	for k, id := range ids {
		copy(t.Row(id), values[k*dim:(k+1)*dim])
		t.RefreshNorm(id)
	}
	return t, nil
}

// LoadEmbeddings reads an embedding file written by SaveWeights.
func LoadEmbeddings(filename string, vocab *graph.Vocabulary) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	t, err := ReadEmbeddings(file, vocab)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	slog.Info("embeddings loaded", "file", filename, "vertices", t.Size(), "dimension", t.Dim())
	return t, nil
}
