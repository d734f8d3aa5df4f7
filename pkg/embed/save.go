package embed

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// WriteEmbeddings writes a "size dim" header followed by one
// "name v1 ... vdim" line per node.
func WriteEmbeddings(w io.Writer, names []string, m Model) error {
	bw := bufio.NewWriter(w)
	dim := 0
	if len(names) > 0 {
		dim = len(m.Embedding(0))
	}
	fmt.Fprintf(bw, "%d %d\n", len(names), dim)
	for vid, name := range names {
		vec := m.Embedding(vid)
		if len(vec) != dim {
			return fmt.Errorf("embedding of %q has dimension %d, want %d", name, len(vec), dim)
		}
		bw.WriteString(name)
		for _, v := range vec {
			fmt.Fprintf(bw, " %.6f", v)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// SaveWeights writes the embeddings of every named node to filename.
func SaveWeights(filename string, names []string, m Model) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteEmbeddings(file, names, m); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	slog.Info("model saved", "file", filename, "vertices", len(names))
	return nil
}
