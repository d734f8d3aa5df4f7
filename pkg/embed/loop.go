package embed

import (
	"context"
	"log/slog"

	"github.com/cnclabs/svmembed/pkg/linalg"
)

// Loop visits every node once per epoch in a fresh random order.
//
// Updates are applied in place and in sequence; a node visited later in an
// epoch sees the embeddings already rewritten earlier in the same epoch.
type Loop struct {
	Epochs int
	Rand   linalg.Rand
	Logger *slog.Logger
}

// Run executes the full epoch budget. There is no convergence test. The
// context is only consulted between epochs.
func (l *Loop) Run(ctx context.Context, size int, visit func(epoch, x int) error) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	order := make([]int, size)
	linalg.Identity(order)
	for epoch := 0; epoch < l.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		linalg.Shuffle(order, l.Rand)
		for _, x := range order {
			if err := visit(epoch, x); err != nil {
				return err
			}
		}
		logger.Debug("epoch finished", "epoch", epoch+1, "epochs", l.Epochs,
			"progress", float64(epoch+1)/float64(l.Epochs)*100)
	}
	return nil
}
