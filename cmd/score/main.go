package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cnclabs/svmembed/internal/cli"
	"github.com/cnclabs/svmembed/internal/models/baseline"
	"github.com/cnclabs/svmembed/pkg/embed"
	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
)

func main() {
	fs := flag.CommandLine
	model := fs.String("model", "embedding", "Scorer: embedding, common_neighbor, adamic_adar, label_propagation or random")
	train := fs.String("train", "", "Train the Network data (common_neighbor, adamic_adar, label_propagation)")
	embedding := fs.String("embedding", "", "Representation data written by a trainer (embedding)")
	labels := fs.String("labels", "", "Vertex classes, one \"vertex class\" per line (label_propagation)")
	pairs := fs.String("pairs", "", "Vertex pairs to score, one \"from to\" per line")
	normalizer := fs.Float64("normalizer", baseline.DefaultNormalizer, "Divides common-neighbour scores")
	epochs := fs.Int("epochs", baseline.DefaultPropagationEpochs, "Propagation sweeps (label_propagation)")
	seed := fs.Int64("seed", 1, "Random seed (label_propagation, random)")

	fs.Usage = cli.Usage(fs, "SVMEmbed - Pair Scoring",
		"./score -model embedding -embedding rep.txt -pairs test.txt")

	cli.Main(fs, func() error {
		flag.Parse()
		if *pairs == "" {
			return fmt.Errorf("%w: -pairs", cli.ErrMissingFlag)
		}
		logger := cli.NewLogger(os.Stderr, false)
		slog.SetDefault(logger)
		vocab := graph.NewVocabulary()

		var m embed.Model
		switch *model {
		case "embedding":
			if *embedding == "" {
				return fmt.Errorf("%w: -embedding", cli.ErrMissingFlag)
			}
			t, err := embed.LoadEmbeddings(*embedding, vocab)
			if err != nil {
				return err
			}
			m = baseline.NewPredefined(t)
		case "common_neighbor", "adamic_adar":
			if *train == "" {
				return fmt.Errorf("%w: -train", cli.ErrMissingFlag)
			}
			edges, err := graph.ReadEdgeList(*train, vocab)
			if err != nil {
				return err
			}
			g, err := graph.Build(vocab.Size(), edges)
			if err != nil {
				return err
			}
			if *model == "adamic_adar" {
				m = baseline.NewAdamicAdar(g)
			} else if m, err = baseline.NewCommonNeighbor(g, *normalizer); err != nil {
				return err
			}
		case "label_propagation":
			if *train == "" {
				return fmt.Errorf("%w: -train", cli.ErrMissingFlag)
			}
			if *labels == "" {
				return fmt.Errorf("%w: -labels", cli.ErrMissingFlag)
			}
			edges, err := graph.ReadEdgeList(*train, vocab)
			if err != nil {
				return err
			}
			classes, err := graph.ReadLabels(*labels, vocab)
			if err != nil {
				return err
			}
			g, err := graph.Build(vocab.Size(), edges)
			if err != nil {
				return err
			}
			cfg := baseline.DefaultPropagationConfig()
			cfg.Epochs = *epochs
			cfg.Logger = logger
			ctx, stop := cli.Context()
			defer stop()
			if m, err = baseline.PropagateLabels(ctx, g, classes, cfg, linalg.NewRand(*seed)); err != nil {
				return err
			}
		case "random":
			m = baseline.NewRandom(linalg.NewRand(*seed))
		default:
			return errors.New("unknown model " + *model)
		}

		known := vocab.Size()
		queries, err := graph.ReadEdgeList(*pairs, vocab)
		if err != nil {
			return err
		}
		if *model == "random" {
			known = vocab.Size()
		}
		out := bufio.NewWriter(os.Stdout)
		skipped := 0
		for _, q := range queries {
			if q.X >= known || q.Y >= known {
				skipped++
				continue
			}
			fmt.Fprintf(out, "%s %s %.6f\n", vocab.Name(q.X), vocab.Name(q.Y), m.Evaluate(q.X, q.Y))
		}
		if skipped > 0 {
			logger.Warn("pairs with unknown vertices skipped", "count", skipped)
		}
		return out.Flush()
	})
}
