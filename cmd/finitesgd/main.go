package main

import (
	"flag"
	"os"

	"github.com/cnclabs/svmembed/internal/cli"
	"github.com/cnclabs/svmembed/internal/models/finitesgd"
)

func main() {
	cfg := finitesgd.DefaultConfig()
	fs := flag.CommandLine
	opts := cli.Register(fs)
	dimensions := fs.Int("dimensions", cfg.Dimension, "Dimension of vertex representation")
	epochs := fs.Int("epochs", cfg.Epochs, "Number of passes over the vertices")
	negPenalty := fs.Float64("neg_penalty", cfg.NegPenalty, "Cost of a negative example relative to a positive one")
	regularizer := fs.Float64("regularizer", cfg.Regularizer, "Ridge weight")
	degreeNormPower := fs.Float64("degree_norm_power", cfg.DegreeNormPower, "Rescale the step by degree^power")

	fs.Usage = cli.Usage(fs, "SVMEmbed - Finite Embedding (SGD)",
		"./finitesgd -train net.txt -negative neg.txt -save rep.txt -dimensions 100 -epochs 100 -neg_penalty 1 -regularizer 0.01")

	cli.Main(fs, func() error {
		logger, err := cli.Parse(fs, os.Args[1:], opts, &cfg, cli.Overrides{
			"dimensions":        func() { cfg.Dimension = *dimensions },
			"epochs":            func() { cfg.Epochs = *epochs },
			"neg_penalty":       func() { cfg.NegPenalty = *negPenalty },
			"regularizer":       func() { cfg.Regularizer = *regularizer },
			"degree_norm_power": func() { cfg.DegreeNormPower = *degreeNormPower },
		})
		if err != nil {
			return err
		}
		cfg.Logger = logger

		pos, neg, vocab, err := cli.LoadGraphs(opts.Train, opts.Negative)
		if err != nil {
			return err
		}
		ctx, stop := cli.Context()
		defer stop()

		m, err := finitesgd.Train(ctx, pos, neg, cfg, opts.Rand())
		if err != nil {
			return err
		}
		return m.SaveWeights(opts.Save, vocab.Names())
	})
}
