package main

import (
	"flag"
	"os"

	"github.com/cnclabs/svmembed/internal/cli"
	"github.com/cnclabs/svmembed/internal/models/kernel"
)

func main() {
	cfg := kernel.DefaultConfig()
	fs := flag.CommandLine
	opts := cli.Register(fs)
	epochs := fs.Int("epochs", cfg.Epochs, "Number of coordinate-ascent passes")
	solverEpochs := fs.Int("solver_epochs", cfg.SolverEpochs, "Passes of one kernel solver call")
	loss := cfg.Loss
	fs.Var(&loss, "loss", "Loss of the per-node SVM (hinge or squared_hinge)")
	negPenalty := fs.Float64("neg_penalty", cfg.NegPenalty, "Cost of a negative example relative to a positive one")
	regularizer := fs.Float64("regularizer", cfg.Regularizer, "Divides every penalty")
	degreeNormPower := fs.Float64("degree_norm_power", cfg.DegreeNormPower, "Rescale penalties by degree^power")

	fs.Usage = cli.Usage(fs, "SVMEmbed - Kernel Embedding",
		"./kernel -train net.txt -negative neg.txt -save rep.txt -epochs 10 -neg_penalty 0.03 -regularizer 30")

	cli.Main(fs, func() error {
		logger, err := cli.Parse(fs, os.Args[1:], opts, &cfg, cli.Overrides{
			"epochs":            func() { cfg.Epochs = *epochs },
			"solver_epochs":     func() { cfg.SolverEpochs = *solverEpochs },
			"loss":              func() { cfg.Loss = loss },
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

		m, err := kernel.Train(ctx, pos, neg, cfg, opts.Rand())
		if err != nil {
			return err
		}
		return m.SaveWeights(opts.Save, vocab.Names())
	})
}
