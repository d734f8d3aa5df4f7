package main

import (
	"flag"
	"os"

	"github.com/cnclabs/svmembed/internal/cli"
	"github.com/cnclabs/svmembed/internal/models/sequential"
)

func main() {
	cfg := sequential.DefaultConfig()
	fs := flag.CommandLine
	opts := cli.Register(fs)
	dimensions := fs.Int("dimensions", cfg.Dimension, "Dimension of vertex representation")
	solverRounds := fs.Int("solver_rounds", cfg.SolverRounds, "Solver calls per vertex")
	loss := cfg.Loss
	fs.Var(&loss, "loss", "Loss of the per-node SVM (hinge or squared_hinge)")
	negPenalty := fs.Float64("neg_penalty", cfg.NegPenalty, "Cost of a negative example relative to a positive one")
	regularizer := fs.Float64("regularizer", cfg.Regularizer, "Divides every penalty")
	degreeNormPower := fs.Float64("degree_norm_power", cfg.DegreeNormPower, "Rescale penalties by degree^power")

	fs.Usage = cli.Usage(fs, "SVMEmbed - Sequential Finite Embedding",
		"./sequential -train net.txt -negative neg.txt -save rep.txt -dimensions 100 -solver_rounds 10 -neg_penalty 0.1 -regularizer 2")

	cli.Main(fs, func() error {
		logger, err := cli.Parse(fs, os.Args[1:], opts, &cfg, cli.Overrides{
			"dimensions":        func() { cfg.Dimension = *dimensions },
			"solver_rounds":     func() { cfg.SolverRounds = *solverRounds },
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

		m, err := sequential.Train(ctx, pos, neg, cfg, opts.Rand())
		if err != nil {
			return err
		}
		return m.SaveWeights(opts.Save, vocab.Names())
	})
}
