package main

import (
	"flag"
	"os"

	"github.com/cnclabs/svmembed/internal/cli"
	"github.com/cnclabs/svmembed/internal/models/directed"
)

func main() {
	cfg := directed.DefaultConfig()
	fs := flag.CommandLine
	opts := cli.Register(fs)
	dimensions := fs.Int("dimensions", cfg.Dimension, "Dimension of vertex representation")
	epochs := fs.Int("epochs", cfg.Epochs, "Number of coordinate-ascent passes")
	loss := cfg.Loss
	fs.Var(&loss, "loss", "Loss of the per-node SVM (hinge or squared_hinge)")
	negPenalty := fs.Float64("neg_penalty", cfg.NegPenalty, "Cost of a negative example relative to a positive one")
	regularizer := fs.Float64("regularizer", cfg.Regularizer, "Divides every penalty")
	degreeNormPower := fs.Float64("degree_norm_power", cfg.DegreeNormPower, "Rescale penalties by degree^power")
	contrastive := fs.Bool("contrastive", cfg.Contrastive, "Pair every arc with sampled negative arcs")
	sampleRatio := fs.Int("sample_ratio", cfg.SampleRatio, "Negative edges paired with each positive edge")

	fs.Usage = cli.Usage(fs, "SVMEmbed - Directed Finite Embedding",
		"./directed -train net.txt -negative neg.txt -save rep.txt -dimensions 100 -neg_penalty 0.03 -regularizer 5 -contrastive -sample_ratio 4")

	cli.Main(fs, func() error {
		logger, err := cli.Parse(fs, os.Args[1:], opts, &cfg, cli.Overrides{
			"dimensions":        func() { cfg.Dimension = *dimensions },
			"epochs":            func() { cfg.Epochs = *epochs },
			"loss":              func() { cfg.Loss = loss },
			"neg_penalty":       func() { cfg.NegPenalty = *negPenalty },
			"regularizer":       func() { cfg.Regularizer = *regularizer },
			"degree_norm_power": func() { cfg.DegreeNormPower = *degreeNormPower },
			"contrastive":       func() { cfg.Contrastive = *contrastive },
			"sample_ratio":      func() { cfg.SampleRatio = *sampleRatio },
		})
		if err != nil {
			return err
		}
		cfg.Logger = logger

		pos, neg, vocab, err := cli.LoadDirectedGraphs(opts.Train, opts.Negative)
		if err != nil {
			return err
		}
		ctx, stop := cli.Context()
		defer stop()

		m, err := directed.Train(ctx, pos, neg, cfg, opts.Rand())
		if err != nil {
			return err
		}
		return m.SaveWeights(opts.Save, vocab.Names())
	})
}
