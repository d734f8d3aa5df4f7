package main

import (
	"flag"
	"os"

	"github.com/cnclabs/svmembed/internal/cli"
	"github.com/cnclabs/svmembed/internal/models/contrast"
)

func main() {
	cfg := contrast.DefaultConfig()
	fs := flag.CommandLine
	opts := cli.Register(fs)
	dimensions := fs.Int("dimensions", cfg.Dimension, "Dimension of vertex representation")
	epochs := fs.Int("epochs", cfg.Epochs, "Number of coordinate-ascent passes")
	sampleRatio := fs.Int("sample_ratio", cfg.SampleRatio, "Negative edges paired with each positive edge")
	loss := cfg.Loss
	fs.Var(&loss, "loss", "Loss of the per-node SVM (hinge or squared_hinge)")
	regularizer := fs.Float64("regularizer", cfg.Regularizer, "Divides every penalty")
	degreeNormPower := fs.Float64("degree_norm_power", cfg.DegreeNormPower, "Rescale penalties by degree^power")

	fs.Usage = cli.Usage(fs, "SVMEmbed - Contrastive Finite Embedding",
		"./contrast -train net.txt -negative neg.txt -save rep.txt -dimensions 100 -sample_ratio 4 -regularizer 30")

	cli.Main(fs, func() error {
		logger, err := cli.Parse(fs, os.Args[1:], opts, &cfg, cli.Overrides{
			"dimensions":        func() { cfg.Dimension = *dimensions },
			"epochs":            func() { cfg.Epochs = *epochs },
			"sample_ratio":      func() { cfg.SampleRatio = *sampleRatio },
			"loss":              func() { cfg.Loss = loss },
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

		m, err := contrast.Train(ctx, pos, neg, cfg, opts.Rand())
		if err != nil {
			return err
		}
		return m.SaveWeights(opts.Save, vocab.Names())
	})
}
