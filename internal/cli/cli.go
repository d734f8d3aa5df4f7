// Package cli holds the plumbing shared by the training binaries: common
// flags, YAML configuration files, edge-list loading and logging setup.
package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"gopkg.in/yaml.v3"

	"github.com/cnclabs/svmembed/pkg/graph"
	"github.com/cnclabs/svmembed/pkg/linalg"
)

// ErrMissingFlag is returned when a required flag is empty.
var ErrMissingFlag = errors.New("cli: missing required flag")

// Options are the flags every binary accepts.
type Options struct {
	Train    string
	Negative string
	Save     string
	Config   string
	Seed     int64
	Verbose  bool
}

// Register adds the common flags to fs.
func Register(fs *flag.FlagSet) *Options {
	o := &Options{}
	fs.StringVar(&o.Train, "train", "", "Train the Network data")
	fs.StringVar(&o.Negative, "negative", "", "Negative (non-edge) Network data sharing the train vertex names")
	fs.StringVar(&o.Save, "save", "", "Save the representation data")
	fs.StringVar(&o.Config, "config", "", "YAML file with hyperparameters; explicit flags take precedence")
	fs.Int64Var(&o.Seed, "seed", 1, "Random seed")
	fs.BoolVar(&o.Verbose, "verbose", false, "Log every epoch")
	return o
}

// Check reports the first missing required flag.
func (o *Options) Check() error {
	switch {
	case o.Train == "":
		return fmt.Errorf("%w: -train", ErrMissingFlag)
	case o.Negative == "":
		return fmt.Errorf("%w: -negative", ErrMissingFlag)
	case o.Save == "":
		return fmt.Errorf("%w: -save", ErrMissingFlag)
	}
	return nil
}

// Rand returns the seeded random source.
func (o *Options) Rand() linalg.Rand {
	return linalg.NewRand(o.Seed)
}

// Usage returns a flag.Usage function printing the banner, the flag
// defaults and an example command line.
func Usage(fs *flag.FlagSet, description, example string) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintln(out, "[SVMEmbed-Go]")
		fmt.Fprintf(out, "\tGolang implementation of %s\n", description)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Options Description:")
		fs.PrintDefaults()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintln(out, example)
	}
}

// NewLogger returns a text logger on w; verbose enables debug records.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// LoadConfig decodes the YAML file at path into cfg. An empty path leaves
// cfg untouched. Unknown keys are rejected.
func LoadConfig(path string, cfg any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return DecodeConfig(data, cfg)
}

// DecodeConfig decodes YAML into cfg, rejecting unknown keys.
func DecodeConfig(data []byte, cfg any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Overrides maps flag names to functions copying the flag's value into
// the configuration.
type Overrides map[string]func()

// Apply runs the override of every flag explicitly set on fs.
func (o Overrides) Apply(fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		if fn, ok := o[f.Name]; ok {
			fn()
		}
	})
}

// Parse parses args into fs, checks the common flags, loads the config
// file into cfg and then applies the explicitly set flags on top. The
// returned logger writes to stderr and is installed as the slog default.
func Parse(fs *flag.FlagSet, args []string, opts *Options, cfg any, overrides Overrides) (*slog.Logger, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if err := LoadConfig(opts.Config, cfg); err != nil {
		return nil, err
	}
	overrides.Apply(fs)
	logger := NewLogger(os.Stderr, opts.Verbose)
	slog.SetDefault(logger)
	return logger, nil
}

// Main runs fn and exits non-zero on failure. A missing required flag
// prints the usage banner instead of the error.
func Main(fs *flag.FlagSet, fn func() error) {
	err := fn()
	if err == nil {
		return
	}
	if errors.Is(err, ErrMissingFlag) || errors.Is(err, flag.ErrHelp) {
		fs.Usage()
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

// LoadGraphs reads the positive and negative edge lists as undirected
// graphs over one shared vocabulary.
func LoadGraphs(posFile, negFile string) (pos, neg *graph.Graph, vocab *graph.Vocabulary, err error) {
	vocab = graph.NewVocabulary()
	posEdges, err := graph.ReadEdgeList(posFile, vocab)
	if err != nil {
		return nil, nil, nil, err
	}
	negEdges, err := graph.ReadEdgeList(negFile, vocab)
	if err != nil {
		return nil, nil, nil, err
	}
	if pos, err = graph.Build(vocab.Size(), posEdges); err != nil {
		return nil, nil, nil, err
	}
	if neg, err = graph.Build(vocab.Size(), negEdges); err != nil {
		return nil, nil, nil, err
	}
	return pos, neg, vocab, nil
}

// LoadDirectedGraphs is LoadGraphs for arc lists.
func LoadDirectedGraphs(posFile, negFile string) (pos, neg *graph.DGraph, vocab *graph.Vocabulary, err error) {
	vocab = graph.NewVocabulary()
	posEdges, err := graph.ReadEdgeList(posFile, vocab)
	if err != nil {
		return nil, nil, nil, err
	}
	negEdges, err := graph.ReadEdgeList(negFile, vocab)
	if err != nil {
		return nil, nil, nil, err
	}
	if pos, err = graph.BuildDirected(vocab.Size(), posEdges); err != nil {
		return nil, nil, nil, err
	}
	if neg, err = graph.BuildDirected(vocab.Size(), negEdges); err != nil {
		return nil, nil, nil, err
	}
	return pos, neg, vocab, nil
}

// Context returns a context cancelled on interrupt. Training stops at the
// next epoch boundary.
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
