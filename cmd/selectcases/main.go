package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/dataset"
	"github.com/Mineru98/case-selection-go/models"
	"github.com/Mineru98/case-selection-go/selector"
)

func main() {
	app := &cli.App{
		Name:    "selectcases",
		Version: "v0.1.0",
		Usage:   "Select in-context demonstration methods from a code corpus",
		Description: `Loads a JSON corpus of methods, runs one selection strategy and writes a
JSON report.

Examples:
  # BM25 over method bodies, 5 cases for each of the first 500 methods
  selectcases --data methods.json --output bm25.json

  # one representative per embedding cluster
  selectcases --data methods.json --strategy task_kmeans --clusters 8 \
    --model unixcoder.onnx --tokenizer tokenizer.json`,
		Flags:  flags,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var flags = []cli.Flag{
	// Input and output
	&cli.StringFlag{
		Name:     "data",
		Aliases:  []string{"d"},
		Usage:    "Path to the method corpus JSON",
		Required: true,
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Path of the report to write",
		Value:   "selection.json",
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML config file; flags override its values",
		EnvVars: []string{"SELECTCASES_CONFIG"},
	},

	// Selection
	&cli.StringFlag{
		Name:    "strategy",
		Aliases: []string{"s"},
		Usage:   "random, bm25, task_kmeans, nearest_neighbor, state or instance_kmeans",
	},
	&cli.IntFlag{
		Name:    "number",
		Aliases: []string{"n"},
		Usage:   "Cases selected per query (or per task)",
	},
	&cli.StringFlag{
		Name:  "key",
		Usage: "Record field used as the text signal",
	},
	&cli.IntFlag{
		Name:  "clusters",
		Usage: "Cluster count for task_kmeans",
	},
	&cli.Uint64Flag{
		Name:  "seed",
		Usage: "Seed for sampling and k-means initialisation",
	},
	&cli.IntFlag{
		Name:  "queries",
		Usage: "Use the first N corpus entries as queries",
		Value: 500,
	},
	&cli.BoolFlag{
		Name:  "no-camel",
		Usage: "Disable camel-case splitting for bm25",
	},

	// Encoder
	&cli.StringFlag{
		Name:    "model",
		Usage:   "UniXcoder ONNX model",
		EnvVars: []string{"SELECTCASES_MODEL"},
	},
	&cli.StringFlag{
		Name:    "tokenizer",
		Usage:   "tokenizer.json matching the model",
		EnvVars: []string{"SELECTCASES_TOKENIZER"},
	},
	&cli.StringFlag{
		Name:    "ort-lib",
		Usage:   "Path to the onnxruntime shared library",
		EnvVars: []string{"ONNXRUNTIME_LIB"},
	},
	&cli.IntFlag{
		Name:  "workers",
		Usage: "Parallel encoding batches",
	},
	&cli.IntFlag{
		Name:  "batch-size",
		Usage: "Texts per encoder batch",
	},

	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Debug logging",
	},
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := configFromCLI(c)
	if err != nil {
		return err
	}

	pool, err := dataset.LoadJSON(c.String("data"))
	if err != nil {
		return err
	}
	queries := pool
	if n := c.Int("queries"); n >= 0 && n < len(pool) {
		queries = pool[:n]
	}
	logger.Info("corpus loaded",
		slog.Int("candidates", len(pool)),
		slog.Int("queries", len(queries)),
	)

	opts := []selector.Option{selector.WithLogger(logger)}
	if cfg.Strategy.NeedsEncoder() {
		encoder, err := models.NewUniXcoder(cfg.Encoder)
		if err != nil {
			return fmt.Errorf("failed to load encoder: %w", err)
		}
		defer encoder.Close()
		opts = append(opts, selector.WithEncoder(encoder))
	}

	sel, err := selector.New(cfg, opts...)
	if err != nil {
		return err
	}
	rng := invocationRand(c.IsSet("seed") || cfg.Seed != 0, time.Now())
	result, err := sel.Select(c.Context, pool, queries, rng)
	if err != nil {
		return err
	}

	report := dataset.NewReport(sel.Config(), len(pool), len(queries), result)
	if err := dataset.WriteReportFile(c.String("output"), report); err != nil {
		return err
	}
	logger.Info("report written",
		slog.String("path", c.String("output")),
		slog.String("run_id", report.RunID),
	)
	return nil
}

// invocationRand returns nil when a seed was configured, so the selector draws
// from Config.Seed. Otherwise every run gets its own clock-seeded source.
func invocationRand(seeded bool, now time.Time) *rand.Rand {
	if seeded {
		return nil
	}
	seed := uint64(now.UnixNano())
	return rand.New(rand.NewPCG(seed, seed^0x2545f4914f6cdd1d))
}

// configFromCLI loads the config file and applies the flags that were set
func configFromCLI(c *cli.Context) (caseselection.Config, error) {
	cfg, err := caseselection.LoadConfig(c.String("config"))
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("strategy") {
		cfg.Strategy = caseselection.StrategyKind(c.String("strategy"))
	}
	if c.IsSet("number") {
		cfg.Number = c.Int("number")
	}
	if c.IsSet("key") {
		cfg.Key = c.String("key")
	}
	if c.IsSet("clusters") {
		cfg.ClusterNumber = c.Int("clusters")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Uint64("seed")
		cfg.ClusterSeed = cfg.Seed
	}
	if c.Bool("no-camel") {
		cfg.NoCamelSplit = true
	}
	if c.IsSet("model") {
		cfg.Encoder.ModelPath = c.String("model")
	}
	if c.IsSet("tokenizer") {
		cfg.Encoder.TokenizerPath = c.String("tokenizer")
	}
	if c.IsSet("ort-lib") {
		cfg.Encoder.OrtLibrary = c.String("ort-lib")
	}
	if c.IsSet("workers") {
		cfg.Encoder.Workers = c.Int("workers")
	}
	if c.IsSet("batch-size") {
		cfg.Encoder.BatchSize = c.Int("batch-size")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
