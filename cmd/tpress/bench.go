package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/tokenpress/internal/benchmark"
	"github.com/fyrsmithlabs/tokenpress/internal/compressor"
	"github.com/fyrsmithlabs/tokenpress/internal/encoder"
	"github.com/fyrsmithlabs/tokenpress/internal/tokencount"
)

var (
	benchDataset      string
	benchLimit        int
	benchRatio        float64
	benchSkipBaseline bool
	benchNoQuery      bool
	benchMaxTokens    int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Evaluate compression quality on a QA dataset",
	Long: `Bench compresses each item's context, asks the configured chat model
the item's multiple-choice question, and reports accuracy alongside token
reduction and compression latency. An uncompressed baseline condition runs
first unless --skip-baseline is set.

The dataset is a JSON array of LongBench-v2 style items:
  [{"context": ..., "question": ..., "choice_A": ..., ..., "answer": "B"}]

The chat endpoint and API key come from the benchmark section of the
config file or TOKENPRESS_BENCHMARK__* environment variables.

Examples:
  tpress bench -d longbench.json -n 25
  tpress bench -d longbench.json -r 0.34 --skip-baseline`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVarP(&benchDataset, "dataset", "d", "", "dataset JSON file (required)")
	benchCmd.Flags().IntVarP(&benchLimit, "limit", "n", 0, "evaluate only the first n items")
	benchCmd.Flags().Float64VarP(&benchRatio, "ratio", "r", 0, "target compression ratio in (0,1] (default from config)")
	benchCmd.Flags().BoolVar(&benchSkipBaseline, "skip-baseline", false, "skip the uncompressed control condition")
	benchCmd.Flags().BoolVar(&benchNoQuery, "no-query", false, "compress without the item's question as query")
	benchCmd.Flags().IntVar(&benchMaxTokens, "max-context-tokens", 0, "drop items whose context exceeds this many tokens")
	_ = benchCmd.MarkFlagRequired("dataset")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	counter, err := tokencount.NewCounter("")
	if err != nil {
		return fmt.Errorf("failed to create token counter: %w", err)
	}

	items, err := benchmark.LoadDataset(benchDataset)
	if err != nil {
		return err
	}
	if benchMaxTokens > 0 {
		before := len(items)
		items = benchmark.FilterByTokenBudget(items, counter, benchMaxTokens)
		fmt.Fprintf(cmd.ErrOrStderr(), "[tpress] %d/%d items within %d tokens\n",
			len(items), before, benchMaxTokens)
	}

	client, err := benchmark.NewClient(cfg.Benchmark)
	if err != nil {
		return fmt.Errorf("failed to create chat client: %w", err)
	}

	ctx := cmd.Context()
	comp, err := buildCompressor(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}
	defer encoder.ShutdownRuntime()
	defer comp.Close()

	var copts []compressor.Option
	if benchRatio != 0 {
		copts = append(copts, compressor.WithTargetRatio(benchRatio))
	}

	var conditions []benchmark.Condition
	if !benchSkipBaseline {
		conditions = append(conditions, benchmark.Baseline())
	}
	conditions = append(conditions, benchmark.Condition{
		Name: "compressed",
		Compress: func(ctx context.Context, text, query string) (string, error) {
			if benchNoQuery {
				query = ""
			}
			result, err := comp.CompressAuto(ctx, text, query, copts...)
			if err != nil {
				return "", err
			}
			return result.CompressedText, nil
		},
	})

	runner, err := benchmark.NewRunner(client, counter, logger)
	if err != nil {
		return err
	}

	var ropts []benchmark.RunOption
	if benchLimit > 0 {
		ropts = append(ropts, benchmark.WithLimit(benchLimit))
	}
	report, err := runner.Run(ctx, items, conditions, ropts...)
	if err != nil {
		return fmt.Errorf("benchmark run failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun %s over %d items:\n\n", report.RunID, report.Items)
	return report.WriteTable(cmd.OutOrStdout())
}
