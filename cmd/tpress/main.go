// Package main implements the tpress CLI for compressing text and
// benchmarking compression quality.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/tokenpress/internal/compressor"
	"github.com/fyrsmithlabs/tokenpress/internal/config"
	"github.com/fyrsmithlabs/tokenpress/internal/encoder"
	"github.com/fyrsmithlabs/tokenpress/internal/logging"
)

var (
	// configPath is the config file used by commands that run models locally.
	configPath string
	// verbose attaches the configured logger instead of discarding logs.
	verbose bool

	// Version information (set via ldflags during build)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tpress",
	Short: "CLI for tokenpress text compression",
	Long: `tpress compresses text by scoring token importance with a local
transformer encoder and dropping the lowest-scoring tokens.

The compress and bench commands run the models in-process; health talks
to a running tokenpressd server.`,
	Version:       version,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/tokenpress/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log to stdout while running")
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tpress by Fyrsmith Labs\n")
		fmt.Fprintf(cmd.OutOrStdout(), "Version:    %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "Commit:     %s\n", gitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", buildDate)
	},
}

// loadConfig loads the CLI configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newLogger returns the configured logger when --verbose is set, otherwise
// a no-op logger so command output stays pipeable.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !verbose {
		return logging.NewNop(), nil
	}
	return logging.New(&cfg.Logging, nil)
}

// buildCompressor prepares the ONNX runtime and loads the local models for
// in-process compression.
func buildCompressor(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*compressor.Compressor, error) {
	if _, err := encoder.EnsureRuntime(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare onnx runtime: %w", err)
	}
	return compressor.NewFromConfig(ctx, cfg.Compressor, cfg.Encoder, cfg.Embeddings, logger, nil)
}
