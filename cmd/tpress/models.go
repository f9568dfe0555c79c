package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/tokenpress/internal/encoder"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage local encoder models and the ONNX runtime",
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download [name]",
	Short: "Download an encoder bundle and the ONNX runtime",
	Long: `Download fetches the named encoder bundle (model.onnx plus
tokenizer.json, exported with attention outputs enabled) and the ONNX
runtime shared library into ~/.config/tokenpress. Without a name it
fetches ` + encoder.DefaultModelName + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runModelsDownload,
}

var modelsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which model files are installed",
	Args:  cobra.NoArgs,
	RunE:  runModelsStatus,
}

func init() {
	modelsCmd.AddCommand(modelsDownloadCmd)
	modelsCmd.AddCommand(modelsStatusCmd)
}

func runModelsDownload(cmd *cobra.Command, args []string) error {
	name := encoder.DefaultModelName
	if len(args) == 1 {
		name = args[0]
	}
	ctx := cmd.Context()

	if encoder.RuntimeInstalled() {
		fmt.Fprintf(cmd.OutOrStdout(), "ONNX runtime %s already installed\n", encoder.RuntimeVersion)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Downloading ONNX runtime %s...\n", encoder.RuntimeVersion)
		if _, err := encoder.EnsureRuntime(ctx); err != nil {
			return fmt.Errorf("failed to download onnx runtime: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Downloading encoder %s...\n", name)
	if err := encoder.DownloadModel(ctx, name, ""); err != nil {
		return fmt.Errorf("failed to download model %s: %w", name, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Done.")
	return nil
}

func runModelsStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mark := func(ok bool) string {
		if ok {
			return "installed"
		}
		return "missing"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ONNX runtime %s:\t%s (%s)\n",
		encoder.RuntimeVersion, mark(encoder.RuntimeInstalled()), encoder.LibraryPath())
	fmt.Fprintf(cmd.OutOrStdout(), "Encoder model:\t%s (%s)\n",
		mark(encoder.ModelInstalled(cfg.Encoder.ModelDir)), cfg.Encoder.ModelDir)
	return nil
}
