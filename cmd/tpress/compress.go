package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/tokenpress/internal/compressor"
	"github.com/fyrsmithlabs/tokenpress/internal/encoder"
)

var (
	compressFile    string
	compressText    string
	compressQuery   string
	compressRatio   float64
	compressChunked bool
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress text by dropping low-importance tokens",
	Long: `Compress scores every token with the local encoder and keeps only
the highest-importance ones. The compressed text goes to stdout so it can
be piped into other tools; the token summary goes to stderr.

Examples:
  tpress compress -t "long prompt text here" -q "what matters"
  tpress compress -f notes.txt -r 0.5
  cat transcript.txt | tpress compress -f - -q "decisions made"`,
	Args: cobra.NoArgs,
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().StringVarP(&compressFile, "file", "f", "", "read input from file (- for stdin)")
	compressCmd.Flags().StringVarP(&compressText, "text", "t", "", "input text")
	compressCmd.Flags().StringVarP(&compressQuery, "query", "q", "", "query to bias importance toward")
	compressCmd.Flags().Float64VarP(&compressRatio, "ratio", "r", 0, "target compression ratio in (0,1] (default from config)")
	compressCmd.Flags().BoolVar(&compressChunked, "chunked", false, "force chunked compression regardless of input size")
}

func runCompress(cmd *cobra.Command, args []string) error {
	text, err := readInput(compressText, compressFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx := cmd.Context()
	comp, err := buildCompressor(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}
	defer encoder.ShutdownRuntime()
	defer comp.Close()

	var opts []compressor.Option
	if compressRatio != 0 {
		opts = append(opts, compressor.WithTargetRatio(compressRatio))
	}

	var result *compressor.Result
	if compressChunked {
		result, err = comp.CompressChunked(ctx, text, compressQuery, opts...)
	} else {
		result, err = comp.CompressAuto(ctx, text, compressQuery, opts...)
	}
	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.CompressedText)
	reduction := 0.0
	if result.OriginalTokens > 0 {
		reduction = 100 * (1 - float64(result.CompressedTokens)/float64(result.OriginalTokens))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "[tpress] %d -> %d tokens (%.1f%% reduction)\n",
		result.OriginalTokens, result.CompressedTokens, reduction)
	return nil
}

// readInput resolves the compress input from --text, --file, or stdin.
func readInput(text, file string, stdin io.Reader) (string, error) {
	if text != "" && file != "" {
		return "", fmt.Errorf("use either --text or --file, not both")
	}
	if text != "" {
		return text, nil
	}
	switch file {
	case "":
		return "", fmt.Errorf("no input: pass --text, --file, or --file - for stdin")
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
}
