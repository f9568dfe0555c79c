package encoder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Default geometry for distilbert-base-uncased, the default encoder.
const (
	DefaultNumLayers  = 6
	DefaultNumHeads   = 12
	DefaultHiddenSize = 768
	DefaultMaxLength  = 450
)

// Config holds encoder model settings.
type Config struct {
	// ModelDir contains model.onnx and tokenizer.json.
	ModelDir string `koanf:"model_dir"`

	// MaxLength caps encoder input length; tokens beyond it are silently
	// dropped by the tokenizer.
	MaxLength int `koanf:"max_length"`

	// Model geometry. The ONNX graph must match.
	NumLayers  int `koanf:"num_layers"`
	NumHeads   int `koanf:"num_heads"`
	HiddenSize int `koanf:"hidden_size"`

	// InputNames and OutputNames override the graph tensor names when an
	// export used non-default ones. Empty uses input_ids/attention_mask
	// and last_hidden_state/attentions_<layer>.
	InputNames  []string `koanf:"input_names"`
	OutputNames []string `koanf:"output_names"`

	// LibraryPath points at the ONNX runtime shared library. Empty falls
	// back to the ONNX_PATH env var, then the managed install.
	LibraryPath string `koanf:"library_path"`
}

// NewDefaultConfig returns the distilbert-base-uncased defaults with the
// model expected under the user's tokenpress data directory.
func NewDefaultConfig() Config {
	return Config{
		ModelDir:   DefaultModelDir(),
		MaxLength:  DefaultMaxLength,
		NumLayers:  DefaultNumLayers,
		NumHeads:   DefaultNumHeads,
		HiddenSize: DefaultHiddenSize,
	}
}

// DefaultModelDir returns the managed location for encoder model files.
func DefaultModelDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "tokenpress", "models", "distilbert-base-uncased")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ModelDir == "" {
		return errors.New("model_dir is required")
	}
	if c.MaxLength < 1 {
		return fmt.Errorf("max_length must be positive, got %d", c.MaxLength)
	}
	if c.NumLayers < 1 {
		return fmt.Errorf("num_layers must be positive, got %d", c.NumLayers)
	}
	if c.NumHeads < 1 {
		return fmt.Errorf("num_heads must be positive, got %d", c.NumHeads)
	}
	if c.HiddenSize < 1 {
		return fmt.Errorf("hidden_size must be positive, got %d", c.HiddenSize)
	}
	if len(c.InputNames) != 0 && len(c.InputNames) != 2 {
		return fmt.Errorf("input_names must hold exactly 2 names, got %d", len(c.InputNames))
	}
	if len(c.OutputNames) != 0 && len(c.OutputNames) != c.NumLayers+1 {
		return fmt.Errorf("output_names must hold num_layers+1 names, got %d", len(c.OutputNames))
	}
	return nil
}

func (c *Config) inputNames() []string {
	if len(c.InputNames) == 2 {
		return c.InputNames
	}
	return []string{"input_ids", "attention_mask"}
}

func (c *Config) outputNames() []string {
	if len(c.OutputNames) == c.NumLayers+1 {
		return c.OutputNames
	}
	names := make([]string, 0, c.NumLayers+1)
	names = append(names, "last_hidden_state")
	for l := 0; l < c.NumLayers; l++ {
		names = append(names, fmt.Sprintf("attentions_%d", l))
	}
	return names
}
