// Package embeddings provides sentence embedding providers for query-aware
// compression. Three backends are supported: fastembed runs quantized ONNX
// models locally (the default, no network at inference time), openai talks to
// any OpenAI-compatible /v1/embeddings endpoint, and tei talks to a
// Text Embeddings Inference server's native /embed endpoint.
package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/tokenpress/internal/logging"
)

// Provider names accepted in Config.Provider.
const (
	ProviderFastEmbed = "fastembed"
	ProviderOpenAI    = "openai"
	ProviderTEI       = "tei"
)

// DefaultModel is the embedding model used when none is configured. It is
// small enough to run on CPU and matches the dimensionality the scoring
// pipeline was tuned against.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

// Provider generates sentence embeddings. Implementations must be safe for
// concurrent use.
type Provider interface {
	// EmbedDocuments embeds a batch of passages.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension returns the embedding vector size.
	Dimension() int
	// Close releases provider resources.
	Close() error
}

// Config selects and configures an embedding provider.
type Config struct {
	// Provider is one of "fastembed", "openai", or "tei". Empty selects
	// fastembed.
	Provider string `koanf:"provider"`
	// Model is the embedding model name. Empty selects DefaultModel.
	Model string `koanf:"model"`
	// BaseURL is the endpoint for the openai and tei providers.
	BaseURL string `koanf:"base_url"`
	// APIKey authenticates openai-compatible endpoints. Optional for
	// self-hosted servers.
	APIKey logging.Secret `koanf:"api_key"`
	// CacheDir is where fastembed stores downloaded models.
	CacheDir string `koanf:"cache_dir"`
	// MaxLength is the token truncation limit for local models.
	MaxLength int `koanf:"max_length"`
	// Timeout bounds HTTP requests for remote providers.
	Timeout time.Duration `koanf:"timeout"`
	// ShowProgress prints model download progress. Useful for interactive
	// runs, noise otherwise.
	ShowProgress bool `koanf:"show_progress"`
}

// NewDefaultConfig returns a Config that embeds locally via fastembed.
func NewDefaultConfig() Config {
	return Config{
		Provider:  ProviderFastEmbed,
		Model:     DefaultModel,
		MaxLength: 512,
		Timeout:   30 * time.Second,
	}
}

// Validate checks provider-specific requirements.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", ProviderFastEmbed:
	case ProviderOpenAI, ProviderTEI:
		if c.BaseURL == "" {
			return fmt.Errorf("%w: base_url is required for provider %q", ErrInvalidConfig, c.Provider)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("%w: max_length must not be negative", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// New builds the provider named by cfg. A nil logger is replaced with a
// no-op logger.
func New(cfg Config, logger *logging.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	var (
		provider Provider
		err      error
	)
	switch cfg.Provider {
	case "", ProviderFastEmbed:
		provider, err = newFastEmbedProvider(cfg)
	case ProviderOpenAI:
		provider, err = newOpenAIProvider(cfg, logger)
	case ProviderTEI:
		provider, err = newTEIProvider(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// modelDimensions maps known model names to their embedding size.
var modelDimensions = map[string]int{
	"BAAI/bge-small-en-v1.5":                 384,
	"BAAI/bge-base-en-v1.5":                  768,
	"BAAI/bge-small-zh-v1.5":                 512,
	"sentence-transformers/all-MiniLM-L6-v2": 384,
	"text-embedding-3-small":                 1536,
	"text-embedding-3-large":                 3072,
	"text-embedding-ada-002":                 1536,
}

// detectDimension guesses the embedding size from the model name. Exact
// matches win; otherwise common naming conventions are used.
func detectDimension(model string) int {
	if dim, ok := modelDimensions[model]; ok {
		return dim
	}
	switch {
	case strings.Contains(model, "base"):
		return 768
	case strings.Contains(model, "large"):
		return 1024
	case strings.Contains(model, "small"), strings.Contains(model, "mini"):
		return 384
	default:
		return 384
	}
}
