package compressor

import (
	"fmt"

	"github.com/fyrsmithlabs/tokenpress/internal/scoring"
)

// Config controls scoring, selection, and chunking. Immutable after
// Validate.
type Config struct {
	// EncoderModel overrides the encoder model directory when set.
	EncoderModel string `koanf:"encoder_model"`
	// EmbeddingModel overrides the embedding model name when set.
	EmbeddingModel string `koanf:"embedding_model"`

	// AttentionWeight, SemanticWeight, and QueryWeight blend the three
	// signals. The weights are relative: each fusion renormalizes them to
	// sum 1 over the signals present, with the query weight excluded
	// entirely when no query is given.
	AttentionWeight float64 `koanf:"attention_weight"`
	SemanticWeight  float64 `koanf:"semantic_weight"`
	QueryWeight     float64 `koanf:"query_weight"`

	// TargetRatio is the fraction of content tokens to keep, in (0, 1].
	TargetRatio float64 `koanf:"target_ratio"`
	// MinTokens floors the keep count. Inputs at or below it pass through
	// verbatim.
	MinTokens int `koanf:"min_tokens"`
	// HardThreshold floors the selection threshold, in [0, 1].
	HardThreshold float64 `koanf:"hard_threshold"`

	// LayerWeighting is "linear", "exponential", or "last-only". Empty means
	// linear.
	LayerWeighting string `koanf:"layer_weighting"`

	// UsePositionBias boosts document start and end scores.
	UsePositionBias    bool    `koanf:"use_position_bias"`
	PositionBoostStart float64 `koanf:"position_boost_start"`
	PositionBoostEnd   float64 `koanf:"position_boost_end"`

	// QueryAware enables the query relevance signal.
	QueryAware bool `koanf:"query_aware"`

	// EnableChunking lets CompressAuto split long inputs.
	EnableChunking bool `koanf:"enable_chunking"`
	// ChunkSize is the words-per-chunk budget and the encoder truncation
	// length.
	ChunkSize int `koanf:"chunk_size"`
	// AutoChunkWords is the word count above which CompressAuto chunks.
	AutoChunkWords int `koanf:"auto_chunk_words"`
}

// NewDefaultConfig returns the tuned defaults.
func NewDefaultConfig() Config {
	return Config{
		AttentionWeight:    0.4,
		SemanticWeight:     0.3,
		QueryWeight:        0.3,
		TargetRatio:        0.34,
		MinTokens:          50,
		HardThreshold:      0.0,
		LayerWeighting:     scoring.LayerWeightingLinear,
		UsePositionBias:    true,
		PositionBoostStart: 1.2,
		PositionBoostEnd:   1.1,
		QueryAware:         true,
		EnableChunking:     true,
		ChunkSize:          450,
		AutoChunkWords:     400,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.AttentionWeight < 0 || c.SemanticWeight < 0 || c.QueryWeight < 0 {
		return fmt.Errorf("%w: signal weights must not be negative", ErrInvalidConfig)
	}
	if c.AttentionWeight+c.SemanticWeight <= 0 {
		return fmt.Errorf("%w: attention_weight and semantic_weight must not both be zero", ErrInvalidConfig)
	}
	if c.TargetRatio <= 0 || c.TargetRatio > 1 {
		return fmt.Errorf("%w: target_ratio %v not in (0, 1]", ErrInvalidRatio, c.TargetRatio)
	}
	if c.MinTokens < 0 {
		return fmt.Errorf("%w: min_tokens must not be negative", ErrInvalidConfig)
	}
	if c.HardThreshold < 0 || c.HardThreshold > 1 {
		return fmt.Errorf("%w: hard_threshold %v not in [0, 1]", ErrInvalidConfig, c.HardThreshold)
	}
	switch c.LayerWeighting {
	case "", scoring.LayerWeightingLinear, scoring.LayerWeightingExponential, scoring.LayerWeightingLastOnly:
	default:
		return fmt.Errorf("%w: unknown layer_weighting %q", ErrInvalidConfig, c.LayerWeighting)
	}
	if c.UsePositionBias {
		if c.PositionBoostStart < 1 || c.PositionBoostEnd < 1 {
			return fmt.Errorf("%w: position boosts must be at least 1", ErrInvalidConfig)
		}
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidConfig)
	}
	if c.AutoChunkWords < 0 {
		return fmt.Errorf("%w: auto_chunk_words must not be negative", ErrInvalidConfig)
	}
	return nil
}

// layerWeighting resolves the empty default.
func (c *Config) layerWeighting() string {
	if c.LayerWeighting == "" {
		return scoring.LayerWeightingLinear
	}
	return c.LayerWeighting
}
