package compressor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tokenpress/internal/scoring"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "empty layer weighting means linear",
			mutate: func(c *Config) { c.LayerWeighting = "" },
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.AttentionWeight = -0.1 },
			wantErr: "weights must not be negative",
		},
		{
			name: "attention and semantic both zero",
			mutate: func(c *Config) {
				c.AttentionWeight = 0
				c.SemanticWeight = 0
			},
			wantErr: "must not both be zero",
		},
		{
			name:    "ratio zero",
			mutate:  func(c *Config) { c.TargetRatio = 0 },
			wantErr: "not in (0, 1]",
		},
		{
			name:    "ratio above one",
			mutate:  func(c *Config) { c.TargetRatio = 1.2 },
			wantErr: "not in (0, 1]",
		},
		{
			name:   "ratio exactly one",
			mutate: func(c *Config) { c.TargetRatio = 1 },
		},
		{
			name:    "negative min tokens",
			mutate:  func(c *Config) { c.MinTokens = -1 },
			wantErr: "min_tokens",
		},
		{
			name:    "hard threshold above one",
			mutate:  func(c *Config) { c.HardThreshold = 1.5 },
			wantErr: "hard_threshold",
		},
		{
			name:    "unknown layer weighting",
			mutate:  func(c *Config) { c.LayerWeighting = "quadratic" },
			wantErr: "unknown layer_weighting",
		},
		{
			name:    "boost below one with bias enabled",
			mutate:  func(c *Config) { c.PositionBoostStart = 0.5 },
			wantErr: "position boosts",
		},
		{
			name: "boost ignored with bias disabled",
			mutate: func(c *Config) {
				c.UsePositionBias = false
				c.PositionBoostStart = 0.5
			},
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: "chunk_size",
		},
		{
			name:    "negative auto chunk words",
			mutate:  func(c *Config) { c.AutoChunkWords = -1 },
			wantErr: "auto_chunk_words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 0.4, cfg.AttentionWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.SemanticWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.QueryWeight, 1e-9)
	assert.InDelta(t, 0.34, cfg.TargetRatio, 1e-9)
	assert.Equal(t, 50, cfg.MinTokens)
	assert.Equal(t, scoring.LayerWeightingLinear, cfg.LayerWeighting)
	assert.True(t, cfg.UsePositionBias)
	assert.True(t, cfg.QueryAware)
	assert.True(t, cfg.EnableChunking)
	assert.Equal(t, 450, cfg.ChunkSize)
	assert.Equal(t, 400, cfg.AutoChunkWords)
}

func TestConfig_LayerWeightingDefault(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, scoring.LayerWeightingLinear, cfg.layerWeighting())

	cfg.LayerWeighting = scoring.LayerWeightingLastOnly
	assert.Equal(t, scoring.LayerWeightingLastOnly, cfg.layerWeighting())
}
