package embeddings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
			name:   "empty provider selects fastembed",
			mutate: func(c *Config) { c.Provider = "" },
		},
		{
			name:    "openai requires base url",
			mutate:  func(c *Config) { c.Provider = ProviderOpenAI },
			wantErr: "base_url is required",
		},
		{
			name:    "tei requires base url",
			mutate:  func(c *Config) { c.Provider = ProviderTEI },
			wantErr: "base_url is required",
		},
		{
			name: "openai with base url",
			mutate: func(c *Config) {
				c.Provider = ProviderOpenAI
				c.BaseURL = "http://localhost:8080/v1"
			},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "qdrant" },
			wantErr: "unknown provider",
		},
		{
			name:    "negative max length",
			mutate:  func(c *Config) { c.MaxLength = -1 },
			wantErr: "max_length",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, ProviderFastEmbed, cfg.Provider)
	assert.Equal(t, DefaultModel, cfg.Model)
	require.NoError(t, cfg.Validate())
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "sbert"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDetectDimension(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"sentence-transformers/all-MiniLM-L6-v2", 384},
		{"BAAI/bge-small-en-v1.5", 384},
		{"BAAI/bge-base-en-v1.5", 768},
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"text-embedding-ada-002", 1536},
		{"custom-base-model", 768},
		{"custom-large-model", 1024},
		{"custom-mini-model", 384},
		{"mystery", 384},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, detectDimension(tt.model))
		})
	}
}
