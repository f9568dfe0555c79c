package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// writeConfig writes a config file under a fresh temp dir and returns its
// path.
func writeConfig(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.34, cfg.Compressor.TargetRatio, 1e-9)
	assert.Equal(t, "fastembed", cfg.Embeddings.Provider)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `server:
  port: 8080
  read_timeout: 5s
logging:
  level: debug
  format: console
compressor:
  target_ratio: 0.5
  query_aware: false
embeddings:
  timeout: 45s
benchmark:
  model: openai/gpt-4o
`, 0o600)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.InDelta(t, 0.5, cfg.Compressor.TargetRatio, 1e-9)
	assert.False(t, cfg.Compressor.QueryAware)
	assert.Equal(t, 45*time.Second, cfg.Embeddings.Timeout)
	assert.Equal(t, "openai/gpt-4o", cfg.Benchmark.Model)

	// Untouched fields keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 450, cfg.Encoder.MaxLength)
	assert.InDelta(t, 0.4, cfg.Compressor.AttentionWeight, 1e-9)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Benchmark.BaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `server:
  port: 8080
`, 0o600)

	t.Setenv("TOKENPRESS_SERVER__PORT", "7777")
	t.Setenv("TOKENPRESS_COMPRESSOR__TARGET_RATIO", "0.25")
	t.Setenv("TOKENPRESS_LOGGING__SAMPLING__ENABLED", "false")
	t.Setenv("TOKENPRESS_BENCHMARK__API_KEY", "sk-env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.InDelta(t, 0.25, cfg.Compressor.TargetRatio, 1e-9)
	assert.False(t, cfg.Logging.Sampling.Enabled)
	assert.Equal(t, "sk-env-key", cfg.Benchmark.APIKey.Value())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-config.yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed\n", 0o600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `server:
  port: 99999
`, 0o600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server:")
}

func TestLoad_FileTooLarge(t *testing.T) {
	content := bytes.Repeat([]byte("# padding\n"), 120000)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestLoad_SecretPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	withKey := `benchmark:
  api_key: sk-secret
`

	t.Run("world-readable file with key is rejected", func(t *testing.T) {
		path := writeConfig(t, withKey, 0o644)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "restrict it to 0600")
	})

	t.Run("owner-only file with key loads", func(t *testing.T) {
		path := writeConfig(t, withKey, 0o600)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-secret", cfg.Benchmark.APIKey.Value())
	})

	t.Run("world-readable file without key loads", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: 8080\n", 0o644)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
	})
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TOKENPRESS_SERVER__PORT", "server.port"},
		{"TOKENPRESS_COMPRESSOR__TARGET_RATIO", "compressor.target_ratio"},
		{"TOKENPRESS_LOGGING__SAMPLING__ENABLED", "logging.sampling.enabled"},
		{"TOKENPRESS_BENCHMARK__API_KEY", "benchmark.api_key"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, envKey(tt.in))
	}
}
