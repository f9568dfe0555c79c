// Package config assembles the tokenpress configuration from defaults, an
// optional YAML file, and TOKENPRESS_-prefixed environment variables.
//
// Each section is owned by the package that consumes it; this package only
// composes them and drives loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/tokenpress/internal/benchmark"
	"github.com/fyrsmithlabs/tokenpress/internal/compressor"
	"github.com/fyrsmithlabs/tokenpress/internal/embeddings"
	"github.com/fyrsmithlabs/tokenpress/internal/encoder"
	httpapi "github.com/fyrsmithlabs/tokenpress/internal/http"
	"github.com/fyrsmithlabs/tokenpress/internal/logging"
	"github.com/fyrsmithlabs/tokenpress/internal/telemetry"
)

// Config is the root tokenpress configuration.
type Config struct {
	Server     httpapi.Config         `koanf:"server"`
	Logging    logging.Config         `koanf:"logging"`
	Telemetry  telemetry.Config       `koanf:"telemetry"`
	Encoder    encoder.Config         `koanf:"encoder"`
	Embeddings embeddings.Config      `koanf:"embeddings"`
	Compressor compressor.Config      `koanf:"compressor"`
	Benchmark  benchmark.ClientConfig `koanf:"benchmark"`
}

// NewDefault returns the configuration used when no file or environment
// overrides are present.
func NewDefault() *Config {
	return &Config{
		Server:     *httpapi.NewDefaultConfig(),
		Logging:    *logging.NewDefaultConfig(),
		Telemetry:  *telemetry.NewDefaultConfig(),
		Encoder:    encoder.NewDefaultConfig(),
		Embeddings: embeddings.NewDefaultConfig(),
		Compressor: compressor.NewDefaultConfig(),
		Benchmark:  benchmark.NewDefaultClientConfig(),
	}
}

// Validate checks every section and names the failing one.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := c.Encoder.Validate(); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	if err := c.Embeddings.Validate(); err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	if err := c.Compressor.Validate(); err != nil {
		return fmt.Errorf("compressor: %w", err)
	}
	if err := c.Benchmark.Validate(); err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	return nil
}

// DefaultPath returns the default config file location,
// ~/.config/tokenpress/config.yaml. When the home directory cannot be
// resolved it falls back to the working directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "tokenpress", "config.yaml")
}

// EnsureConfigDir creates ~/.config/tokenpress with owner-only permissions
// and returns its path. Model downloads and the default config file both
// live under it.
func EnsureConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "tokenpress")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return dir, nil
}
