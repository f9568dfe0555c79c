package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces tokenpress environment overrides.
const EnvPrefix = "TOKENPRESS_"

// maxFileSize caps config files at 1MB.
const maxFileSize = 1024 * 1024

// secretKeys are config paths whose presence in a file makes its
// permissions part of the threat model.
var secretKeys = []string{"benchmark.api_key", "embeddings.api_key"}

// Load builds the configuration in precedence order: defaults first, then
// the YAML file at path, then TOKENPRESS_ environment variables. An empty
// path means DefaultPath, and a missing file at the default location is
// fine; a missing file at an explicitly given path is an error.
//
// Environment variables map onto config keys by stripping the prefix,
// lowercasing, and turning double underscores into section separators:
//
//	TOKENPRESS_SERVER__PORT             -> server.port
//	TOKENPRESS_COMPRESSOR__TARGET_RATIO -> compressor.target_ratio
//	TOKENPRESS_BENCHMARK__API_KEY       -> benchmark.api_key
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(NewDefault(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := loadFile(k, path, explicit); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// loadFile merges the YAML file at path into k. The file is opened once
// and size and permissions are checked through that descriptor so the
// checks and the read cannot race against a file swap.
func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if explicit {
			return fmt.Errorf("config file %s not found", path)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("config file %s too large: %d bytes (max %d)", path, info.Size(), maxFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fk := koanf.New(".")
	if err := fk.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := checkSecretPermissions(fk, info); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return k.Merge(fk)
}

// checkSecretPermissions rejects group- or world-accessible files that
// carry an API key. Files without secrets may be shared freely.
func checkSecretPermissions(fk *koanf.Koanf, info os.FileInfo) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	perm := info.Mode().Perm()
	if perm&0o077 == 0 {
		return nil
	}
	for _, key := range secretKeys {
		if fk.String(key) != "" {
			return fmt.Errorf("holds %s but has permissions %04o; restrict it to 0600", key, perm)
		}
	}
	return nil
}

// envKey maps an environment variable name to a config key.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
