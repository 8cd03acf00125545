package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nightconcept/srihash/internal/core/hasher"
)

const ConfigFileName = ".srihash.toml"
const DefaultManifestName = "sri-lock.toml"

// Config holds the per-directory defaults read from .srihash.toml.
type Config struct {
	Hash     string `toml:"hash"`
	Prefix   *bool  `toml:"prefix,omitempty"`
	Manifest string `toml:"manifest"`
}

// Default returns the configuration used when no .srihash.toml exists.
func Default() *Config {
	prefix := true
	return &Config{
		Hash:     hasher.DefaultAlgorithm,
		Prefix:   &prefix,
		Manifest: DefaultManifestName,
	}
}

// Load reads .srihash.toml from dirPath. A missing file yields Default().
// Fields left out of the file keep their default values.
func Load(dirPath string) (*Config, error) {
	cfg := Default()
	fullPath := filepath.Join(dirPath, ConfigFileName)

	data, err := os.ReadFile(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fullPath, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fullPath, err)
	}
	defaults := Default()
	if cfg.Hash == "" {
		cfg.Hash = defaults.Hash
	}
	if cfg.Prefix == nil {
		cfg.Prefix = defaults.Prefix
	}
	if cfg.Manifest == "" {
		cfg.Manifest = defaults.Manifest
	}
	if !hasher.Supported(cfg.Hash) {
		return nil, fmt.Errorf("invalid %s: unsupported hash algorithm %q", fullPath, cfg.Hash)
	}
	return cfg, nil
}

// Write encodes cfg into .srihash.toml in dirPath, overwriting any existing file.
func Write(dirPath string, cfg *Config) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}

	// O_TRUNC drops whatever an older config held.
	fullPath := filepath.Join(dirPath, ConfigFileName)
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, err = file.Write(buf.Bytes())
	return err
}

// Prefixed reports whether digests should carry the algorithm prefix.
func (c *Config) Prefixed() bool {
	return c.Prefix == nil || *c.Prefix
}

// Options returns the digest request for file under this configuration.
func (c *Config) Options(file string) hasher.Options {
	return hasher.FromFile(file).WithHash(c.Hash).WithPrefix(c.Prefixed())
}
