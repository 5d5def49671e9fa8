// Package config handles configuration loading and validation for chunkvault.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chunkvault/chunkvault/pkg/bytesize"
)

// Defaults applied when a field is unset.
const (
	DefaultDataDir       = "/var/lib/chunkvault"
	DefaultLogLevel      = "info"
	defaultMaxObjectSize = 512 * 1024 * 1024 // 512 MB
	defaultMaxChunkSize  = 1024 * 1024       // 1 MB
)

// Config holds the engine configuration. Size ceilings accept
// human-readable strings ("512MB") or plain byte counts.
type Config struct {
	DataDir       string        `yaml:"data_dir"`
	LogLevel      string        `yaml:"log_level"`
	MaxObjectSize bytesize.Size `yaml:"max_object_size"`
	MaxChunkSize  bytesize.Size `yaml:"max_chunk_size"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults() // defaults always validate
	return cfg
}

// Load loads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields and validates the size ceilings.
func (c *Config) applyDefaults() error {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	// Expand home directory in data dir
	if strings.HasPrefix(c.DataDir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			c.DataDir = filepath.Join(homeDir, c.DataDir[2:])
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxObjectSize == 0 {
		c.MaxObjectSize = bytesize.Size(defaultMaxObjectSize)
	}
	if c.MaxChunkSize == 0 {
		c.MaxChunkSize = bytesize.Size(defaultMaxChunkSize)
	}

	if c.MaxObjectSize < 0 || c.MaxChunkSize <= 0 {
		return fmt.Errorf("size ceilings must be positive")
	}
	if c.MaxChunkSize > c.MaxObjectSize {
		return fmt.Errorf("max_chunk_size (%s) exceeds max_object_size (%s)",
			c.MaxChunkSize, c.MaxObjectSize)
	}
	return nil
}

// CheckpointPath returns the path of the durable checkpoint file.
func (c *Config) CheckpointPath() string {
	return filepath.Join(c.DataDir, "checkpoint.cvk")
}
