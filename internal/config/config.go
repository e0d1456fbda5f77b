// Package config reads and writes the global ~/.telechat/config.toml.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.telechat/config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`
	// APIKey is the OpenAI credential. The OPENAI_API_KEY environment
	// variable takes precedence when set.
	APIKey string `toml:"api_key"`
	// Model overrides the default completion model when non-empty.
	Model string `toml:"model"`
	// AckDelayMS is the local delay before a sent message is acked.
	AckDelayMS int `toml:"ack_delay_ms"`
	// RequestTimeoutMS bounds each completion request.
	RequestTimeoutMS int `toml:"request_timeout_ms"`
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
