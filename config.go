package occ

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the transport knobs the
// hosting environment supplies: ask timeout, max send attempts, and
// retry interval. The zero-value is not useful — always
// start from DefaultConfig.
type Config struct {
	AskTimeout    time.Duration `json:"askTimeout" yaml:"askTimeout"`
	MaxAttempts   int           `json:"maxAttempts" yaml:"maxAttempts"`
	RetryInterval time.Duration `json:"retryInterval" yaml:"retryInterval"`
}

// DefaultConfig returns a Config with values reasonable for a driver
// talking to an in-process or same-host transport.
func DefaultConfig() *Config {
	return &Config{
		AskTimeout:    5 * time.Second,
		MaxAttempts:   3,
		RetryInterval: 200 * time.Millisecond,
	}
}

// Validate returns a descriptive error for an unusable Config, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("occ: config is nil")
	}
	if c.AskTimeout <= 0 {
		return fmt.Errorf("occ: askTimeout must be > 0")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("occ: maxAttempts must be >= 1")
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("occ: retryInterval must be >= 0")
	}
	return nil
}

// LoadConfigFile reads a YAML-encoded Config from path, applying
// DefaultConfig for any field left unset would require the caller to have
// started from DefaultConfig() before unmarshalling; LoadConfigFile does
// exactly that so a partial YAML file still yields a usable Config.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("occ: failed to read config file %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("occ: failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
