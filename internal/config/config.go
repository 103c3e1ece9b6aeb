// Package config provides configuration management for mccnet.
//
// Config file locations (priority order):
//  1. $MCCNET_CONFIG
//  2. ./mccnet.yaml
//  3. $XDG_CONFIG_HOME/mccnet/config.yaml
//  4. ~/.config/mccnet/config.yaml
//  5. /etc/mccnet/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mccnet/internal/builder"
	"mccnet/internal/device"
)

const (
	DefaultAddr             = ":3000"
	DefaultDatabasePath     = "./mccnet.db"
	DefaultQuantity         = 5
	DefaultLogLevel         = "info"
	DefaultScenarioDebounce = 500 * time.Millisecond
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks field constraints after defaults are applied
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Server:   ServerConfig{Addr: DefaultAddr},
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Images: ImagesConfig{
			Client: device.DefaultClientImage,
			Server: device.DefaultServerImage,
		},
		Generation: GenerationConfig{
			DefaultQuantity: DefaultQuantity,
			MaxQuantity:     builder.DefaultMaxCount,
		},
		Logging:  LoggingConfig{Level: DefaultLogLevel},
		Scenario: ScenarioConfig{Debounce: Duration(DefaultScenarioDebounce)},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Version == 0 {
		c.Version = d.Version
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Images.Client == "" {
		c.Images.Client = d.Images.Client
	}
	if c.Images.Server == "" {
		c.Images.Server = d.Images.Server
	}
	if c.Generation.MaxQuantity == 0 {
		c.Generation.MaxQuantity = d.Generation.MaxQuantity
	}
	if c.Generation.DefaultQuantity == 0 {
		c.Generation.DefaultQuantity = min(d.Generation.DefaultQuantity, c.Generation.MaxQuantity)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Scenario.Debounce == 0 {
		c.Scenario.Debounce = d.Scenario.Debounce
	}
}

// ImageResolver returns the resolver configured by the images section
func (c *Config) ImageResolver() device.ImageResolver {
	return device.ImageResolver{Client: c.Images.Client, Server: c.Images.Server}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Images: client=%s server=%s\n", c.Images.Client, c.Images.Server)
	summary += fmt.Sprintf("Generation: default=%d max=%d", c.Generation.DefaultQuantity, c.Generation.MaxQuantity)
	if c.Scenario.Watch != "" {
		summary += fmt.Sprintf("\nWatching: %s (debounce %s)", c.Scenario.Watch, c.Scenario.Debounce.Duration())
	}
	return summary
}
