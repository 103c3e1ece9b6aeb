package config

// Config is the root configuration structure
type Config struct {
	Version    int              `yaml:"version"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Images     ImagesConfig     `yaml:"images"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ImagesConfig names the container images assigned per device kind
type ImagesConfig struct {
	Client string `yaml:"client" validate:"required"`
	Server string `yaml:"server" validate:"required"`
}

// GenerationConfig bounds bulk node generation
type GenerationConfig struct {
	DefaultQuantity int   `yaml:"default_quantity" validate:"gte=1,ltefield=MaxQuantity"`
	MaxQuantity     int   `yaml:"max_quantity" validate:"gte=1"`
	Seed            int64 `yaml:"seed"` // 0 = random
}

// LoggingConfig selects logger level and encoder
type LoggingConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// ScenarioConfig holds the optional scenario file to watch
type ScenarioConfig struct {
	Watch    string   `yaml:"watch,omitempty"`
	Debounce Duration `yaml:"debounce,omitempty"`
}
