package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Buffer settings
	BufferSize int `yaml:"buffer_size"`

	// Worker settings
	NumProducers int `yaml:"num_producers"`
	NumConsumers int `yaml:"num_consumers"`

	// Total items produced across all producers
	MaxItems int `yaml:"max_items"`

	// Consumer poll timeout
	BaseTimeout time.Duration `yaml:"base_timeout"`
	// Simulated work per item, for both roles
	ThinkTime time.Duration `yaml:"think_time"`
}

func DefaultConfig() *Config {
	return &Config{
		BufferSize:   5,
		NumProducers: 2,
		NumConsumers: 2,
		MaxItems:     15,
		BaseTimeout:  500 * time.Millisecond,
		ThinkTime:    time.Second,
	}
}

func (c *Config) Validate() error {
	switch {
	case c.BufferSize <= 0:
		return fmt.Errorf("%w: buffer_size must be positive, got %d", ErrInvalidConfig, c.BufferSize)
	case c.NumProducers <= 0:
		return fmt.Errorf("%w: num_producers must be positive, got %d", ErrInvalidConfig, c.NumProducers)
	case c.NumConsumers <= 0:
		return fmt.Errorf("%w: num_consumers must be positive, got %d", ErrInvalidConfig, c.NumConsumers)
	case c.MaxItems < 0:
		return fmt.Errorf("%w: max_items must not be negative, got %d", ErrInvalidConfig, c.MaxItems)
	case c.BaseTimeout <= 0:
		return fmt.Errorf("%w: base_timeout must be positive, got %s", ErrInvalidConfig, c.BaseTimeout)
	case c.ThinkTime < 0:
		return fmt.Errorf("%w: think_time must not be negative, got %s", ErrInvalidConfig, c.ThinkTime)
	}
	return nil
}

// LoadConfig reads a YAML file on top of the defaults. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
