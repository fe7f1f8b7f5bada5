package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/x-govuk/questions/observability"
	"github.com/x-govuk/questions/state"
)

var validate = validator.New()

// LogConfig selects the level and format of the service logger.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=text json"`
}

// Config holds initialization parameters for a Service. The State section
// delegates to state.NewStore.
type Config struct {
	State     state.Config `json:"state" yaml:"state"`
	Log       LogConfig    `json:"log" yaml:"log"`
	Observers []string     `json:"observers,omitempty" yaml:"observers,omitempty"`
}

// DefaultConfig returns an in-memory store, text logs at info level and the
// slog observer.
func DefaultConfig() Config {
	return Config{
		State:     state.DefaultConfig(),
		Log:       LogConfig{Level: "info", Format: "text"},
		Observers: []string{"slog"},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.State.Merge(&source.State)

	if source.Log.Level != "" {
		c.Log.Level = source.Log.Level
	}
	if source.Log.Format != "" {
		c.Log.Format = source.Log.Format
	}

	if len(source.Observers) > 0 {
		c.Observers = source.Observers
	}
}

// Validate checks the log and observer settings and the state section.
func (c *Config) Validate() error {
	if err := validate.Struct(c.Log); err != nil {
		return fmt.Errorf("%w: log: %v", ErrInvalidConfig, err)
	}

	known := append(observability.Observers(), observerPrometheus)
	for _, name := range c.Observers {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: unknown observer %q", ErrInvalidConfig, name)
		}
	}

	if err := c.State.Validate(); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads a JSON or YAML config file, chosen by extension, merges
// it with defaults and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
