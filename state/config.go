package state

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("duration", validateDuration)
}

func validateDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"required,hostname_port"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty" validate:"gte=0"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// Config holds state store initialization parameters.
type Config struct {
	Backend string       `json:"backend,omitempty" yaml:"backend,omitempty" validate:"required"`
	Path    string       `json:"path,omitempty" yaml:"path,omitempty" validate:"required_if=Backend file"`
	TTL     string       `json:"ttl,omitempty" yaml:"ttl,omitempty" validate:"omitempty,duration"`
	Redis   RedisConfig  `json:"redis,omitempty" yaml:"redis,omitempty" validate:"-"`
	Badger  BadgerConfig `json:"badger,omitempty" yaml:"badger,omitempty" validate:"-"`
}

// DefaultConfig returns the default configuration: an in-memory backend.
func DefaultConfig() Config {
	return Config{Backend: "memory"}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.TTL != "" {
		c.TTL = source.TTL
	}

	if source.Redis.Addr != "" {
		c.Redis.Addr = source.Redis.Addr
	}
	if source.Redis.Password != "" {
		c.Redis.Password = source.Redis.Password
	}
	if source.Redis.DB > 0 {
		c.Redis.DB = source.Redis.DB
	}
	if source.Redis.Prefix != "" {
		c.Redis.Prefix = source.Redis.Prefix
	}

	if source.Badger.Path != "" {
		c.Badger.Path = source.Badger.Path
	}
	if source.Badger.InMemory {
		c.Badger.InMemory = true
	}
	if source.Badger.SyncWrites {
		c.Badger.SyncWrites = true
	}
	if source.Badger.Logger != nil {
		c.Badger.Logger = source.Badger.Logger
	}
}

// Validate checks the configuration for the selected backend.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := GetBackend(c.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Backend {
	case "redis":
		if err := configValidate.Struct(c.Redis); err != nil {
			return fmt.Errorf("%w: redis: %v", ErrInvalidConfig, err)
		}
	case "badger":
		if !c.Badger.InMemory && c.Badger.Path == "" {
			return fmt.Errorf("%w: badger: path is required unless in_memory is set", ErrInvalidConfig)
		}
	}
	return nil
}

// TTLDuration returns the configured expiry, or zero when unset.
func (c *Config) TTLDuration() time.Duration {
	if c.TTL == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// NewStore validates cfg and creates a JSONStore over the configured
// backend. Closing the store releases the backend.
func NewStore(cfg *Config, codec *Codec) (*JSONStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory, err := GetBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	backend, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.Backend, err)
	}
	return NewJSONStore(backend, codec), nil
}
