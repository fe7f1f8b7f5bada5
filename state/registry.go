package state

import (
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"
)

// BackendFactory creates a Backend from configuration.
type BackendFactory func(cfg *Config) (Backend, error)

var (
	backends = map[string]BackendFactory{
		"memory": newMemoryFromConfig,
		"file":   newFileFromConfig,
		"redis":  newRedisFromConfig,
		"badger": newBadgerFromConfig,
	}
	mutex sync.RWMutex
)

// GetBackend returns a registered backend factory by name.
// Pre-registered backends: "memory", "file", "redis" and "badger".
func GetBackend(name string) (BackendFactory, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	factory, exists := backends[name]
	if !exists {
		return nil, fmt.Errorf("unknown state backend: %s", name)
	}
	return factory, nil
}

// RegisterBackend adds or replaces a named backend factory.
func RegisterBackend(name string, factory BackendFactory) {
	mutex.Lock()
	defer mutex.Unlock()

	backends[name] = factory
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	mutex.RLock()
	defer mutex.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newMemoryFromConfig(*Config) (Backend, error) {
	return NewMemoryBackend(), nil
}

func newFileFromConfig(cfg *Config) (Backend, error) {
	return NewFileBackend(cfg.Path), nil
}

func newRedisFromConfig(cfg *Config) (Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	opts := []RedisOption{WithOwnedClient()}
	if cfg.Redis.Prefix != "" {
		opts = append(opts, WithPrefix(cfg.Redis.Prefix))
	}
	if cfg.TTL != "" {
		opts = append(opts, WithTTL(cfg.TTLDuration()))
	}
	return NewRedisBackend(client, opts...), nil
}

func newBadgerFromConfig(cfg *Config) (Backend, error) {
	db, err := OpenBadger(cfg.Badger)
	if err != nil {
		return nil, err
	}
	return NewBadgerBackend(db, WithBadgerTTL(cfg.TTLDuration()), WithOwnedDB()), nil
}
