package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type memoryBackend struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryBackend creates a Backend held in process memory. Values are lost
// when the process exits.
func NewMemoryBackend() Backend {
	return &memoryBackend{values: make(map[string][]byte)}
}

func (m *memoryBackend) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *memoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return slices.Clone(value), nil
}

func (m *memoryBackend) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = slices.Clone(value)
	return nil
}

func (m *memoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *memoryBackend) Close() error { return nil }
