// Package state persists journey instance state together with its path.
//
// A Store keeps one Entry per (instance id, journey) pair. The JSONStore
// implementation encodes entries with a type-preserving Codec and delegates
// bytes to a pluggable Backend: in-memory, filesystem, Redis or Badger.
package state

import (
	"context"

	"github.com/x-govuk/questions/journey"
)

// Entry is the unit persisted for a journey instance. State and Path are
// always written and read together.
type Entry struct {
	State any
	Path  journey.Path
}

// Store associates one Entry with each journey instance.
type Store interface {
	// GetState returns the entry for id, or ErrNotFound if none exists.
	// Unreadable entries return an error wrapping ErrCorrupt.
	GetState(ctx context.Context, id journey.InstanceID, j *journey.Descriptor) (Entry, error)
	// SetState overwrites the entry for id. The last write wins.
	SetState(ctx context.Context, id journey.InstanceID, j *journey.Descriptor, entry Entry) error
	// DeleteState removes the entry for id. Missing entries are ignored.
	DeleteState(ctx context.Context, id journey.InstanceID, j *journey.Descriptor) error
}

// Backend stores opaque values by key. Implementations perform I/O on each
// call and must be safe for concurrent use with distinct keys.
type Backend interface {
	// List returns all keys held by the backend.
	List(ctx context.Context) ([]string, error)
	// Load returns the value for key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save creates or overwrites the value for key.
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes key. Missing keys are ignored.
	Delete(ctx context.Context, key string) error
	// Close releases resources owned by the backend.
	Close() error
}
