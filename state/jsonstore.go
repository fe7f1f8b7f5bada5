package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/x-govuk/questions/journey"
)

// KeyPrefix prefixes backend keys written by JSONStore.
const KeyPrefix = "_guq:"

// JSONStore is a Store that encodes entries with a Codec and persists them
// in a Backend.
type JSONStore struct {
	backend Backend
	codec   *Codec
}

// NewJSONStore creates a JSONStore. A nil codec uses DefaultTypes.
func NewJSONStore(backend Backend, codec *Codec) *JSONStore {
	if codec == nil {
		codec = NewCodec(nil)
	}
	return &JSONStore{backend: backend, codec: codec}
}

// Codec returns the codec used to encode entries.
func (s *JSONStore) Codec() *Codec { return s.codec }

// Backend returns the underlying storage backend.
func (s *JSONStore) Backend() Backend { return s.backend }

// StorageKey returns the backend key for id.
func StorageKey(id journey.InstanceID) string {
	return KeyPrefix + id.String()
}

func (s *JSONStore) GetState(ctx context.Context, id journey.InstanceID, _ *journey.Descriptor) (Entry, error) {
	data, err := s.backend.Load(ctx, StorageKey(id))
	if err != nil {
		return Entry{}, err
	}

	entry, err := s.codec.Decode(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", id, err)
	}
	return entry, nil
}

func (s *JSONStore) SetState(ctx context.Context, id journey.InstanceID, _ *journey.Descriptor, entry Entry) error {
	data, err := s.codec.Encode(entry)
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, StorageKey(id), data)
}

func (s *JSONStore) DeleteState(ctx context.Context, id journey.InstanceID, _ *journey.Descriptor) error {
	err := s.backend.Delete(ctx, StorageKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Inspect returns the raw envelope stored for id without resolving the
// state type.
func (s *JSONStore) Inspect(ctx context.Context, id journey.InstanceID) (RawEntry, error) {
	data, err := s.backend.Load(ctx, StorageKey(id))
	if err != nil {
		return RawEntry{}, err
	}
	return s.codec.DecodeRaw(data)
}

// Instances lists the ids of every stored instance, skipping keys that were
// not written by a JSONStore.
func (s *JSONStore) Instances(ctx context.Context) ([]journey.InstanceID, error) {
	keys, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]journey.InstanceID, 0, len(keys))
	for _, key := range keys {
		raw, ok := strings.CutPrefix(key, KeyPrefix)
		if !ok {
			continue
		}
		if id, ok := journey.TryParseInstanceID(raw); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *JSONStore) Close() error {
	return s.backend.Close()
}
