package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/x-govuk/questions/journey"
)

// RawEntry is the persisted envelope of an Entry.
type RawEntry struct {
	StateTypeName string          `json:"stateTypeName"`
	State         json.RawMessage `json:"state"`
	Path          journey.Path    `json:"path"`
}

type envelope struct {
	StateTypeName string          `json:"stateTypeName"`
	State         json.RawMessage `json:"state"`
	Path          json.RawMessage `json:"path"`
}

func isNullJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Codec converts entries to and from their JSON envelope, recording the
// runtime type of the state so it can be reconstructed exactly.
type Codec struct {
	types *TypeRegistry
}

// NewCodec creates a Codec resolving types through types, or DefaultTypes
// when nil.
func NewCodec(types *TypeRegistry) *Codec {
	if types == nil {
		types = DefaultTypes
	}
	return &Codec{types: types}
}

// Types returns the registry used to resolve state types.
func (c *Codec) Types() *TypeRegistry { return c.types }

// Encode serializes entry. It fails with ErrUnknownStateType if the state's
// runtime type is not registered or the state is nil.
func (c *Codec) Encode(entry Entry) ([]byte, error) {
	t := reflect.TypeOf(entry.State)
	if t == nil || journey.IsNil(entry.State) {
		return nil, fmt.Errorf("%w: state is nil", ErrUnknownStateType)
	}

	name := journey.TypeName(t)
	if registered, ok := c.types.Resolve(name); !ok || registered != t {
		return nil, fmt.Errorf("%w: %s is not registered", ErrUnknownStateType, name)
	}

	state, err := json.Marshal(entry.State)
	if err != nil {
		return nil, fmt.Errorf("marshal state %s: %w", name, err)
	}
	if isNullJSON(state) {
		return nil, fmt.Errorf("%w: state %s marshals to null", ErrUnknownStateType, name)
	}

	return json.Marshal(RawEntry{
		StateTypeName: name,
		State:         state,
		Path:          entry.Path,
	})
}

// DecodeRaw parses the envelope without resolving the state type. An
// envelope without a type name or a path is corrupt.
func (c *Codec) DecodeRaw(data []byte) (RawEntry, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return RawEntry{}, fmt.Errorf("%w: malformed envelope: %v", ErrCorrupt, err)
	}
	if env.StateTypeName == "" {
		return RawEntry{}, fmt.Errorf("%w: envelope has no state type name", ErrCorrupt)
	}
	if isNullJSON(env.Path) {
		return RawEntry{}, fmt.Errorf("%w: envelope has no path", ErrCorrupt)
	}

	raw := RawEntry{StateTypeName: env.StateTypeName, State: env.State}
	if err := json.Unmarshal(env.Path, &raw.Path); err != nil {
		return RawEntry{}, fmt.Errorf("%w: decode path: %v", ErrCorrupt, err)
	}
	return raw, nil
}

// Decode reconstructs an Entry, resolving the state to its registered type.
func (c *Codec) Decode(data []byte) (Entry, error) {
	raw, err := c.DecodeRaw(data)
	if err != nil {
		return Entry{}, err
	}

	t, ok := c.types.Resolve(raw.StateTypeName)
	if !ok {
		return Entry{}, fmt.Errorf("%w: cannot resolve state type %q", ErrCorrupt, raw.StateTypeName)
	}

	if isNullJSON(raw.State) {
		return Entry{}, fmt.Errorf("%w: state is null", ErrCorrupt)
	}

	v := reflect.New(t)
	if err := json.Unmarshal(raw.State, v.Interface()); err != nil {
		return Entry{}, fmt.Errorf("%w: decode state %s: %v", ErrCorrupt, raw.StateTypeName, err)
	}

	return Entry{State: v.Elem().Interface(), Path: raw.Path}, nil
}
