package state

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/x-govuk/questions/journey"
)

// TypeRegistry resolves persisted state type names to Go types. A state
// value can only be written if its runtime type is registered, so every
// stored entry is readable by the same registry.
type TypeRegistry struct {
	types map[string]reflect.Type
	mu    sync.RWMutex
}

// NewTypeRegistry creates an empty TypeRegistry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]reflect.Type)}
}

// DefaultTypes is the registry used by codecs created without one.
var DefaultTypes = NewTypeRegistry()

// Register adds t under its journey.TypeName. Registering the same type
// again is a no-op. Interface types cannot be registered since they have no
// concrete representation to decode into.
func (r *TypeRegistry) Register(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrUnknownStateType)
	}
	if t.Kind() == reflect.Interface {
		return fmt.Errorf("%w: interface type %s cannot be decoded", ErrUnknownStateType, t)
	}

	name := journey.TypeName(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[name]; ok && existing != t {
		return fmt.Errorf("%w: type name %s is already registered to a different type", ErrUnknownStateType, name)
	}
	r.types[name] = t
	return nil
}

// Resolve returns the type registered under name.
func (r *TypeRegistry) Resolve(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered type names.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

// RegisterType registers T with r.
func RegisterType[T any](r *TypeRegistry) error {
	return r.Register(reflect.TypeFor[T]())
}
