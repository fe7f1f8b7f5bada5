package coordinator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/state"
)

// Registration is a journey descriptor together with its hooks.
type Registration struct {
	Descriptor *journey.Descriptor
	Hooks      Hooks
}

// Registry holds the journeys known to an application. Names are unique
// ignoring case.
type Registry struct {
	journeys map[string]Registration
	order    []string
	types    *state.TypeRegistry
	mu       sync.RWMutex
}

// NewRegistry creates a Registry that records journey state types in types,
// or state.DefaultTypes when nil.
func NewRegistry(types *state.TypeRegistry) *Registry {
	if types == nil {
		types = state.DefaultTypes
	}
	return &Registry{
		journeys: make(map[string]Registration),
		types:    types,
	}
}

// Register adds a journey. Concrete state types are registered with the
// type registry so their entries can be decoded; for interface state types
// each implementation must be registered through Types.
func (r *Registry) Register(d *journey.Descriptor, hooks Hooks) error {
	if d == nil {
		return fmt.Errorf("%w: nil journey descriptor", journey.ErrInvalidArgument)
	}

	key := strings.ToLower(d.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.journeys[key]; exists {
		return fmt.Errorf("%w: %s", ErrJourneyExists, d.Name())
	}

	if d.StateType().Kind() != reflect.Interface {
		if err := r.types.Register(d.StateType()); err != nil {
			return fmt.Errorf("register state type of journey %s: %w", d.Name(), err)
		}
	}

	r.journeys[key] = Registration{Descriptor: d, Hooks: hooks}
	r.order = append(r.order, key)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(d *journey.Descriptor, hooks Hooks) {
	if err := r.Register(d, hooks); err != nil {
		panic(err)
	}
}

// Lookup finds a journey by name, ignoring case.
func (r *Registry) Lookup(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.journeys[strings.ToLower(name)]
	return reg, ok
}

// Journeys returns the registered descriptors in registration order.
func (r *Registry) Journeys() []*journey.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*journey.Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.journeys[key].Descriptor)
	}
	return out
}

// Types returns the type registry journey state types are added to.
func (r *Registry) Types() *state.TypeRegistry { return r.types }
