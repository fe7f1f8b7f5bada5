// Package journeytest seeds journey instances for handler tests.
package journeytest

import (
	"context"
	"fmt"

	"github.com/x-govuk/questions/coordinator"
	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/state"
)

// Helper creates journey instances directly in a store, bypassing the
// starting-state and path rules of a live journey.
type Helper struct {
	Registry *coordinator.Registry
	Store    state.Store

	provider *coordinator.Provider
}

// New creates a Helper over registry and store.
func New(registry *coordinator.Registry, store state.Store) *Helper {
	return &Helper{
		Registry: registry,
		Store:    store,
		provider: coordinator.NewProvider(registry, store, nil),
	}
}

// NewInMemory registers descriptors with a fresh registry and returns a
// Helper backed by an in-memory store.
func NewInMemory(descriptors ...*journey.Descriptor) (*Helper, error) {
	types := state.NewTypeRegistry()
	registry := coordinator.NewRegistry(types)
	for _, d := range descriptors {
		if err := registry.Register(d, coordinator.Hooks{}); err != nil {
			return nil, err
		}
	}

	store := state.NewJSONStore(state.NewMemoryBackend(), state.NewCodec(types))
	return New(registry, store), nil
}

// Provider returns a provider over the helper's registry and store, for
// wiring into the handlers under test.
func (h *Helper) Provider() *coordinator.Provider { return h.provider }

// CreateInstance mints an instance of the named journey with the state
// returned by getState and a path made of pathURLs, and returns a
// Coordinator for req. Each path URL is given the instance key.
func (h *Helper) CreateInstance(
	ctx context.Context,
	journeyName string,
	routeValues journey.RouteValues,
	getState func(journey.InstanceID) any,
	pathURLs []string,
	req coordinator.Request,
) (*coordinator.Coordinator, error) {
	if getState == nil {
		return nil, fmt.Errorf("%w: getState is nil", journey.ErrInvalidArgument)
	}

	reg, ok := h.Registry.Lookup(journeyName)
	if !ok {
		return nil, fmt.Errorf("%w: no journey named %q is registered", journey.ErrInvalidArgument, journeyName)
	}

	id, ok := journey.CreateNewInstanceID(reg.Descriptor, routeValues)
	if !ok {
		return nil, fmt.Errorf("%w: route values do not identify a %s instance", journey.ErrInvalidArgument, reg.Descriptor.Name())
	}

	s := getState(id)
	if err := reg.Descriptor.ValidateState(s); err != nil {
		return nil, fmt.Errorf("%w: %w", journey.ErrInvalidArgument, err)
	}

	steps := make([]journey.Step, 0, len(pathURLs))
	for _, u := range pathURLs {
		steps = append(steps, journey.StepFromURL(id.EnsureURLHasKey(u)))
	}

	entry := state.Entry{State: s, Path: journey.NewPath(steps...)}
	if err := h.Store.SetState(ctx, id, reg.Descriptor, entry); err != nil {
		return nil, err
	}

	return h.provider.Coordinator(id, req)
}

// RequestFor returns a Request for u carrying c's instance key.
func RequestFor(c *coordinator.Coordinator, u string) coordinator.Request {
	return coordinator.RequestFromURL(c.InstanceID().EnsureURLHasKey(u))
}
