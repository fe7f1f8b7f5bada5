package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/observability"
	"github.com/x-govuk/questions/state"
)

// Provider resolves existing journey instances from request values and
// starts new ones.
type Provider struct {
	registry *Registry
	store    state.Store
	observer observability.Observer
}

// NewProvider creates a Provider. A nil observer discards events.
func NewProvider(registry *Registry, store state.Store, observer observability.Observer) *Provider {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Provider{registry: registry, store: store, observer: observer}
}

// Registry returns the journeys known to the provider.
func (p *Provider) Registry() *Registry { return p.registry }

func (p *Provider) Store() state.Store { return p.store }

// Instance returns a Coordinator for the instance identified by routeValues,
// which must carry the journey's route values and a valid instance key. It
// returns ErrNoInstance when no such instance exists.
func (p *Provider) Instance(ctx context.Context, journeyName string, routeValues journey.RouteValues, req Request) (*Coordinator, error) {
	reg, err := p.lookup(journeyName)
	if err != nil {
		return nil, err
	}

	id, ok := journey.CreateInstanceID(reg.Descriptor, routeValues)
	if !ok {
		return nil, fmt.Errorf("%w: request does not identify a %s instance", ErrNoInstance, reg.Descriptor.Name())
	}

	if _, err := p.store.GetState(ctx, id, reg.Descriptor); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoInstance, id)
		}
		return nil, err
	}

	return p.coordinator(reg, id, req), nil
}

// StartInstance mints a new instance of the journey, persists its starting
// state with the request URL as the first step, and returns its Coordinator.
// Any stale instance key on the request URL is replaced by the new one.
// A nil start uses the journey's StartingState.
func (p *Provider) StartInstance(ctx context.Context, journeyName string, routeValues journey.RouteValues, req Request, start StartFunc) (*Coordinator, error) {
	reg, err := p.lookup(journeyName)
	if err != nil {
		return nil, err
	}

	id, ok := journey.CreateNewInstanceID(reg.Descriptor, routeValues)
	if !ok {
		return nil, fmt.Errorf("%w: missing route values for journey %s", journey.ErrInvalidArgument, reg.Descriptor.Name())
	}

	c := p.coordinator(reg, id, req)

	var s any
	if start != nil {
		s, err = start(ctx, StartContext{InstanceID: id, Request: req})
	} else {
		s, err = c.StartingState(ctx)
	}
	if err != nil {
		return nil, err
	}
	if err := reg.Descriptor.ValidateState(s); err != nil {
		return nil, err
	}

	firstURL := journey.StripQueryParameters(req.URL, journey.KeyRouteValueName)
	first := journey.StepFromURL(journey.AddQueryParameter(firstURL, journey.KeyRouteValueName, id.Key()))
	entry := state.Entry{State: s, Path: journey.NewPath(first)}
	if err := p.store.SetState(ctx, id, reg.Descriptor, entry); err != nil {
		return nil, fmt.Errorf("persist new journey instance: %w", err)
	}

	c.emit(ctx, EventInstanceStart, observability.LevelInfo, "coordinator.StartInstance", map[string]any{
		"first_step": first.URL,
	})

	return c, nil
}

// Coordinator binds an already-known instance id to req without checking
// storage.
func (p *Provider) Coordinator(id journey.InstanceID, req Request) (*Coordinator, error) {
	reg, err := p.lookup(id.JourneyName())
	if err != nil {
		return nil, err
	}
	return p.coordinator(reg, id, req), nil
}

func (p *Provider) lookup(journeyName string) (Registration, error) {
	reg, ok := p.registry.Lookup(journeyName)
	if !ok {
		return Registration{}, fmt.Errorf("%w: %s", ErrJourneyNotFound, journeyName)
	}
	return reg, nil
}

func (p *Provider) coordinator(reg Registration, id journey.InstanceID, req Request) *Coordinator {
	return New(id, reg.Descriptor, p.store, req, WithHooks(reg.Hooks), WithObserver(p.observer))
}
