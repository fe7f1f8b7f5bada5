// Package coordinator implements the per-request façade through which a page
// handler reads and advances a journey instance.
//
// A Coordinator is bound to one instance id and one inbound request. Every
// mutating call performs exactly one storage read followed by one storage
// write; concurrent use of the same instance is last-write-wins.
//
//	c, err := provider.Instance(ctx, "add-person", routeValues, coordinator.RequestFromURL(r.URL.RequestURI()))
//	redirect, err := c.AdvanceTo(ctx, "/people/add/age", coordinator.Update(func(s *AddPerson) { s.Name = name }), journey.PushStepOptions{})
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/observability"
	"github.com/x-govuk/questions/state"
)

// Mutator derives a new state from the current one. It is invoked at most
// once per operation. A nil Mutator leaves the state unchanged.
type Mutator func(ctx context.Context, current any) (any, error)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver sets the observer that receives journey events.
func WithObserver(o observability.Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// WithHooks sets the journey's hooks.
func WithHooks(h Hooks) Option {
	return func(c *Coordinator) { c.hooks = h }
}

// Coordinator ties an instance id, its journey, the state store and the
// current request together. It is safe to share within one request once
// constructed.
type Coordinator struct {
	id       journey.InstanceID
	journey  *journey.Descriptor
	store    state.Store
	request  Request
	hooks    Hooks
	observer observability.Observer
	deleted  atomic.Bool
}

// New creates a Coordinator for an existing or just-started instance.
func New(id journey.InstanceID, d *journey.Descriptor, store state.Store, req Request, opts ...Option) *Coordinator {
	c := &Coordinator{
		id:       id,
		journey:  d,
		store:    store,
		request:  req,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = observability.NoOpObserver{}
	}
	return c
}

// InstanceID returns the id of the coordinated instance.
func (c *Coordinator) InstanceID() journey.InstanceID { return c.id }

func (c *Coordinator) Journey() *journey.Descriptor { return c.journey }

func (c *Coordinator) Request() Request { return c.request }

// Deleted reports whether DeleteInstance has been called on this coordinator.
func (c *Coordinator) Deleted() bool { return c.deleted.Load() }

// State loads the instance's current state. Changes to the returned value are
// not persisted; use UpdateState or AdvanceTo.
func (c *Coordinator) State(ctx context.Context) (any, error) {
	e, err := c.entry(ctx)
	if err != nil {
		return nil, err
	}
	return e.State, nil
}

// Path loads the instance's current path.
func (c *Coordinator) Path(ctx context.Context) (journey.Path, error) {
	e, err := c.entry(ctx)
	if err != nil {
		return journey.Path{}, err
	}
	return e.Path, nil
}

// CurrentStep returns the step addressed by the request if it is part of the
// path.
func (c *Coordinator) CurrentStep(ctx context.Context) (journey.Step, bool, error) {
	path, err := c.Path(ctx)
	if err != nil {
		return journey.Step{}, false, err
	}

	step := c.request.Step()
	if !path.ContainsStep(step) {
		return journey.Step{}, false, nil
	}
	return step, true, nil
}

// StepIsValid reports whether step is part of the path.
func (c *Coordinator) StepIsValid(ctx context.Context, step journey.Step) (bool, error) {
	path, err := c.Path(ctx)
	if err != nil {
		return false, err
	}
	return path.ContainsStep(step), nil
}

// OnInvalidStep returns where to send a user whose request is not a valid
// step: by default the last step in the path. ErrNoValidStep is returned
// when the path is empty.
func (c *Coordinator) OnInvalidStep(ctx context.Context) (Redirect, error) {
	c.emit(ctx, EventInvalidStep, observability.LevelWarning, "coordinator.OnInvalidStep", map[string]any{
		"url": c.request.URL,
	})

	if c.hooks.InvalidStep != nil {
		return c.hooks.InvalidStep(ctx, c)
	}

	path, err := c.Path(ctx)
	if err != nil {
		return Redirect{}, err
	}

	last, ok := path.Last()
	if !ok {
		return Redirect{}, fmt.Errorf("%w: %s", ErrNoValidStep, c.id)
	}
	return Redirect{URL: last.URLFor(c.id)}, nil
}

// AdvanceTo pushes nextStepURL onto the path relative to the current step,
// applies mutate to the state and persists both in one write.
//
// The returned redirect is the request's return URL when it is a local URL,
// and nextStepURL otherwise.
func (c *Coordinator) AdvanceTo(ctx context.Context, nextStepURL string, mutate Mutator, opts journey.PushStepOptions) (Redirect, error) {
	var steps int

	err := c.update(ctx, func(ctx context.Context, e state.Entry) (state.Entry, error) {
		current := c.request.Step()
		if !e.Path.ContainsStep(current) {
			return state.Entry{}, fmt.Errorf("%w: %s", ErrCurrentStepNotFound, current.StepID)
		}

		path, err := e.Path.PushStep(journey.StepFromURL(nextStepURL), current, opts)
		if err != nil {
			return state.Entry{}, err
		}

		s, err := apply(ctx, mutate, e.State)
		if err != nil {
			return state.Entry{}, err
		}

		steps = path.Len()
		return state.Entry{State: s, Path: path}, nil
	})
	if err != nil {
		return Redirect{}, err
	}

	target := nextStepURL
	if c.request.ReturnURL != "" && journey.IsLocalURL(c.request.ReturnURL) {
		target = c.request.ReturnURL
	}

	c.emit(ctx, EventAdvance, observability.LevelInfo, "coordinator.AdvanceTo", map[string]any{
		"next":     nextStepURL,
		"redirect": target,
		"steps":    steps,
	})

	return Redirect{URL: target}, nil
}

// UpdateState applies mutate to the state and persists it with the path
// unchanged.
func (c *Coordinator) UpdateState(ctx context.Context, mutate Mutator) error {
	err := c.update(ctx, func(ctx context.Context, e state.Entry) (state.Entry, error) {
		s, err := apply(ctx, mutate, e.State)
		if err != nil {
			return state.Entry{}, err
		}
		return state.Entry{State: s, Path: e.Path}, nil
	})
	if err != nil {
		return err
	}

	c.emit(ctx, EventStateUpdate, observability.LevelVerbose, "coordinator.UpdateState", nil)
	return nil
}

// UnsafeSetPath replaces the path without any step validation.
func (c *Coordinator) UnsafeSetPath(ctx context.Context, path journey.Path) error {
	err := c.update(ctx, func(_ context.Context, e state.Entry) (state.Entry, error) {
		return state.Entry{State: e.State, Path: path}, nil
	})
	if err != nil {
		return err
	}

	c.emit(ctx, EventPathSet, observability.LevelVerbose, "coordinator.UnsafeSetPath", map[string]any{
		"steps": path.Len(),
	})
	return nil
}

// DeleteInstance removes the instance from storage. The coordinator is then
// deleted: further mutating calls fail with ErrInstanceDeleted, and repeated
// deletes are no-ops.
func (c *Coordinator) DeleteInstance(ctx context.Context) error {
	if c.deleted.Load() {
		return nil
	}

	if err := c.store.DeleteState(ctx, c.id, c.journey); err != nil {
		return fmt.Errorf("delete journey instance: %w", err)
	}
	c.deleted.Store(true)

	c.emit(ctx, EventInstanceDelete, observability.LevelInfo, "coordinator.DeleteInstance", nil)
	return nil
}

// StartingState produces the initial state for a new instance, using
// Hooks.StartingState when set and DefaultStartingState otherwise.
func (c *Coordinator) StartingState(ctx context.Context) (any, error) {
	var (
		s   any
		err error
	)
	if c.hooks.StartingState != nil {
		s, err = c.hooks.StartingState(ctx, StartContext{InstanceID: c.id, Request: c.request})
	} else {
		s, err = DefaultStartingState(c.journey)
	}
	if err != nil {
		return nil, err
	}

	if err := c.journey.ValidateState(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Coordinator) entry(ctx context.Context) (state.Entry, error) {
	e, err := c.store.GetState(ctx, c.id, c.journey)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return state.Entry{}, fmt.Errorf("%w: %s", ErrNoInstance, c.id)
		}
		return state.Entry{}, err
	}
	return e, nil
}

func (c *Coordinator) update(ctx context.Context, fn func(context.Context, state.Entry) (state.Entry, error)) error {
	if c.deleted.Load() {
		return ErrInstanceDeleted
	}

	e, err := c.entry(ctx)
	if err != nil {
		return err
	}

	next, err := fn(ctx, e)
	if err != nil {
		return err
	}

	if err := c.journey.ValidateState(next.State); err != nil {
		return err
	}

	return c.store.SetState(ctx, c.id, c.journey, next)
}

func (c *Coordinator) emit(ctx context.Context, typ observability.EventType, level observability.Level, source string, data map[string]any) {
	if data == nil {
		data = make(map[string]any, 2)
	}
	data["journey"] = c.journey.Name()
	data["instance"] = c.id.String()

	c.observer.OnEvent(ctx, observability.NewEvent(typ, level, source, data))
}

func apply(ctx context.Context, mutate Mutator, current any) (any, error) {
	if mutate == nil {
		return current, nil
	}
	return mutate(ctx, current)
}
