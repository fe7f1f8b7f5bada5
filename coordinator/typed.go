package coordinator

import (
	"context"
	"fmt"

	"github.com/x-govuk/questions/journey"
)

// StateAs loads the state and asserts it to T.
func StateAs[T any](ctx context.Context, c *Coordinator) (T, error) {
	var zero T

	s, err := c.State(ctx)
	if err != nil {
		return zero, err
	}

	typed, ok := s.(T)
	if !ok {
		return zero, fmt.Errorf("%w: state is %T, not %T", journey.ErrInvalidStateType, s, zero)
	}
	return typed, nil
}

// Update returns a Mutator that modifies a state of type T in place. T is
// normally a pointer type; changes to a value type are discarded, so use
// Replace for those.
func Update[T any](fn func(T)) Mutator {
	return ReplaceCtx(func(_ context.Context, s T) (T, error) {
		fn(s)
		return s, nil
	})
}

// Replace returns a Mutator that swaps the state for fn's result.
func Replace[T any](fn func(T) T) Mutator {
	return ReplaceCtx(func(_ context.Context, s T) (T, error) {
		return fn(s), nil
	})
}

// ReplaceCtx returns a Mutator for state transitions that need the context
// or can fail, such as ones performing I/O.
func ReplaceCtx[T any](fn func(context.Context, T) (T, error)) Mutator {
	return func(ctx context.Context, current any) (any, error) {
		typed, ok := current.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("%w: state is %T, not %T", journey.ErrInvalidStateType, current, zero)
		}
		return fn(ctx, typed)
	}
}
