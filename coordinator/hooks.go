package coordinator

import (
	"context"
	"fmt"
	"reflect"

	"github.com/x-govuk/questions/journey"
)

// StartContext describes a journey instance being started.
type StartContext struct {
	InstanceID journey.InstanceID
	Request    Request
}

// StartFunc produces the initial state for a new instance.
type StartFunc func(ctx context.Context, sc StartContext) (any, error)

// Hooks customise a journey's behaviour. Zero-valued hooks use the defaults.
type Hooks struct {
	// StartingState overrides DefaultStartingState.
	StartingState StartFunc
	// InvalidStep overrides the redirect produced by OnInvalidStep.
	InvalidStep func(ctx context.Context, c *Coordinator) (Redirect, error)
}

// DefaultStartingState returns a new zero value of d's state type. Pointer
// types get a pointer to a fresh zero value and map types an empty map.
// Interface types have no default and fail with ErrNoStartingState.
func DefaultStartingState(d *journey.Descriptor) (any, error) {
	t := d.StateType()

	switch t.Kind() {
	case reflect.Interface:
		return nil, fmt.Errorf(
			"%w: state type %q of journey %q is an interface; set Hooks.StartingState when registering the journey",
			ErrNoStartingState, journey.TypeName(t), d.Name())
	case reflect.Pointer:
		return reflect.New(t.Elem()).Interface(), nil
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), nil
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface(), nil
	default:
		return reflect.Zero(t).Interface(), nil
	}
}
