// Package journey defines the identity and navigation model for multi-step
// question journeys: descriptors, instance ids, steps and paths.
package journey

import (
	"fmt"
	"reflect"
	"strings"
)

// Descriptor is the static definition of a journey, registered once at
// startup. Names compare case-insensitively.
type Descriptor struct {
	name           string
	routeValueKeys []string
	stateType      reflect.Type
}

// NewDescriptor creates a Descriptor for the named journey. Route value keys
// parameterize instances of the journey and must be unique ignoring case.
func NewDescriptor(name string, stateType reflect.Type, routeValueKeys ...string) (*Descriptor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: journey name is empty", ErrInvalidArgument)
	}
	if stateType == nil {
		return nil, fmt.Errorf("%w: journey %q has no state type", ErrInvalidArgument, name)
	}

	seen := make(map[string]struct{}, len(routeValueKeys))
	for _, key := range routeValueKeys {
		lower := strings.ToLower(key)
		if lower == "" {
			return nil, fmt.Errorf("%w: journey %q has an empty route value key", ErrInvalidArgument, name)
		}
		if lower == KeyRouteValueName {
			return nil, fmt.Errorf("%w: route value key %q is reserved", ErrInvalidArgument, key)
		}
		if _, dup := seen[lower]; dup {
			return nil, fmt.Errorf("%w: duplicate route value key %q", ErrInvalidArgument, key)
		}
		seen[lower] = struct{}{}
	}

	return &Descriptor{
		name:           name,
		routeValueKeys: append([]string(nil), routeValueKeys...),
		stateType:      stateType,
	}, nil
}

// DescriptorFor creates a Descriptor whose state type is T. It panics on
// invalid input and is intended for package-level journey definitions.
func DescriptorFor[T any](name string, routeValueKeys ...string) *Descriptor {
	d, err := NewDescriptor(name, reflect.TypeFor[T](), routeValueKeys...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the journey name.
func (d *Descriptor) Name() string { return d.name }

// RouteValueKeys returns the declared route value keys in declaration order.
func (d *Descriptor) RouteValueKeys() []string {
	return append([]string(nil), d.routeValueKeys...)
}

// StateType returns the state type instances of the journey must hold.
func (d *Descriptor) StateType() reflect.Type { return d.stateType }

// IsStateTypeValid reports whether a state value of type t may be stored for
// this journey. When the declared state type is an interface any implementing
// type is accepted; otherwise t must match exactly.
func (d *Descriptor) IsStateTypeValid(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t == d.stateType {
		return true
	}
	return d.stateType.Kind() == reflect.Interface && t.Implements(d.stateType)
}

// ValidateState returns ErrInvalidStateType when state's runtime type is not
// valid for this journey, and ErrNilState when state holds a nil value.
func (d *Descriptor) ValidateState(state any) error {
	t := reflect.TypeOf(state)
	if !d.IsStateTypeValid(t) {
		got := "<nil>"
		if t != nil {
			got = TypeName(t)
		}
		return fmt.Errorf("%w for journey %q; expected %q but got %q",
			ErrInvalidStateType, d.name, TypeName(d.stateType), got)
	}
	if IsNil(state) {
		return fmt.Errorf("%w for journey %q: %s", ErrNilState, d.name, TypeName(t))
	}
	return nil
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice,
// interface, channel or func.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// SameName reports whether name identifies this journey.
func (d *Descriptor) SameName(name string) bool {
	return strings.EqualFold(d.name, name)
}

// TypeName returns the fully qualified name of t, prefixed with one "*" per
// level of pointer indirection. Unnamed types use their literal form.
func TypeName(t reflect.Type) string {
	var prefix strings.Builder
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		prefix.WriteByte('*')
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return prefix.String() + t.String()
	}
	return prefix.String() + t.PkgPath() + "." + t.Name()
}
