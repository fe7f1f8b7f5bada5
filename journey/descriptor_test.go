package journey_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/x-govuk/questions/journey"
)

type shape interface{ Area() float64 }

type square struct{ Side float64 }

func (s square) Area() float64 { return s.Side * s.Side }

func TestNewDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		jname   string
		typ     reflect.Type
		keys    []string
		wantErr bool
	}{
		{name: "valid", jname: "j", typ: reflect.TypeFor[testState](), keys: []string{"id"}},
		{name: "empty name", jname: " ", typ: reflect.TypeFor[testState](), wantErr: true},
		{name: "nil type", jname: "j", wantErr: true},
		{name: "duplicate keys", jname: "j", typ: reflect.TypeFor[testState](), keys: []string{"id", "ID"}, wantErr: true},
		{name: "reserved key", jname: "j", typ: reflect.TypeFor[testState](), keys: []string{"_JID"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := journey.NewDescriptor(tt.jname, tt.typ, tt.keys...)
			if tt.wantErr {
				if !errors.Is(err, journey.ErrInvalidArgument) {
					t.Errorf("NewDescriptor() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDescriptor() error: %v", err)
			}
			if d.Name() != tt.jname || d.StateType() != tt.typ {
				t.Errorf("NewDescriptor() = %s/%v", d.Name(), d.StateType())
			}
		})
	}
}

func TestDescriptor_IsStateTypeValid(t *testing.T) {
	concrete := journey.DescriptorFor[*testState]("c")
	iface := journey.DescriptorFor[shape]("i")

	tests := []struct {
		name string
		d    *journey.Descriptor
		typ  reflect.Type
		want bool
	}{
		{name: "exact", d: concrete, typ: reflect.TypeFor[*testState](), want: true},
		{name: "value vs pointer", d: concrete, typ: reflect.TypeFor[testState]()},
		{name: "nil", d: concrete},
		{name: "implements interface", d: iface, typ: reflect.TypeFor[square](), want: true},
		{name: "does not implement interface", d: iface, typ: reflect.TypeFor[testState]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.IsStateTypeValid(tt.typ); got != tt.want {
				t.Errorf("IsStateTypeValid(%v) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}

	if err := concrete.ValidateState(testState{}); !errors.Is(err, journey.ErrInvalidStateType) {
		t.Errorf("ValidateState() error = %v, want ErrInvalidStateType", err)
	}
	if err := concrete.ValidateState(&testState{}); err != nil {
		t.Errorf("ValidateState() error = %v", err)
	}
	if err := concrete.ValidateState((*testState)(nil)); !errors.Is(err, journey.ErrNilState) {
		t.Errorf("ValidateState(typed nil) error = %v, want ErrNilState", err)
	}
	if err := concrete.ValidateState(nil); !errors.Is(err, journey.ErrInvalidStateType) {
		t.Errorf("ValidateState(nil) error = %v, want ErrInvalidStateType", err)
	}
}

func TestDescriptor_SameName(t *testing.T) {
	d := journey.DescriptorFor[testState]("Add-Person")
	if !d.SameName("add-person") {
		t.Error("SameName() is case-sensitive")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{typ: reflect.TypeFor[testState](), want: "github.com/x-govuk/questions/journey_test.testState"},
		{typ: reflect.TypeFor[*testState](), want: "*github.com/x-govuk/questions/journey_test.testState"},
		{typ: reflect.TypeFor[map[string]int](), want: "map[string]int"},
		{typ: reflect.TypeFor[string](), want: "string"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.typ), func(t *testing.T) {
			if got := journey.TypeName(tt.typ); got != tt.want {
				t.Errorf("TypeName() = %q, want %q", got, tt.want)
			}
		})
	}
}
