package journey_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/x-govuk/questions/journey"
)

const testKey = "0190a8b4-7c3e-7d2a-9b1f-3e4d5c6b7a80"

type testState struct {
	Foo int `json:"foo"`
}

func TestNewInstanceID(t *testing.T) {
	t.Run("requires instance key", func(t *testing.T) {
		_, err := journey.NewInstanceID("j", journey.RouteValues{"id": "1"})
		if !errors.Is(err, journey.ErrInvalidArgument) {
			t.Errorf("NewInstanceID() error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := journey.NewInstanceID("", journey.RouteValues{"_jid": testKey})
		if !errors.Is(err, journey.ErrInvalidArgument) {
			t.Errorf("NewInstanceID() error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("rejects keys differing only by case", func(t *testing.T) {
		_, err := journey.NewInstanceID("j", journey.RouteValues{"_jid": testKey, "id": "1", "ID": "2"})
		if !errors.Is(err, journey.ErrInvalidArgument) {
			t.Errorf("NewInstanceID() error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("canonical form", func(t *testing.T) {
		id, err := journey.NewInstanceID("My Journey", journey.RouteValues{
			"_jid":   strings.ToUpper(testKey),
			"Zeta":   "z",
			"alpha":  "a b",
			"Middle": "M",
		})
		if err != nil {
			t.Fatalf("NewInstanceID() error: %v", err)
		}

		want := "fdc:x-govuk.org:questions/my%20journey?alpha=a+b&middle=M&zeta=z&_jid=" + testKey
		if got := id.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})
}

func TestInstanceID_Equality(t *testing.T) {
	a, err := journey.NewInstanceID("Journey", journey.RouteValues{"_jid": testKey, "PersonId": "42", "b": "x"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := journey.NewInstanceID("journey", journey.RouteValues{"b": "x", "personid": "42", "_JID": strings.ToUpper(testKey)})
	if err != nil {
		t.Fatal(err)
	}

	if !a.Equal(b) {
		t.Errorf("Equal() = false for %q and %q", a, b)
	}

	m := map[string]int{a.String(): 1}
	if m[b.String()] != 1 {
		t.Error("canonical strings do not hash equal")
	}

	c, _ := journey.NewInstanceID("journey", journey.RouteValues{"_jid": testKey, "personid": "43", "b": "x"})
	if a.Equal(c) {
		t.Error("Equal() = true for different route values")
	}
}

func TestParseInstanceID(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		id, _ := journey.NewInstanceID("start-journey", journey.RouteValues{
			"_jid": testKey,
			"id":   "a/b c&d",
		})

		parsed, err := journey.ParseInstanceID(id.String())
		if err != nil {
			t.Fatalf("ParseInstanceID() error: %v", err)
		}
		if !parsed.Equal(id) {
			t.Errorf("ParseInstanceID() = %q, want %q", parsed, id)
		}
		if v, _ := parsed.RouteValue("ID"); v != "a/b c&d" {
			t.Errorf("RouteValue(ID) = %q", v)
		}
		if parsed.JourneyName() != "start-journey" {
			t.Errorf("JourneyName() = %q", parsed.JourneyName())
		}
		if parsed.Key() != testKey {
			t.Errorf("Key() = %q", parsed.Key())
		}
	})

	invalid := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "relative", input: "/questions/j?_jid=" + testKey},
		{name: "wrong prefix", input: "urn:other:questions/j?_jid=" + testKey},
		{name: "missing key", input: "fdc:x-govuk.org:questions/j?id=1"},
		{name: "malformed key", input: "fdc:x-govuk.org:questions/j?_jid=not-a-key"},
		{name: "prefix not followed by path", input: "fdc:x-govuk.org:questionsx?_jid=" + testKey},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := journey.TryParseInstanceID(tt.input); ok {
				t.Errorf("TryParseInstanceID(%q) ok = true", tt.input)
			}
			if _, err := journey.ParseInstanceID(tt.input); !errors.Is(err, journey.ErrFormat) {
				t.Errorf("ParseInstanceID(%q) error = %v, want ErrFormat", tt.input, err)
			}
		})
	}
}

func TestCreateNewInstanceID(t *testing.T) {
	d := journey.DescriptorFor[*testState]("j", "personId")

	id, ok := journey.CreateNewInstanceID(d, journey.RouteValues{"PERSONID": "42", "other": "dropped"})
	if !ok {
		t.Fatal("CreateNewInstanceID() ok = false")
	}
	if !journey.IsValidKey(id.Key()) {
		t.Errorf("Key() = %q is not a valid key", id.Key())
	}
	if v, _ := id.RouteValue("personId"); v != "42" {
		t.Errorf("RouteValue(personId) = %q, want 42", v)
	}
	if _, ok := id.RouteValue("other"); ok {
		t.Error("undeclared route value was kept")
	}

	other, _ := journey.CreateNewInstanceID(d, journey.RouteValues{"personId": "42"})
	if other.Equal(id) {
		t.Error("two minted ids are equal")
	}

	if _, ok := journey.CreateNewInstanceID(d, journey.RouteValues{}); ok {
		t.Error("CreateNewInstanceID() with missing route value ok = true")
	}
}

func TestCreateInstanceID(t *testing.T) {
	d := journey.DescriptorFor[*testState]("j", "personId")

	tests := []struct {
		name   string
		values journey.RouteValues
		wantOK bool
	}{
		{name: "valid", values: journey.RouteValues{"personId": "42", "_jid": testKey}, wantOK: true},
		{name: "missing key", values: journey.RouteValues{"personId": "42"}},
		{name: "malformed key", values: journey.RouteValues{"personId": "42", "_jid": "abc"}},
		{name: "missing route value", values: journey.RouteValues{"_jid": testKey}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := journey.CreateInstanceID(d, tt.values)
			if ok != tt.wantOK {
				t.Fatalf("CreateInstanceID() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && id.Key() != testKey {
				t.Errorf("Key() = %q, want %q", id.Key(), testKey)
			}
		})
	}
}

func TestInstanceID_EnsureURLHasKey(t *testing.T) {
	id, _ := journey.NewInstanceID("j", journey.RouteValues{"_jid": testKey})

	tests := []struct {
		url  string
		want string
	}{
		{url: "/step", want: "/step?_jid=" + testKey},
		{url: "/step?a=1", want: "/step?a=1&_jid=" + testKey},
		{url: "/step?_jid=other", want: "/step?_jid=other"},
		{url: "/step?_JID=other", want: "/step?_JID=other"},
		{url: "/step?foo_jid=1", want: "/step?foo_jid=1&_jid=" + testKey},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := id.EnsureURLHasKey(tt.url); got != tt.want {
				t.Errorf("EnsureURLHasKey(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestInstanceID_Text(t *testing.T) {
	id, _ := journey.NewInstanceID("j", journey.RouteValues{"_jid": testKey, "a": "1"})

	data, err := json.Marshal(map[string]journey.InstanceID{"id": id})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded map[string]journey.InstanceID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !decoded["id"].Equal(id) {
		t.Errorf("decoded = %q, want %q", decoded["id"], id)
	}
}

func TestFormatRouteValue(t *testing.T) {
	rv := journey.RouteValues{}
	rv.Set("int", 42)
	rv.Set("int64", int64(-7))
	rv.Set("bool", true)
	rv.Set("nil", nil)

	want := journey.RouteValues{"int": "42", "int64": "-7", "bool": "true", "nil": ""}
	for k, v := range want {
		if rv[k] != v {
			t.Errorf("Set(%s) = %q, want %q", k, rv[k], v)
		}
	}
}
