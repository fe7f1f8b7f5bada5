package journey

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// URIPrefix is the scheme and authority of every canonical instance id.
	URIPrefix = "fdc:x-govuk.org:questions"

	// KeyRouteValueName is the route value (and query parameter) carrying an
	// instance's key.
	KeyRouteValueName = "_jid"

	// ReturnURLQueryParameterName is the query parameter a step may carry to
	// redirect somewhere other than the next step after an advance.
	ReturnURLQueryParameterName = "returnUrl"
)

// InstanceID identifies one running instance of a journey. It is immutable;
// equality is defined over the canonical string form returned by String.
type InstanceID struct {
	journeyName string
	values      map[string]string
	canonical   string
}

// NewInstanceID creates an InstanceID from a journey name and route values.
// The route values must include KeyRouteValueName. Keys are compared
// case-insensitively and two keys differing only by case are rejected.
func NewInstanceID(journeyName string, routeValues RouteValues) (InstanceID, error) {
	if journeyName == "" {
		return InstanceID{}, fmt.Errorf("%w: journey name is empty", ErrInvalidArgument)
	}

	values := make(map[string]string, len(routeValues))
	for k, v := range routeValues {
		lower := strings.ToLower(k)
		if _, dup := values[lower]; dup {
			return InstanceID{}, fmt.Errorf("%w: route value %q is specified more than once", ErrInvalidArgument, k)
		}
		values[lower] = v
	}

	if _, ok := values[KeyRouteValueName]; !ok {
		return InstanceID{}, fmt.Errorf("%w: route values is missing an entry for %q", ErrInvalidArgument, KeyRouteValueName)
	}

	id := InstanceID{journeyName: journeyName, values: values}
	id.canonical = id.format()
	return id, nil
}

// CreateNewInstanceID mints a fresh instance key and builds an InstanceID for
// d from the descriptor's declared route value keys. It returns false when any
// declared key is missing from routeValues.
func CreateNewInstanceID(d *Descriptor, routeValues RouteValues) (InstanceID, bool) {
	return createInstanceID(d, routeValues, NewKey())
}

// CreateInstanceID builds an InstanceID for d from request route values that
// already carry a well-formed instance key. It returns false when the key or
// any declared route value is missing.
func CreateInstanceID(d *Descriptor, routeValues RouteValues) (InstanceID, bool) {
	key, ok := routeValues.Get(KeyRouteValueName)
	if !ok || !IsValidKey(key) {
		return InstanceID{}, false
	}
	return createInstanceID(d, routeValues, key)
}

func createInstanceID(d *Descriptor, routeValues RouteValues, key string) (InstanceID, bool) {
	sanitized := RouteValues{KeyRouteValueName: key}
	for _, k := range d.routeValueKeys {
		v, ok := routeValues.Get(k)
		if !ok {
			return InstanceID{}, false
		}
		sanitized[k] = v
	}

	id, err := NewInstanceID(d.Name(), sanitized)
	if err != nil {
		return InstanceID{}, false
	}
	return id, true
}

// NewKey returns a new instance key: a time-ordered UUID in its canonical
// lower-case string form.
func NewKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsValidKey reports whether s is a well-formed instance key.
func IsValidKey(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// ParseInstanceID parses the canonical string form of an InstanceID.
func ParseInstanceID(s string) (InstanceID, error) {
	id, ok := TryParseInstanceID(s)
	if !ok {
		return InstanceID{}, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	return id, nil
}

// TryParseInstanceID parses s, returning false if it is not an absolute URI
// beginning with URIPrefix or lacks a valid instance key.
func TryParseInstanceID(s string) (InstanceID, bool) {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return InstanceID{}, false
	}

	rest, ok := strings.CutPrefix(s, URIPrefix)
	if !ok {
		return InstanceID{}, false
	}
	rest, _, _ = strings.Cut(rest, "#")
	rawPath, rawQuery, _ := strings.Cut(rest, "?")
	if rawPath != "" && !strings.HasPrefix(rawPath, "/") {
		return InstanceID{}, false
	}

	journeyName, err := url.PathUnescape(strings.TrimLeft(rawPath, "/"))
	if err != nil {
		return InstanceID{}, false
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return InstanceID{}, false
	}

	routeValues := make(RouteValues, len(query))
	for k, v := range query {
		routeValues[k] = strings.Join(v, ",")
	}

	key, ok := routeValues.Get(KeyRouteValueName)
	if !ok || !IsValidKey(key) {
		return InstanceID{}, false
	}

	id, err := NewInstanceID(journeyName, routeValues)
	if err != nil {
		return InstanceID{}, false
	}
	return id, true
}

// JourneyName returns the name of the journey the instance belongs to.
func (id InstanceID) JourneyName() string { return id.journeyName }

// Key returns the instance key.
func (id InstanceID) Key() string { return id.values[KeyRouteValueName] }

// RouteValue returns the value for key, compared case-insensitively.
func (id InstanceID) RouteValue(key string) (string, bool) {
	v, ok := id.values[strings.ToLower(key)]
	return v, ok
}

// RouteValues returns a copy of the route values with lower-cased keys.
func (id InstanceID) RouteValues() RouteValues {
	values := make(RouteValues, len(id.values))
	for k, v := range id.values {
		values[k] = v
	}
	return values
}

// IsZero reports whether id is the zero InstanceID.
func (id InstanceID) IsZero() bool { return id.canonical == "" }

// Equal reports whether both ids have the same canonical form.
func (id InstanceID) Equal(other InstanceID) bool { return id.canonical == other.canonical }

// String returns the canonical form:
// fdc:x-govuk.org:questions/<name>?<sorted route values>&_jid=<key>.
func (id InstanceID) String() string { return id.canonical }

// EnsureURLHasKey returns u with the instance key query parameter appended,
// unless u already carries one.
func (id InstanceID) EnsureURLHasKey(u string) string {
	if _, ok := QueryValue(u, KeyRouteValueName); ok {
		return u
	}
	return AddQueryParameter(u, KeyRouteValueName, id.Key())
}

// MarshalText encodes the canonical form.
func (id InstanceID) MarshalText() ([]byte, error) {
	return []byte(id.canonical), nil
}

// UnmarshalText parses a canonical form produced by MarshalText.
func (id *InstanceID) UnmarshalText(text []byte) error {
	parsed, err := ParseInstanceID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id InstanceID) format() string {
	keys := make([]string, 0, len(id.values))
	for k := range id.values {
		if k != KeyRouteValueName {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(URIPrefix)
	b.WriteByte('/')
	b.WriteString(url.PathEscape(strings.ToLower(id.journeyName)))

	sep := byte('?')
	for _, k := range keys {
		b.WriteByte(sep)
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(id.values[k]))
		sep = '&'
	}
	b.WriteByte(sep)
	b.WriteString(KeyRouteValueName)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(strings.ToLower(id.Key())))

	return b.String()
}
