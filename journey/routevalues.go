package journey

import (
	"fmt"
	"strconv"
	"strings"
)

// RouteValues maps route parameter names to their string values. Lookups via
// Get ignore case.
type RouteValues map[string]string

// Get returns the value for key, preferring an exact match and falling back
// to a case-insensitive one.
func (rv RouteValues) Get(key string) (string, bool) {
	if v, ok := rv[key]; ok {
		return v, true
	}
	for k, v := range rv {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Set stores value under key using FormatRouteValue.
func (rv RouteValues) Set(key string, value any) {
	rv[key] = FormatRouteValue(value)
}

// FormatRouteValue stringifies a route value. Minting and resuming an
// instance must agree on the textual form of non-string values.
func FormatRouteValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
