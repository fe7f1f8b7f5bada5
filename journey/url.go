package journey

import (
	"net/url"
	"strings"
	"unicode"
)

// AddQueryParameter appends name=value to u's query string, keeping any
// fragment at the end.
func AddQueryParameter(u, name, value string) string {
	base, fragment, hasFragment := strings.Cut(u, "#")

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	base += sep + url.QueryEscape(name) + "=" + url.QueryEscape(value)

	if hasFragment {
		return base + "#" + fragment
	}
	return base
}

// StripQueryParameters returns u without any query parameters whose names
// match one of names, ignoring case. Remaining parameters keep their order
// and encoding; an emptied query string is dropped along with its '?'.
func StripQueryParameters(u string, names ...string) string {
	base, fragment, hasFragment := strings.Cut(u, "#")
	path, rawQuery, hasQuery := strings.Cut(base, "?")
	if !hasQuery {
		return u
	}

	kept := make([]string, 0, strings.Count(rawQuery, "&")+1)
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		if matchesAny(queryKey(part), names) {
			continue
		}
		kept = append(kept, part)
	}

	result := path
	if len(kept) > 0 {
		result += "?" + strings.Join(kept, "&")
	}
	if hasFragment {
		result += "#" + fragment
	}
	return result
}

// QueryValue returns the first value of the named query parameter in u,
// matching the name case-insensitively.
func QueryValue(u, name string) (string, bool) {
	base, _, _ := strings.Cut(u, "#")
	_, rawQuery, hasQuery := strings.Cut(base, "?")
	if !hasQuery {
		return "", false
	}

	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" || !strings.EqualFold(queryKey(part), name) {
			continue
		}
		_, raw, _ := strings.Cut(part, "=")
		v, err := url.QueryUnescape(raw)
		if err != nil {
			return "", false
		}
		return v, true
	}
	return "", false
}

// IsLocalURL reports whether u is safe to redirect to without leaving the
// site. It accepts "/" or "/path" but not "//" or "/\", and "~/" or "~/path"
// but not "~//" or "~/\". URLs containing control characters are rejected.
func IsLocalURL(u string) bool {
	switch {
	case u == "":
		return false
	case u[0] == '/':
		if len(u) == 1 {
			return true
		}
		if u[1] == '/' || u[1] == '\\' {
			return false
		}
		return !hasControlCharacter(u[1:])
	case u[0] == '~' && len(u) > 1 && u[1] == '/':
		if len(u) == 2 {
			return true
		}
		if u[2] == '/' || u[2] == '\\' {
			return false
		}
		return !hasControlCharacter(u[2:])
	default:
		return false
	}
}

func hasControlCharacter(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

func queryKey(part string) string {
	rawKey, _, _ := strings.Cut(part, "=")
	if key, err := url.QueryUnescape(rawKey); err == nil {
		return key
	}
	return rawKey
}

func matchesAny(key string, names []string) bool {
	for _, name := range names {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
