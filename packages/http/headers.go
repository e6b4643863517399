package http

import (
	"sort"
	"strings"
)

// Headers maps header names to values. Lookups ignore the case of the name.
type Headers map[string]string

// Get returns the value of the header named name. An exact match wins; when
// several names differ only by case the lexically smallest one is used.
func (h Headers) Get(name string) (string, bool) {
	if v, ok := h[name]; ok {
		return v, true
	}
	found := false
	var key, value string
	for k, v := range h {
		if !strings.EqualFold(k, name) {
			continue
		}
		if !found || k < key {
			key, value = k, v
			found = true
		}
	}
	return value, found
}

// Value returns the header value or "" when absent.
func (h Headers) Value(name string) string {
	v, _ := h.Get(name)
	return v
}

// Has reports whether a header named name is present.
func (h Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Names returns the header names in sorted order.
func (h Headers) Names() []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
