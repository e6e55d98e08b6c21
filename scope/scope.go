// Package scope provides the stock variable environment for veneer
// renderers: a map-backed scope with deep clone and copy-with-overlay
// semantics.
package scope

import "github.com/veneerhq/veneer"

// Map is a mutable key→value variable environment. Clone and CopyWith
// copy nested maps and slices, so mutating a derived scope never leaks
// into its source. Other value types are shared between a scope and its
// clones and are treated as immutable.
type Map map[string]any

var _ veneer.Scope = Map{}

// New returns a scope seeded with a copy of vars. A nil vars yields an
// empty scope.
func New(vars map[string]any) Map {
	m := make(Map, len(vars))
	for k, v := range vars {
		m[k] = deepCopy(v)
	}
	return m
}

// Add binds value to key, replacing any existing binding.
func (m Map) Add(key string, value any) {
	m[key] = value
}

// Get returns the value bound to key, if any.
func (m Map) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Clone returns an independent copy of the scope.
func (m Map) Clone() veneer.Scope {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

// CopyWith returns an independent copy of the scope with vars overlaid.
func (m Map) CopyWith(vars map[string]any) veneer.Scope {
	out := m.Clone().(Map)
	for k, v := range vars {
		out[k] = v
	}
	return out
}

func deepCopy(v any) any {
	switch v := v.(type) {
	case Map:
		out := make(Map, len(v))
		for k, e := range v {
			out[k] = deepCopy(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}
