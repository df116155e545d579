// Package omap provides an insertion-ordered map and generic helpers for
// merging, inverting and re-keying one.
package omap

import "iter"

// Map is a map that remembers the order in which keys were first inserted.
// Overwriting an existing key keeps its original position.
//
// A Map is not safe for concurrent mutation.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New returns an empty Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

// Pair is a single key/value entry.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// FromPairs builds a Map from pairs in order.
func FromPairs[K comparable, V any](pairs ...Pair[K, V]) *Map[K, V] {
	m := New[K, V]()
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set stores v under k.
func (m *Map[K, V]) Set(k K, v V) {
	if m.values == nil {
		m.values = make(map[K]V)
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[k]
	return v, ok
}

// Delete removes k. It is a no-op when k is absent.
func (m *Map[K, V]) Delete(k K) {
	if m == nil {
		return
	}
	if _, ok := m.values[k]; !ok {
		return
	}
	delete(m.values, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	return append([]K(nil), m.keys...)
}

// All iterates entries in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Merge copies every entry of src into dst, overwriting existing keys, and
// returns dst. A nil dst is allocated.
func Merge[K comparable, V any](dst, src *Map[K, V]) *Map[K, V] {
	if dst == nil {
		dst = New[K, V]()
	}
	for k, v := range src.All() {
		dst.Set(k, v)
	}
	return dst
}

// Swap returns a new Map with keys and values exchanged. When several keys
// share a value the last one wins; the entry keeps the position at which the
// value was first seen.
func Swap[K, V comparable](m *Map[K, V]) *Map[V, K] {
	out := New[V, K]()
	for k, v := range m.All() {
		out.Set(v, k)
	}
	return out
}

// RenameKeys returns a new Map whose keys are replaced according to mapping.
// Keys absent from mapping are kept as-is and entries holding the zero value
// are dropped.
func RenameKeys[K, V comparable](m *Map[K, V], mapping map[K]K) *Map[K, V] {
	var zero V
	out := New[K, V]()
	for k, v := range m.All() {
		if v == zero {
			continue
		}
		if renamed, ok := mapping[k]; ok {
			k = renamed
		}
		out.Set(k, v)
	}
	return out
}
