/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package ordered provides insertion-ordered collections. Dimension ids,
// header ids and axis names are all "first occurrence wins" lists, and these
// types keep that rule in one place.
package ordered

// Map is a map that preserves the order of insertion.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewMap creates a new ordered map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		keys:   make([]K, 0),
		values: make(map[K]V),
	}
}

// Set adds or updates a key-value pair. Updating keeps the original position.
func (m *Map[K, V]) Set(key K, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get retrieves a value by key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	val, exists := m.values[key]
	return val, exists
}

// Has checks if a key exists.
func (m *Map[K, V]) Has(key K) bool {
	_, exists := m.values[key]
	return exists
}

// Keys returns all keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	result := make([]K, len(m.keys))
	copy(result, m.keys)
	return result
}

// Values returns all values in insertion order.
func (m *Map[K, V]) Values() []V {
	result := make([]V, len(m.keys))
	for i, k := range m.keys {
		result[i] = m.values[k]
	}
	return result
}

// Len returns the number of key-value pairs.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Range iterates over the map in insertion order.
// If f returns false, iteration stops.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			break
		}
	}
}

// Set is an insertion-ordered set.
type Set[T comparable] struct {
	m *Map[T, struct{}]
}

// NewSet creates a set holding the given values, first occurrence first.
func NewSet[T comparable](values ...T) *Set[T] {
	s := &Set[T]{m: NewMap[T, struct{}]()}
	s.Add(values...)
	return s
}

// Add appends values that are not yet present.
func (s *Set[T]) Add(values ...T) {
	for _, v := range values {
		s.m.Set(v, struct{}{})
	}
}

// Has reports whether v is in the set.
func (s *Set[T]) Has(v T) bool {
	return s.m.Has(v)
}

// Len returns the number of distinct values.
func (s *Set[T]) Len() int {
	return s.m.Len()
}

// Slice returns the values in insertion order.
func (s *Set[T]) Slice() []T {
	return s.m.Keys()
}

// Unique returns values with duplicates removed, keeping first occurrences.
func Unique[T comparable](values []T) []T {
	return NewSet(values...).Slice()
}

// Contains reports whether v is one of values.
func Contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// SortByReference reorders values so that entries present in ref come first,
// in ref order. Entries missing from ref keep their relative order at the end.
func SortByReference[T comparable](values, ref []T) []T {
	present := NewSet(values...)
	result := make([]T, 0, len(values))
	used := NewSet[T]()
	for _, r := range ref {
		if present.Has(r) && !used.Has(r) {
			result = append(result, r)
			used.Add(r)
		}
	}
	for _, v := range values {
		if !used.Has(v) {
			result = append(result, v)
			used.Add(v)
		}
	}
	return result
}
