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

// Package optionset resolves option codes to display names. Option sets
// live in a Store; a Cache keeps the sets of the current version and a
// Resolver looks up every set referenced by a response concurrently.
package optionset

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a store has no option set with an id.
var ErrNotFound = errors.New("option set not found")

// Option is one code of an option set.
type Option struct {
	Code string `bson:"code" json:"code" yaml:"code"`
	Name string `bson:"name" json:"name" yaml:"name"`
}

// OptionSet is a versioned list of options.
type OptionSet struct {
	ID      string   `bson:"_id" json:"id" yaml:"id"`
	Version int      `bson:"version" json:"version" yaml:"version"`
	Options []Option `bson:"options" json:"options" yaml:"options"`
}

// Store provides option sets.
type Store interface {
	// Get returns the option set with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*OptionSet, error)
	// Version returns the current version of an option set or ErrNotFound.
	Version(ctx context.Context, id string) (int, error)
}

// MemoryStore is a Store kept in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string]*OptionSet
}

// NewMemoryStore creates a store holding sets.
func NewMemoryStore(sets ...*OptionSet) *MemoryStore {
	s := &MemoryStore{sets: make(map[string]*OptionSet, len(sets))}
	for _, set := range sets {
		s.Put(set)
	}
	return s
}

// Put adds or replaces an option set.
func (s *MemoryStore) Put(set *OptionSet) {
	c := *set
	c.Options = append([]Option(nil), set.Options...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[set.ID] = &c
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*OptionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *set
	c.Options = append([]Option(nil), set.Options...)
	return &c, nil
}

// Version implements Store.
func (s *MemoryStore) Version(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[id]
	if !ok {
		return 0, ErrNotFound
	}
	return set.Version, nil
}

// Len returns the number of option sets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets)
}
