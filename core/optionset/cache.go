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

package optionset

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/logger"
)

// DefaultCacheSize is the number of option sets a Cache keeps.
const DefaultCacheSize = 256

// Cache keeps option sets read from a store. A cached set is reused only
// while the store reports the same version for it.
type Cache struct {
	store Store
	size  int

	mu      sync.RWMutex
	entries map[string]*OptionSet
	// order holds the ids in insertion order for eviction.
	order []string
}

// NewCache creates a cache of at most size sets in front of store.
func NewCache(store Store, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		store:   store,
		size:    size,
		entries: make(map[string]*OptionSet),
	}
}

// Get returns the current option set with the given id.
func (c *Cache) Get(ctx context.Context, id string) (*OptionSet, error) {
	version, err := c.store.Version(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	cached, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && cached.Version == version {
		return cached, nil
	}

	set, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.GetLogger("optionset").WithFields(logrus.Fields{
		"option_set": id,
		"version":    set.Version,
		"stale":      ok,
	}).Debug("option set loaded")

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[id]; !exists {
		if len(c.order) >= c.size {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, id)
	}
	c.entries[id] = set
	return set, nil
}

// Len returns the number of cached sets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
