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

package dimension

import (
	"sort"
	"sync"
)

// Registry maps object names to dimension names. The built-in entries
// collapse the data object names onto "dx"; dynamic dimensions such as
// organisation unit group sets are registered at runtime and map to
// themselves.
type Registry struct {
	mu      sync.RWMutex
	names   map[string]string
	dynamic map[string]string
}

// NewRegistry returns a registry holding the built-in object names.
func NewRegistry() *Registry {
	return &Registry{
		names: map[string]string{
			Data:             Data,
			Category:         Category,
			Indicator:        DataX,
			DataElement:      DataX,
			Operand:          DataX,
			DataSet:          DataX,
			Period:           Period,
			OrganisationUnit: OrganisationUnit,
		},
		dynamic: make(map[string]string),
	}
}

// RegisterDynamic adds a dimension discovered from metadata. name is its
// display name and may be empty.
func (r *Registry) RegisterDynamic(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[id] = id
	r.dynamic[id] = name
}

// DimensionName returns the dimension name for an object name, defaulting
// to the object name itself.
func (r *Registry) DimensionName(objectName string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[objectName]; ok {
		return name
	}
	return objectName
}

// IsDynamic reports whether id was registered with RegisterDynamic.
func (r *Registry) IsDynamic(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.dynamic[id]
	return ok
}

// DynamicIDs returns the registered dynamic dimension ids, sorted.
func (r *Registry) DynamicIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.dynamic))
	for id := range r.dynamic {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
