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

package datasources

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/optionset"
	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/logger"
)

var (
	// ErrUnknownSource is returned for response names that were never found.
	ErrUnknownSource = errors.New("unknown response source")
	// ErrUnknownLayout is returned for layout names that were never found.
	ErrUnknownLayout = errors.New("unknown layout")
)

var log = logger.GetLogger("datasources")

// Manager handles loading and caching of data sources.
// Metadata is loaded eagerly; responses are loaded lazily on demand.
type Manager struct {
	mu sync.RWMutex

	registry   *dimension.Registry
	optionSets *optionset.MemoryStore
	legendSets map[string]*dimension.LegendSet

	// Response and layout paths indexed by name
	sources map[string]string
	layouts map[string]string

	// Cached responses indexed by source name - populated lazily
	responses map[string]*response.Response

	// Registered loaders indexed by format extension
	loaders map[string]ResponseLoader
}

// NewManager creates a new data source manager. Dynamic dimensions found in
// metadata are registered with registry; nil creates a fresh registry.
func NewManager(registry *dimension.Registry) *Manager {
	if registry == nil {
		registry = dimension.NewRegistry()
	}
	m := &Manager{
		registry:   registry,
		optionSets: optionset.NewMemoryStore(),
		legendSets: make(map[string]*dimension.LegendSet),
		sources:    make(map[string]string),
		layouts:    make(map[string]string),
		responses:  make(map[string]*response.Response),
		loaders:    make(map[string]ResponseLoader),
	}
	m.RegisterLoader(NewJSONLoader())
	m.RegisterLoader(NewCsvLoader())
	return m
}

// RegisterLoader registers a response loader for its format.
// If a loader is already registered for this format, it will be replaced.
func (m *Manager) RegisterLoader(loader ResponseLoader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// LoadDir scans dir recursively. Files named *.meta.{yaml,yml,json} are
// parsed as metadata right away; *.layout.{yaml,yml,json} files are stored
// layouts; every other file in a registered format, optionally xz
// compressed, is a response named by its path without extensions.
func (m *Manager) LoadDir(dir string) error {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.*", doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("pattern matching failed: %w", err)
	}
	sort.Strings(matches)

	var nMeta, nLayouts, nSources int
	for _, match := range matches {
		path := filepath.Join(dir, filepath.FromSlash(match))
		name, format, _ := SplitExt(match)
		switch {
		case strings.HasSuffix(name, MetadataSuffix) && isDocument(format):
			data, err := ReadFile(path)
			if err != nil {
				return err
			}
			md, err := ParseMetadata(data)
			if err != nil {
				return fmt.Errorf("%s: %w", match, err)
			}
			m.AddMetadata(md)
			nMeta++
		case strings.HasSuffix(name, LayoutSuffix) && isDocument(format):
			m.AddLayout(strings.TrimSuffix(name, LayoutSuffix), path)
			nLayouts++
		case m.hasLoader(format):
			m.AddSource(name, path)
			nSources++
		}
	}

	log.WithFields(logrus.Fields{
		"dir":       dir,
		"metadata":  nMeta,
		"layouts":   nLayouts,
		"responses": nSources,
	}).Info("data sources loaded")
	return nil
}

func isDocument(format string) bool {
	switch format {
	case "yaml", "yml", "json":
		return true
	}
	return false
}

func (m *Manager) hasLoader(format string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.loaders[format]
	return ok
}

// AddMetadata registers option sets, legend sets and dynamic dimensions.
func (m *Manager) AddMetadata(md *Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, set := range md.OptionSets {
		m.optionSets.Put(set)
	}
	for _, ls := range md.LegendSets {
		m.legendSets[ls.ID] = ls
	}
	for _, d := range md.DynamicDimensions {
		m.registry.RegisterDynamic(d.ID, d.Name)
	}
}

// AddSource registers a response file under name.
func (m *Manager) AddSource(name, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[name] = path
	delete(m.responses, name)
}

// AddLayout registers a layout file under name.
func (m *Manager) AddLayout(name, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts[name] = path
}

// Registry returns the dimension registry.
func (m *Manager) Registry() *dimension.Registry {
	return m.registry
}

// OptionSets returns the option sets found in metadata.
func (m *Manager) OptionSets() *optionset.MemoryStore {
	return m.optionSets
}

// LegendSet returns a legend set found in metadata. Its signature matches
// xlayout.LegendSetLookup.
func (m *Manager) LegendSet(id string) (*dimension.LegendSet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ls, ok := m.legendSets[id]
	return ls, ok
}

// GetSourceNames returns all registered response names, sorted.
func (m *Manager) GetSourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.sources)
}

// GetLayoutNames returns all registered layout names, sorted.
func (m *Manager) GetLayoutNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.layouts)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadResponse loads a response by name.
// Returns a copy of the cached response if already loaded; otherwise loads
// it from its file.
func (m *Manager) LoadResponse(name string) (*response.Response, error) {
	m.mu.RLock()
	if resp, ok := m.responses[name]; ok {
		m.mu.RUnlock()
		return resp.Clone(), nil
	}
	path, ok := m.sources[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}

	resp, err := m.LoadResponseFile(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.responses[name] = resp
	m.mu.Unlock()

	log.WithFields(logrus.Fields{"source": name, "rows": len(resp.Rows)}).Debug("response loaded")
	return resp.Clone(), nil
}

// LoadResponseFile decodes a response file with the loader registered for
// its format.
func (m *Manager) LoadResponseFile(path string) (*response.Response, error) {
	_, format, _ := SplitExt(path)
	m.mu.RLock()
	loader, ok := m.loaders[format]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no loader registered for format %q", format)
	}
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	resp, err := loader.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return resp, nil
}

// LoadLayout builds a stored layout by name.
func (m *Manager) LoadLayout(name string, flavor layout.Flavor) (*layout.Layout, error) {
	m.mu.RLock()
	path, ok := m.layouts[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return LoadLayoutFile(path, flavor)
}

// LoadLayoutFile builds a layout from a favorite JSON or a YAML file.
func LoadLayoutFile(path string, flavor layout.Flavor) (*layout.Layout, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if _, format, _ := SplitExt(path); format == "json" {
		return layout.FromFavorite(data, flavor)
	}
	return layout.FromYAML(data, flavor)
}

// InvalidateCache removes a response from the cache.
func (m *Manager) InvalidateCache(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.responses, name)
}

// IsLoaded returns true if the response is cached.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.responses[name]
	return ok
}
