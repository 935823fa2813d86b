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

// Package dimension holds the dimension model shared by layouts, extended
// layouts and responses: dimensions, their selected items, legend sets,
// item filters and the object name registry.
package dimension

import (
	"errors"
	"fmt"
	"strings"
)

// Built-in object names. An object name identifies what kind of thing was
// selected; several object names collapse onto one dimension name.
const (
	Data             = "dy"
	Category         = "co"
	Indicator        = "in"
	DataElement      = "de"
	Operand          = "dc"
	DataSet          = "ds"
	Period           = "pe"
	OrganisationUnit = "ou"
	DataX            = "dx"
	Value            = "value"
)

// EmptyID marks a cell the server could not attribute to any item.
const EmptyID = "[N/A]"

var (
	// ErrNoDimension is returned for a dimension without an id.
	ErrNoDimension = errors.New("dimension id is required")
	// ErrDuplicateItem is returned when an item id appears twice in a dimension.
	ErrDuplicateItem = errors.New("duplicate item id")
)

// Item is one selected member of a dimension.
type Item struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// StartValue and EndValue are only set when items are legends.
	StartValue *float64 `json:"startValue,omitempty" yaml:"startValue,omitempty"`
	EndValue   *float64 `json:"endValue,omitempty" yaml:"endValue,omitempty"`
}

// Legend is a numeric range with a display name.
type Legend struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	StartValue float64 `json:"startValue" yaml:"startValue"`
	EndValue   float64 `json:"endValue" yaml:"endValue"`
}

// LegendSet groups legends. Layouts usually only carry the id; the legends
// are resolved from metadata.
type LegendSet struct {
	ID      string   `json:"id" yaml:"id"`
	Legends []Legend `json:"legends,omitempty" yaml:"legends,omitempty"`
}

// Legend returns the legend with the given id.
func (ls *LegendSet) Legend(id string) (Legend, bool) {
	if ls == nil {
		return Legend{}, false
	}
	for _, l := range ls.Legends {
		if l.ID == id {
			return l, true
		}
	}
	return Legend{}, false
}

// Dimension is a named axis of categorization with its selected items.
type Dimension struct {
	Dimension string     `json:"dimension" yaml:"dimension"`
	Items     []Item     `json:"items,omitempty" yaml:"items,omitempty"`
	Filter    string     `json:"filter,omitempty" yaml:"filter,omitempty"`
	LegendSet *LegendSet `json:"legendSet,omitempty" yaml:"legendSet,omitempty"`
}

// Validate checks that the dimension has an id and unique item ids.
func (d *Dimension) Validate() error {
	if strings.TrimSpace(d.Dimension) == "" {
		return ErrNoDimension
	}
	seen := make(map[string]bool, len(d.Items))
	for _, item := range d.Items {
		if seen[item.ID] {
			return fmt.Errorf("%w %q in dimension %q", ErrDuplicateItem, item.ID, d.Dimension)
		}
		seen[item.ID] = true
	}
	return nil
}

// IDs returns the item ids in display order.
func (d *Dimension) IDs() []string {
	ids := make([]string, len(d.Items))
	for i, item := range d.Items {
		ids[i] = item.ID
	}
	return ids
}

// Clone returns a deep copy. Dimensions are cloned before any mutation so
// that no two layouts share item slices.
func (d *Dimension) Clone() *Dimension {
	if d == nil {
		return nil
	}
	c := &Dimension{
		Dimension: d.Dimension,
		Filter:    d.Filter,
	}
	if d.Items != nil {
		c.Items = make([]Item, len(d.Items))
		for i, item := range d.Items {
			c.Items[i] = item.clone()
		}
	}
	if d.LegendSet != nil {
		ls := &LegendSet{ID: d.LegendSet.ID}
		if d.LegendSet.Legends != nil {
			ls.Legends = append([]Legend(nil), d.LegendSet.Legends...)
		}
		c.LegendSet = ls
	}
	return c
}

func (i Item) clone() Item {
	c := Item{ID: i.ID, Name: i.Name}
	if i.StartValue != nil {
		v := *i.StartValue
		c.StartValue = &v
	}
	if i.EndValue != nil {
		v := *i.EndValue
		c.EndValue = &v
	}
	return c
}

// CloneAll deep-copies a slice of dimensions.
func CloneAll(dims []*Dimension) []*Dimension {
	if dims == nil {
		return nil
	}
	result := make([]*Dimension, len(dims))
	for i, d := range dims {
		result[i] = d.Clone()
	}
	return result
}
