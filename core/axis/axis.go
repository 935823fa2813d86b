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

// Package axis builds the header structure of one pivot axis: the cross
// product of the axis dimensions laid out in floors, one header cell per
// leaf position and floor, with spans, parents and selection uuids.
//
// Terminology:
// * a floor is one nesting level of the axis, outermost first
// * a leaf is a cell of the last floor; leaves map one to one to table
//   columns (or rows)
// * the first cell of every span block is the oldest sibling; only oldest
//   cells are rendered, the others are covered by its span
package axis

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/ordered"
	"github.com/google/eventpivot/core/xlayout"
	"github.com/google/eventpivot/logger"
)

// Type is the orientation of an axis.
type Type string

const (
	Col Type = "col"
	Row Type = "row"
)

// HeaderCell is one header position of a floor.
type HeaderCell struct {
	ID    string
	UUID  string
	Floor int
	Axis  Type
	Leaf  bool

	// Span, Children, Oldest and Root are only set on oldest cells.
	Span     int
	Children int
	Oldest   bool
	Root     bool

	OldestSibling *HeaderCell
	Parent        *HeaderCell

	// UUIDs lists, for leaves, the uuids of every header whose selection
	// covers this leaf.
	UUIDs []string
}

// Axis is a built column or row axis.
type Axis struct {
	Type Type
	// Dimensions describes the floors, outermost first.
	Dimensions     []*xlayout.XDimension
	DimensionNames []string

	// Unique holds the ids of each floor, Gui the ids as displayed per
	// floor and All the ids of each floor at every leaf position.
	Unique [][]string
	Gui    [][]string
	All    [][]string

	// Cells holds the header cells per floor, Size cells each.
	Cells [][]*HeaderCell
	// IDs holds the composite id of every leaf.
	IDs  []string
	Span []int
	// Dims is the number of floors, Size the number of leaves.
	Dims int
	Size int

	UUIDObjectMap map[string]*HeaderCell

	floorIndex map[string]int
}

// Build builds the axis of type t. It returns nil when the axis has no
// dimensions or a dimension has no ids.
func Build(xl *xlayout.ExtendedLayout, t Type) *Axis {
	log := logger.GetLogger("axis")

	names := xl.ColumnDimensionNames
	if t == Row {
		names = xl.RowDimensionNames
	}
	names = ordered.Unique(names)
	if len(names) == 0 {
		return nil
	}

	a := &Axis{
		Type:           t,
		DimensionNames: names,
		Dims:           len(names),
		UUIDObjectMap:  make(map[string]*HeaderCell),
		floorIndex:     make(map[string]int, len(names)),
	}

	widths := make([]int, a.Dims)
	acc := make([]int, a.Dims)
	a.Size = 1
	for i, name := range names {
		if dims := xl.DimensionNameDimensionsMap[name]; len(dims) > 0 {
			a.Dimensions = append(a.Dimensions, dims[0])
		}
		ids := ordered.Unique(xl.DimensionNameIDsMap[name])
		if len(ids) == 0 {
			log.WithFields(logrus.Fields{"axis": t, "dimension": name}).Warn("dimension has no ids")
			return nil
		}
		a.Unique = append(a.Unique, ids)
		a.floorIndex[name] = i
		widths[i] = len(ids)
		a.Size *= widths[i]
		acc[i] = a.Size
	}

	a.Span = floorSpans(widths, acc, a.Size, t == Row && xl.HideEmptyRows)
	a.Gui = guiFloorIDs(a.Unique, widths, acc)
	a.All = allFloorIDs(a.Unique, a.Span, a.Size)

	a.IDs = make([]string, 0, a.Size)
	for k := 0; k < a.Size; k++ {
		id := ""
		for f := range a.All {
			id += a.All[f][k]
		}
		a.IDs = append(a.IDs, id)
	}

	a.buildCells()
	a.setLeafUUIDs()

	log.WithFields(logrus.Fields{
		"axis":  t,
		"dims":  a.Dims,
		"size":  a.Size,
		"spans": a.Span,
	}).Debug("axis built")
	return a
}

// SizeOf returns the number of leaves Build would give the axis of type t,
// without building it. It is 0 when Build would return nil.
func SizeOf(xl *xlayout.ExtendedLayout, t Type) int {
	names := xl.ColumnDimensionNames
	if t == Row {
		names = xl.RowDimensionNames
	}
	names = ordered.Unique(names)
	if len(names) == 0 {
		return 0
	}
	size := 1
	for _, name := range names {
		size *= len(ordered.Unique(xl.DimensionNameIDsMap[name]))
	}
	return size
}

// floorSpans returns the span of each floor. A floor with a single id
// spans the whole axis on top, and copies the top span further down unless
// empty rows are hidden on a row axis.
func floorSpans(widths, acc []int, size int, hideEmptyRows bool) []int {
	spans := make([]int, len(widths))
	for i, w := range widths {
		switch {
		case w != 1:
			spans[i] = size / acc[i]
		case i == 0:
			spans[i] = size
		case hideEmptyRows:
			spans[i] = size / acc[i]
		default:
			spans[i] = spans[0]
		}
	}
	return spans
}

func guiFloorIDs(unique [][]string, widths, acc []int) [][]string {
	gui := [][]string{unique[0]}
	for i := 1; i < len(unique); i++ {
		n := acc[i-1]
		if widths[i] == 1 {
			n = widths[0]
		}
		var floor []string
		for j := 0; j < n; j++ {
			floor = append(floor, unique[i]...)
		}
		gui = append(gui, floor)
	}
	return gui
}

// allFloorIDs repeats every id span times and the resulting block until the
// floor is size long.
func allFloorIDs(unique [][]string, spans []int, size int) [][]string {
	all := make([][]string, len(unique))
	for i, ids := range unique {
		floor := make([]string, 0, size)
		factor := size / (spans[i] * len(ids))
		for j := 0; j < factor; j++ {
			for _, id := range ids {
				for l := 0; l < spans[i]; l++ {
					floor = append(floor, id)
				}
			}
		}
		all[i] = floor
	}
	return all
}

func (a *Axis) buildCells() {
	last := len(a.All) - 1
	a.Cells = make([][]*HeaderCell, len(a.All))
	for i, ids := range a.All {
		floor := make([]*HeaderCell, len(ids))
		var oldest *HeaderCell
		for j, id := range ids {
			c := &HeaderCell{
				ID:    id,
				UUID:  uuid.NewString(),
				Floor: i,
				Axis:  a.Type,
				Leaf:  i == last,
			}
			if j%a.Span[i] == 0 {
				c.Span = a.Span[i]
				if !c.Leaf {
					c.Children = a.Span[i]
				}
				c.Oldest = true
				c.Root = i == 0
				oldest = c
			}
			c.OldestSibling = oldest
			if i > 0 {
				c.Parent = a.Cells[i-1][j]
			}
			floor[j] = c
			a.UUIDObjectMap[c.UUID] = c
		}
		a.Cells[i] = floor
	}
}

// setLeafUUIDs gives every leaf the oldest sibling uuids of its ancestors,
// nearest ancestor first, followed by the uuid of the first leaf of its run. Runs are
// as long as the second smallest floor span.
func (a *Axis) setLeafUUIDs() {
	leaves := a.Leaves()
	run := a.Size
	if a.Dims > 1 {
		spans := append([]int(nil), a.Span...)
		sort.Ints(spans)
		run = spans[1]
	}

	var first *HeaderCell
	for k, leaf := range leaves {
		if k%run == 0 {
			first = leaf
		}
		var ancestors []string
		for c := leaf.Parent; c != nil; c = c.Parent {
			ancestors = append(ancestors, c.OldestSibling.UUID)
		}
		leaf.UUIDs = append(ancestors, first.UUID)
	}
}

// Leaves returns the cells of the last floor.
func (a *Axis) Leaves() []*HeaderCell {
	return a.Cells[len(a.Cells)-1]
}

// Oldest returns the oldest cells of floor i, the cells a renderer emits.
func (a *Axis) Oldest(i int) []*HeaderCell {
	var cells []*HeaderCell
	for _, c := range a.Cells[i] {
		if c.Oldest {
			cells = append(cells, c)
		}
	}
	return cells
}

// Cell returns the header cell with the given uuid.
func (a *Axis) Cell(id string) (*HeaderCell, bool) {
	c, ok := a.UUIDObjectMap[id]
	return c, ok
}

// IDAt returns the id the named dimension takes at leaf position k.
func (a *Axis) IDAt(dimensionName string, k int) (string, bool) {
	if a == nil {
		return "", false
	}
	f, ok := a.floorIndex[dimensionName]
	if !ok || k < 0 || k >= a.Size {
		return "", false
	}
	return a.All[f][k], true
}
