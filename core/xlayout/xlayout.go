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

// Package xlayout derives the extended layout of a render: per-axis object
// and dimension names plus the lookup maps the response extender, the axis
// builder and the renderers read from. An ExtendedLayout is rebuilt for every
// render and never shared.
package xlayout

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/ordered"
	"github.com/google/eventpivot/logger"
)

// XDimension is a layout dimension with its resolved names.
type XDimension struct {
	Dimension     string
	ObjectName    string
	DimensionName string
	Filter        string
	LegendSet     *dimension.LegendSet
	Items         []dimension.Item
	IDs           []string
}

func (d *XDimension) clone() *XDimension {
	c := *d
	c.Items = append([]dimension.Item(nil), d.Items...)
	c.IDs = append([]string(nil), d.IDs...)
	return &c
}

// ExtendedLayout is the flattened form of a layout.
type ExtendedLayout struct {
	// Layout is a private copy of the layout the extension was built from.
	*layout.Layout

	XColumns []*XDimension
	XRows    []*XDimension
	XFilters []*XDimension

	ColumnObjectNames    []string
	ColumnDimensionNames []string
	RowObjectNames       []string
	RowDimensionNames    []string

	AxisDimensions           []*XDimension
	AxisObjectNames          []string
	AxisDimensionNames       []string
	SortedAxisDimensionNames []string

	FilterDimensions       []*XDimension
	FilterObjectNames      []string
	FilterDimensionNames   []string
	SortedFilterDimensions []*XDimension

	// Dimensions, ObjectNames and DimensionNames are parallel: entry i of
	// each describes the same dimension, axes first.
	Dimensions     []*XDimension
	ObjectNames    []string
	DimensionNames []string

	ObjectNameDimensionsMap map[string]*XDimension
	ObjectNameItemsMap      map[string][]dimension.Item
	ObjectNameIDsMap        map[string][]string

	DimensionNameDimensionsMap map[string][]*XDimension
	DimensionNameItemsMap      map[string][]dimension.Item
	DimensionNameIDsMap        map[string][]string
	DimensionNameSortedIDsMap  map[string][]string

	// LegendSet is the resolved table legend set, legends by start value.
	LegendSet *dimension.LegendSet

	TableUUID string
}

// LegendSetLookup resolves a legend set id to its legends.
type LegendSetLookup func(id string) (*dimension.LegendSet, bool)

// Options configure an extension.
type Options struct {
	// Registry maps object names to dimension names. Nil uses the built-ins.
	Registry *dimension.Registry
	// LegendSets resolves legend sets. May be nil.
	LegendSets LegendSetLookup
	// Prefix starts the table uuid.
	Prefix string
}

var defaultRegistry = dimension.NewRegistry()

// Extend builds the extended layout of l. l is copied; later changes to l do
// not affect the result.
func Extend(l *layout.Layout, opts Options) *ExtendedLayout {
	reg := opts.Registry
	if reg == nil {
		reg = defaultRegistry
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "eventpivot"
	}

	xl := &ExtendedLayout{
		Layout:                     l.Clone(),
		ObjectNameDimensionsMap:    make(map[string]*XDimension),
		ObjectNameItemsMap:         make(map[string][]dimension.Item),
		ObjectNameIDsMap:           make(map[string][]string),
		DimensionNameDimensionsMap: make(map[string][]*XDimension),
		DimensionNameItemsMap:      make(map[string][]dimension.Item),
		DimensionNameIDsMap:        make(map[string][]string),
		DimensionNameSortedIDsMap:  make(map[string][]string),
	}

	var axisDimensionNames, filterDimensionNames []string
	for _, d := range xl.Layout.Columns {
		xd := newXDimension(d, reg)
		xl.XColumns = append(xl.XColumns, xd)
		xl.ColumnObjectNames = append(xl.ColumnObjectNames, xd.ObjectName)
		xl.ColumnDimensionNames = append(xl.ColumnDimensionNames, xd.DimensionName)
		xl.AxisDimensions = append(xl.AxisDimensions, xd)
		xl.AxisObjectNames = append(xl.AxisObjectNames, xd.ObjectName)
		axisDimensionNames = append(axisDimensionNames, xd.DimensionName)
		xl.setObjectName(xd)
	}
	for _, d := range xl.Layout.Rows {
		xd := newXDimension(d, reg)
		xl.XRows = append(xl.XRows, xd)
		xl.RowObjectNames = append(xl.RowObjectNames, xd.ObjectName)
		xl.RowDimensionNames = append(xl.RowDimensionNames, xd.DimensionName)
		xl.AxisDimensions = append(xl.AxisDimensions, xd)
		xl.AxisObjectNames = append(xl.AxisObjectNames, xd.ObjectName)
		axisDimensionNames = append(axisDimensionNames, xd.DimensionName)
		xl.setObjectName(xd)
	}
	for _, d := range xl.Layout.Filters {
		xd := newXDimension(d, reg)
		xl.XFilters = append(xl.XFilters, xd)
		xl.FilterDimensions = append(xl.FilterDimensions, xd)
		xl.FilterObjectNames = append(xl.FilterObjectNames, xd.ObjectName)
		filterDimensionNames = append(filterDimensionNames, xd.DimensionName)
		xl.setObjectName(xd)
	}

	if l.LegendSet != nil {
		xl.LegendSet = l.LegendSet
		if opts.LegendSets != nil {
			if ls, ok := opts.LegendSets(l.LegendSet.ID); ok {
				xl.LegendSet = ls
			}
		}
		xl.LegendSet = (&dimension.Dimension{LegendSet: xl.LegendSet}).Clone().LegendSet
		sort.SliceStable(xl.LegendSet.Legends, func(i, j int) bool {
			return xl.LegendSet.Legends[i].StartValue < xl.LegendSet.Legends[j].StartValue
		})
	}

	xl.AxisDimensionNames = ordered.Unique(axisDimensionNames)
	xl.FilterDimensionNames = ordered.Unique(filterDimensionNames)
	xl.ColumnDimensionNames = ordered.Unique(xl.ColumnDimensionNames)
	xl.RowDimensionNames = ordered.Unique(xl.RowDimensionNames)

	xl.SortedAxisDimensionNames = append([]string(nil), xl.AxisDimensionNames...)
	sort.Strings(xl.SortedAxisDimensionNames)
	xl.SortedFilterDimensions = sortDimensions(xl.FilterDimensions)

	xl.Dimensions = append(append([]*XDimension{}, xl.AxisDimensions...), xl.FilterDimensions...)
	for _, xd := range xl.Dimensions {
		xl.ObjectNames = append(xl.ObjectNames, xd.ObjectName)
		xl.DimensionNames = append(xl.DimensionNames, xd.DimensionName)

		name := xd.DimensionName
		xl.DimensionNameDimensionsMap[name] = append(xl.DimensionNameDimensionsMap[name], xd)
		xl.DimensionNameItemsMap[name] = append(xl.DimensionNameItemsMap[name], xd.Items...)
		xl.DimensionNameIDsMap[name] = append(xl.DimensionNameIDsMap[name], xd.IDs...)
	}
	for name, ids := range xl.DimensionNameIDsMap {
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		xl.DimensionNameSortedIDsMap[name] = sorted
	}

	xl.TableUUID = prefix + "_" + uuid.New().String()

	logger.GetLogger("xlayout").WithFields(logrus.Fields{
		"table_uuid": xl.TableUUID,
		"axis":       xl.AxisDimensionNames,
		"filters":    xl.FilterDimensionNames,
	}).Debug("layout extended")
	return xl
}

func newXDimension(d *dimension.Dimension, reg *dimension.Registry) *XDimension {
	xd := &XDimension{
		Dimension:     d.Dimension,
		ObjectName:    d.Dimension,
		DimensionName: reg.DimensionName(d.Dimension),
		Filter:        d.Filter,
		LegendSet:     d.LegendSet,
		Items:         []dimension.Item{},
		IDs:           []string{},
	}
	if d.Items != nil {
		xd.Items = d.Items
		xd.IDs = d.IDs()
	}
	return xd
}

func (xl *ExtendedLayout) setObjectName(xd *XDimension) {
	xl.ObjectNameDimensionsMap[xd.ObjectName] = xd
	xl.ObjectNameItemsMap[xd.ObjectName] = xd.Items
	xl.ObjectNameIDsMap[xd.ObjectName] = xd.IDs
}

// sortDimensions returns copies of dims ordered by dimension name, with
// items and ids ordered by id.
func sortDimensions(dims []*XDimension) []*XDimension {
	if len(dims) == 0 {
		return nil
	}
	sorted := make([]*XDimension, len(dims))
	for i, d := range dims {
		c := d.clone()
		sort.SliceStable(c.Items, func(a, b int) bool { return c.Items[a].ID < c.Items[b].ID })
		sort.Strings(c.IDs)
		sorted[i] = c
	}
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].DimensionName < sorted[b].DimensionName })
	return sorted
}

// IDs returns the ordered ids of a dimension name, or nil.
func (xl *ExtendedLayout) IDs(dimensionName string) []string {
	return xl.DimensionNameIDsMap[dimensionName]
}

// IsRowDimension reports whether name is placed on the row axis.
func (xl *ExtendedLayout) IsRowDimension(name string) bool {
	return ordered.Contains(xl.RowDimensionNames, name)
}

// ToLayout rebuilds a layout from the extended dimensions, carrying over all
// options. Item changes made to the XDimensions show up in the result.
func (xl *ExtendedLayout) ToLayout() *layout.Layout {
	l := xl.Layout.Clone()
	l.Columns = toDimensions(xl.XColumns)
	l.Rows = toDimensions(xl.XRows)
	l.Filters = toDimensions(xl.XFilters)
	return l
}

func toDimensions(xds []*XDimension) []*dimension.Dimension {
	if len(xds) == 0 {
		return nil
	}
	dims := make([]*dimension.Dimension, len(xds))
	for i, xd := range xds {
		d := &dimension.Dimension{
			Dimension: xd.Dimension,
			Filter:    xd.Filter,
			LegendSet: xd.LegendSet,
			Items:     append([]dimension.Item{}, xd.Items...),
		}
		dims[i] = d.Clone()
	}
	return dims
}
