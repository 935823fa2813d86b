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

package report

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/axis"
	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/ordered"
	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/core/xlayout"
	"github.com/google/eventpivot/logger"
)

// Default limits.
const (
	DefaultMaxChartSeries = 200
	DefaultMaxTableCells  = 20000
)

// hideEmptyRowsDivisor divides the table cell limit when empty rows are
// hidden.
const hideEmptyRowsDivisor = 2

// SyncOptions configure Synchronize.
type SyncOptions struct {
	Flavor     layout.Flavor
	Registry   *dimension.Registry
	LegendSets xlayout.LegendSetLookup
	// MaxSeries limits columns × rows of a chart. Zero uses
	// DefaultMaxChartSeries, a negative value disables the check.
	MaxSeries int
	// MaxCells limits the cells of a table, halved when empty rows are
	// hidden. Zero uses DefaultMaxTableCells, a negative value disables the
	// check.
	MaxCells int
	Confirm  Confirm
}

// Synchronize derives an extended layout whose items are the ids the
// response actually returned. l is the layout as the user built it, xl its
// extension and xr the extended response. User item order given by an IN
// filter or a legend set is restored, except on the row axis when the
// table is sorted.
func Synchronize(l *layout.Layout, xl *xlayout.ExtendedLayout, xr *response.Extended, opts SyncOptions) (*xlayout.ExtendedLayout, error) {
	log := logger.GetLogger("report")
	reg := opts.Registry
	if reg == nil {
		reg = dimension.NewRegistry()
	}

	keep := collapseFilter(xl.CollapseDataDimensions, reg)
	cols := syncAxis(xl.XColumns, keep, xr)
	rows := syncAxis(xl.XRows, keep, xr)
	filters := syncAxis(xl.XFilters, keep, xr)
	all := append(append(append([]*xlayout.XDimension{}, cols...), rows...), filters...)

	for _, orig := range l.Dimensions() {
		name := reg.DimensionName(orig.Dimension)
		if l.Sorting != nil && xl.IsRowDimension(name) {
			continue
		}
		for _, xd := range all {
			if xd.Dimension != orig.Dimension || len(xd.Items) == 0 {
				continue
			}
			if f := dimension.ParseFilter(orig.Filter); f.IsIn() {
				xd.Items = restoreFilterOrder(xd, f.Values)
			} else if orig.LegendSet != nil && orig.LegendSet.ID != "" {
				xd.Items = sortByLegend(xd, legendSet(orig.LegendSet, opts.LegendSets))
			}
			xd.IDs = itemIDs(xd.Items)
		}
	}

	synced := (&xlayout.ExtendedLayout{Layout: xl.Layout, XColumns: cols, XRows: rows, XFilters: filters}).ToLayout()
	normalized, err := layout.Normalize(synced, opts.Flavor)
	if err != nil {
		return nil, err
	}
	sxl := xlayout.Extend(normalized, xlayout.Options{Registry: reg, LegendSets: opts.LegendSets})

	switch opts.Flavor {
	case layout.Chart:
		if len(sxl.XColumns) > 0 && len(sxl.XRows) > 0 {
			limit := opts.MaxSeries
			if limit == 0 {
				limit = DefaultMaxChartSeries
			}
			count := len(sxl.XColumns[0].IDs) * len(sxl.XRows[0].IDs)
			if err := checkLimit(count, limit, true, opts.Confirm); err != nil {
				return nil, err
			}
		}
	case layout.Report:
		if err := checkLimit(tableCells(sxl), tableLimit(opts.MaxCells, sxl.HideEmptyRows), false, opts.Confirm); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"stage":      "synchronize",
		"table_uuid": sxl.TableUUID,
		"axis":       sxl.AxisDimensionNames,
	}).Debug("layout synchronized")
	return sxl, nil
}

// collapseFilter reports which dimensions survive synchronization.
// Collapsing keeps only dy, pe, ou and dynamic dimensions; otherwise only
// dy is dropped.
func collapseFilter(collapse bool, reg *dimension.Registry) func(string) bool {
	keys := []string{dimension.Data}
	if collapse {
		keys = append([]string{dimension.Data, dimension.Period, dimension.OrganisationUnit}, reg.DynamicIDs()...)
	}
	return func(objectName string) bool {
		return ordered.Contains(keys, objectName) == collapse
	}
}

// syncAxis copies the kept dimensions of an axis with their items replaced
// by the ids of the matching response header. Dimensions the response
// does not carry keep their items.
func syncAxis(dims []*xlayout.XDimension, keep func(string) bool, xr *response.Extended) []*xlayout.XDimension {
	var result []*xlayout.XDimension
	for _, d := range dims {
		if !keep(d.Dimension) {
			continue
		}
		c := *d
		c.Items = append([]dimension.Item(nil), d.Items...)
		header, ok := xr.NameHeaderMap[d.DimensionName]
		if !ok {
			header, ok = xr.NameHeaderMap[d.Dimension]
		}
		if ok {
			c.Items = make([]dimension.Item, 0, len(header.IDs))
			for _, id := range header.IDs {
				c.Items = append(c.Items, dimension.Item{ID: id, Name: xr.Name(id)})
			}
		}
		c.IDs = itemIDs(c.Items)
		result = append(result, &c)
	}
	return result
}

// restoreFilterOrder orders items by the options of an IN filter. Items
// match an option by id or by dimension plus option. Unmatched items are
// dropped.
func restoreFilterOrder(xd *xlayout.XDimension, options []string) []dimension.Item {
	var items []dimension.Item
	for _, option := range options {
		for _, item := range xd.Items {
			if item.ID == option || item.ID == xd.Dimension+option {
				items = append(items, item)
			}
		}
	}
	return items
}

func legendSet(ref *dimension.LegendSet, lookup xlayout.LegendSetLookup) *dimension.LegendSet {
	if lookup != nil {
		if ls, ok := lookup(ref.ID); ok {
			return ls
		}
	}
	return ref
}

// sortByLegend orders items by the start value of their legend. Items
// without a legend go last.
func sortByLegend(xd *xlayout.XDimension, ls *dimension.LegendSet) []dimension.Item {
	items := append([]dimension.Item(nil), xd.Items...)
	for i, item := range items {
		legend, ok := ls.Legend(item.ID)
		if !ok {
			legend, ok = ls.Legend(strings.TrimPrefix(item.ID, xd.Dimension))
		}
		if ok {
			start, end := legend.StartValue, legend.EndValue
			items[i].StartValue = &start
			items[i].EndValue = &end
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].StartValue, items[j].StartValue
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return items
}

func itemIDs(items []dimension.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// tableCells returns the cell count of the table of xl from its id counts,
// so oversized tables are refused before their axes are built.
func tableCells(xl *xlayout.ExtendedLayout) int {
	return max(axis.SizeOf(xl, axis.Col), 1) * max(axis.SizeOf(xl, axis.Row), 1)
}

func tableLimit(limit int, hideEmptyRows bool) int {
	if limit == 0 {
		limit = DefaultMaxTableCells
	}
	if limit > 0 && hideEmptyRows {
		limit = max(limit/hideEmptyRowsDivisor, 1)
	}
	return limit
}
