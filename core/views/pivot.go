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

package views

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/eventpivot/core/aggregates"
	"github.com/google/eventpivot/core/axis"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/report"
	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/core/xlayout"
)

// ErrNoPivot is returned for results that cannot be shown as a pivot table.
var ErrNoPivot = errors.New("result has no pivot axes")

// SortTotal sorts rows by their total.
const SortTotal = "total"

// CellKind tells renderers how to style a cell.
type CellKind string

const (
	KindDimension CellKind = "dimension"
	KindLabel     CellKind = "label"
	KindValue     CellKind = "value"
	KindSubtotal  CellKind = "subtotal"
	KindTotal     CellKind = "total"
)

// PivotViewModel contains a pivot table formatted for template consumption
type PivotViewModel struct {
	Title       string
	TableUUID   string
	Density     string // Display density name, e.g. NORMAL
	Font        string // Font size name, e.g. NORMAL
	CellPadding string // Padding of the display density
	FontSize    string // Pixel size of the font

	HeaderRows [][]HeaderCell // One row per column floor
	Rows       []BodyRow

	RowHeaderWidth int // Number of row header columns
	ColumnCount    int // Number of value columns, subtotals and totals included
	TotalRows      int // Number of leaf rows before hiding and limiting
	DisplayedRows  int // Number of leaf rows shown

	Links []Link // Variations of the table, set by the server
}

// Link is a navigation link shown above the table.
type Link struct {
	Text string
	URL  safehtml.URL
}

// HeaderCell is a column or row header.
type HeaderCell struct {
	Text    string
	Kind    CellKind
	UUID    string   // Axis cell uuid, empty for labels and totals
	UUIDs   []string // Uuids selecting a leaf
	ColSpan int
	RowSpan int
}

// ValueCell is one body cell.
type ValueCell struct {
	Text    string
	Value   float64
	Numeric bool // Value holds the parsed cell
	Empty   bool
	Kind    CellKind
	UUIDs   []string // Column and row leaf uuids
}

// BodyRow is a table body row: leaf values, a subtotal or the total.
type BodyRow struct {
	Kind    CellKind
	Headers []HeaderCell
	Cells   []ValueCell
}

type colSlot struct {
	kind     CellKind
	from, to int
}

type builder struct {
	xl       *xlayout.ExtendedLayout
	xr       *response.Extended
	col, row *axis.Axis
	nCols    int
	nRows    int
	sep      aggregates.Separator
	total    aggregates.Type

	states [][]*aggregates.NumericAggState
	raws   [][]string
}

// BuildPivot lays out a render result as a pivot table.
func BuildPivot(res *report.Result) (*PivotViewModel, error) {
	if res == nil || res.Query || res.XResponse == nil || res.XLayout == nil {
		return nil, ErrNoPivot
	}
	b := &builder{
		xl:    res.XLayout,
		xr:    res.XResponse,
		col:   res.ColAxis,
		row:   res.RowAxis,
		nCols: 1,
		nRows: 1,
		sep:   res.XLayout.DigitGroupSeparator,
		total: totalType(res.XLayout.AggregationType),
	}
	if b.col != nil {
		b.nCols = b.col.Size
	}
	if b.row != nil {
		b.nRows = b.row.Size
	}
	b.loadValues()

	slots := b.columnSlots()
	order := b.visibleRows()
	vm := &PivotViewModel{
		Title:         Title(b.xl, b.xr),
		TableUUID:     b.xl.TableUUID,
		Density:       b.xl.DisplayDensity,
		Font:          b.xl.FontSize,
		CellPadding:   layout.DisplayDensities[b.xl.DisplayDensity],
		FontSize:      layout.FontSizes[b.xl.FontSize],
		ColumnCount:   len(slots),
		TotalRows:     b.nRows,
		DisplayedRows: len(order),
	}
	if b.row != nil {
		vm.RowHeaderWidth = b.row.Dims
	}
	vm.HeaderRows = b.headerRows(slots, vm.RowHeaderWidth)
	vm.Rows = b.bodyRows(order, slots, vm.RowHeaderWidth)
	return vm, nil
}

func totalType(t aggregates.Type) aggregates.Type {
	switch t {
	case aggregates.Min, aggregates.Max, aggregates.Average:
		return t
	default:
		return aggregates.Sum
	}
}

func (b *builder) loadValues() {
	b.states = make([][]*aggregates.NumericAggState, b.nRows)
	b.raws = make([][]string, b.nRows)
	for r := 0; r < b.nRows; r++ {
		b.states[r] = make([]*aggregates.NumericAggState, b.nCols)
		b.raws[r] = make([]string, b.nCols)
		for c := 0; c < b.nCols; c++ {
			raw, ok := b.xr.Value(func(name string) (string, bool) {
				if id, ok := b.col.IDAt(name, c); ok {
					return id, true
				}
				return b.row.IDAt(name, r)
			})
			if !ok {
				continue
			}
			b.raws[r][c] = raw
			st := aggregates.NewNumericAggState()
			if st.AddString(raw) {
				b.states[r][c] = st
			}
		}
	}
}

// hasGroups reports whether subtotals make sense on an axis: more than one
// floor and more than one outer group.
func hasGroups(a *axis.Axis) bool {
	return a != nil && a.Dims > 1 && len(a.Unique[0]) > 1
}

func (b *builder) columnSlots() []colSlot {
	sub := b.xl.ShowColSubTotals && hasGroups(b.col)
	block := b.nCols
	if b.col != nil {
		block = b.col.Span[0]
	}
	var slots []colSlot
	for c := 0; c < b.nCols; c++ {
		slots = append(slots, colSlot{kind: KindValue, from: c, to: c + 1})
		if sub && (c+1)%block == 0 {
			slots = append(slots, colSlot{kind: KindSubtotal, from: c + 1 - block, to: c + 1})
		}
	}
	if b.xl.ShowRowTotals && b.nCols > 1 {
		slots = append(slots, colSlot{kind: KindTotal, from: 0, to: b.nCols})
	}
	return slots
}

func (b *builder) headerRows(slots []colSlot, rowWidth int) [][]HeaderCell {
	corner := HeaderCell{Kind: KindLabel, ColSpan: rowWidth, RowSpan: 1}
	if b.xl.ShowDimensionLabels {
		corner.Text = b.cornerLabel()
	}
	if b.col == nil {
		var cells []HeaderCell
		if rowWidth > 0 {
			cells = append(cells, corner)
		}
		return [][]HeaderCell{append(cells, HeaderCell{Text: "Value", Kind: KindLabel, ColSpan: 1, RowSpan: 1})}
	}

	hasSub, hasTotal := false, false
	for _, s := range slots {
		hasSub = hasSub || s.kind == KindSubtotal
		hasTotal = hasTotal || s.kind == KindTotal
	}

	rows := make([][]HeaderCell, b.col.Dims)
	for f := 0; f < b.col.Dims; f++ {
		var cells []HeaderCell
		if f == 0 && rowWidth > 0 {
			corner.RowSpan = b.col.Dims
			cells = append(cells, corner)
		}
		for _, c := range b.col.Cells[f] {
			if !c.Oldest {
				continue
			}
			cells = append(cells, HeaderCell{
				Text:    b.xr.Name(c.ID),
				Kind:    KindDimension,
				UUID:    c.UUID,
				UUIDs:   c.UUIDs,
				ColSpan: c.Span,
				RowSpan: 1,
			})
			if f == 0 && hasSub {
				cells = append(cells, HeaderCell{Text: "Subtotal", Kind: KindSubtotal, ColSpan: 1, RowSpan: b.col.Dims})
			}
		}
		if f == 0 && hasTotal {
			cells = append(cells, HeaderCell{Text: "Total", Kind: KindTotal, ColSpan: 1, RowSpan: b.col.Dims})
		}
		rows[f] = cells
	}
	return rows
}

func (b *builder) cornerLabel() string {
	label := func(names []string) string {
		labels := make([]string, len(names))
		for i, n := range names {
			labels[i] = DimensionLabel(b.xr, n)
		}
		return strings.Join(labels, ", ")
	}
	rows, cols := label(b.xl.RowDimensionNames), label(b.xl.ColumnDimensionNames)
	switch {
	case rows == "":
		return cols
	case cols == "":
		return rows
	default:
		return rows + " / " + cols
	}
}

// sortColumn returns the leaf column body rows are sorted by, -1 for the
// row total. Sorting needs a single row floor.
func (b *builder) sortColumn() (int, bool) {
	s := b.xl.Sorting
	if s == nil || b.row == nil || b.row.Dims != 1 {
		return 0, false
	}
	if s.ID == SortTotal {
		return -1, true
	}
	if b.col == nil {
		return 0, true
	}
	for c, id := range b.col.IDs {
		if id == s.ID {
			return c, true
		}
	}
	return 0, false
}

func (b *builder) visibleRows() []int {
	var order []int
	for r := 0; r < b.nRows; r++ {
		if b.xl.HideEmptyRows && b.isEmptyRow(r) {
			continue
		}
		order = append(order, r)
	}

	c, ok := b.sortColumn()
	if !ok {
		return order
	}
	key := func(r int) (float64, bool) {
		if c >= 0 {
			if st := b.states[r][c]; st != nil {
				return st.Sum, true
			}
			return 0, false
		}
		st := combine(b.states[r], 0, b.nCols)
		return st.Sum, st.Count > 0
	}
	desc := b.xl.Sorting.Direction == layout.SortDesc
	sort.SliceStable(order, func(i, j int) bool {
		a, aok := key(order[i])
		z, zok := key(order[j])
		switch {
		case !aok || !zok:
			return aok && !zok
		case desc:
			return a > z
		default:
			return a < z
		}
	})
	if limit := b.xl.TopLimit; limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

func (b *builder) isEmptyRow(r int) bool {
	for c := 0; c < b.nCols; c++ {
		if b.raws[r][c] != "" {
			return false
		}
	}
	return true
}

func combine(states []*aggregates.NumericAggState, from, to int) *aggregates.NumericAggState {
	acc := aggregates.NewNumericAggState()
	for _, st := range states[from:to] {
		acc.Combine(st)
	}
	return acc
}

// groupStates combines the leaf states of rows per column.
func (b *builder) groupStates(rows []int) []*aggregates.NumericAggState {
	states := make([]*aggregates.NumericAggState, b.nCols)
	for c := range states {
		states[c] = aggregates.NewNumericAggState()
		for _, r := range rows {
			states[c].Combine(b.states[r][c])
		}
	}
	return states
}

func (b *builder) bodyRows(order []int, slots []colSlot, rowWidth int) []BodyRow {
	_, sorted := b.sortColumn()
	sub := b.xl.ShowRowSubTotals && hasGroups(b.row) && !sorted

	// Row header spans count visible rows per oldest sibling.
	spans := make(map[*axis.HeaderCell]int)
	if b.row != nil {
		for _, r := range order {
			for f := 0; f < b.row.Dims; f++ {
				spans[b.row.Cells[f][r].OldestSibling]++
			}
		}
	}

	var rows []BodyRow
	var group []int
	seen := make(map[*axis.HeaderCell]bool)
	for i, r := range order {
		row := BodyRow{Kind: KindValue}
		if b.row != nil {
			for f := 0; f < b.row.Dims; f++ {
				c := b.row.Cells[f][r]
				if seen[c.OldestSibling] {
					continue
				}
				seen[c.OldestSibling] = true
				hc := HeaderCell{
					Text:    b.xr.Name(c.ID),
					Kind:    KindDimension,
					UUID:    c.OldestSibling.UUID,
					ColSpan: 1,
					RowSpan: spans[c.OldestSibling],
				}
				if c.Leaf {
					hc.UUIDs = c.UUIDs
				}
				row.Headers = append(row.Headers, hc)
			}
		}
		row.Cells = b.cells(b.states[r], slots, r, KindValue)
		rows = append(rows, row)

		group = append(group, r)
		if sub {
			outer := b.row.Cells[0][r].OldestSibling
			if i == len(order)-1 || b.row.Cells[0][order[i+1]].OldestSibling != outer {
				rows = append(rows, BodyRow{
					Kind:    KindSubtotal,
					Headers: []HeaderCell{{Text: "Subtotal", Kind: KindSubtotal, ColSpan: rowWidth, RowSpan: 1}},
					Cells:   b.cells(b.groupStates(group), slots, -1, KindSubtotal),
				})
				group = nil
			}
		}
	}

	if b.xl.ShowColTotals && b.row != nil && len(order) > 1 {
		rows = append(rows, BodyRow{
			Kind:    KindTotal,
			Headers: []HeaderCell{{Text: "Total", Kind: KindTotal, ColSpan: rowWidth, RowSpan: 1}},
			Cells:   b.cells(b.groupStates(order), slots, -1, KindTotal),
		})
	}
	return rows
}

// cells renders the slots of one body row. r is the leaf row, or -1 for
// subtotal and total rows, whose cells all take the row kind.
func (b *builder) cells(states []*aggregates.NumericAggState, slots []colSlot, r int, rowKind CellKind) []ValueCell {
	cells := make([]ValueCell, len(slots))
	for i, s := range slots {
		if s.kind == KindValue && r >= 0 {
			cell := ValueCell{Kind: KindValue, UUIDs: b.leafUUIDs(s.from, r)}
			if raw := b.raws[r][s.from]; raw == "" {
				cell.Empty = true
			} else {
				cell.Text = aggregates.FormatValue(raw, b.sep)
				if st := states[s.from]; st != nil {
					cell.Value = st.Sum
					cell.Numeric = true
				}
			}
			cells[i] = cell
			continue
		}

		cell := ValueCell{Kind: s.kind}
		if r < 0 {
			cell.Kind = rowKind
		}
		if v, ok := combine(states, s.from, s.to).Value(b.total); ok {
			cell.Value = v
			cell.Numeric = true
			cell.Text = aggregates.FormatNumber(v, b.sep)
		} else {
			cell.Empty = true
		}
		cells[i] = cell
	}
	return cells
}

func (b *builder) leafUUIDs(c, r int) []string {
	var uuids []string
	if b.col != nil {
		uuids = append(uuids, b.col.Leaves()[c].UUIDs...)
	}
	if b.row != nil {
		uuids = append(uuids, b.row.Leaves()[r].UUIDs...)
	}
	return uuids
}

// DimensionLabel returns the display label of a dimension.
func DimensionLabel(xr *response.Extended, name string) string {
	if h, ok := xr.NameHeaderMap[name]; ok && h.Column != "" {
		return h.Column
	}
	return xr.Name(name)
}

// Title returns the layout title, its name, or the names of the filter
// items.
func Title(xl *xlayout.ExtendedLayout, xr *response.Extended) string {
	if xl.Title != "" {
		return xl.Title
	}
	if xl.Name != "" {
		return xl.Name
	}
	var parts []string
	for _, d := range xl.FilterDimensions {
		var names []string
		for _, item := range d.Items {
			name := item.Name
			if name == "" {
				name = xr.Name(item.ID)
			}
			names = append(names, name)
		}
		if len(names) > 0 {
			parts = append(parts, strings.Join(names, ", "))
		}
	}
	return strings.Join(parts, " - ")
}

// UUIDList joins the selection uuids for a data attribute.
func (c HeaderCell) UUIDList() string {
	return strings.Join(c.UUIDs, ",")
}

// UUIDList joins the selection uuids for a data attribute.
func (c ValueCell) UUIDList() string {
	return strings.Join(c.UUIDs, ",")
}
