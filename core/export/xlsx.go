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

// Package export writes pivot tables as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/google/eventpivot/core/views"
	"github.com/google/eventpivot/logger"
)

// SheetName is the name of the sheet holding the table.
const SheetName = "Pivot"

type styles struct {
	title, header, total, value int
}

type sheet struct {
	f      *excelize.File
	styles styles
	// taken marks cells covered by a span placed on an earlier row.
	taken map[[2]int]bool
}

// NewWorkbook lays out vm on a single sheet. The title, when set, takes
// the first row. Header spans become merged cells.
func NewWorkbook(vm *views.PivotViewModel) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, err
	}
	s := &sheet{f: f, taken: make(map[[2]int]bool)}
	if err := s.newStyles(); err != nil {
		f.Close()
		return nil, err
	}

	row := 1
	if vm.Title != "" {
		if err := s.set(1, row, vm.Title, s.styles.title); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}
	headerTop := row
	for _, cells := range vm.HeaderRows {
		col := 1
		for _, c := range cells {
			col = s.next(col, row)
			if err := s.place(col, row, c, s.styleOf(c.Kind)); err != nil {
				f.Close()
				return nil, err
			}
			col += max(c.ColSpan, 1)
		}
		row++
	}
	bodyTop := row

	for _, r := range vm.Rows {
		col := 1
		for _, c := range r.Headers {
			col = s.next(col, row)
			if err := s.place(col, row, c, s.styleOf(c.Kind)); err != nil {
				f.Close()
				return nil, err
			}
			col += max(c.ColSpan, 1)
		}
		col = vm.RowHeaderWidth + 1
		for _, c := range r.Cells {
			if err := s.value(col, row, c); err != nil {
				f.Close()
				return nil, err
			}
			col++
		}
		row++
	}

	if bodyTop > headerTop {
		topLeft, err := excelize.CoordinatesToCellName(vm.RowHeaderWidth+1, bodyTop)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			XSplit:      vm.RowHeaderWidth,
			YSplit:      bodyTop - 1,
			TopLeftCell: topLeft,
			ActivePane:  "bottomRight",
		}); err != nil {
			f.Close()
			return nil, err
		}
	}

	logger.GetLogger("export").WithFields(logrus.Fields{
		"rows":    row - 1,
		"columns": vm.RowHeaderWidth + vm.ColumnCount,
	}).Debug("workbook built")
	return f, nil
}

// WriteXLSX writes vm to w as an xlsx workbook.
func WriteXLSX(w io.Writer, vm *views.PivotViewModel) error {
	f, err := NewWorkbook(vm)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes vm to the named file.
func SaveXLSX(path string, vm *views.PivotViewModel) error {
	f, err := NewWorkbook(vm)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func (s *sheet) newStyles() error {
	var err error
	if s.styles.title, err = s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return err
	}
	if s.styles.header, err = s.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DAE6F8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return err
	}
	if s.styles.total, err = s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F1F1F1"}, Pattern: 1},
	}); err != nil {
		return err
	}
	s.styles.value, err = s.f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	return err
}

func (s *sheet) styleOf(kind views.CellKind) int {
	switch kind {
	case views.KindSubtotal, views.KindTotal:
		return s.styles.total
	case views.KindValue:
		return s.styles.value
	default:
		return s.styles.header
	}
}

// next skips cells of the row covered by row spans from above.
func (s *sheet) next(col, row int) int {
	for s.taken[[2]int{col, row}] {
		col++
	}
	return col
}

func (s *sheet) set(col, row int, v interface{}, style int) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.f.SetCellValue(SheetName, name, v); err != nil {
		return err
	}
	return s.f.SetCellStyle(SheetName, name, name, style)
}

func (s *sheet) place(col, row int, c views.HeaderCell, style int) error {
	if err := s.set(col, row, c.Text, style); err != nil {
		return err
	}
	cs, rs := max(c.ColSpan, 1), max(c.RowSpan, 1)
	if cs == 1 && rs == 1 {
		return nil
	}
	for dr := 0; dr < rs; dr++ {
		for dc := 0; dc < cs; dc++ {
			s.taken[[2]int{col + dc, row + dr}] = true
		}
	}
	from, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col+cs-1, row+rs-1)
	if err != nil {
		return err
	}
	if err := s.f.MergeCell(SheetName, from, to); err != nil {
		return err
	}
	return s.f.SetCellStyle(SheetName, from, to, style)
}

func (s *sheet) value(col, row int, c views.ValueCell) error {
	style := s.styleOf(c.Kind)
	switch {
	case c.Empty:
		name, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return s.f.SetCellStyle(SheetName, name, name, style)
	case c.Numeric:
		return s.set(col, row, c.Value, style)
	default:
		return s.set(col, row, c.Text, style)
	}
}
