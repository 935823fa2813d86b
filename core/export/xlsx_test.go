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

package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/report"
	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/core/views"
)

func dim(name string, ids ...string) map[string]any {
	items := make([]any, len(ids))
	for i, id := range ids {
		items[i] = map[string]any{"id": id}
	}
	return map[string]any{"dimension": name, "items": items}
}

func header(name string) *response.Header {
	return &response.Header{Name: name, Type: response.TypeString, Meta: true}
}

func pivot(t *testing.T, title string) *views.PivotViewModel {
	t.Helper()
	raw := map[string]any{
		"columns": []any{dim("de", "d1", "d2"), dim("pe", "2024Q1", "2024Q2")},
		"rows":    []any{dim("ou", "O1", "O2")},
		"title":   title,
	}
	resp := &response.Response{
		Headers: []*response.Header{header("dx"), header("pe"), header("ou"), {Name: "value", Type: response.TypeDouble}},
		Rows: [][]string{
			{"d1", "2024Q1", "O1", "1"},
			{"d1", "2024Q2", "O1", "2"},
			{"d2", "2024Q1", "O1", "3"},
			{"d2", "2024Q2", "O2", "4"},
			{"d1", "2024Q1", "O2", "5"},
		},
		MetaData: response.MetaData{Names: map[string]string{
			"d1": "ANC", "d2": "BCG",
			"O1": "Bo", "O2": "Kenema",
			"2024Q1": "Q1", "2024Q2": "Q2",
		}},
	}
	l, err := layout.Build(raw, layout.Report)
	require.NoError(t, err)
	res, err := report.Run(context.Background(), l, resp, report.Options{})
	require.NoError(t, err)
	vm, err := views.BuildPivot(res)
	require.NoError(t, err)
	return vm
}

func readBack(t *testing.T, data []byte) ([][]string, []string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	merged, err := f.GetMergeCells(SheetName)
	require.NoError(t, err)
	var ranges []string
	for _, m := range merged {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	return rows, ranges
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, pivot(t, "")))

	rows, merged := readBack(t, buf.Bytes())
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"", "ANC", "", "Subtotal", "BCG", "", "Subtotal", "Total"}, rows[0])
	assert.Equal(t, []string{"", "Q1", "Q2", "", "Q1", "Q2"}, rows[1])
	assert.Equal(t, []string{"Bo", "1", "2", "3", "3", "", "3", "6"}, rows[2])
	assert.Equal(t, []string{"Kenema", "5", "", "5", "", "4", "4", "9"}, rows[3])
	assert.Equal(t, []string{"Total", "6", "2", "8", "3", "4", "7", "15"}, rows[4])

	assert.ElementsMatch(t, []string{"A1:A2", "B1:C1", "D1:D2", "E1:F1", "G1:G2", "H1:H2"}, merged)
}

func TestWriteXLSXTitleRow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, pivot(t, "Visits")))

	rows, merged := readBack(t, buf.Bytes())
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Visits"}, rows[0])
	assert.Equal(t, "ANC", rows[1][1])
	assert.Contains(t, merged, "B2:C2")
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pivot.xlsx")
	require.NoError(t, SaveXLSX(path, pivot(t, "")))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SheetName, "H5")
	require.NoError(t, err)
	assert.Equal(t, "15", v)
}
