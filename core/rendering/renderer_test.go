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

package rendering

import (
	"strings"
	"testing"

	"github.com/google/safehtml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/eventpivot/core/views"
)

func testViewModel() *views.PivotViewModel {
	return &views.PivotViewModel{
		Title:     "Malaria <cases>",
		TableUUID: "eventpivot_1",
		Density:   "NORMAL",
		Font:      "LARGE",
		HeaderRows: [][]views.HeaderCell{{
			{Text: "", Kind: views.KindLabel, ColSpan: 1, RowSpan: 1},
			{Text: "Jan - Mar 2024", Kind: views.KindDimension, UUID: "u1", UUIDs: []string{"u1"}, ColSpan: 1, RowSpan: 1},
			{Text: "Total", Kind: views.KindTotal, ColSpan: 1, RowSpan: 1},
		}},
		Rows: []views.BodyRow{{
			Kind:    views.KindValue,
			Headers: []views.HeaderCell{{Text: "Bo", Kind: views.KindDimension, UUID: "r1", ColSpan: 1, RowSpan: 2}},
			Cells: []views.ValueCell{
				{Text: "1 000", Kind: views.KindValue, UUIDs: []string{"u1", "r1"}},
				{Kind: views.KindTotal, Empty: true},
			},
		}},
		TotalRows:     3,
		DisplayedRows: 1,
		Links:         []views.Link{{Text: "Swap axes", URL: safehtml.URLSanitized("/table?columns=ou")}},
	}
}

func TestRender(t *testing.T) {
	r, err := NewTableRenderer()
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, r.Render(&b, testViewModel()))
	out := b.String()

	assert.Contains(t, out, "Malaria &lt;cases&gt;")
	assert.Contains(t, out, `class="pivot density-NORMAL font-LARGE"`)
	assert.Contains(t, out, `data-uuid="u1"`)
	assert.Contains(t, out, `data-uuids="u1,r1"`)
	assert.Contains(t, out, `rowspan="2"`)
	assert.Contains(t, out, "1 000")
	assert.Contains(t, out, "Showing 1 of 3 rows")
	assert.Contains(t, out, `<a href="/table?columns=ou">Swap axes</a>`)
}

func TestRenderMessage(t *testing.T) {
	r, err := NewTableRenderer()
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, r.RenderMessage(&b, MessageViewModel{Title: "No data", Message: "No data found", Kind: "info"}))
	assert.Contains(t, b.String(), "No data found")
}
