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

package axis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/xlayout"
)

func dim(name string, n int) *dimension.Dimension {
	d := &dimension.Dimension{Dimension: name}
	for i := 1; i <= n; i++ {
		d.Items = append(d.Items, dimension.Item{ID: fmt.Sprintf("%s%d", name, i)})
	}
	return d
}

func extend(cols, rows []*dimension.Dimension, hideEmptyRows bool) *xlayout.ExtendedLayout {
	return xlayout.Extend(&layout.Layout{Columns: cols, Rows: rows, HideEmptyRows: hideEmptyRows}, xlayout.Options{})
}

func spanSum(a *Axis, floor int) int {
	sum := 0
	for _, c := range a.Oldest(floor) {
		sum += c.Span
	}
	return sum
}

func TestSingleDimensionPerAxis(t *testing.T) {
	xl := extend([]*dimension.Dimension{dim("pe", 3)}, []*dimension.Dimension{dim("ou", 2)}, false)

	col := Build(xl, Col)
	row := Build(xl, Row)
	require.NotNil(t, col)
	require.NotNil(t, row)

	assert.Equal(t, 3, col.Size)
	assert.Equal(t, 2, row.Size)
	assert.Equal(t, []int{1}, col.Span)
	assert.Equal(t, []int{1}, row.Span)
	assert.Equal(t, []string{"pe1", "pe2", "pe3"}, col.IDs)
	for _, c := range col.Leaves() {
		assert.True(t, c.Oldest)
		assert.True(t, c.Root)
		assert.Equal(t, Col, c.Axis)
		assert.Zero(t, c.Children)
	}
}

func TestNestedColumns(t *testing.T) {
	xl := extend([]*dimension.Dimension{dim("de", 2), dim("pe", 3)}, []*dimension.Dimension{dim("ou", 1)}, false)
	a := Build(xl, Col)
	require.NotNil(t, a)

	assert.Equal(t, []string{"dx", "pe"}, a.DimensionNames)
	assert.Equal(t, 6, a.Size)
	assert.Equal(t, 2, a.Dims)
	assert.Equal(t, []int{3, 1}, a.Span)
	assert.Equal(t, []string{"de1", "de1", "de1", "de2", "de2", "de2"}, a.All[0])
	assert.Equal(t, []string{"pe1", "pe2", "pe3", "pe1", "pe2", "pe3"}, a.All[1])
	assert.Equal(t, []string{"de1pe1", "de1pe2", "de1pe3", "de2pe1", "de2pe2", "de2pe3"}, a.IDs)
	assert.Equal(t, [][]string{{"de1", "de2"}, {"pe1", "pe2", "pe3", "pe1", "pe2", "pe3"}}, a.Gui)

	top := a.Oldest(0)
	require.Len(t, top, 2)
	assert.Equal(t, 3, top[0].Span)
	assert.Equal(t, 3, top[0].Children)
	assert.True(t, top[0].Root)

	leaf := a.Leaves()[4]
	assert.Same(t, a.Cells[0][4], leaf.Parent)
	assert.Same(t, top[1], leaf.Parent.OldestSibling)

	id, ok := a.IDAt("pe", 4)
	assert.True(t, ok)
	assert.Equal(t, "pe2", id)
	_, ok = a.IDAt("ou", 0)
	assert.False(t, ok)
}

func TestCompositeIDs(t *testing.T) {
	xl := extend([]*dimension.Dimension{dim("de", 2), dim("pe", 3), dim("ou", 2)}, nil, false)
	a := Build(xl, Col)
	require.NotNil(t, a)
	for k := 0; k < a.Size; k++ {
		want := ""
		for f := 0; f < a.Dims; f++ {
			want += a.All[f][k]
		}
		assert.Equal(t, want, a.IDs[k])
	}
}

func TestSpanSums(t *testing.T) {
	shapes := [][]int{{1}, {4}, {2, 3}, {1, 3}, {3, 1}, {3, 1, 4}, {2, 3, 1, 2}, {1, 1, 2}}
	for _, shape := range shapes {
		for _, hide := range []bool{false, true} {
			t.Run(fmt.Sprintf("%v hide=%v", shape, hide), func(t *testing.T) {
				var rows []*dimension.Dimension
				for i, n := range shape {
					rows = append(rows, dim(fmt.Sprintf("d%d", i), n))
				}
				a := Build(extend([]*dimension.Dimension{dim("pe", 1)}, rows, hide), Row)
				require.NotNil(t, a)
				for f := 0; f < a.Dims; f++ {
					assert.Equal(t, a.Size, spanSum(a, f))
					assert.Len(t, a.All[f], a.Size)
				}
			})
		}
	}
}

func TestSingleIDInnerFloorSpans(t *testing.T) {
	rows := []*dimension.Dimension{dim("a", 2), dim("b", 3), dim("c", 1), dim("d", 2)}

	a := Build(extend([]*dimension.Dimension{dim("pe", 1)}, rows, false), Row)
	require.NotNil(t, a)
	assert.Equal(t, []int{6, 2, 6, 1}, a.Span)

	a = Build(extend([]*dimension.Dimension{dim("pe", 1)}, rows, true), Row)
	require.NotNil(t, a)
	assert.Equal(t, []int{6, 2, 2, 1}, a.Span)

	a = Build(extend(rows, []*dimension.Dimension{dim("pe", 1)}, true), Col)
	require.NotNil(t, a)
	assert.Equal(t, []int{6, 2, 6, 1}, a.Span)

	top := Build(extend([]*dimension.Dimension{dim("pe", 1), dim("ou", 3)}, nil, false), Col)
	require.NotNil(t, top)
	assert.Equal(t, []int{3, 1}, top.Span)
}

func TestLeafUUIDs(t *testing.T) {
	xl := extend([]*dimension.Dimension{dim("de", 2), dim("pe", 2)}, nil, false)
	a := Build(xl, Col)
	require.NotNil(t, a)
	require.Equal(t, []int{2, 1}, a.Span)

	leaves := a.Leaves()
	for _, leaf := range leaves {
		assert.Len(t, leaf.UUIDs, 2)
	}
	assert.Equal(t, leaves[0].UUIDs, leaves[1].UUIDs)
	assert.Equal(t, leaves[2].UUIDs, leaves[3].UUIDs)
	assert.NotEqual(t, leaves[0].UUIDs, leaves[2].UUIDs)
	assert.Equal(t, a.Cells[0][0].UUID, leaves[0].UUIDs[0])

	leaves[0].UUIDs[0] = "changed"
	assert.NotEqual(t, "changed", leaves[1].UUIDs[0])
}

func TestLeafUUIDsNearestAncestorFirst(t *testing.T) {
	a := Build(extend([]*dimension.Dimension{dim("de", 2), dim("pe", 2), dim("ou", 2)}, nil, false), Col)
	require.NotNil(t, a)

	leaf := a.Leaves()[0]
	require.Len(t, leaf.UUIDs, 3)
	assert.Equal(t, leaf.Parent.OldestSibling.UUID, leaf.UUIDs[0])
	assert.Equal(t, a.Cells[0][0].UUID, leaf.UUIDs[1])
	assert.NotEqual(t, leaf.UUIDs[0], leaf.UUIDs[1])
}

func TestUUIDObjectMap(t *testing.T) {
	a := Build(extend([]*dimension.Dimension{dim("de", 2), dim("pe", 3)}, nil, false), Col)
	require.NotNil(t, a)
	assert.Len(t, a.UUIDObjectMap, a.Dims*a.Size)
	for _, floor := range a.Cells {
		for _, c := range floor {
			got, ok := a.Cell(c.UUID)
			require.True(t, ok)
			assert.Same(t, c, got)
		}
	}
}

func TestBuildWithoutDimensions(t *testing.T) {
	xl := extend([]*dimension.Dimension{dim("pe", 2)}, nil, false)
	assert.Nil(t, Build(xl, Row))

	empty := extend([]*dimension.Dimension{dim("pe", 2), {Dimension: "ou"}}, nil, false)
	assert.Nil(t, Build(empty, Col))

	var a *Axis
	_, ok := a.IDAt("pe", 0)
	assert.False(t, ok)
}
