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

package xlayout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/layout"
)

func items(ids ...string) []dimension.Item {
	result := make([]dimension.Item, len(ids))
	for i, id := range ids {
		result[i] = dimension.Item{ID: id, Name: strings.ToUpper(id)}
	}
	return result
}

func testLayout() *layout.Layout {
	return &layout.Layout{
		Columns: []*dimension.Dimension{
			{Dimension: "de", Items: items("de2", "de1")},
			{Dimension: "pe", Items: items("2024Q1", "2024Q2", "2024Q3")},
		},
		Rows: []*dimension.Dimension{
			{Dimension: "ou", Items: items("ouB", "ouA")},
			{Dimension: "in", Items: items("ind1")},
		},
		Filters: []*dimension.Dimension{
			{Dimension: "ougs2", Items: items("g2", "g1")},
			{Dimension: "gender", Items: items("m", "f")},
		},
	}
}

func TestExtendNames(t *testing.T) {
	xl := Extend(testLayout(), Options{})

	assert.Equal(t, []string{"de", "pe"}, xl.ColumnObjectNames)
	assert.Equal(t, []string{"dx", "pe"}, xl.ColumnDimensionNames)
	assert.Equal(t, []string{"ou", "in"}, xl.RowObjectNames)
	assert.Equal(t, []string{"ou", "dx"}, xl.RowDimensionNames)
	assert.Equal(t, []string{"de", "pe", "ou", "in"}, xl.AxisObjectNames)
	assert.Equal(t, []string{"dx", "pe", "ou"}, xl.AxisDimensionNames)
	assert.Equal(t, []string{"dx", "ou", "pe"}, xl.SortedAxisDimensionNames)
	assert.Equal(t, []string{"ougs2", "gender"}, xl.FilterDimensionNames)
	assert.True(t, strings.HasPrefix(xl.TableUUID, "eventpivot_"))
}

func TestExtendParallelArrays(t *testing.T) {
	xl := Extend(testLayout(), Options{})

	require.Len(t, xl.ObjectNames, len(xl.Dimensions))
	require.Len(t, xl.DimensionNames, len(xl.Dimensions))
	for i, xd := range xl.Dimensions {
		assert.Equal(t, xd.ObjectName, xl.ObjectNames[i])
		assert.Equal(t, xd.DimensionName, xl.DimensionNames[i])
	}
}

func TestExtendMapsConcatenateSharedDimensionNames(t *testing.T) {
	xl := Extend(testLayout(), Options{})

	assert.Equal(t, []string{"de2", "de1", "ind1"}, xl.DimensionNameIDsMap["dx"])
	assert.Equal(t, []string{"de1", "de2", "ind1"}, xl.DimensionNameSortedIDsMap["dx"])
	assert.Len(t, xl.DimensionNameDimensionsMap["dx"], 2)
	assert.Len(t, xl.DimensionNameItemsMap["dx"], 3)

	assert.Equal(t, []string{"de2", "de1"}, xl.ObjectNameIDsMap["de"])
	assert.Equal(t, "dx", xl.ObjectNameDimensionsMap["in"].DimensionName)

	for _, name := range xl.DimensionNames {
		assert.Contains(t, xl.DimensionNameDimensionsMap, name)
		assert.Contains(t, xl.DimensionNameItemsMap, name)
		assert.Contains(t, xl.DimensionNameIDsMap, name)
		assert.Contains(t, xl.DimensionNameSortedIDsMap, name)
	}
}

func TestExtendSortedFilterDimensions(t *testing.T) {
	xl := Extend(testLayout(), Options{})

	require.Len(t, xl.SortedFilterDimensions, 2)
	assert.Equal(t, "gender", xl.SortedFilterDimensions[0].DimensionName)
	assert.Equal(t, []string{"f", "m"}, xl.SortedFilterDimensions[0].IDs)
	assert.Equal(t, []string{"g1", "g2"}, xl.SortedFilterDimensions[1].IDs)
	// The unsorted filters keep their order.
	assert.Equal(t, []string{"g2", "g1"}, xl.FilterDimensions[0].IDs)
}

func TestExtendUsesRegistryAndLegendSets(t *testing.T) {
	reg := dimension.NewRegistry()
	reg.RegisterDynamic("ougs2", "Facility type")
	l := testLayout()
	l.LegendSet = &dimension.LegendSet{ID: "ls1"}

	xl := Extend(l, Options{
		Registry: reg,
		Prefix:   "report",
		LegendSets: func(id string) (*dimension.LegendSet, bool) {
			return &dimension.LegendSet{ID: id, Legends: []dimension.Legend{
				{ID: "high", StartValue: 50},
				{ID: "low", StartValue: 0},
			}}, true
		},
	})

	assert.Equal(t, "ougs2", xl.FilterDimensionNames[0])
	require.NotNil(t, xl.LegendSet)
	assert.Equal(t, "low", xl.LegendSet.Legends[0].ID)
	assert.True(t, strings.HasPrefix(xl.TableUUID, "report_"))
}

func TestExtendCopiesLayout(t *testing.T) {
	l := testLayout()
	xl := Extend(l, Options{})
	l.Columns[0].Items[0].ID = "changed"

	assert.Equal(t, "de2", xl.XColumns[0].IDs[0])
	assert.Equal(t, "de2", xl.Layout.Columns[0].Items[0].ID)
}

func TestExtendTableUUIDIsUnique(t *testing.T) {
	a := Extend(testLayout(), Options{})
	b := Extend(testLayout(), Options{})
	assert.NotEqual(t, a.TableUUID, b.TableUUID)
}

func TestToLayout(t *testing.T) {
	xl := Extend(testLayout(), Options{})
	xl.XColumns[1].Items = items("2024Q3")

	l := xl.ToLayout()
	assert.Equal(t, []string{"2024Q3"}, l.Columns[1].IDs())
	assert.Equal(t, []string{"ouB", "ouA"}, l.Rows[0].IDs())
}
