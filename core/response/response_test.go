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

package response

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/xlayout"
)

func items(ids ...string) []dimension.Item {
	result := make([]dimension.Item, len(ids))
	for i, id := range ids {
		result[i] = dimension.Item{ID: id}
	}
	return result
}

func testLayout() *layout.Layout {
	return &layout.Layout{
		Columns: []*dimension.Dimension{{Dimension: "pe", Items: items("2024Q2", "2024Q1")}},
		Rows: []*dimension.Dimension{
			{Dimension: "ou", Items: items("O1", "O2")},
			{Dimension: "gender"},
		},
	}
}

func testResponse() *Response {
	return &Response{
		Headers: []*Header{
			{Name: "pe", Type: TypeString, Meta: true},
			{Name: "ou", Type: TypeString, Meta: true},
			{Name: "gender", Type: TypeString, Meta: true},
			{Name: "value", Type: TypeDouble},
		},
		Rows: [][]string{
			{"2024Q1", "O1", "m", "10"},
			{"2024Q2", "O2", "", "5"},
			{"2024Q1", "O2", "f", "3"},
		},
		MetaData: MetaData{
			Names: map[string]string{
				"O1": "Beta", "O2": "alpha", "m": "Male", "f": "Female",
			},
			OuHierarchy: map[string]string{"O1": "root/bo", "O2": ""},
			Dimensions:  map[string][]string{"pe": {"2024Q1", "2024Q2"}},
		},
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestExtend(t *testing.T) {
	xl := xlayout.Extend(testLayout(), xlayout.Options{})
	resp := testResponse()
	x, err := Extend(xl, resp)
	require.NoError(t, err)

	t.Run("input untouched", func(t *testing.T) {
		assert.Equal(t, "O1", resp.Rows[0][1])
		assert.Nil(t, resp.Headers[1].IDs)
	})

	t.Run("names sort case insensitively", func(t *testing.T) {
		ou := x.NameHeaderMap["ou"]
		assert.Equal(t, []string{"ouO2", "ouO1"}, ou.IDs)
		assert.Equal(t, 2, ou.Size)
		assert.Equal(t, 1, ou.Index)
		assert.Equal(t, "alpha", x.Name("ouO2"))
	})

	t.Run("empty cells become N/A", func(t *testing.T) {
		gender := x.NameHeaderMap["gender"]
		assert.Len(t, gender.IDs, 3)
		assert.Contains(t, gender.IDs, "gender"+dimension.EmptyID)
		assert.Less(t, indexOf(gender.IDs, "genderf"), indexOf(gender.IDs, "genderm"))
		assert.Equal(t, dimension.EmptyID, x.Name("gender"+dimension.EmptyID))
	})

	t.Run("periods follow the selection", func(t *testing.T) {
		assert.Equal(t, []string{"2024Q2", "2024Q1"}, x.NameHeaderMap["pe"].IDs)
		assert.Equal(t, "2024Q1", x.Rows[0][0])
	})

	t.Run("value lookup", func(t *testing.T) {
		assert.Equal(t, "10", x.IDValueMap["2024Q1ouO1genderm"])
		v, ok := x.Value(func(name string) (string, bool) {
			return map[string]string{"pe": "2024Q2", "ou": "ouO2", "gender": "gender" + dimension.EmptyID}[name], true
		})
		assert.True(t, ok)
		assert.Equal(t, "5", v)
	})

	t.Run("key order follows axis dimension names", func(t *testing.T) {
		ids := map[string]string{"pe": "2024Q1", "ou": "ouO2", "gender": "genderf"}
		key := x.Key(func(name string) (string, bool) { return ids[name], true })
		assert.Equal(t, "2024Q1ouO2genderf", key)
		assert.Equal(t, "3", x.IDValueMap[key])
	})
}

func TestExtendRelativePeriodsKeepServerOrder(t *testing.T) {
	l := testLayout()
	l.Columns[0].Items = items("LAST_4_QUARTERS")
	resp := testResponse()
	resp.MetaData.Dimensions["pe"] = []string{"2024Q1", "2024Q2"}

	x, err := Extend(xlayout.Extend(l, xlayout.Options{}), resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024Q1", "2024Q2"}, x.NameHeaderMap["pe"].IDs)
}

func TestExtendPeriodsFallBackToRows(t *testing.T) {
	resp := testResponse()
	resp.MetaData.Dimensions = map[string][]string{}
	l := testLayout()
	l.Columns[0].Items = items("THIS_YEAR")

	x, err := Extend(xlayout.Extend(l, xlayout.Options{}), resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024Q1", "2024Q2"}, x.NameHeaderMap["pe"].IDs)
}

func TestExtendHideNaData(t *testing.T) {
	l := testLayout()
	l.HideNaData = true
	x, err := Extend(xlayout.Extend(l, xlayout.Options{}), testResponse())
	require.NoError(t, err)
	assert.NotContains(t, x.NameHeaderMap["gender"].IDs, "gender"+dimension.EmptyID)
	assert.Len(t, x.NameHeaderMap["gender"].IDs, 2)
}

func TestExtendNumericAndBooleanOrder(t *testing.T) {
	l := &layout.Layout{
		Columns: []*dimension.Dimension{{Dimension: "age"}},
		Rows:    []*dimension.Dimension{{Dimension: "pregnant"}},
		Filters: []*dimension.Dimension{{Dimension: "pe", Items: items("2024")}},
	}
	resp := &Response{
		Headers: []*Header{
			{Name: "age", Type: TypeDouble, Meta: true},
			{Name: "pregnant", Type: TypeBoolean, Meta: true},
			{Name: "value", Type: TypeDouble},
		},
		Rows: [][]string{
			{"10", "1", "4"},
			{"2", "0", "7"},
			{"abc", "", "1"},
			{"2.50", "1", "2"},
		},
		MetaData: MetaData{Names: map[string]string{}},
	}

	x, err := Extend(xlayout.Extend(l, xlayout.Options{}), resp)
	require.NoError(t, err)

	assert.Equal(t, []string{"age2", "age2.50", "age10", "ageabc"}, x.NameHeaderMap["age"].IDs)
	assert.Equal(t, "2.5", x.Name("age2.50"))
	assert.Equal(t, "abc", x.Name("ageabc"))

	assert.Equal(t, []string{"pregnant0", "pregnant1", "pregnant" + dimension.EmptyID}, x.NameHeaderMap["pregnant"].IDs)
	assert.Equal(t, "Yes", x.Name("pregnant1"))
	assert.Equal(t, "No", x.Name("pregnant0"))
	assert.Equal(t, "7", x.IDValueMap["age2pregnant0"])
}

func TestExtendNonFiniteNumbersSortLast(t *testing.T) {
	l := &layout.Layout{
		Columns: []*dimension.Dimension{{Dimension: "age"}},
		Filters: []*dimension.Dimension{{Dimension: "pe", Items: items("2024")}},
	}
	resp := &Response{
		Headers: []*Header{
			{Name: "age", Type: TypeDouble, Meta: true},
			{Name: "value", Type: TypeDouble},
		},
		Rows: [][]string{
			{"NaN", "1"},
			{"3", "2"},
			{"Inf", "3"},
			{"1", "4"},
			{"-Inf", "5"},
		},
		MetaData: MetaData{Names: map[string]string{}},
	}

	x, err := Extend(xlayout.Extend(l, xlayout.Options{}), resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"age1", "age3", "ageNaN", "ageInf", "age-Inf"}, x.NameHeaderMap["age"].IDs)
	assert.Equal(t, "NaN", x.Name("ageNaN"))
}

func TestExtendDeduplication(t *testing.T) {
	tests := []struct {
		name       string
		hideNaData bool
		want       []string
	}{
		{"keep n/a", false, []string{"cx", "cy", "c" + dimension.EmptyID}},
		{"hide n/a", true, []string{"cx", "cy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &layout.Layout{
				Columns:    []*dimension.Dimension{{Dimension: "c"}},
				Filters:    []*dimension.Dimension{{Dimension: "pe", Items: items("2024")}},
				HideNaData: tt.hideNaData,
			}
			resp := &Response{
				Headers: []*Header{
					{Name: "c", Type: TypeString, Meta: true},
					{Name: "value", Type: TypeDouble},
				},
				Rows: [][]string{
					{"x", "1"},
					{"x", "2"},
					{"y", "3"},
					{dimension.EmptyID, "4"},
					{"y", "5"},
				},
				MetaData: MetaData{Names: map[string]string{}},
			}

			x, err := Extend(xlayout.Extend(l, xlayout.Options{}), resp)
			require.NoError(t, err)
			h := x.NameHeaderMap["c"]
			assert.ElementsMatch(t, tt.want, h.IDs)
			assert.Equal(t, len(tt.want), h.Size)
		})
	}
}

func TestExtendKeyOrder(t *testing.T) {
	x, err := Extend(xlayout.Extend(testLayout(), xlayout.Options{}), testResponse())
	require.NoError(t, err)
	ids := map[string]string{"pe": "2024Q1", "ou": "ouO2", "gender": "genderf"}
	idOf := func(name string) (string, bool) { return ids[name], true }

	tests := []struct {
		name  string
		order []string
		found bool
	}{
		{"axis order", []string{"pe", "ou", "gender"}, true},
		{"reversed", []string{"gender", "ou", "pe"}, false},
		{"swapped", []string{"ou", "pe", "gender"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := x.IDValueMap[CompositeKey(tt.order, idOf)]
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, "3", v)
			}
		})
	}
}

func TestExtendOptionSetKeepsRowOrder(t *testing.T) {
	l := &layout.Layout{
		Columns: []*dimension.Dimension{{Dimension: "color"}},
		Filters: []*dimension.Dimension{{Dimension: "pe", Items: items("2024")}},
	}
	resp := &Response{
		Headers: []*Header{
			{Name: "color", Type: TypeString, Meta: true, OptionSet: OptionSetRefs{"colors"}},
			{Name: "value", Type: TypeDouble},
		},
		Rows:     [][]string{{"RED", "1"}, {"BLUE", "2"}, {"RED", "3"}},
		MetaData: MetaData{Names: map[string]string{}},
	}
	x, err := Extend(xlayout.Extend(l, xlayout.Options{}), resp)
	require.NoError(t, err)
	assert.Equal(t, []string{"colorRED", "colorBLUE"}, x.NameHeaderMap["color"].IDs)
}

func TestExtendHierarchyNames(t *testing.T) {
	l := testLayout()
	l.ShowHierarchy = true
	resp := testResponse()
	resp.MetaData.Names["root"] = "Sierra Leone"
	resp.MetaData.Names["bo"] = "Bo"

	x, err := Extend(xlayout.Extend(l, xlayout.Options{}), resp)
	require.NoError(t, err)
	assert.Equal(t, "Sierra Leone / Bo / Beta", x.Name("ouO1"))
	assert.Equal(t, "alpha", x.Name("ouO2"))
	assert.Equal(t, "root/bo", x.MetaData.OuHierarchy["ouO1"])
}

func TestExtendErrors(t *testing.T) {
	xl := xlayout.Extend(testLayout(), xlayout.Options{})

	empty := testResponse()
	empty.Rows = nil
	_, err := Extend(xl, empty)
	assert.ErrorIs(t, err, ErrEmptyResult)

	noValue := testResponse()
	noValue.Headers[3].Name = "count"
	_, err = Extend(xl, noValue)
	assert.ErrorIs(t, err, ErrNoValueHeader)
}

func TestHierarchyName(t *testing.T) {
	names := map[string]string{"a": "A", "b": "B", "c": "C"}
	tests := []struct {
		name      string
		hierarchy map[string]string
		want      string
	}{
		{"two ancestors", map[string]string{"c": "a/b"}, "A / B / C"},
		{"leading slash", map[string]string{"c": "/a/b"}, "A / B / C"},
		{"one ancestor", map[string]string{"c": "a"}, "C"},
		{"missing", map[string]string{}, "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HierarchyName(tt.hierarchy, names, "c"))
		})
	}
}

func TestCompositeKey(t *testing.T) {
	ids := map[string]string{"dx": "a", "pe": "b"}
	idOf := func(name string) (string, bool) {
		id, ok := ids[name]
		return id, ok
	}
	assert.Equal(t, "ab", CompositeKey([]string{"dx", "ou", "pe"}, idOf))
	assert.Equal(t, "ba", CompositeKey([]string{"pe", "dx"}, idOf))
}

func TestDecode(t *testing.T) {
	body := `{
		"headers": [
			{"name": "pe", "column": "Period", "type": "java.lang.String", "meta": true},
			{"name": "color", "type": "java.lang.String", "meta": true, "optionSet": "colors"},
			{"name": "value", "type": "java.lang.Double", "meta": false}
		],
		"rows": [["2024", "RED", "1"]],
		"width": 3, "height": 1,
		"metaData": {"names": {"2024": "2024"}, "pe": ["2024"], "ouHierarchy": {"x": "y"}}
	}`
	resp, err := Decode(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, resp.MetaData.Dimensions["pe"])
	assert.Equal(t, OptionSetRefs{"colors"}, resp.Headers[1].OptionSet)
	assert.True(t, resp.Headers[1].HasOptionSet())
	assert.Equal(t, "y", resp.MetaData.OuHierarchy["x"])

	_, err = Decode(strings.NewReader(`{"headers": [{"name": "a"}], "rows": [["1", "2"]]}`))
	assert.Error(t, err)
}

func TestDecodeCSV(t *testing.T) {
	resp, err := DecodeCSV(strings.NewReader("pe,ou,value\n2024,O1,4\n2024,O2,5\n"))
	require.NoError(t, err)
	require.Len(t, resp.Headers, 3)
	assert.True(t, resp.Headers[0].Meta)
	assert.False(t, resp.Headers[2].Meta)
	assert.Equal(t, TypeDouble, resp.Headers[2].Type)
	assert.Equal(t, 2, resp.Height)

	_, err = DecodeCSV(strings.NewReader(""))
	assert.Error(t, err)
	_, err = DecodeCSV(strings.NewReader("a,b\n1\n"))
	assert.Error(t, err)
}

func TestExtendQuery(t *testing.T) {
	l := &layout.Layout{
		Columns: []*dimension.Dimension{{Dimension: "pe", Items: items("2024")}},
		Rows:    []*dimension.Dimension{{Dimension: "ou", Items: items("O1")}, {Dimension: "age"}},
	}
	resp := &Response{
		Headers: []*Header{
			{Name: "psi", Type: TypeString},
			{Name: "eventdate", Type: TypeString},
			{Name: "ouname", Type: TypeString},
			{Name: "age", Type: TypeDouble},
		},
		Rows: [][]string{{"e1", "2024-03-01 00:00:00.0", "Bo", "12.0"}},
		MetaData: MetaData{Names: map[string]string{}},
	}
	x, err := ExtendQuery(xlayout.Extend(l, xlayout.Options{}), resp)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", x.Rows[0][1])
	assert.Equal(t, "12", x.Rows[0][3])
	names := make([]string, len(x.DimensionHeaders))
	for i, h := range x.DimensionHeaders {
		names[i] = h.Name
	}
	assert.Equal(t, []string{"eventdate", "ouname", "age"}, names)
	assert.Equal(t, "eventdate", QueryHeaderName("pe"))
}
