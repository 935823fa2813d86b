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

package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/eventpivot/core/layout"
)

func parse(t *testing.T, s string) *Query {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return NewQuery(u)
}

func TestNewQuery(t *testing.T) {
	q := parse(t, "/table?response=anc&columns=pe:2024Q1%3B2024Q2,dx:d1&rows=ou:O1%3BO2&filters=gender&filter:gender=IN:m%3Bf&hideEmptyRows=true&type=column")

	assert.Equal(t, "/table", q.Path)
	assert.Equal(t, "anc", q.Source)
	assert.Equal(t, []Dimension{
		{Dimension: "pe", Items: []string{"2024Q1", "2024Q2"}},
		{Dimension: "dx", Items: []string{"d1"}},
	}, q.Columns)
	assert.Equal(t, []Dimension{{Dimension: "ou", Items: []string{"O1", "O2"}}}, q.Rows)
	assert.Equal(t, []Dimension{{Dimension: "gender", Filter: "IN:m;f"}}, q.Filters)
	assert.Equal(t, map[string]string{"hideEmptyRows": "true", "type": "column"}, q.Options)
	assert.Equal(t, []string{"hideEmptyRows", "type"}, q.OptionKeys())
}

func TestQueryRoundTrip(t *testing.T) {
	q := parse(t, "/table?columns=pe:2024Q1%3B2024Q2&rows=ou:O1&filters=gender&filter:gender=GT:5&topLimit=5")
	again := parse(t, q.ToURL())

	assert.Equal(t, q, again)
	assert.Equal(t, q.ToURL(), q.ToSafeURL().String())
}

func TestRawBuildsLayout(t *testing.T) {
	q := parse(t, "/table?columns=pe:2024Q1%3B2024Q2&rows=ou:O1%3BO2&filters=gender&filter:gender=IN:m&hideEmptyRows=true&topLimit=5&sorting=total:DESC&value=v1&aggregationType=SUM&title=Visits")

	l, err := layout.Build(q.Raw(), layout.Report)
	require.NoError(t, err)
	require.Len(t, l.Columns, 1)
	assert.Equal(t, []string{"2024Q1", "2024Q2"}, l.Columns[0].IDs())
	assert.Equal(t, "IN:m", l.Filters[0].Filter)
	assert.True(t, l.HideEmptyRows)
	assert.Equal(t, 5, l.TopLimit)
	require.NotNil(t, l.Sorting)
	assert.Equal(t, layout.Sorting{ID: "total", Direction: "DESC"}, *l.Sorting)
	require.NotNil(t, l.Value)
	assert.Equal(t, "v1", l.Value.ID)
	assert.Equal(t, "Visits", l.Title)
}

func TestWithDimensionMoved(t *testing.T) {
	q := parse(t, "/table?columns=pe:2024Q1,dx:d1&rows=ou:O1")

	moved := parse(t, q.WithDimensionMoved("dx", Rows).String())
	assert.Equal(t, []Dimension{{Dimension: "pe", Items: []string{"2024Q1"}}}, moved.Columns)
	assert.Equal(t, []Dimension{
		{Dimension: "ou", Items: []string{"O1"}},
		{Dimension: "dx", Items: []string{"d1"}},
	}, moved.Rows)

	// The receiver is untouched.
	assert.Len(t, q.Columns, 2)
	assert.Equal(t, q.ToSafeURL(), q.WithDimensionMoved("missing", Rows))
	assert.Equal(t, q.ToSafeURL(), q.WithDimensionMoved("pe", Columns))
}

func TestWithAxesSwapped(t *testing.T) {
	q := parse(t, "/chart?columns=pe:2024Q1&rows=ou:O1%3BO2")
	swapped := parse(t, q.WithAxesSwapped().String())

	assert.Equal(t, "ou", swapped.Columns[0].Dimension)
	assert.Equal(t, "pe", swapped.Rows[0].Dimension)
	assert.Equal(t, "/chart", swapped.Path)
}

func TestWithOption(t *testing.T) {
	q := parse(t, "/table?columns=pe:2024Q1&hideEmptyRows=true")

	off := parse(t, q.WithOptionToggled("hideEmptyRows").String())
	assert.Equal(t, "false", off.Options["hideEmptyRows"])

	on := parse(t, q.WithOptionToggled("showHierarchy").String())
	assert.Equal(t, "true", on.Options["showHierarchy"])

	removed := parse(t, q.WithOption("hideEmptyRows", "").String())
	assert.NotContains(t, removed.Options, "hideEmptyRows")
}

func TestWithSortToggled(t *testing.T) {
	q := parse(t, "/table?columns=pe:2024Q1")

	asc := parse(t, q.WithSortToggled("2024Q1").String())
	id, dir, ok := asc.Sorting()
	require.True(t, ok)
	assert.Equal(t, "2024Q1", id)
	assert.Equal(t, "ASC", dir)

	desc := parse(t, asc.WithSortToggled("2024Q1").String())
	_, dir, _ = desc.Sorting()
	assert.Equal(t, "DESC", dir)

	none := parse(t, desc.WithSortToggled("2024Q1").String())
	_, _, ok = none.Sorting()
	assert.False(t, ok)

	other := parse(t, desc.WithSortToggled("total").String())
	id, dir, _ = other.Sorting()
	assert.Equal(t, "total", id)
	assert.Equal(t, "ASC", dir)
}
