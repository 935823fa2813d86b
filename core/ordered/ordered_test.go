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

package ordered

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	m := NewMap[string, int]()
	m.Set("first", 1)
	m.Set("second", 2)
	m.Set("third", 3)

	if val, ok := m.Get("second"); !ok || val != 2 {
		t.Errorf("Expected Get('second') to return 2, got %d", val)
	}

	m.Set("first", 10)
	assert.Equal(t, []string{"first", "second", "third"}, m.Keys())
	assert.Equal(t, []int{10, 2, 3}, m.Values())

	var rangeKeys []string
	m.Range(func(k string, _ int) bool {
		rangeKeys = append(rangeKeys, k)
		return k != "second"
	})
	assert.Equal(t, []string{"first", "second"}, rangeKeys)
}

func TestUnique(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"no duplicates", []string{"pe", "ou"}, []string{"pe", "ou"}},
		{"first occurrence wins", []string{"dx", "pe", "dx", "ou", "pe"}, []string{"dx", "pe", "ou"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unique(tt.in))
		})
	}
}

func TestSortByReference(t *testing.T) {
	got := SortByReference([]string{"a", "b", "c", "d"}, []string{"c", "x", "a"})
	assert.Equal(t, []string{"c", "a", "b", "d"}, got)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"dy", "pe"}, "pe"))
	assert.False(t, Contains([]string{"dy", "pe"}, "ou"))
}
