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

// Package chart turns a render result into chart series and renders them
// with ECharts.
package chart

import (
	"fmt"
	"strings"

	"github.com/google/eventpivot/core/layout"
)

// Kind is a chart type.
type Kind int

const (
	Column Kind = iota
	StackedColumn
	Bar
	StackedBar
	Line
	Area
	Pie
	Radar
)

// Kinds lists every chart type in picker order.
var Kinds = []Kind{Column, StackedColumn, Bar, StackedBar, Line, Area, Pie, Radar}

// ParseKind accepts client names (stackedcolumn) and server names
// (STACKED_COLUMN). An empty string is a column chart.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if name == "" {
		return Column, nil
	}
	for _, k := range Kinds {
		if k.String() == name {
			return k, nil
		}
	}
	return Column, fmt.Errorf("unknown chart type %q", s)
}

// String returns the client name of the chart type.
func (k Kind) String() string {
	switch k {
	case Column:
		return layout.ChartColumn
	case StackedColumn:
		return layout.ChartStackedColumn
	case Bar:
		return layout.ChartBar
	case StackedBar:
		return layout.ChartStackedBar
	case Line:
		return layout.ChartLine
	case Area:
		return layout.ChartArea
	case Pie:
		return layout.ChartPie
	case Radar:
		return layout.ChartRadar
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ServerName returns the upper case name the analytics server stores.
func (k Kind) ServerName() string {
	return layout.ServerChartType(k.String())
}

// Stacked reports whether series are stacked on top of each other.
func (k Kind) Stacked() bool {
	switch k {
	case StackedColumn, StackedBar, Area:
		return true
	case Column, Bar, Line, Pie, Radar:
		return false
	default:
		return false
	}
}

// Horizontal reports whether categories run along the vertical axis.
func (k Kind) Horizontal() bool {
	return k == Bar || k == StackedBar
}

// Cartesian reports whether the chart has a category and a value axis.
func (k Kind) Cartesian() bool {
	switch k {
	case Pie, Radar:
		return false
	default:
		return true
	}
}
