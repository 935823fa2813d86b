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

// Package layout builds and validates report layouts: which dimensions sit
// on columns, rows and filters, plus the display options of a pivot table
// or chart.
package layout

import (
	"github.com/google/eventpivot/core/aggregates"
	"github.com/google/eventpivot/core/dimension"
)

// Flavor selects the validation rules of the consumer.
type Flavor int

const (
	// Report is a pivot table; any number of dimensions per axis.
	Report Flavor = iota
	// Chart allows one dimension per axis; extra ones become filters.
	Chart
)

func (f Flavor) String() string {
	if f == Chart {
		return "chart"
	}
	return "report"
}

// Option values.
const (
	OutputEvent      = "EVENT"
	OutputEnrollment = "ENROLLMENT"

	DataAggregated = "AGGREGATED_VALUES"
	DataEvents     = "EVENTS"

	StyleNormal = "NORMAL"

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Chart type names as used by the client.
const (
	ChartColumn        = "column"
	ChartStackedColumn = "stackedcolumn"
	ChartBar           = "bar"
	ChartStackedBar    = "stackedbar"
	ChartLine          = "line"
	ChartArea          = "area"
	ChartPie           = "pie"
	ChartRadar         = "radar"
)

var serverChartTypes = map[string]string{
	"COLUMN":         ChartColumn,
	"STACKED_COLUMN": ChartStackedColumn,
	"BAR":            ChartBar,
	"STACKED_BAR":    ChartStackedBar,
	"LINE":           ChartLine,
	"AREA":           ChartArea,
	"PIE":            ChartPie,
	"RADAR":          ChartRadar,
}

// ServerChartType returns the server name of a client chart type.
func ServerChartType(client string) string {
	for server, c := range serverChartTypes {
		if c == client {
			return server
		}
	}
	return ""
}

func clientChartType(s string) string {
	if c, ok := serverChartTypes[s]; ok {
		return c
	}
	for _, c := range serverChartTypes {
		if c == s {
			return c
		}
	}
	return ChartColumn
}

// DisplayDensities maps display density to cell padding.
var DisplayDensities = map[string]string{
	"XCOMPACT":     "2px",
	"COMPACT":      "4px",
	"NORMAL":       "6px",
	"COMFORTABLE":  "8px",
	"XCOMFORTABLE": "10px",
}

// FontSizes maps font size to pixels.
var FontSizes = map[string]string{
	"XSMALL": "9px",
	"SMALL":  "10px",
	"NORMAL": "11px",
	"LARGE":  "12px",
	"XLARGE": "14px",
}

// Ref references a named object such as a program.
type Ref struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Sorting sorts the table body by one column.
type Sorting struct {
	ID        string `json:"id" yaml:"id" validate:"required"`
	Direction string `json:"direction" yaml:"direction" validate:"oneof=ASC DESC"`
}

// ReportParams are the report table parameters of a favorite.
type ReportParams struct {
	ReportingPeriod        bool `json:"paramReportingPeriod"`
	OrganisationUnit       bool `json:"paramOrganisationUnit"`
	ParentOrganisationUnit bool `json:"paramParentOrganisationUnit"`
}

// Layout is a validated report layout.
type Layout struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`

	Columns []*dimension.Dimension `json:"columns,omitempty"`
	Rows    []*dimension.Dimension `json:"rows,omitempty"`
	Filters []*dimension.Dimension `json:"filters,omitempty"`

	Program      *Ref `json:"program,omitempty"`
	ProgramStage *Ref `json:"programStage,omitempty"`

	StartDate          string `json:"startDate,omitempty" validate:"omitempty,isodate"`
	EndDate            string `json:"endDate,omitempty" validate:"omitempty,isodate"`
	RelativePeriodDate string `json:"relativePeriodDate,omitempty" validate:"omitempty,isodate"`

	OutputType      string          `json:"outputType" validate:"oneof=EVENT ENROLLMENT TRACKED_ENTITY_INSTANCE"`
	DataType        string          `json:"dataType" validate:"oneof=AGGREGATED_VALUES EVENTS"`
	Type            string          `json:"type,omitempty"`
	Value           *Ref            `json:"value,omitempty"`
	AggregationType aggregates.Type `json:"aggregationType,omitempty" validate:"omitempty,oneof=COUNT AVERAGE SUM STDDEV VARIANCE MIN MAX"`
	Sorting         *Sorting        `json:"sorting,omitempty"`
	SortOrder       int             `json:"sortOrder" validate:"min=-1,max=1"`
	TopLimit        int             `json:"topLimit" validate:"min=0"`

	ShowColTotals          bool `json:"showColTotals"`
	ShowRowTotals          bool `json:"showRowTotals"`
	ShowColSubTotals       bool `json:"showColSubTotals"`
	ShowRowSubTotals       bool `json:"showRowSubTotals"`
	ShowDimensionLabels    bool `json:"showDimensionLabels"`
	ShowDataItemPrefix     bool `json:"showDataItemPrefix"`
	HideEmptyRows          bool `json:"hideEmptyRows"`
	HideNaData             bool `json:"hideNaData"`
	CollapseDataDimensions bool `json:"collapseDataDimensions"`
	CompletedOnly          bool `json:"completedOnly"`
	ShowHierarchy          bool `json:"showHierarchy"`

	DisplayDensity      string               `json:"displayDensity" validate:"oneof=XCOMPACT COMPACT NORMAL COMFORTABLE XCOMFORTABLE"`
	FontSize            string               `json:"fontSize" validate:"oneof=XSMALL SMALL NORMAL LARGE XLARGE"`
	DigitGroupSeparator aggregates.Separator `json:"digitGroupSeparator" validate:"oneof=SPACE COMMA NONE"`
	LegendSet           *dimension.LegendSet `json:"legendSet,omitempty"`

	ReportParams ReportParams `json:"reportParams"`

	// Chart options.
	ShowTrendLine     bool     `json:"showTrendLine,omitempty"`
	TargetLineValue   *float64 `json:"targetLineValue,omitempty"`
	TargetLineTitle   string   `json:"targetLineTitle,omitempty"`
	BaseLineValue     *float64 `json:"baseLineValue,omitempty"`
	BaseLineTitle     string   `json:"baseLineTitle,omitempty"`
	RangeAxisMinValue *float64 `json:"rangeAxisMinValue,omitempty"`
	RangeAxisMaxValue *float64 `json:"rangeAxisMaxValue,omitempty"`
	RangeAxisSteps    int      `json:"rangeAxisSteps,omitempty" validate:"min=0"`
	RangeAxisDecimals int      `json:"rangeAxisDecimals,omitempty" validate:"min=0,max=10"`
	RangeAxisTitle    string   `json:"rangeAxisTitle,omitempty"`
	DomainAxisTitle   string   `json:"domainAxisTitle,omitempty"`
	HideLegend        bool     `json:"hideLegend,omitempty"`
	HideTitle         bool     `json:"hideTitle,omitempty"`
}

// Dimensions returns columns, rows and filters in that order.
func (l *Layout) Dimensions() []*dimension.Dimension {
	dims := make([]*dimension.Dimension, 0, len(l.Columns)+len(l.Rows)+len(l.Filters))
	dims = append(dims, l.Columns...)
	dims = append(dims, l.Rows...)
	dims = append(dims, l.Filters...)
	return dims
}

// ObjectNames returns the dimension ids of all axes, columns first.
func (l *Layout) ObjectNames() []string {
	dims := l.Dimensions()
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Dimension
	}
	return names
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	c := *l
	c.Columns = dimension.CloneAll(l.Columns)
	c.Rows = dimension.CloneAll(l.Rows)
	c.Filters = dimension.CloneAll(l.Filters)
	c.Program = cloneRef(l.Program)
	c.ProgramStage = cloneRef(l.ProgramStage)
	c.Value = cloneRef(l.Value)
	if l.Sorting != nil {
		s := *l.Sorting
		c.Sorting = &s
	}
	if l.LegendSet != nil {
		c.LegendSet = (&dimension.Dimension{LegendSet: l.LegendSet}).Clone().LegendSet
	}
	c.TargetLineValue = cloneFloat(l.TargetLineValue)
	c.BaseLineValue = cloneFloat(l.BaseLineValue)
	c.RangeAxisMinValue = cloneFloat(l.RangeAxisMinValue)
	c.RangeAxisMaxValue = cloneFloat(l.RangeAxisMaxValue)
	return &c
}

func cloneRef(r *Ref) *Ref {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
