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

package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "1200px"
	chartHeight = "600px"
	stackName   = "total"
)

type renderer interface {
	Render(w io.Writer) error
}

// Render writes s as a standalone ECharts page.
func Render(w io.Writer, s *Series) error {
	var c renderer
	switch s.Kind {
	case Column, StackedColumn, Bar, StackedBar:
		c = barChart(s)
	case Line, Area:
		c = lineChart(s)
	case Pie:
		c = pieChart(s)
	case Radar:
		c = radarChart(s)
	default:
		return fmt.Errorf("cannot render chart type %v", s.Kind)
	}
	return c.Render(w)
}

func globalOpts(s *Series) []charts.GlobalOpts {
	o := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.Title, Width: chartWidth, Height: chartHeight}),
		charts.WithLegendOpts(opts.Legend{Show: !s.HideLegend, Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	}
	if !s.HideTitle {
		o = append(o, charts.WithTitleOpts(opts.Title{Title: s.Title, Left: "center"}))
	}
	return o
}

// axisOpts places the range axis options on the value axis, which is the
// horizontal one for bar charts.
func axisOpts(s *Series) []charts.GlobalOpts {
	label := &opts.AxisLabel{Show: true}
	if s.RangeAxis.Decimals > 0 {
		label.Formatter = opts.FuncOpts(fmt.Sprintf("function (v) { return v.toFixed(%d); }", s.RangeAxis.Decimals))
	}
	var lo, hi interface{}
	if s.RangeAxis.Min != nil {
		lo = *s.RangeAxis.Min
	}
	if s.RangeAxis.Max != nil {
		hi = *s.RangeAxis.Max
	}
	if s.Kind.Horizontal() {
		return []charts.GlobalOpts{
			charts.WithXAxisOpts(opts.XAxis{Name: s.RangeAxis.Title, Min: lo, Max: hi, SplitNumber: s.RangeAxis.Steps, AxisLabel: label}),
			charts.WithYAxisOpts(opts.YAxis{Name: s.DomainAxisTitle}),
		}
	}
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{Name: s.DomainAxisTitle}),
		charts.WithYAxisOpts(opts.YAxis{Name: s.RangeAxis.Title, Min: lo, Max: hi, SplitNumber: s.RangeAxis.Steps, AxisLabel: label}),
	}
}

func categoryNames(s *Series) []string {
	names := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		names[i] = c.Name
	}
	return names
}

// markLines draws the target and base lines on a series.
func markLines(s *Series) []charts.SeriesOpts {
	var o []charts.SeriesOpts
	for _, l := range []*SeriesLine{s.TargetLine, s.BaseLine} {
		if l == nil || len(l.Values) == 0 {
			continue
		}
		if s.Kind.Horizontal() {
			o = append(o, charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{Name: l.Name, XAxis: l.Values[0]}))
		} else {
			o = append(o, charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: l.Name, YAxis: l.Values[0]}))
		}
	}
	return o
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func barChart(s *Series) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOpts(s), axisOpts(s)...)...)
	bar.SetXAxis(categoryNames(s))

	stack := ""
	if s.Kind.Stacked() {
		stack = stackName
	}
	for i, col := range s.Columns {
		data := make([]opts.BarData, len(col.Values))
		for j, v := range col.Values {
			data[j] = opts.BarData{Name: s.Categories[j].Name, Value: v}
		}
		so := []charts.SeriesOpts{charts.WithBarChartOpts(opts.BarChart{Stack: stack})}
		if i == 0 {
			so = append(so, markLines(s)...)
		}
		bar.AddSeries(col.Name, data, so...)
	}

	if len(s.TrendLines) > 0 {
		line := charts.NewLine()
		line.SetXAxis(categoryNames(s))
		for _, l := range s.TrendLines {
			line.AddSeries(l.Name, lineData(l.Values))
		}
		bar.Overlap(line)
	}
	if s.Kind.Horizontal() {
		bar.XYReversal()
	}
	return bar
}

func lineChart(s *Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(globalOpts(s), axisOpts(s)...)...)
	line.SetXAxis(categoryNames(s))

	for i, col := range s.Columns {
		var so []charts.SeriesOpts
		if s.Kind == Area {
			so = append(so,
				charts.WithLineChartOpts(opts.LineChart{Stack: stackName}),
				charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.6}),
			)
		}
		if i == 0 {
			so = append(so, markLines(s)...)
		}
		line.AddSeries(col.Name, lineData(col.Values), so...)
	}
	for _, l := range s.TrendLines {
		line.AddSeries(l.Name, lineData(l.Values))
	}
	return line
}

// pieChart draws one slice per category, valued by the first column.
func pieChart(s *Series) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOpts(s)...)
	if len(s.Columns) == 0 {
		return pie
	}
	col := s.Columns[0]
	data := make([]opts.PieData, len(s.Categories))
	for i, c := range s.Categories {
		data[i] = opts.PieData{Name: c.Name, Value: col.Values[i]}
	}
	pie.AddSeries(col.Name, data, charts.WithLabelOpts(opts.Label{Show: true, Formatter: "{b}: {c}"}))
	return pie
}

// radarChart draws one axis per category and one area per column.
func radarChart(s *Series) *charts.Radar {
	radar := charts.NewRadar()
	top := float32(math.Ceil(s.Max() * 1.1))
	if top <= 0 {
		top = 1
	}
	indicators := make([]*opts.Indicator, len(s.Categories))
	for i, c := range s.Categories {
		indicators[i] = &opts.Indicator{Name: c.Name, Max: top}
	}
	radar.SetGlobalOptions(append(globalOpts(s),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators, Shape: "polygon"}),
	)...)
	for _, col := range s.Columns {
		radar.AddSeries(col.Name, []opts.RadarData{{Name: col.Name, Value: col.Values}},
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.2}),
		)
	}
	return radar
}
