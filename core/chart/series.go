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
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/report"
	"github.com/google/eventpivot/logger"
)

var log = logger.GetLogger("chart")

// ErrNoSeries is returned for results without a series and a category axis.
var ErrNoSeries = errors.New("chart needs a series and a category dimension")

// SeriesColumn is one series of the chart: a column dimension item.
type SeriesColumn struct {
	// FailSafeID is a generated id safe to use as a field or element name.
	FailSafeID string
	ID         string
	Name       string
	Values     []float64
	// Empty marks categories without a response value.
	Empty []bool
}

// Category is a row dimension item.
type Category struct {
	ID   string
	Name string
}

// SeriesLine is a computed line drawn over the chart.
type SeriesLine struct {
	Name   string
	Values []float64
}

// RangeAxis holds the value axis options.
type RangeAxis struct {
	Min      *float64
	Max      *float64
	Steps    int
	Decimals int
	Title    string
}

// Series is the data of a chart, categories in display order.
type Series struct {
	Kind       Kind
	Title      string
	Categories []Category
	Columns    []SeriesColumn
	// Totals sums the columns per category. Set for stacked kinds only.
	Totals     []float64
	TrendLines []SeriesLine
	TargetLine *SeriesLine
	BaseLine   *SeriesLine

	RangeAxis       RangeAxis
	DomainAxisTitle string
	HideLegend      bool
	HideTitle       bool
}

type record struct {
	category Category
	values   []float64
	empty    []bool
	total    float64
}

// BuildSeries reads the chart series from a render result. Columns are the
// items of the column dimension, categories those of the row dimension.
func BuildSeries(res *report.Result) (*Series, error) {
	if res == nil || res.Query || res.ColAxis == nil || res.RowAxis == nil {
		return nil, ErrNoSeries
	}
	xl, xr := res.XLayout, res.XResponse
	kind, err := ParseKind(xl.Type)
	if err != nil {
		return nil, err
	}

	s := &Series{
		Kind:            kind,
		Title:           chartTitle(res),
		DomainAxisTitle: xl.DomainAxisTitle,
		HideLegend:      xl.HideLegend,
		HideTitle:       xl.HideTitle,
		RangeAxis: RangeAxis{
			Min:      xl.RangeAxisMinValue,
			Max:      xl.RangeAxisMaxValue,
			Steps:    xl.RangeAxisSteps,
			Decimals: xl.RangeAxisDecimals,
			Title:    xl.RangeAxisTitle,
		},
	}

	cols, rows := res.ColAxis, res.RowAxis
	for c, id := range cols.IDs {
		s.Columns = append(s.Columns, SeriesColumn{
			FailSafeID: failSafeID(),
			ID:         id,
			Name:       xr.Name(cols.Cells[cols.Dims-1][c].ID),
		})
	}

	// Area charts cannot draw gaps.
	hideEmpty := xl.HideEmptyRows || kind == Area
	var records []*record
	for r, id := range rows.IDs {
		rec := &record{
			category: Category{ID: id, Name: xr.Name(rows.Cells[rows.Dims-1][r].ID)},
			values:   make([]float64, len(s.Columns)),
			empty:    make([]bool, len(s.Columns)),
		}
		allEmpty := true
		for c := range s.Columns {
			raw, ok := xr.Value(func(name string) (string, bool) {
				if id, ok := cols.IDAt(name, c); ok {
					return id, true
				}
				return rows.IDAt(name, r)
			})
			if !ok || raw == "" {
				rec.empty[c] = true
				continue
			}
			allEmpty = false
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				rec.values[c] = v
			}
		}
		if allEmpty && hideEmpty {
			continue
		}
		for _, v := range rec.values {
			rec.total += v
		}
		records = append(records, rec)
	}

	if xl.SortOrder != 0 {
		sortRecords(records, xl.SortOrder, kind.Stacked())
	}

	for _, rec := range records {
		s.Categories = append(s.Categories, rec.category)
		for c := range s.Columns {
			s.Columns[c].Values = append(s.Columns[c].Values, rec.values[c])
			s.Columns[c].Empty = append(s.Columns[c].Empty, rec.empty[c])
		}
		if kind.Stacked() {
			s.Totals = append(s.Totals, rec.total)
		}
	}

	if xl.ShowTrendLine {
		if kind.Stacked() {
			s.TrendLines = append(s.TrendLines, SeriesLine{Name: "Trend (Total)", Values: trend(s.Totals)})
		} else {
			for _, col := range s.Columns {
				s.TrendLines = append(s.TrendLines, SeriesLine{Name: "Trend (" + col.Name + ")", Values: trend(col.Values)})
			}
		}
	}
	if v := xl.TargetLineValue; v != nil {
		s.TargetLine = constantLine(orDefault(xl.TargetLineTitle, "Target"), *v, len(records))
	}
	if v := xl.BaseLineValue; v != nil {
		s.BaseLine = constantLine(orDefault(xl.BaseLineTitle, "Base"), *v, len(records))
	}

	log.WithFields(logrus.Fields{
		"kind":       kind.String(),
		"columns":    len(s.Columns),
		"categories": len(s.Categories),
	}).Debug("built chart series")
	return s, nil
}

// failSafeID returns an id that starts with a letter and has no dashes,
// unlike item ids which may start with a digit or carry a separator.
func failSafeID() string {
	return "s" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func chartTitle(res *report.Result) string {
	xl := res.XLayout
	if xl.Title != "" {
		return xl.Title
	}
	if xl.Name != "" {
		return xl.Name
	}
	var parts []string
	for _, d := range xl.FilterDimensions {
		var names []string
		for _, item := range d.Items {
			name := item.Name
			if name == "" {
				name = res.XResponse.Name(item.ID)
			}
			names = append(names, name)
		}
		if len(names) > 0 {
			parts = append(parts, strings.Join(names, ", "))
		}
	}
	return strings.Join(parts, " - ")
}

// sortRecords orders categories by the first column, or the total of a
// stacked chart. -1 sorts ascending, 1 descending; categories without a
// value go last.
func sortRecords(records []*record, order int, stacked bool) {
	key := func(r *record) (float64, bool) {
		if stacked {
			return r.total, true
		}
		if len(r.values) == 0 || r.empty[0] {
			return 0, false
		}
		return r.values[0], true
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, aok := key(records[i])
		b, bok := key(records[j])
		switch {
		case !aok || !bok:
			return aok && !bok
		case order < 0:
			return a < b
		default:
			return a > b
		}
	})
}

// trend fits a least squares line through the values by index and returns
// its predictions rounded to one decimal.
func trend(values []float64) []float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope, intercept := 0.0, 0.0
	if n > 0 {
		intercept = sumY / n
	}
	if d := n*sumXX - sumX*sumX; n > 1 && d != 0 {
		slope = (n*sumXY - sumX*sumY) / d
		intercept = (sumY - slope*sumX) / n
	}
	out := make([]float64, len(values))
	for i := range values {
		out[i] = math.Round((intercept+slope*float64(i))*10) / 10
	}
	return out
}

func constantLine(name string, v float64, n int) *SeriesLine {
	l := &SeriesLine{Name: name, Values: make([]float64, n)}
	for i := range l.Values {
		l.Values[i] = v
	}
	return l
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Max returns the largest value drawn on the value axis.
func (s *Series) Max() float64 {
	m := 0.0
	for _, col := range s.Columns {
		for _, v := range col.Values {
			m = math.Max(m, v)
		}
	}
	for _, v := range s.Totals {
		m = math.Max(m, v)
	}
	for _, l := range s.TrendLines {
		for _, v := range l.Values {
			m = math.Max(m, v)
		}
	}
	return m
}
