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

package layout

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/aggregates"
	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/logger"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("isodate", validateISODate)
	})
	return validate
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// Build decodes a raw configuration, as produced by a UI or stored in a
// favorite, and normalizes it. Validation failures are returned as
// *ValidationError.
func Build(raw map[string]any, flavor Flavor) (*Layout, error) {
	if raw == nil {
		return nil, invalid("", "Layout configuration is not an object")
	}
	return Normalize(Decode(raw), flavor)
}

// Decode reads a raw configuration into a Layout, applying option defaults
// and favorite aliases. It does not validate.
func Decode(raw map[string]any) *Layout {
	l := &Layout{
		ID:    str(raw["id"]),
		Name:  str(raw["name"]),
		Title: str(raw["title"]),

		Columns: decodeDimensions(raw["columns"]),
		Rows:    decodeDimensions(raw["rows"]),
		Filters: decodeDimensions(raw["filters"]),

		Program:      decodeRef(raw["program"]),
		ProgramStage: decodeRef(raw["programStage"]),

		OutputType: strOr(raw["outputType"], OutputEvent),
		DataType:   strOr(raw["dataType"], DataAggregated),
		Type:       clientChartType(strings.TrimSpace(str(raw["type"]))),

		ShowColTotals:    boolAlias(raw, "colTotals", "showColTotals", true),
		ShowRowTotals:    boolAlias(raw, "rowTotals", "showRowTotals", true),
		ShowColSubTotals: boolAlias(raw, "colSubTotals", "showColSubTotals", true),
		ShowRowSubTotals: boolAlias(raw, "rowSubTotals", "showRowSubTotals", true),

		ShowDimensionLabels:    boolOr(raw["showDimensionLabels"], false),
		ShowDataItemPrefix:     boolOr(raw["showDataItemPrefix"], false),
		HideEmptyRows:          boolOr(raw["hideEmptyRows"], false),
		HideNaData:             boolOr(raw["hideNaData"], false),
		CollapseDataDimensions: boolOr(raw["collapseDataDimensions"], false),
		CompletedOnly:          boolOr(raw["completedOnly"], false),
		ShowHierarchy:          boolOr(raw["showHierarchy"], false),

		DisplayDensity:      strOr(raw["displayDensity"], StyleNormal),
		FontSize:            strOr(raw["fontSize"], StyleNormal),
		DigitGroupSeparator: aggregates.Separator(strOr(raw["digitGroupSeparator"], string(aggregates.SeparatorSpace))),

		SortOrder: intOr(raw["sortOrder"], 0),
		TopLimit:  intOr(raw["topLimit"], 0),

		ShowTrendLine:     boolOr(raw["showTrendLine"], false),
		TargetLineValue:   floatPtr(raw["targetLineValue"]),
		TargetLineTitle:   str(raw["targetLineTitle"]),
		BaseLineValue:     floatPtr(raw["baseLineValue"]),
		BaseLineTitle:     str(raw["baseLineTitle"]),
		RangeAxisMinValue: floatPtr(raw["rangeAxisMinValue"]),
		RangeAxisMaxValue: floatPtr(raw["rangeAxisMaxValue"]),
		RangeAxisSteps:    intOr(raw["rangeAxisSteps"], 0),
		RangeAxisDecimals: intOr(raw["rangeAxisDecimals"], 0),
		RangeAxisTitle:    str(raw["rangeAxisTitle"]),
		DomainAxisTitle:   str(raw["domainAxisTitle"]),
		HideLegend:        boolOr(raw["hideLegend"], false),
		HideTitle:         boolOr(raw["hideTitle"], false),
	}

	if ls, ok := raw["legendSet"].(map[string]any); ok && str(ls["id"]) != "" {
		l.LegendSet = &dimension.LegendSet{ID: str(ls["id"])}
	}

	switch v := raw["value"].(type) {
	case string:
		if v != "" {
			l.Value = &Ref{ID: v}
		}
	case map[string]any:
		l.Value = decodeRef(v)
	}
	if l.Value != nil {
		if t, ok := aggregates.ParseType(str(raw["aggregationType"])); ok {
			l.AggregationType = t
		}
	}

	if s, ok := raw["sorting"].(map[string]any); ok && s["id"] != nil {
		if dir, ok := s["direction"].(string); ok {
			l.Sorting = &Sorting{ID: str(s["id"]), Direction: strings.ToUpper(dir)}
		}
	}

	start, end := str(raw["startDate"]), str(raw["endDate"])
	if start != "" && end != "" {
		l.StartDate = truncateDate(start)
		l.EndDate = truncateDate(end)
	}
	if d := truncateDate(str(raw["relativePeriodDate"])); d != "" {
		if _, err := time.Parse(time.DateOnly, d); err == nil {
			l.RelativePeriodDate = d
		}
	}

	params, _ := raw["reportParams"].(map[string]any)
	l.ReportParams = ReportParams{
		ReportingPeriod:        boolOr(params["paramReportingPeriod"], boolOr(raw["reportingPeriod"], false)),
		OrganisationUnit:       boolOr(params["paramOrganisationUnit"], boolOr(raw["organisationUnit"], false)),
		ParentOrganisationUnit: boolOr(params["paramParentOrganisationUnit"], boolOr(raw["parentOrganisationUnit"], false)),
	}
	return l
}

// Normalize validates a decoded layout and returns a normalized copy. The
// input is never modified.
func Normalize(in *Layout, flavor Flavor) (*Layout, error) {
	log := logger.GetLogger("layout")
	l := in.Clone()
	l.Columns = cleanDimensions(l.Columns)
	l.Rows = cleanDimensions(l.Rows)
	l.Filters = cleanDimensions(l.Filters)

	if flavor == Chart {
		if len(l.Columns) == 0 {
			return nil, invalid("columns", "No series items selected")
		}
		if len(l.Rows) == 0 {
			return nil, invalid("rows", "No category items selected")
		}
		if len(l.Columns) > 1 {
			l.Filters = append(l.Filters, l.Columns[1:]...)
			l.Columns = l.Columns[:1]
		}
		if len(l.Rows) > 1 {
			l.Filters = append(l.Filters, l.Rows[1:]...)
			l.Rows = l.Rows[:1]
		}
	} else if len(l.Columns) == 0 && len(l.Rows) == 0 {
		return nil, invalid("columns", "At least one dimension must be specified as row or column")
	}

	hasPeriod := false
	for _, name := range l.ObjectNames() {
		if name == dimension.Period {
			hasPeriod = true
			break
		}
	}
	if !hasPeriod && (l.StartDate == "" || l.EndDate == "") {
		return nil, invalid("pe", "At least one fixed period, one relative period or start/end dates must be specified")
	}

	if err := validateSpecialCases(l); err != nil {
		return nil, err
	}

	if l.Value == nil {
		l.AggregationType = ""
	}
	if err := getValidator().Struct(l); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, invalid(fe.Field(), "Invalid value %v for %s", fe.Value(), fe.Field())
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"flavor":  flavor.String(),
		"columns": len(l.Columns),
		"rows":    len(l.Rows),
		"filters": len(l.Filters),
	}).Debug("layout normalized")
	return l, nil
}

func validateSpecialCases(l *Layout) error {
	for _, f := range l.Filters {
		switch f.Dimension {
		case dimension.Indicator:
			return invalid("filters", "Indicators cannot be specified as filter")
		case dimension.Category:
			return invalid("filters", "Categories cannot be specified as filter")
		case dimension.DataSet:
			return invalid("filters", "Data sets cannot be specified as filter")
		}
	}

	present := make(map[string]bool)
	for _, name := range l.ObjectNames() {
		present[name] = true
	}
	if !present[dimension.Operand] {
		return nil
	}
	switch {
	case present[dimension.Indicator]:
		return invalid("", "Indicators and detailed data elements cannot be specified together")
	case present[dimension.DataElement]:
		return invalid("", "Detailed data elements and totals cannot be specified together")
	case present[dimension.DataSet]:
		return invalid("", "Data sets and detailed data elements cannot be specified together")
	case present[dimension.Category]:
		return invalid("", "Categories and detailed data elements cannot be specified together")
	}
	return nil
}

// cleanDimensions drops dimensions without an id, and items without an id
// or with a repeated id.
func cleanDimensions(dims []*dimension.Dimension) []*dimension.Dimension {
	var result []*dimension.Dimension
	for _, d := range dims {
		if d == nil || strings.TrimSpace(d.Dimension) == "" {
			continue
		}
		if d.Items != nil {
			items := make([]dimension.Item, 0, len(d.Items))
			seen := make(map[string]bool, len(d.Items))
			for _, item := range d.Items {
				if item.ID == "" || seen[item.ID] {
					continue
				}
				seen[item.ID] = true
				items = append(items, item)
			}
			d.Items = items
		}
		result = append(result, d)
	}
	return result
}

func decodeDimensions(v any) []*dimension.Dimension {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var dims []*dimension.Dimension
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, ok := m["dimension"].(string)
		if !ok || name == "" {
			continue
		}
		d := &dimension.Dimension{Dimension: name, Filter: str(m["filter"])}
		if items, ok := m["items"].([]any); ok {
			d.Items = make([]dimension.Item, 0, len(items))
			for _, it := range items {
				im, ok := it.(map[string]any)
				if !ok {
					continue
				}
				d.Items = append(d.Items, dimension.Item{
					ID:         str(im["id"]),
					Name:       str(im["name"]),
					StartValue: floatPtr(im["startValue"]),
					EndValue:   floatPtr(im["endValue"]),
				})
			}
		}
		if ls, ok := m["legendSet"].(map[string]any); ok && str(ls["id"]) != "" {
			d.LegendSet = &dimension.LegendSet{ID: str(ls["id"])}
		}
		dims = append(dims, d)
	}
	return dims
}

func decodeRef(v any) *Ref {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	id := str(m["id"])
	if id == "" {
		return nil
	}
	return &Ref{ID: id, Name: str(m["name"])}
}

func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func boolAlias(raw map[string]any, alias, name string, def bool) bool {
	if b, ok := raw[alias].(bool); ok {
		return b
	}
	return boolOr(raw[name], def)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func boolOr(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func intOr(v any, def int) int {
	if n, ok := number(v); ok {
		return int(n)
	}
	return def
}

func floatPtr(v any) *float64 {
	if n, ok := number(v); ok {
		return &n
	}
	return nil
}
