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
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/google/eventpivot/core/dimension"
)

// Favorites name the total options differently from layouts.
var favoriteAliases = map[string]string{
	"showColTotals":    "colTotals",
	"showRowTotals":    "rowTotals",
	"showColSubTotals": "colSubTotals",
	"showRowSubTotals": "rowSubTotals",
}

var (
	itemsPath    = jp.MustParseString("$..items[*]")
	favoritePath = jp.MustParseString("$.eventReport")
)

// FromFavorite builds a layout from stored favorite JSON. A favorite wrapped
// in an "eventReport" envelope is unwrapped.
func FromFavorite(data []byte, flavor Flavor) (*Layout, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse favorite: %w", err)
	}
	if inner := favoritePath.First(v); inner != nil {
		v = inner
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, invalid("", "Favorite is not an object")
	}
	normalizeItemNames(raw)
	return Build(raw, flavor)
}

// FromYAML builds a layout from a YAML document with the same field names
// as a favorite.
func FromYAML(data []byte, flavor Flavor) (*Layout, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse layout yaml: %w", err)
	}
	normalizeItemNames(raw)
	return Build(raw, flavor)
}

// normalizeItemNames fills item names from displayName, which is what the
// metadata API returns for stored favorites.
func normalizeItemNames(raw map[string]any) {
	for _, it := range itemsPath.Get(raw) {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if _, has := item["name"]; !has {
			if dn, ok := item["displayName"].(string); ok {
				item["name"] = dn
			}
		}
	}
}

// ToFavorite converts the layout to the field names used by stored
// favorites.
func (l *Layout) ToFavorite() map[string]any {
	fav := map[string]any{
		"columns":                encodeDimensions(l.Columns),
		"rows":                   encodeDimensions(l.Rows),
		"filters":                encodeDimensions(l.Filters),
		"outputType":             l.OutputType,
		"dataType":               l.DataType,
		"showDimensionLabels":    l.ShowDimensionLabels,
		"showDataItemPrefix":     l.ShowDataItemPrefix,
		"hideEmptyRows":          l.HideEmptyRows,
		"hideNaData":             l.HideNaData,
		"collapseDataDimensions": l.CollapseDataDimensions,
		"completedOnly":          l.CompletedOnly,
		"showHierarchy":          l.ShowHierarchy,
		"displayDensity":         l.DisplayDensity,
		"fontSize":               l.FontSize,
		"digitGroupSeparator":    string(l.DigitGroupSeparator),
		"sortOrder":              int64(l.SortOrder),
		"topLimit":               int64(l.TopLimit),
		"reportParams": map[string]any{
			"paramReportingPeriod":        l.ReportParams.ReportingPeriod,
			"paramOrganisationUnit":       l.ReportParams.OrganisationUnit,
			"paramParentOrganisationUnit": l.ReportParams.ParentOrganisationUnit,
		},
	}
	fav[favoriteAliases["showColTotals"]] = l.ShowColTotals
	fav[favoriteAliases["showRowTotals"]] = l.ShowRowTotals
	fav[favoriteAliases["showColSubTotals"]] = l.ShowColSubTotals
	fav[favoriteAliases["showRowSubTotals"]] = l.ShowRowSubTotals

	setString(fav, "id", l.ID)
	setString(fav, "name", l.Name)
	setString(fav, "title", l.Title)
	setString(fav, "startDate", l.StartDate)
	setString(fav, "endDate", l.EndDate)
	setString(fav, "relativePeriodDate", l.RelativePeriodDate)
	if l.Type != "" {
		fav["type"] = ServerChartType(l.Type)
	}
	if l.Program != nil {
		fav["program"] = map[string]any{"id": l.Program.ID, "name": l.Program.Name}
	}
	if l.ProgramStage != nil {
		fav["programStage"] = map[string]any{"id": l.ProgramStage.ID, "name": l.ProgramStage.Name}
	}
	if l.Value != nil {
		fav["value"] = map[string]any{"id": l.Value.ID}
		setString(fav, "aggregationType", string(l.AggregationType))
	}
	if l.Sorting != nil {
		fav["sorting"] = map[string]any{"id": l.Sorting.ID, "direction": l.Sorting.Direction}
	}
	if l.LegendSet != nil {
		fav["legendSet"] = map[string]any{"id": l.LegendSet.ID}
	}
	return fav
}

// FavoriteJSON returns the favorite form as JSON with sorted keys.
func (l *Layout) FavoriteJSON() string {
	return oj.JSON(l.ToFavorite(), &oj.Options{Sort: true})
}

func setString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func encodeDimensions(dims []*dimension.Dimension) []any {
	result := make([]any, 0, len(dims))
	for _, d := range dims {
		m := map[string]any{"dimension": d.Dimension}
		if d.Items != nil {
			items := make([]any, len(d.Items))
			for i, item := range d.Items {
				im := map[string]any{"id": item.ID}
				setString(im, "name", item.Name)
				items[i] = im
			}
			m["items"] = items
		}
		setString(m, "filter", d.Filter)
		if d.LegendSet != nil {
			m["legendSet"] = map[string]any{"id": d.LegendSet.ID}
		}
		result = append(result, m)
	}
	return result
}
