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
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/ordered"
	"github.com/google/eventpivot/core/xlayout"
	"github.com/google/eventpivot/logger"
)

// BooleanNames are the display names of boolean values.
var BooleanNames = map[string]string{
	"1":     "Yes",
	"0":     "No",
	"true":  "Yes",
	"false": "No",
}

// Extended is a response extended for one render.
type Extended struct {
	*Response

	// NameHeaderMap maps header names to headers.
	NameHeaderMap map[string]*Header
	// IDValueMap maps composite keys to row values.
	IDValueMap map[string]string
	// DimensionHeaders lists the headers of layout dimensions. Only set by
	// ExtendQuery.
	DimensionHeaders []*Header

	// axisDimensionNames is the key order of IDValueMap.
	axisDimensionNames []string
}

// Extend extends resp for xl. resp is not modified.
func Extend(xl *xlayout.ExtendedLayout, resp *Response) (*Extended, error) {
	log := logger.GetLogger("response")
	if len(resp.Rows) == 0 {
		return nil, ErrEmptyResult
	}

	r := resp.Clone()
	md := &r.MetaData
	md.Names[dimension.EmptyID] = dimension.EmptyID
	if md.BooleanNames == nil {
		md.BooleanNames = map[string]string{}
	}
	if md.OptionNames == nil {
		md.OptionNames = map[string]string{}
	}

	x := &Extended{
		Response:           r,
		NameHeaderMap:      make(map[string]*Header, len(r.Headers)),
		IDValueMap:         make(map[string]string, len(r.Rows)),
		axisDimensionNames: append([]string(nil), xl.AxisDimensionNames...),
	}
	coll := collate.New(language.Und, collate.IgnoreCase)

	for i, h := range r.Headers {
		h.IDs = nil
		if h.Meta {
			switch {
			case h.Type == TypeDouble:
				h.IDs = x.numericIDs(xl, h, i)
			case h.Type == TypeBoolean:
				h.IDs = x.booleanIDs(xl, h, i)
			case h.Name == dimension.Period:
				h.IDs = x.periodIDs(xl, h, i)
			default:
				h.IDs = x.namedIDs(xl, h, i, coll)
			}
		}
		h.IDs = ordered.Unique(h.IDs)
		h.Size = len(h.IDs)
		h.Index = i
		x.NameHeaderMap[h.Name] = h
	}

	valueHeader, ok := x.NameHeaderMap[dimension.Value]
	if !ok {
		return nil, ErrNoValueHeader
	}
	for _, row := range r.Rows {
		key := x.Key(func(name string) (string, bool) {
			return row[x.NameHeaderMap[name].Index], true
		})
		x.IDValueMap[key] = row[valueHeader.Index]
	}

	log.WithFields(logrus.Fields{
		"table_uuid": xl.TableUUID,
		"rows":       len(r.Rows),
		"values":     len(x.IDValueMap),
	}).Debug("response extended")
	return x, nil
}

// Key builds an IDValueMap key. idOf supplies the id of a dimension; only
// dimensions present as response headers contribute, in axis order.
func (x *Extended) Key(idOf func(dimensionName string) (string, bool)) string {
	return CompositeKey(x.axisDimensionNames, func(name string) (string, bool) {
		if _, ok := x.NameHeaderMap[name]; !ok {
			return "", false
		}
		return idOf(name)
	})
}

// Value looks up the value for the given per-dimension ids.
func (x *Extended) Value(idOf func(dimensionName string) (string, bool)) (string, bool) {
	v, ok := x.IDValueMap[x.Key(idOf)]
	return v, ok
}

// Name returns the display name of an id: boolean, option, server name,
// then the id itself.
func (x *Extended) Name(id string) string {
	md := x.MetaData
	if n, ok := md.BooleanNames[id]; ok && n != "" {
		return n
	}
	if n, ok := md.OptionNames[id]; ok && n != "" {
		return n
	}
	if n, ok := md.Names[id]; ok && n != "" {
		return n
	}
	return id
}

// cell returns the raw cell of row j and whether it should be skipped.
func (x *Extended) cell(xl *xlayout.ExtendedLayout, j, i int) (string, bool) {
	id := x.Rows[j][i]
	if id == "" {
		id = dimension.EmptyID
	}
	return id, xl.HideNaData && id == dimension.EmptyID
}

func (x *Extended) isHierarchy(xl *xlayout.ExtendedLayout, id string) bool {
	if !xl.ShowHierarchy || x.MetaData.OuHierarchy == nil {
		return false
	}
	_, ok := x.MetaData.OuHierarchy[id]
	return ok
}

// displayName resolves the name of a raw id for a composite id.
func (x *Extended) displayName(xl *xlayout.ExtendedLayout, id string) string {
	md := x.MetaData
	if x.isHierarchy(xl, id) {
		return HierarchyName(md.OuHierarchy, md.Names, id)
	}
	for _, m := range []map[string]string{md.BooleanNames, md.OptionNames, md.Names} {
		if n, ok := m[id]; ok && n != "" {
			return n
		}
	}
	return id
}

type sortable struct {
	id  string
	key string
	num float64
}

func (x *Extended) numericIDs(xl *xlayout.ExtendedLayout, h *Header, i int) []string {
	var objects []sortable
	for j := range x.Rows {
		id, skip := x.cell(xl, j, i)
		if skip {
			continue
		}
		fullID := h.Name + id
		num, ok := parseNumber(id)
		if ok {
			x.MetaData.Names[fullID] = strconv.FormatFloat(num, 'f', -1, 64)
		} else {
			num = maxSortValue
			x.MetaData.Names[fullID] = nameOf(x.MetaData.Names, id)
		}
		x.Rows[j][i] = fullID
		objects = append(objects, sortable{id: fullID, num: num})
	}
	sort.SliceStable(objects, func(a, b int) bool { return objects[a].num < objects[b].num })
	return pluck(objects)
}

func (x *Extended) booleanIDs(xl *xlayout.ExtendedLayout, h *Header, i int) []string {
	var objects []sortable
	for j := range x.Rows {
		id, skip := x.cell(xl, j, i)
		if skip {
			continue
		}
		fullID := h.Name + id
		x.MetaData.Names[fullID] = x.hierarchyOrName(xl, id, fullID)
		x.Rows[j][i] = fullID
		if name, ok := BooleanNames[id]; ok {
			x.MetaData.BooleanNames[id] = name
			x.MetaData.BooleanNames[fullID] = name
		}
		objects = append(objects, sortable{id: fullID, key: id, num: booleanRank(id)})
	}
	sort.SliceStable(objects, func(a, b int) bool { return objects[a].num < objects[b].num })
	return pluck(objects)
}

func (x *Extended) periodIDs(xl *xlayout.ExtendedLayout, h *Header, i int) []string {
	ids := x.MetaData.Dimensions[h.Name]
	if len(ids) == 0 {
		for j := range x.Rows {
			if id, skip := x.cell(xl, j, i); !skip {
				ids = append(ids, id)
			}
		}
	}
	ids = append([]string(nil), ids...)

	selected := xl.IDs(dimension.Period)
	if dimension.AnyRelative(selected) {
		return ids
	}
	return ordered.SortByReference(ids, selected)
}

func (x *Extended) namedIDs(xl *xlayout.ExtendedLayout, h *Header, i int, coll *collate.Collator) []string {
	var objects []sortable
	for j := range x.Rows {
		id, skip := x.cell(xl, j, i)
		if skip {
			continue
		}
		fullID := h.Name + id
		name := x.hierarchyOrName(xl, id, fullID)
		x.MetaData.Names[fullID] = name
		x.Rows[j][i] = fullID
		objects = append(objects, sortable{id: fullID, key: name})
	}
	if !h.HasOptionSet() {
		sort.SliceStable(objects, func(a, b int) bool {
			return coll.CompareString(objects[a].key, objects[b].key) < 0
		})
	}
	return pluck(objects)
}

func (x *Extended) hierarchyOrName(xl *xlayout.ExtendedLayout, id, fullID string) string {
	if x.isHierarchy(xl, id) {
		x.MetaData.OuHierarchy[fullID] = x.MetaData.OuHierarchy[id]
	}
	return x.displayName(xl, id)
}

const maxSortValue = 1.7976931348623157e308

func booleanRank(id string) float64 {
	switch strings.ToLower(id) {
	case "0", "false":
		return 0
	case "1", "true":
		return 1
	case dimension.EmptyID:
		return maxSortValue
	default:
		if v, ok := parseNumber(id); ok {
			return v
		}
		return maxSortValue / 2
	}
}

// parseNumber parses a numeric id. NaN and infinities sort like text.
func parseNumber(id string) (float64, bool) {
	v, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func pluck(objects []sortable) []string {
	ids := make([]string, len(objects))
	for i, o := range objects {
		ids[i] = o.id
	}
	return ids
}
