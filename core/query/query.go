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

// Package query maps report URLs to layout configurations and back, so a
// rendered table can link to variations of itself.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/safehtml"
)

// Axis names a layout axis.
type Axis string

const (
	Columns Axis = "columns"
	Rows    Axis = "rows"
	Filters Axis = "filters"
)

// Axes lists the axes in URL order.
var Axes = []Axis{Columns, Rows, Filters}

// Parameters that are not layout options.
const (
	paramSource    = "response"
	filterPrefix   = "filter:"
	itemSeparator  = ";"
	dimSeparator   = ","
	itemsDelimiter = ":"
)

// Dimension is a dimension as written in a URL: `pe:THIS_YEAR;LAST_YEAR`.
// The semicolon must arrive escaped, as %3B.
type Dimension struct {
	Dimension string
	Items     []string
	// Filter is the dimension filter, e.g. GT:5, carried as filter:<dim>.
	Filter string
}

// Query represents the parsed state of a report URL
type Query struct {
	// Base path (e.g., "/table")
	Path string
	// Source names the stored response to render.
	Source string

	Columns []Dimension
	Rows    []Dimension
	Filters []Dimension

	// Options holds the remaining parameters, e.g. hideEmptyRows=true.
	Options map[string]string
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	q := &Query{
		Path:    u.Path,
		Options: make(map[string]string),
	}
	values := u.Query()
	q.Source = values.Get(paramSource)
	q.Columns = parseDimensions(values.Get(string(Columns)))
	q.Rows = parseDimensions(values.Get(string(Rows)))
	q.Filters = parseDimensions(values.Get(string(Filters)))

	filters := make(map[string]string)
	for key, vals := range values {
		switch {
		case strings.HasPrefix(key, filterPrefix) && len(vals) > 0:
			filters[strings.TrimPrefix(key, filterPrefix)] = vals[0]
		case key == paramSource || key == string(Columns) || key == string(Rows) || key == string(Filters):
		case len(vals) > 0:
			q.Options[key] = vals[0]
		}
	}
	for _, a := range Axes {
		dims := q.axis(a)
		for i := range *dims {
			(*dims)[i].Filter = filters[(*dims)[i].Dimension]
		}
	}
	return q
}

// parseDimensions parses `dim:item;item,dim` lists.
func parseDimensions(s string) []Dimension {
	var dims []Dimension
	for _, part := range strings.Split(s, dimSeparator) {
		name, items, _ := strings.Cut(part, itemsDelimiter)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d := Dimension{Dimension: name}
		for _, id := range strings.Split(items, itemSeparator) {
			if id = strings.TrimSpace(id); id != "" {
				d.Items = append(d.Items, id)
			}
		}
		dims = append(dims, d)
	}
	return dims
}

func (q *Query) axis(a Axis) *[]Dimension {
	switch a {
	case Rows:
		return &q.Rows
	case Filters:
		return &q.Filters
	default:
		return &q.Columns
	}
}

// Clone creates a deep copy of the Query
func (q *Query) Clone() *Query {
	clone := &Query{
		Path:    q.Path,
		Source:  q.Source,
		Columns: cloneDimensions(q.Columns),
		Rows:    cloneDimensions(q.Rows),
		Filters: cloneDimensions(q.Filters),
		Options: make(map[string]string, len(q.Options)),
	}
	for k, v := range q.Options {
		clone.Options[k] = v
	}
	return clone
}

func cloneDimensions(dims []Dimension) []Dimension {
	if dims == nil {
		return nil
	}
	out := make([]Dimension, len(dims))
	for i, d := range dims {
		out[i] = d
		out[i].Items = append([]string(nil), d.Items...)
	}
	return out
}

// Raw returns the layout configuration the query describes, ready for
// layout.Build.
func (q *Query) Raw() map[string]any {
	raw := make(map[string]any)
	for _, a := range Axes {
		dims := *q.axis(a)
		if len(dims) == 0 {
			continue
		}
		list := make([]any, len(dims))
		for i, d := range dims {
			items := make([]any, len(d.Items))
			for j, id := range d.Items {
				items[j] = map[string]any{"id": id}
			}
			m := map[string]any{"dimension": d.Dimension, "items": items}
			if d.Filter != "" {
				m["filter"] = d.Filter
			}
			list[i] = m
		}
		raw[string(a)] = list
	}
	for k, v := range q.Options {
		raw[k] = optionValue(k, v)
	}
	return raw
}

func optionValue(key, v string) any {
	switch key {
	case "value", "program", "programStage", "legendSet":
		return map[string]any{"id": v}
	case "sorting":
		id, dir, ok := strings.Cut(v, itemsDelimiter)
		if !ok {
			dir = "ASC"
		}
		return map[string]any{"id": id, "direction": dir}
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// ToURL converts the Query back to a URL string
func (q *Query) ToURL() string {
	u := &url.URL{Path: q.Path}
	values := url.Values{}
	if q.Source != "" {
		values.Set(paramSource, q.Source)
	}
	for _, a := range Axes {
		dims := *q.axis(a)
		if len(dims) == 0 {
			continue
		}
		parts := make([]string, len(dims))
		for i, d := range dims {
			parts[i] = d.Dimension
			if len(d.Items) > 0 {
				parts[i] += itemsDelimiter + strings.Join(d.Items, itemSeparator)
			}
			if d.Filter != "" {
				values.Set(filterPrefix+d.Dimension, d.Filter)
			}
		}
		values.Set(string(a), strings.Join(parts, dimSeparator))
	}
	for k, v := range q.Options {
		if v != "" {
			values.Set(k, v)
		}
	}
	u.RawQuery = values.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (q *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(q.ToURL())
}

// AxisOf returns the axis holding the dimension.
func (q *Query) AxisOf(dimension string) (Axis, bool) {
	for _, a := range Axes {
		for _, d := range *q.axis(a) {
			if d.Dimension == dimension {
				return a, true
			}
		}
	}
	return "", false
}

// WithDimensionMoved returns a URL with the dimension moved to the end of
// another axis.
func (q *Query) WithDimensionMoved(dimension string, to Axis) safehtml.URL {
	from, ok := q.AxisOf(dimension)
	if !ok || from == to {
		return q.ToSafeURL()
	}
	next := q.Clone()
	src := next.axis(from)
	var moved Dimension
	kept := make([]Dimension, 0, len(*src))
	for _, d := range *src {
		if d.Dimension == dimension {
			moved = d
			continue
		}
		kept = append(kept, d)
	}
	*src = kept
	dst := next.axis(to)
	*dst = append(*dst, moved)
	return next.ToSafeURL()
}

// WithAxesSwapped returns a URL with columns and rows swapped.
func (q *Query) WithAxesSwapped() safehtml.URL {
	next := q.Clone()
	next.Columns, next.Rows = next.Rows, next.Columns
	return next.ToSafeURL()
}

// WithOption returns a URL with an option set. An empty value removes it.
func (q *Query) WithOption(key, value string) safehtml.URL {
	next := q.Clone()
	if value == "" {
		delete(next.Options, key)
	} else {
		next.Options[key] = value
	}
	return next.ToSafeURL()
}

// WithOptionToggled returns a URL with a boolean option flipped.
func (q *Query) WithOptionToggled(key string) safehtml.URL {
	on, _ := strconv.ParseBool(q.Options[key])
	return q.WithOption(key, strconv.FormatBool(!on))
}

// Sorting returns the sort column and direction, if any.
func (q *Query) Sorting() (id, direction string, ok bool) {
	v, ok := q.Options["sorting"]
	if !ok || v == "" {
		return "", "", false
	}
	id, direction, found := strings.Cut(v, itemsDelimiter)
	if !found {
		direction = "ASC"
	}
	return id, direction, true
}

// WithSortToggled returns a URL sorting by id: ascending first, then
// descending, then unsorted.
func (q *Query) WithSortToggled(id string) safehtml.URL {
	cur, dir, ok := q.Sorting()
	switch {
	case !ok || cur != id:
		return q.WithOption("sorting", id+itemsDelimiter+"ASC")
	case dir == "ASC":
		return q.WithOption("sorting", id+itemsDelimiter+"DESC")
	default:
		return q.WithOption("sorting", "")
	}
}

// OptionKeys returns the option names in sorted order.
func (q *Query) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
