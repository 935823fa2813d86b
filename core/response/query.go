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
	"strconv"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/xlayout"
	"github.com/google/eventpivot/logger"
)

// queryHeaderNames maps layout dimension names to their query header names.
var queryHeaderNames = map[string]string{
	dimension.Period:           "eventdate",
	dimension.OrganisationUnit: "ouname",
}

// QueryHeaderName returns the events query header name of a dimension.
func QueryHeaderName(dimensionName string) string {
	if n, ok := queryHeaderNames[dimensionName]; ok {
		return n
	}
	return dimensionName
}

// ExtendQuery extends an events query response: one row per event, no
// value column. Event dates are cut to the day and numbers are normalized.
func ExtendQuery(xl *xlayout.ExtendedLayout, resp *Response) (*Extended, error) {
	if len(resp.Rows) == 0 {
		return nil, ErrEmptyResult
	}
	r := resp.Clone()
	x := &Extended{
		Response:      r,
		NameHeaderMap: make(map[string]*Header, len(r.Headers)),
		IDValueMap:    map[string]string{},
	}

	wanted := make(map[string]bool, len(xl.AxisDimensionNames))
	for _, name := range xl.AxisDimensionNames {
		wanted[QueryHeaderName(name)] = true
	}

	for i, h := range r.Headers {
		h.Index = i
		h.IDs = nil
		x.NameHeaderMap[h.Name] = h
		if wanted[h.Name] {
			x.DimensionHeaders = append(x.DimensionHeaders, h)
		}
		for _, row := range r.Rows {
			row[i] = queryCell(h, row[i])
		}
		h.Size = len(r.Rows)
	}

	logger.GetLogger("response").WithField("rows", len(r.Rows)).Debug("query response extended")
	return x, nil
}

func queryCell(h *Header, cell string) string {
	switch {
	case h.Name == "eventdate" && len(cell) > 10:
		return cell[:10]
	case h.Type == TypeDouble:
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return cell
}
