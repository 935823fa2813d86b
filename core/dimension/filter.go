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

package dimension

import "strings"

// Filter operators understood by the item filter syntax.
const (
	OpIn   = "IN"
	OpEq   = "EQ"
	OpGt   = "GT"
	OpGe   = "GE"
	OpLt   = "LT"
	OpLe   = "LE"
	OpNe   = "NE"
	OpLike = "LIKE"
)

// Filter is a parsed "OPERATOR:value[;value...]" item filter.
type Filter struct {
	Operator string
	Values   []string
}

// ParseFilter parses an item filter. An empty or malformed string yields a
// zero Filter.
func ParseFilter(s string) Filter {
	op, rest, ok := strings.Cut(s, ":")
	if !ok || op == "" {
		return Filter{}
	}
	f := Filter{Operator: strings.ToUpper(op)}
	if rest != "" {
		f.Values = strings.Split(rest, ";")
	}
	return f
}

// IsIn reports whether the filter lists explicit options.
func (f Filter) IsIn() bool {
	return f.Operator == OpIn && len(f.Values) > 0
}

// String formats the filter back to its wire form.
func (f Filter) String() string {
	if f.Operator == "" {
		return ""
	}
	return f.Operator + ":" + strings.Join(f.Values, ";")
}
