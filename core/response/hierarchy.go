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

import "strings"

// HierarchyName returns the ancestor path name of an org unit, e.g.
// "Sierra Leone / Bo / Badjia". Ancestors come from the "/"-separated
// ouHierarchy graph; ids without at least two ancestors use their own name.
func HierarchyName(ouHierarchy, names map[string]string, id string) string {
	var ancestors []string
	for _, a := range strings.Split(ouHierarchy[id], "/") {
		if a != "" {
			ancestors = append(ancestors, a)
		}
	}
	own := nameOf(names, id)
	if len(ancestors) < 2 {
		return own
	}
	parts := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		parts = append(parts, nameOf(names, a))
	}
	parts = append(parts, own)
	return strings.Join(parts, " / ")
}

func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}
