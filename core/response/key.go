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

// CompositeKey concatenates, in dimensionNames order, the id each dimension
// contributes. Dimensions for which idOf reports false are skipped. Every
// writer and reader of an id → value map builds its keys with this function,
// so the iteration order only has to be right once.
func CompositeKey(dimensionNames []string, idOf func(dimensionName string) (string, bool)) string {
	var b strings.Builder
	for _, name := range dimensionNames {
		if id, ok := idOf(name); ok {
			b.WriteString(id)
		}
	}
	return b.String()
}
