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

package datasources

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/optionset"
)

// MetadataSuffix ends the name of metadata files, before the format
// extension: metadata.meta.yaml.
const MetadataSuffix = ".meta"

// LayoutSuffix ends the name of stored layout files: anc.layout.json.
const LayoutSuffix = ".layout"

// DynamicDimension is a dimension discovered from metadata, such as an
// organisation unit group set.
type DynamicDimension struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Metadata is the content of a metadata file. JSON files parse as YAML.
type Metadata struct {
	OptionSets        []*optionset.OptionSet `json:"optionSets" yaml:"optionSets"`
	LegendSets        []*dimension.LegendSet `json:"legendSets" yaml:"legendSets"`
	DynamicDimensions []DynamicDimension     `json:"dynamicDimensions" yaml:"dynamicDimensions"`
}

// ParseMetadata decodes a YAML or JSON metadata document.
func ParseMetadata(data []byte) (*Metadata, error) {
	md := &Metadata{}
	if err := yaml.Unmarshal(data, md); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	for _, set := range md.OptionSets {
		if set == nil || set.ID == "" {
			return nil, fmt.Errorf("option set without id")
		}
	}
	for _, ls := range md.LegendSets {
		if ls == nil || ls.ID == "" {
			return nil, fmt.Errorf("legend set without id")
		}
	}
	return md, nil
}
