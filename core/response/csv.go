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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/eventpivot/core/dimension"
)

// DecodeCSV reads a response exported as CSV. The first record names the
// headers; every header except "value" is a meta dimension. The export
// carries no metadata, so ids double as names.
func DecodeCSV(r io.Reader) (*Response, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	names, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV file is empty")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	resp := &Response{
		Headers: make([]*Header, len(names)),
		MetaData: MetaData{
			Names:       map[string]string{},
			OuHierarchy: map[string]string{},
			Dimensions:  map[string][]string{},
		},
	}
	for i, name := range names {
		name = strings.TrimSpace(name)
		h := &Header{Name: name, Column: name, Type: TypeString, Meta: true}
		if name == dimension.Value {
			h.Type = TypeDouble
			h.Meta = false
		}
		resp.Headers[i] = h
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading CSV line %d: %w", line, err)
		}
		resp.Rows = append(resp.Rows, record)
	}

	resp.Width = len(resp.Headers)
	resp.Height = len(resp.Rows)
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}
