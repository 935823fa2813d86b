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

// Package response models the flat analytics response and extends it for a
// render: composite ids per meta header, ordered header ids, display names
// and the id → value lookup used by tables and charts.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Header types with special ordering.
const (
	TypeDouble  = "java.lang.Double"
	TypeBoolean = "java.lang.Boolean"
	TypeString  = "java.lang.String"
)

var (
	// ErrEmptyResult is returned when a response has no rows.
	ErrEmptyResult = errors.New("no data")
	// ErrNoValueHeader is returned when a response has no value column.
	ErrNoValueHeader = errors.New("response has no value header")
)

// OptionSetRefs holds the option set ids of a header. The server sends
// either a single id or a list.
type OptionSetRefs []string

// UnmarshalJSON accepts a string or a list of strings.
func (o *OptionSetRefs) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*o = nil
		} else {
			*o = OptionSetRefs{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("optionSet: %w", err)
	}
	*o = many
	return nil
}

// Header describes one response column.
type Header struct {
	Name      string        `json:"name"`
	Column    string        `json:"column"`
	Type      string        `json:"type"`
	Meta      bool          `json:"meta"`
	Hidden    bool          `json:"hidden,omitempty"`
	OptionSet OptionSetRefs `json:"optionSet,omitempty"`

	// Set by extension.
	IDs   []string `json:"-"`
	Size  int      `json:"-"`
	Index int      `json:"-"`
}

// HasOptionSet reports whether the header values are option codes.
func (h *Header) HasOptionSet() bool {
	return len(h.OptionSet) > 0
}

// MetaData carries display names and dimension orderings.
type MetaData struct {
	Names       map[string]string
	OuHierarchy map[string]string
	// Dimensions holds the server ordered item ids per dimension, e.g. "pe".
	Dimensions map[string][]string

	// Filled during extension and option set resolution.
	BooleanNames map[string]string
	OptionNames  map[string]string
}

// UnmarshalJSON reads names and ouHierarchy, and keeps every other list of
// strings as a dimension ordering.
func (m *MetaData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MetaData{
		Names:       map[string]string{},
		OuHierarchy: map[string]string{},
		Dimensions:  map[string][]string{},
	}
	for key, value := range raw {
		switch key {
		case "names":
			if err := json.Unmarshal(value, &m.Names); err != nil {
				return fmt.Errorf("metaData.names: %w", err)
			}
		case "ouHierarchy":
			if err := json.Unmarshal(value, &m.OuHierarchy); err != nil {
				return fmt.Errorf("metaData.ouHierarchy: %w", err)
			}
		default:
			var ids []string
			if err := json.Unmarshal(value, &ids); err == nil {
				m.Dimensions[key] = ids
			}
		}
	}
	return nil
}

// MarshalJSON writes the server form of the metadata.
func (m MetaData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Dimensions)+2)
	for key, ids := range m.Dimensions {
		out[key] = ids
	}
	out["names"] = m.Names
	if len(m.OuHierarchy) > 0 {
		out["ouHierarchy"] = m.OuHierarchy
	}
	return json.Marshal(out)
}

// Response is a flat analytics response: one row per data point.
type Response struct {
	Headers  []*Header  `json:"headers"`
	Rows     [][]string `json:"rows"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	MetaData MetaData   `json:"metaData"`
}

// Decode reads a JSON response.
func Decode(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate checks the structural shape of the response.
func (r *Response) Validate() error {
	if len(r.Headers) == 0 {
		return errors.New("response has no headers")
	}
	for i, h := range r.Headers {
		if h == nil || h.Name == "" {
			return fmt.Errorf("response header %d has no name", i)
		}
	}
	for i, row := range r.Rows {
		if len(row) != len(r.Headers) {
			return fmt.Errorf("response row %d has %d cells, want %d", i, len(row), len(r.Headers))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	c := &Response{
		Headers: make([]*Header, len(r.Headers)),
		Rows:    make([][]string, len(r.Rows)),
		Width:   r.Width,
		Height:  r.Height,
		MetaData: MetaData{
			Names:        cloneMap(r.MetaData.Names),
			OuHierarchy:  cloneMap(r.MetaData.OuHierarchy),
			Dimensions:   make(map[string][]string, len(r.MetaData.Dimensions)),
			BooleanNames: cloneMap(r.MetaData.BooleanNames),
			OptionNames:  cloneMap(r.MetaData.OptionNames),
		},
	}
	for i, h := range r.Headers {
		hc := *h
		hc.OptionSet = append(OptionSetRefs(nil), h.OptionSet...)
		hc.IDs = append([]string(nil), h.IDs...)
		c.Headers[i] = &hc
	}
	for i, row := range r.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	for k, ids := range r.MetaData.Dimensions {
		c.MetaData.Dimensions[k] = append([]string(nil), ids...)
	}
	return c
}

func cloneMap(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
