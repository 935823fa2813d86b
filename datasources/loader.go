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

// Package datasources loads the files a report is rendered from: analytics
// responses, stored layouts, and the metadata (option sets, legend sets,
// dynamic dimensions) that resolves names and orders items.
package datasources

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/google/eventpivot/core/response"
)

// CompressedExt marks xz compressed files, e.g. anc.json.xz.
const CompressedExt = ".xz"

// ResponseLoader decodes analytics responses of one file format.
// Built-in loaders handle "json" and "csv"; others can be registered.
type ResponseLoader interface {
	// SourceType returns the file extension handled, without the dot.
	SourceType() string
	// Load decodes a response.
	Load(r io.Reader) (*response.Response, error)
}

// JSONLoader reads analytics API JSON responses.
type JSONLoader struct{}

// NewJSONLoader creates a JSON response loader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// SourceType returns "json".
func (l *JSONLoader) SourceType() string {
	return "json"
}

// Load decodes a JSON response.
func (l *JSONLoader) Load(r io.Reader) (*response.Response, error) {
	return response.Decode(r)
}

// CsvLoader reads tabular exports whose header row names the dimensions
// and a "value" column.
type CsvLoader struct{}

// NewCsvLoader creates a CSV response loader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return "csv"
}

// Load decodes a CSV response.
func (l *CsvLoader) Load(r io.Reader) (*response.Response, error) {
	return response.DecodeCSV(r)
}

// SplitExt returns the name of a file without its extensions, its format
// extension and whether it is xz compressed. "a/b.json.xz" gives
// ("a/b", "json", true).
func SplitExt(path string) (name, format string, compressed bool) {
	name = filepath.ToSlash(path)
	if strings.HasSuffix(name, CompressedExt) {
		compressed = true
		name = strings.TrimSuffix(name, CompressedExt)
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), strings.TrimPrefix(ext, "."), compressed
}

// ReadFile reads a file, decompressing it when it ends in .xz.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, CompressedExt) {
		xzReader, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzReader
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// Compress xz compresses data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
