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

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/eventpivot/core/report"
	"github.com/google/eventpivot/datasources"
)

const testResponse = `{
	"headers": [
		{"name": "pe", "type": "java.lang.String", "meta": true},
		{"name": "ou", "type": "java.lang.String", "meta": true},
		{"name": "value", "type": "java.lang.Double", "meta": false}
	],
	"rows": [["2024Q1", "O1", "4"], ["2024Q2", "O2", "6"]],
	"metaData": {"names": {"O1": "Bo", "O2": "Kenema", "2024Q1": "Jan - Mar 2024", "2024Q2": "Apr - Jun 2024"}}
}`

func testLayout() map[string]any {
	return map[string]any{
		"title": "Visits",
		"columns": []any{map[string]any{"dimension": "pe", "items": []any{
			map[string]any{"id": "2024Q1"}, map[string]any{"id": "2024Q2"},
		}}},
		"rows": []any{map[string]any{"dimension": "ou", "items": []any{
			map[string]any{"id": "O1"}, map[string]any{"id": "O2"},
		}}},
	}
}

func newTestServer(t *testing.T, opts report.Options) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visits.json"), []byte(testResponse), 0o644))
	m := datasources.NewManager(nil)
	require.NoError(t, m.LoadDir(dir))

	s, err := NewServer(m, opts)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, req Request) (*http.Response, string) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var b bytes.Buffer
	_, err = b.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, b.String()
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var b bytes.Buffer
	_, err = b.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, b.String()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, report.Options{})
	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)
}

func TestPostTable(t *testing.T) {
	ts := newTestServer(t, report.Options{})
	resp, body := post(t, ts, "/api/table", Request{Layout: testLayout(), Response: json.RawMessage(testResponse)})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, resp.Header.Get("Server-Timing"), "run;dur=")
	assert.Contains(t, body, "Visits")
	assert.Contains(t, body, "Kenema")
	assert.Contains(t, body, "Jan - Mar 2024")
	assert.NotContains(t, body, "Swap rows and columns")
}

func TestPostChart(t *testing.T) {
	ts := newTestServer(t, report.Options{})
	raw := testLayout()
	raw["type"] = "STACKED_BAR"
	resp, body := post(t, ts, "/api/chart", Request{Layout: raw, Response: json.RawMessage(testResponse)})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "echarts")
	assert.Contains(t, body, "Kenema")
}

func TestPostXLSX(t *testing.T) {
	ts := newTestServer(t, report.Options{})
	resp, body := post(t, ts, "/api/xlsx", Request{Layout: testLayout(), Response: json.RawMessage(testResponse)})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, contentTypeXLSX, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="Visits.xlsx"`)
	assert.True(t, strings.HasPrefix(body, "PK"))
}

func TestPostErrors(t *testing.T) {
	ts := newTestServer(t, report.Options{})

	resp, _ := post(t, ts, "/api/table", Request{Layout: map[string]any{"columns": []any{}}, Response: json.RawMessage(testResponse)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, ts, "/api/table", Request{Layout: testLayout()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, ts, "/api/table", Request{Layout: testLayout(), Response: json.RawMessage(`{"headers": []}`)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	empty := strings.Replace(testResponse, `[["2024Q1", "O1", "4"], ["2024Q2", "O2", "6"]]`, `[]`, 1)
	resp, body := post(t, ts, "/api/table", Request{Layout: testLayout(), Response: json.RawMessage(empty)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No values found")

	r, err := http.Post(ts.URL+"/api/table", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestPostTableLimit(t *testing.T) {
	ts := newTestServer(t, report.Options{MaxTableCells: 2})

	resp, body := post(t, ts, "/api/table", Request{Layout: testLayout(), Response: json.RawMessage(testResponse)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "confirm=true")

	resp, _ = post(t, ts, "/api/table", Request{Layout: testLayout(), Response: json.RawMessage(testResponse), Confirm: true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetTable(t *testing.T) {
	ts := newTestServer(t, report.Options{})
	v := url.Values{}
	v.Set("response", "visits")
	v.Set("columns", "pe:2024Q1;2024Q2")
	v.Set("rows", "ou:O1;O2")
	v.Set("title", "Visits")

	resp, body := get(t, ts, "/table?"+v.Encode())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Kenema")
	assert.Contains(t, body, "Swap rows and columns")
	assert.Contains(t, body, "Hide empty rows")
	assert.Contains(t, body, "/xlsx?")

	resp, body = get(t, ts, "/chart?"+v.Encode())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "echarts")
}

func TestGetErrors(t *testing.T) {
	ts := newTestServer(t, report.Options{})

	resp, _ := get(t, ts, "/table?columns=pe:2024Q1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, ts, "/table?response=missing&columns=pe:2024Q1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTimingCollector(t *testing.T) {
	tc := NewTimingCollector()
	tc.Record("Build Layout", 1500000)
	tc.Record("Run", 250000)

	assert.Len(t, tc.GetEntries(), 2)
	assert.Equal(t, "build-layout;dur=1.50, run;dur=0.25", tc.ServerTiming())
	assert.NotEmpty(t, tc.TotalMs())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Cases_by_quarter", fileName("Cases by quarter"))
	assert.Equal(t, "pivot", fileName(""))
	assert.Equal(t, "ab", fileName("a/\"b"))
}
