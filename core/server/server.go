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

// Package server serves rendered pivot tables, charts and workbooks over
// HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/safehtml"
	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/chart"
	"github.com/google/eventpivot/core/export"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/query"
	"github.com/google/eventpivot/core/rendering"
	"github.com/google/eventpivot/core/report"
	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/core/views"
	"github.com/google/eventpivot/datasources"
	"github.com/google/eventpivot/logger"
)

// DefaultMaxBodyBytes bounds POST bodies.
const DefaultMaxBodyBytes = 32 << 20

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var log = logger.GetLogger("server")

// Output is what a request renders.
type Output int

const (
	OutputTable Output = iota
	OutputChart
	OutputXLSX
)

func (o Output) flavor() layout.Flavor {
	if o == OutputChart {
		return layout.Chart
	}
	return layout.Report
}

func (o Output) String() string {
	switch o {
	case OutputChart:
		return "chart"
	case OutputXLSX:
		return "xlsx"
	default:
		return "table"
	}
}

// Request is the body of the POST endpoints.
type Request struct {
	Layout   map[string]any  `json:"layout"`
	Response json.RawMessage `json:"response"`
	// Confirm approves renders above the size limits.
	Confirm bool `json:"confirm"`
}

// Server represents the application server with all its dependencies
type Server struct {
	sources  *datasources.Manager
	renderer *rendering.TableRenderer
	opts     report.Options

	// MaxBodyBytes bounds POST bodies; zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// NewServer creates a server. sources may be nil, which disables the GET
// endpoints rendering stored responses. opts.Flavor is set per request.
func NewServer(sources *datasources.Manager, opts report.Options) (*Server, error) {
	renderer, err := rendering.NewTableRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return &Server{sources: sources, renderer: renderer, opts: opts}, nil
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/table", s.handlePost(OutputTable))
	mux.HandleFunc("POST /api/chart", s.handlePost(OutputChart))
	mux.HandleFunc("POST /api/xlsx", s.handlePost(OutputXLSX))
	mux.HandleFunc("GET /table", s.handleGet(OutputTable))
	mux.HandleFunc("GET /chart", s.handleGet(OutputChart))
	mux.HandleFunc("GET /xlsx", s.handleGet(OutputXLSX))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// TimingEntry is one measured step of a request.
type TimingEntry struct {
	Operation string
	Duration  time.Duration
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	entries []TimingEntry
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, TimingEntry{Operation: operation, Duration: duration})
}

// GetEntries returns all timing entries
func (tc *TimingCollector) GetEntries() []TimingEntry {
	return tc.entries
}

// TotalMs returns total elapsed time in milliseconds as formatted string
func (tc *TimingCollector) TotalMs() string {
	return formatMs(time.Since(tc.start))
}

func formatMs(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Microseconds())/1000.0)
}

// ServerTiming formats the entries as a Server-Timing header value.
func (tc *TimingCollector) ServerTiming() string {
	parts := make([]string, len(tc.entries))
	for i, e := range tc.entries {
		name := strings.ToLower(strings.ReplaceAll(e.Operation, " ", "-"))
		parts[i] = name + ";dur=" + formatMs(e.Duration)
	}
	return strings.Join(parts, ", ")
}

func (tc *TimingCollector) fields() logrus.Fields {
	f := logrus.Fields{"total_ms": tc.TotalMs()}
	for _, e := range tc.entries {
		f[e.Operation] = formatMs(e.Duration)
	}
	return f
}

func (s *Server) handlePost(out Output) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timing := NewTimingCollector()

		limit := s.MaxBodyBytes
		if limit <= 0 {
			limit = DefaultMaxBodyBytes
		}
		parseStart := time.Now()
		var req Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&req); err != nil {
			s.message(w, http.StatusBadRequest, "Invalid request", err.Error(), "error")
			return
		}
		if req.Layout == nil || len(req.Response) == 0 {
			s.message(w, http.StatusBadRequest, "Invalid request", "Both layout and response are required", "error")
			return
		}
		resp, err := response.Decode(bytes.NewReader(req.Response))
		if err != nil {
			s.message(w, http.StatusBadRequest, "Invalid response", err.Error(), "error")
			return
		}
		timing.Record("Parse Request", time.Since(parseStart))

		s.render(w, r, out, req.Layout, resp, req.Confirm, nil, timing)
	}
}

func (s *Server) handleGet(out Output) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timing := NewTimingCollector()

		parseStart := time.Now()
		q := query.NewQuery(r.URL)
		timing.Record("Parse Query", time.Since(parseStart))

		if s.sources == nil {
			s.message(w, http.StatusNotFound, "Not found", "No data sources are configured", "error")
			return
		}
		if q.Source == "" {
			s.message(w, http.StatusBadRequest, "Invalid request", "Response parameter is required", "error")
			return
		}
		loadStart := time.Now()
		resp, err := s.sources.LoadResponse(q.Source)
		if err != nil {
			s.fail(w, err)
			return
		}
		timing.Record("Load Response", time.Since(loadStart))

		confirm := q.Options["confirm"] == "true"
		delete(q.Options, "confirm")
		s.render(w, r, out, q.Raw(), resp, confirm, q, timing)
	}
}

// render runs the pipeline and writes out. q, when set, provides the links
// of an HTML table.
func (s *Server) render(w http.ResponseWriter, r *http.Request, out Output, raw map[string]any, resp *response.Response, confirm bool, q *query.Query, timing *TimingCollector) {
	buildStart := time.Now()
	l, err := layout.Build(raw, out.flavor())
	if err != nil {
		s.fail(w, err)
		return
	}
	timing.Record("Build Layout", time.Since(buildStart))

	opts := s.opts
	opts.Flavor = out.flavor()
	if s.sources != nil {
		if opts.Registry == nil {
			opts.Registry = s.sources.Registry()
		}
		if opts.LegendSets == nil {
			opts.LegendSets = s.sources.LegendSet
		}
	}
	opts.Confirm = func(*report.TooManySeriesError) bool { return confirm }

	runStart := time.Now()
	res, err := report.Run(r.Context(), l, resp, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	timing.Record("Run", time.Since(runStart))

	var buf bytes.Buffer
	contentType := "text/html; charset=utf-8"
	renderStart := time.Now()
	switch out {
	case OutputChart:
		series, err := chart.BuildSeries(res)
		if err != nil {
			s.fail(w, err)
			return
		}
		err = chart.Render(&buf, series)
		if err != nil {
			s.fail(w, err)
			return
		}
	case OutputXLSX:
		vm, err := views.BuildPivot(res)
		if err != nil {
			s.fail(w, err)
			return
		}
		if err := export.WriteXLSX(&buf, vm); err != nil {
			s.fail(w, err)
			return
		}
		contentType = contentTypeXLSX
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName(vm.Title)+`.xlsx"`)
	default:
		vm, err := views.BuildPivot(res)
		if err != nil {
			s.fail(w, err)
			return
		}
		if q != nil {
			vm.Links = tableLinks(q, l)
		}
		if err := s.renderer.Render(&buf, vm); err != nil {
			log.WithError(err).Error("template rendering error")
			s.fail(w, err)
			return
		}
	}
	timing.Record("Render", time.Since(renderStart))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Server-Timing", timing.ServerTiming())
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
	log.WithFields(timing.fields()).WithField("output", out.String()).Info("rendered")
}

func fileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, title)
	if name == "" {
		return "pivot"
	}
	return name
}

func withPath(q *query.Query, path string) safehtml.URL {
	next := q.Clone()
	next.Path = path
	return next.ToSafeURL()
}

func tableLinks(q *query.Query, l *layout.Layout) []views.Link {
	links := []views.Link{{Text: "Swap rows and columns", URL: q.WithAxesSwapped()}}
	if l.HideEmptyRows {
		links = append(links, views.Link{Text: "Show empty rows", URL: q.WithOption("hideEmptyRows", "false")})
	} else {
		links = append(links, views.Link{Text: "Hide empty rows", URL: q.WithOption("hideEmptyRows", "true")})
	}
	links = append(links,
		views.Link{Text: "Sort by total", URL: q.WithSortToggled(views.SortTotal)},
		views.Link{Text: "Show as chart", URL: withPath(q, "/chart")},
		views.Link{Text: "Download xlsx", URL: withPath(q, "/xlsx")},
	)
	return links
}

// fail maps pipeline errors to a status and a message page.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var tooMany *report.TooManySeriesError
	switch {
	case errors.Is(err, context.Canceled):
		log.WithError(err).Debug("request cancelled")
	case errors.Is(err, layout.ErrInvalidLayout):
		s.message(w, http.StatusBadRequest, "Invalid layout", err.Error(), "error")
	case errors.Is(err, report.ErrEmptyResult):
		s.message(w, http.StatusOK, "No values found", "The selected data returned no values", "info")
	case errors.As(err, &tooMany):
		s.message(w, http.StatusUnprocessableEntity, "Too many items", err.Error()+". Repeat the request with confirm=true to render it anyway.", "warning")
	case errors.Is(err, chart.ErrNoSeries), errors.Is(err, views.ErrNoPivot):
		s.message(w, http.StatusBadRequest, "Cannot render", err.Error(), "error")
	case errors.Is(err, datasources.ErrUnknownSource):
		s.message(w, http.StatusNotFound, "Not found", err.Error(), "error")
	default:
		log.WithError(err).Error("render failed")
		s.message(w, http.StatusInternalServerError, "Error", err.Error(), "error")
	}
}

func (s *Server) message(w http.ResponseWriter, status int, title, msg, kind string) {
	var buf bytes.Buffer
	if err := s.renderer.RenderMessage(&buf, rendering.MessageViewModel{Title: title, Message: msg, Kind: kind}); err != nil {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
