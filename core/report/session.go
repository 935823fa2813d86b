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

package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/google/eventpivot/core/axis"
	"github.com/google/eventpivot/core/dimension"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/optionset"
	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/core/xlayout"
	"github.com/google/eventpivot/logger"
)

// Options configure a Renderer.
type Options struct {
	Flavor     layout.Flavor
	Registry   *dimension.Registry
	LegendSets xlayout.LegendSetLookup
	// OptionSets resolves option names. May be nil.
	OptionSets optionset.Source
	// MaxTableCells and MaxChartSeries bound the render size. Zero uses
	// the defaults, a negative value disables the check.
	MaxTableCells  int
	MaxChartSeries int
	Confirm        Confirm
	// Prefix starts the table uuid.
	Prefix string
}

// Result holds everything a table or chart renderer reads.
type Result struct {
	Layout    *layout.Layout
	XLayout   *xlayout.ExtendedLayout
	XResponse *response.Extended
	// ColAxis and RowAxis are nil for an axis without dimensions.
	ColAxis *axis.Axis
	RowAxis *axis.Axis
	// Query is set for events responses, which have no axes.
	Query bool
}

// Renderer hands out render sessions. Starting a session supersedes the
// previous one: its context is cancelled and its results are discarded.
type Renderer struct {
	opts Options

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	if opts.Registry == nil {
		opts.Registry = dimension.NewRegistry()
	}
	return &Renderer{opts: opts}
}

// NewSession starts a session, cancelling the previous one.
func (r *Renderer) NewSession(ctx context.Context) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	sctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	return &Session{
		renderer:   r,
		generation: r.generation,
		ctx:        sctx,
		cancel:     cancel,
	}
}

func (r *Renderer) current() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Session is one run of the render pipeline. It owns every intermediate
// structure and is never shared between renders.
type Session struct {
	renderer   *Renderer
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	result     *Result
}

// Context is cancelled when the session is closed or superseded.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Generation numbers sessions of a renderer from one.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Close releases the session context.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) check() error {
	if cur := s.renderer.current(); cur != s.generation {
		return &StaleRenderError{Generation: s.generation, Current: cur}
	}
	return s.ctx.Err()
}

// Commit returns the result unless a newer session started meanwhile.
func (s *Session) Commit() (*Result, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if s.result == nil {
		return nil, errors.New("render has no result")
	}
	return s.result, nil
}

// Run validates l, extends it and resp, resolves option names,
// synchronizes the layout with the response and builds the axes.
func (s *Session) Run(l *layout.Layout, resp *response.Response) (*Result, error) {
	opts := s.renderer.opts
	log := logger.GetLogger("report").WithField("generation", s.generation)
	start := time.Now()
	var timings []string
	mark := func(stage string, t time.Time) {
		timings = append(timings, stage+"="+time.Since(t).String())
	}

	t := time.Now()
	nl, err := layout.Normalize(l, opts.Flavor)
	if err != nil {
		log.WithError(err).WithField("stage", "layout").Warn("invalid layout")
		return nil, err
	}
	xl := xlayout.Extend(nl, xlayout.Options{Registry: opts.Registry, LegendSets: opts.LegendSets, Prefix: opts.Prefix})
	mark("layout", t)
	log = log.WithField("table_uuid", xl.TableUUID)

	if nl.DataType == layout.DataEvents {
		xr, err := response.ExtendQuery(xl, resp)
		if err != nil {
			return nil, s.emptyOr(err, xl)
		}
		s.result = &Result{Layout: nl, XLayout: xl, XResponse: xr, Query: true}
		return s.Commit()
	}

	t = time.Now()
	xr, err := response.Extend(xl, resp)
	if err != nil {
		return nil, s.emptyOr(err, xl)
	}
	mark("response", t)

	if opts.OptionSets != nil {
		if err := s.check(); err != nil {
			return nil, err
		}
		t = time.Now()
		if err := optionset.NewResolver(opts.OptionSets).Apply(s.ctx, xr); err != nil {
			if staleErr := s.check(); staleErr != nil {
				return nil, staleErr
			}
			log.WithError(err).WithField("stage", "optionsets").Error("option name resolution failed")
			return nil, err
		}
		mark("optionsets", t)
	}

	if err := s.check(); err != nil {
		return nil, err
	}
	t = time.Now()
	sxl, err := Synchronize(nl, xl, xr, SyncOptions{
		Flavor:     opts.Flavor,
		Registry:   opts.Registry,
		LegendSets: opts.LegendSets,
		MaxSeries:  opts.MaxChartSeries,
		MaxCells:   opts.MaxTableCells,
		Confirm:    opts.Confirm,
	})
	if err != nil {
		log.WithError(err).WithField("stage", "synchronize").Warn("synchronization failed")
		return nil, err
	}
	mark("synchronize", t)

	t = time.Now()
	col := axis.Build(sxl, axis.Col)
	row := axis.Build(sxl, axis.Row)
	mark("axes", t)

	s.result = &Result{Layout: nl, XLayout: sxl, XResponse: xr, ColAxis: col, RowAxis: row}
	log.WithFields(logrus.Fields{
		"total":   time.Since(start).String(),
		"timings": timings,
	}).Debug("render pipeline finished")
	return s.Commit()
}

func (s *Session) emptyOr(err error, xl *xlayout.ExtendedLayout) error {
	if errors.Is(err, response.ErrEmptyResult) {
		return &EmptyResultError{TableUUID: xl.TableUUID}
	}
	return err
}

// Run renders once with a fresh renderer.
func Run(ctx context.Context, l *layout.Layout, resp *response.Response, opts Options) (*Result, error) {
	s := NewRenderer(opts).NewSession(ctx)
	defer s.Close()
	return s.Run(l, resp)
}
