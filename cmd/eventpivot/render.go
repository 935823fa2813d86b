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

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/google/eventpivot/core/chart"
	"github.com/google/eventpivot/core/export"
	"github.com/google/eventpivot/core/layout"
	"github.com/google/eventpivot/core/optionset"
	"github.com/google/eventpivot/core/rendering"
	"github.com/google/eventpivot/core/report"
	"github.com/google/eventpivot/core/response"
	"github.com/google/eventpivot/core/views"
	"github.com/google/eventpivot/datasources"
	"github.com/google/eventpivot/logger"
)

var log = logger.GetLogger("cli")

// output describes one render subcommand.
type output struct {
	name   string
	short  string
	flavor layout.Flavor
	write  func(w io.Writer, res *report.Result) error
}

var (
	renderTable = output{
		name:   "table",
		short:  "Render an event report as an HTML pivot table",
		flavor: layout.Report,
		write: func(w io.Writer, res *report.Result) error {
			vm, err := views.BuildPivot(res)
			if err != nil {
				return err
			}
			r, err := rendering.NewTableRenderer()
			if err != nil {
				return err
			}
			return r.Render(w, vm)
		},
	}
	renderChart = output{
		name:   "chart",
		short:  "Render an event chart as an HTML page",
		flavor: layout.Chart,
		write: func(w io.Writer, res *report.Result) error {
			s, err := chart.BuildSeries(res)
			if err != nil {
				return err
			}
			return chart.Render(w, s)
		},
	}
	renderXLSX = output{
		name:   "xlsx",
		short:  "Export an event report as an xlsx workbook",
		flavor: layout.Report,
		write: func(w io.Writer, res *report.Result) error {
			vm, err := views.BuildPivot(res)
			if err != nil {
				return err
			}
			return export.WriteXLSX(w, vm)
		},
	}
)

type renderFlags struct {
	layout    string
	response  string
	out       string
	chartType string
	confirm   bool
}

func newRenderCmd(a *app, o output) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   o.name,
		Short: o.short,
		Long: o.short + `.

--layout and --response take a file path or the name of a layout or
response stored in the data directory. Responses may be JSON or CSV,
optionally xz compressed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context(), cmd.OutOrStdout(), o, f)
		},
	}
	cmd.Flags().StringVarP(&f.layout, "layout", "l", "", "Layout file or stored layout name")
	cmd.Flags().StringVarP(&f.response, "response", "r", "", "Response file or stored response name")
	cmd.Flags().StringVarP(&f.out, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&f.confirm, "confirm", false, "Render even when the size limits are exceeded")
	if o.flavor == layout.Chart {
		cmd.Flags().StringVarP(&f.chartType, "type", "t", "", "Chart type overriding the layout, e.g. stacked_bar")
	}
	_ = cmd.MarkFlagRequired("layout")
	_ = cmd.MarkFlagRequired("response")
	return cmd
}

func (a *app) render(ctx context.Context, stdout io.Writer, o output, f *renderFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	l, err := a.loadLayout(f.layout, o.flavor)
	if err != nil {
		return err
	}
	if f.chartType != "" {
		kind, err := chart.ParseKind(f.chartType)
		if err != nil {
			return err
		}
		l.Type = kind.String()
	}
	resp, err := a.loadResponse(f.response)
	if err != nil {
		return err
	}

	source, closeSource, err := a.optionSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	opts := a.reportOptions(o.flavor, source)
	opts.Confirm = func(e *report.TooManySeriesError) bool {
		if !f.confirm {
			log.WithError(e).Warn("size limit exceeded, pass --confirm to render anyway")
		}
		return f.confirm
	}
	res, err := report.Run(ctx, l, resp, opts)
	if err != nil {
		return err
	}

	w := stdout
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer file.Close()
		w = file
	}
	if err := o.write(w, res); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"output": o.name, "file": f.out}).Info("rendered")
	return nil
}

func (a *app) reportOptions(flavor layout.Flavor, source optionset.Source) report.Options {
	return report.Options{
		Flavor:         flavor,
		Registry:       a.sources.Registry(),
		LegendSets:     a.sources.LegendSet,
		OptionSets:     source,
		MaxTableCells:  a.cfg.MaxTableCells,
		MaxChartSeries: a.cfg.MaxChartSeries,
	}
}

// loadLayout reads ref as a file when it exists, as a stored layout name
// otherwise.
func (a *app) loadLayout(ref string, flavor layout.Flavor) (*layout.Layout, error) {
	if isFile(ref) {
		return datasources.LoadLayoutFile(ref, flavor)
	}
	return a.sources.LoadLayout(ref, flavor)
}

func (a *app) loadResponse(ref string) (*response.Response, error) {
	if isFile(ref) {
		return a.sources.LoadResponseFile(ref)
	}
	return a.sources.LoadResponse(ref)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// optionSource returns the option sets to resolve names with: MongoDB when
// a URI is configured, the metadata option sets otherwise. Both are cached.
func (a *app) optionSource(ctx context.Context) (optionset.Source, func(), error) {
	if a.cfg.MongoURI == "" {
		return optionset.NewCache(a.sources.OptionSets(), a.cfg.OptionSetCacheSize), func() {}, nil
	}
	store, client, err := optionset.Connect(ctx, a.cfg.MongoURI, a.cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("failed to disconnect from MongoDB")
		}
	}
	return optionset.NewCache(store, a.cfg.OptionSetCacheSize), closeFn, nil
}
