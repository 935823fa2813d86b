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

// Command eventpivot renders event reports and event charts from analytics
// responses, either once from the command line or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/google/eventpivot/config"
	"github.com/google/eventpivot/datasources"
	"github.com/google/eventpivot/logger"
)

// app holds what every subcommand shares.
type app struct {
	envFiles []string
	dataDir  string

	cfg     *config.Configuration
	sources *datasources.Manager
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "eventpivot",
		Short: "Render event reports and event charts",
		Long: `eventpivot turns a report layout and an analytics response into a
pivot table, a chart or an xlsx workbook.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "Env files to load (default: config/env/$EVENTPIVOT_ENV.env)")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Directory of stored responses, layouts and metadata (default: $DATA_DIR)")

	rootCmd.AddCommand(
		newRenderCmd(a, renderTable),
		newRenderCmd(a, renderChart),
		newRenderCmd(a, renderXLSX),
		newListCmd(a),
		newCompressCmd(),
		newServeCmd(a),
	)
	return rootCmd
}

// setup loads the configuration, configures logging and scans the data
// directory when it exists.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}
	if err := logger.Init(&cfg.Log); err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg

	a.sources = datasources.NewManager(nil)
	info, err := os.Stat(cfg.DataDir)
	switch {
	case err == nil && info.IsDir():
		return a.sources.LoadDir(cfg.DataDir)
	case a.dataDir != "":
		return fmt.Errorf("data directory %s is not readable", cfg.DataDir)
	}
	return nil
}
