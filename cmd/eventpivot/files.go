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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/google/eventpivot/datasources"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the responses and layouts of the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "responses:")
			for _, name := range a.sources.GetSourceNames() {
				fmt.Fprintln(w, "  "+name)
			}
			fmt.Fprintln(w, "layouts:")
			for _, name := range a.sources.GetLayoutNames() {
				fmt.Fprintln(w, "  "+name)
			}
			return nil
		},
	}
}

func newCompressCmd() *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "compress FILE...",
		Short: "Compress response files with xz",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := compressFile(path, keep); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path+datasources.CompressedExt)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "Keep the uncompressed file")
	return cmd
}

func compressFile(path string, keep bool) error {
	if _, _, compressed := datasources.SplitExt(path); compressed {
		return fmt.Errorf("%s is already compressed", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := datasources.Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := os.WriteFile(path+datasources.CompressedExt, out, 0o644); err != nil {
		return err
	}
	if keep {
		return nil
	}
	return os.Remove(path)
}
