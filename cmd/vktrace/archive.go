// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/store"
	"github.com/spf13/cobra"
)

func newArchiveCmd(g *globals) *cobra.Command {
	var (
		bucket string
		level  int
	)
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store and retrieve compressed traces in a blob bucket",
		Long: `Traces are compressed with lz4 and stored in a bucket addressed by URL, for
example file:///srv/traces or mem://. Each trace is keyed by its session id.`,
	}
	cmd.PersistentFlags().StringVar(&bucket, "bucket", "", "bucket URL (default from configuration)")
	cmd.PersistentFlags().IntVar(&level, "level", -1, "lz4 compression level 0-9 (default from configuration)")

	open := func(ctx context.Context) (*store.Archive, error) {
		url, lvl := g.cfg.Archive.Bucket, g.cfg.Archive.Level
		if bucket != "" {
			url = bucket
		}
		if level >= 0 {
			lvl = level
		}
		return store.Open(ctx, url, store.Options{Level: lvl})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "push <trace>...",
			Short: "Compress trace files into the archive",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := open(ctx)
				if err != nil {
					return err
				}
				defer a.Close()
				for _, path := range args {
					key, err := a.Push(ctx, path)
					if err != nil {
						return err
					}
					log.I(ctx, "Pushed %v", path)
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "pull <key> <path>",
			Short: "Decompress an archived trace to a file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := open(ctx)
				if err != nil {
					return err
				}
				defer a.Close()
				return a.PullFile(ctx, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the archived traces",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := open(ctx)
				if err != nil {
					return err
				}
				defer a.Close()
				entries, err := a.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED\tAPPLICATION\tDRIVER")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", e.Key, e.Size, e.ModTime.Format("2006-01-02 15:04"), e.Application, e.Driver)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:     "rm <key>...",
			Aliases: []string{"delete"},
			Short:   "Remove traces from the archive",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := open(ctx)
				if err != nil {
					return err
				}
				defer a.Close()
				for _, key := range args {
					if err := a.Delete(ctx, key); err != nil {
						return err
					}
				}
				return nil
			},
		},
	)
	return cmd
}
