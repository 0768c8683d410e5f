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

// The vktrace command captures, inspects, archives and replays traces.
package main

import (
	"context"
	"os"

	"github.com/LunarG/VulkanTools-sub015/config"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// globals is the state shared by every verb, set up before the verb runs.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "vktrace",
		Short: "Capture and replay API call traces",
		Long: `vktrace records every call an application makes through the API into a
trace file, and replays trace files against a driver to reproduce what the
application did.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "minimum log severity (overrides the configuration)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "console or json (overrides the configuration)")

	root.AddCommand(
		newSynthCmd(g),
		newDumpCmd(g),
		newStatsCmd(g),
		newReplayCmd(g),
		newArchiveCmd(g),
		newDiffCmd(g),
	)
	return root
}

func (g *globals) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg

	severity, _ := cfg.Severity()
	handler := log.Console(cmd.ErrOrStderr())
	if cfg.Log.Format == "json" {
		handler = log.JSON(cmd.ErrOrStderr())
	}
	ctx := log.PutHandler(cmd.Context(), handler)
	ctx = log.PutFilter(ctx, log.SeverityFilter(severity))
	ctx = log.PutTag(ctx, cmd.Name())
	cmd.SetContext(ctx)
	return nil
}
