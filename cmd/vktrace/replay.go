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
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/LunarG/VulkanTools-sub015/display/offscreen"
	"github.com/LunarG/VulkanTools-sub015/driver/null"
	"github.com/LunarG/VulkanTools-sub015/replay"
	"github.com/LunarG/VulkanTools-sub015/store"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newReplayCmd(g *globals) *cobra.Command {
	var (
		backend     string
		frames      string
		pauseAt     []uint
		interactive bool
		archived    bool
		width       int
		height      int
	)
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay a trace file against the null driver",
		Long: `Replays every call of a trace in order, translating the trace's handles
to the handles of the live driver. Result mismatches are reported and replay
continues; a call that cannot be replayed halts the replay.

With --interactive, commands are read from standard input:
  p      pause before the next call
  r      resume
  s [N]  replay N calls (default 1) then pause again
  q      quit`,
		Example: `  vktrace replay cube.vktrace --frames out/ --pause-at 120
  vktrace replay --archived traces/4f1c....vktrace.lz4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := g.cfg.Replay
			if cmd.Flags().Changed("display") {
				cfg.Display = backend
			}
			if cmd.Flags().Changed("frames") {
				cfg.Frames = frames
			}
			if cmd.Flags().Changed("width") {
				cfg.Width = width
			}
			if cmd.Flags().Changed("height") {
				cfg.Height = height
			}
			for _, i := range pauseAt {
				cfg.PauseAt = append(cfg.PauseAt, uint64(i))
			}

			src, closeSrc, err := openTrace(ctx, g, args[0], archived)
			if err != nil {
				return err
			}
			defer closeSrc()
			h := src.Header()
			if h.APIVersion>>22 != api.Version>>22 {
				log.W(ctx, "Trace was recorded against API version %d.%d, replaying with %d.%d",
					h.APIVersion>>22, (h.APIVersion>>12)&0x3ff, api.Version>>22, (api.Version>>12)&0x3ff)
			}

			shim, err := display.New(ctx, cfg.Display)
			if err != nil {
				return err
			}
			defer shim.Close()

			out := cmd.OutOrStdout()
			opts := replay.Options{
				PauseAt: cfg.PauseAt,
				Width:   cfg.Width,
				Height:  cfg.Height,
				Observer: func(ev replay.Event) {
					if ev.Kind == replay.Divergence {
						fmt.Fprintf(out, "divergence: %v\n", ev.Err)
					}
				},
			}
			if cfg.Frames != "" {
				opts.Frames = offscreen.PNGDir(cfg.Frames)
			}
			if interactive {
				go control(ctx, cmd.InOrStdin(), shim)
			}

			e := replay.New(api.TableOf(null.New(null.Options{})), shim, opts)
			summary, runErr := e.Run(ctx, src)
			fmt.Fprintf(out, "State:       %v\n", summary.State)
			fmt.Fprintf(out, "Packets:     %d\n", summary.Packets)
			fmt.Fprintf(out, "Divergences: %d\n", summary.Divergences)
			fmt.Fprintf(out, "Presents:    %d\n", summary.Presents)
			fmt.Fprintf(out, "Handles:     %d\n", summary.Handles)
			fmt.Fprintf(out, "Memory:      %d live (%d bytes)\n", summary.Memory.Live, summary.Memory.Bytes)
			if summary.Interrupted {
				fmt.Fprintln(out, "Replay was interrupted")
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&backend, "display", "", fmt.Sprintf("display backend, one of %v (default from configuration)", display.Backends()))
	cmd.Flags().StringVar(&frames, "frames", "", "directory to write presented frames to as PNG")
	cmd.Flags().UintSliceVar(&pauseAt, "pause-at", nil, "call indices to pause before")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "read pause, resume, step and quit commands from stdin")
	cmd.Flags().BoolVar(&archived, "archived", false, "treat the argument as a key of the configured archive")
	cmd.Flags().IntVar(&width, "width", 0, "width of windows for surfaces recorded without a size")
	cmd.Flags().IntVar(&height, "height", 0, "height of windows for surfaces recorded without a size")
	return cmd
}

// openTrace opens a local trace file, or a trace held in the archive. The
// returned function releases everything opened.
func openTrace(ctx context.Context, g *globals, name string, archived bool) (*file.Reader, func(), error) {
	if !archived {
		r, err := file.Open(name)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	}
	a, err := store.Open(ctx, g.cfg.Archive.Bucket, store.Options{Level: g.cfg.Archive.Level})
	if err != nil {
		return nil, nil, err
	}
	r, err := a.Reader(ctx, name)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return r, func() {
		r.Close()
		a.Close()
	}, nil
}

// control applies the commands read from in to shim until in is exhausted
// or a quit command is read.
func control(ctx context.Context, in io.Reader, shim display.Shim) {
	s := bufio.NewScanner(in)
	for s.Scan() {
		quit, err := apply(shim, s.Text())
		if err != nil {
			log.W(ctx, "%v", err)
			continue
		}
		if quit {
			return
		}
	}
}

// apply parses a single interactive command and applies it to shim.
func apply(shim display.Shim, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "p", "pause":
		shim.Pause()
	case "r", "resume":
		shim.Resume()
	case "s", "step":
		n := 1
		if len(fields) > 1 {
			if n, err = strconv.Atoi(fields[1]); err != nil || n <= 0 {
				return false, errors.Errorf("Invalid step count %q", fields[1])
			}
		}
		shim.Step(n)
	case "q", "quit":
		shim.Quit()
		return true, nil
	default:
		return false, errors.Errorf("Unknown command %q", fields[0])
	}
	return false, nil
}
