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
	"fmt"

	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"github.com/spf13/cobra"
)

func newDumpCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "dump <trace>",
		Short:   "Print the header and packets of a trace file",
		Example: `  vktrace dump cube.vktrace --limit 20`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := file.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			h := r.Header()
			m := h.Metadata
			fmt.Fprintf(out, "Format version: %d\n", h.Version)
			fmt.Fprintf(out, "API version:    %d.%d.%d\n", h.APIVersion>>22, (h.APIVersion>>12)&0x3ff, h.APIVersion&0xfff)
			fmt.Fprintf(out, "Byte order:     %v\n", h.Endian)
			fmt.Fprintf(out, "Session:        %v\n", m.SessionID)
			fmt.Fprintf(out, "Application:    %s\n", m.Application)
			fmt.Fprintf(out, "Driver:         %s\n", m.Driver)
			fmt.Fprintf(out, "Host:           %s %s\n", m.OS, m.Architecture)
			fmt.Fprintf(out, "Captured:       %v\n\n", m.Start)

			n := 0
			for p, err := range r.Packets() {
				if err != nil {
					return err
				}
				if limit > 0 && n >= limit {
					fmt.Fprintln(out, "...")
					break
				}
				fmt.Fprintf(out, "%v %+v\n", p, p.Call)
				n++
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many packets, 0 prints all")
	return cmd
}
