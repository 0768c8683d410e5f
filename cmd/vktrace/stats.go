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
	"sort"
	"text/tabwriter"
	"time"

	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/file"
	"github.com/LunarG/VulkanTools-sub015/trace/memory"
	"github.com/spf13/cobra"
)

type callStats struct {
	count int
	bytes uint64
	ticks uint64
}

func newStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <trace>",
		Short: "Summarize the calls, threads and memory of a trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := file.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			calls := map[api.CallID]*callStats{}
			threads := map[uint32]int{}
			ledger := memory.NewLedger()
			var first, last uint64
			for p, err := range r.Packets() {
				if err != nil {
					return err
				}
				if r.Count() == 1 {
					first = p.Entry
				}
				if p.Exit > last {
					last = p.Exit
				}
				s, ok := calls[p.CallID]
				if !ok {
					s = &callStats{}
					calls[p.CallID] = s
				}
				s.count++
				s.bytes += uint64(p.Size)
				s.ticks += p.Exit - p.Entry
				threads[p.Thread]++

				switch c := p.Call.(type) {
				case *api.VkAllocateMemory:
					if !c.Result.Failed() && c.AllocateInfo != nil {
						ledger.Insert(c.Memory, c.AllocateInfo.AllocationSize)
					}
				case *api.VkFreeMemory:
					ledger.Remove(c.Memory)
				}
			}

			ids := make([]api.CallID, 0, len(calls))
			for id := range calls {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Packets:  %d\n", r.Count())
			fmt.Fprintf(out, "Threads:  %d\n", len(threads))
			fmt.Fprintf(out, "Duration: %v\n\n", time.Duration(last-first))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "Call\tCount\tBytes\tTime\t")
			for _, id := range ids {
				s := calls[id]
				fmt.Fprintf(w, "%v\t%d\t%d\t%v\t\n", id, s.count, s.bytes, time.Duration(s.ticks))
			}
			w.Flush()

			m := ledger.Stats()
			fmt.Fprintf(out, "\nMemory: %d allocations, %d frees, %d live (%d bytes), peak %d bytes\n",
				m.Allocations, m.Frees, m.Live, m.Bytes, m.PeakBytes)
			return nil
		},
	}
}
