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

package capture

import (
	"context"
	"sync"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/trace/api"
	"github.com/LunarG/VulkanTools-sub015/trace/memory"
)

// ThresholdCheck warns when the number of live memory objects rises above
// Limit. A warning is logged once each time the count crosses the limit.
//
// The check reads Counters after the call has passed through the layers
// below it, so it should be placed outside the capture layer:
//
//	api.Chain(base, check, capture.Layer(session))
type ThresholdCheck struct {
	Limit    int
	Counters memory.Counters

	mu       sync.Mutex
	above    bool
	warnings int
}

var _ api.Layer = &ThresholdCheck{}

// Warnings returns the number of warnings logged so far.
func (c *ThresholdCheck) Warnings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warnings
}

// Wrap implements api.Layer. Only the memory family is intercepted.
func (c *ThresholdCheck) Wrap(next api.Table) api.Table {
	next.Memory = thresholdFuncs{c, next.Memory}
	return next
}

func (c *ThresholdCheck) check(ctx context.Context) {
	stats := c.Counters.Stats()
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case stats.Live > c.Limit && !c.above:
		c.above = true
		c.warnings++
		log.W(log.V{"live": stats.Live, "limit": c.Limit, "bytes": stats.Bytes}.Bind(ctx),
			"Live memory objects above threshold")
	case stats.Live <= c.Limit:
		c.above = false
	}
}

type thresholdFuncs struct {
	c *ThresholdCheck
	api.MemoryFuncs
}

func (f thresholdFuncs) AllocateMemory(ctx context.Context, device api.Handle, info *api.MemoryAllocateInfo) (api.Handle, api.Result) {
	memory, r := f.MemoryFuncs.AllocateMemory(ctx, device, info)
	f.c.check(ctx)
	return memory, r
}

func (f thresholdFuncs) FreeMemory(ctx context.Context, device, memory api.Handle) {
	f.MemoryFuncs.FreeMemory(ctx, device, memory)
	f.c.check(ctx)
}
