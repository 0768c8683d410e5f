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

package display

import (
	"context"
	"sync"

	"github.com/LunarG/VulkanTools-sub015/core/event/task"
)

// Control implements the pause, step and quit half of Shim. Backends embed
// it. The zero value is running.
type Control struct {
	mu      sync.Mutex
	paused  bool
	quit    bool
	steps   int
	changed task.Signal
	fire    func()
}

// Pause stops Gate from returning until Resume, Step or Quit.
func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
	c.notify()
}

// Resume clears the paused flag and any pending steps.
func (c *Control) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused, c.steps = false, 0
	c.notify()
}

// Step lets n more calls to Gate return while paused.
func (c *Control) Step(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps += n
	c.notify()
}

// Quit makes every following call to Gate return ErrQuit.
func (c *Control) Quit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quit = true
	c.notify()
}

// Paused returns true if the control is paused.
func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Gate returns nil when the next packet may be replayed, ErrQuit after Quit,
// or the context error if ctx is cancelled while paused.
func (c *Control) Gate(ctx context.Context) error {
	for {
		c.mu.Lock()
		switch {
		case c.quit:
			c.mu.Unlock()
			return ErrQuit
		case !c.paused:
			c.mu.Unlock()
			return nil
		case c.steps > 0:
			c.steps--
			c.mu.Unlock()
			return nil
		}
		if c.changed == nil {
			c.changed, c.fire = task.NewSignal()
		}
		changed := c.changed
		c.mu.Unlock()

		if !changed.Wait(ctx) {
			return task.StopReason(ctx)
		}
	}
}

// notify wakes any waiting Gate. c.mu must be held.
func (c *Control) notify() {
	if c.fire != nil {
		c.fire()
	}
	c.changed, c.fire = nil, nil
}
