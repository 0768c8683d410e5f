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

// Package display isolates the platform window system from replay.
//
// A Shim creates the window that replayed surfaces are presented to, pumps
// platform events once per present and carries the pause, step and quit
// flags an operator uses to drive replay interactively.
package display

import (
	"context"
	"image"
	"sort"
	"sync"

	"github.com/LunarG/VulkanTools-sub015/core/fault"
	"github.com/pkg/errors"
)

const (
	// ErrQuit is returned by Gate once Quit has been called.
	ErrQuit = fault.Const("Replay quit")
	// ErrClosed is returned when a closed shim is used.
	ErrClosed = fault.Const("Display closed")
)

// Window is a platform window created by a Shim.
type Window interface {
	// Native returns the platform handle of the window, as recorded in a
	// surface create info.
	Native() uint64
	// Size returns the current size of the window in pixels.
	Size() (width, height int)
}

// Shim is the contract between the replay engine and a windowing backend.
type Shim interface {
	// CreateWindow creates a window of the given size.
	CreateWindow(width, height int) (Window, error)
	// Resize changes the size of the most recently created window.
	Resize(width, height int) error
	// ProcessPlatformEvents polls pending platform events without blocking.
	ProcessPlatformEvents()

	Pause()
	Resume()
	// Step releases n packets while paused.
	Step(n int)
	Quit()
	// Gate is called between packets. It blocks while paused and returns
	// ErrQuit after Quit.
	Gate(ctx context.Context) error

	Close() error
}

// Grabber is implemented by shims that can read back the presented image.
type Grabber interface {
	Grab() (image.Image, error)
}

// FrameSink receives the images grabbed after each present.
type FrameSink interface {
	WriteFrame(ctx context.Context, frame int, img image.Image) error
}

// Factory creates a Shim.
type Factory func(ctx context.Context) (Shim, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register makes a backend available by name. It panics if name is already
// registered.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("display: backend " + name + " registered twice")
	}
	registry[name] = f
}

// Backends returns the names of the registered backends.
func Backends() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// New creates the backend registered as name.
func New(ctx context.Context, name string) (Shim, error) {
	registryMu.Lock()
	f, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, errors.Errorf("Unknown display backend %q (available: %v)", name, Backends())
	}
	return f(ctx)
}
