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

//go:build glfw

// Package desktop is a display backend that opens GLFW windows.
//
// GLFW must be driven from the main OS thread; replay using this backend
// must run on the goroutine that called runtime.LockOSThread in main's
// init.
package desktop

import (
	"context"
	"sync"
	"unsafe"

	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// Name is the name the backend is registered as.
const Name = "desktop"

func init() {
	display.Register(Name, func(ctx context.Context) (display.Shim, error) { return New(ctx, "vktrace replay") })
}

type window struct{ w *glfw.Window }

func (w window) Native() uint64   { return uint64(uintptr(unsafe.Pointer(w.w.Handle()))) }
func (w window) Size() (int, int) { return w.w.GetSize() }

// Shim is the GLFW display.Shim. Space toggles pause, N steps one packet
// and Escape or closing the window quits.
type Shim struct {
	display.Control

	ctx   context.Context
	title string

	mu      sync.Mutex
	windows []*glfw.Window
}

var _ display.Shim = &Shim{}

// New initializes GLFW and returns a shim whose windows are titled title.
func New(ctx context.Context, title string) (*Shim, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "Initializing GLFW")
	}
	return &Shim{ctx: ctx, title: title}, nil
}

// CreateWindow implements display.Shim.
func (s *Shim) CreateWindow(width, height int) (display.Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	w, err := glfw.CreateWindow(width, height, s.title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Creating window")
	}
	w.SetKeyCallback(s.onKey)
	w.SetCloseCallback(func(*glfw.Window) { s.Quit() })
	s.mu.Lock()
	s.windows = append(s.windows, w)
	s.mu.Unlock()
	log.D(s.ctx, "Created %dx%d window", width, height)
	return window{w}, nil
}

// Resize implements display.Shim.
func (s *Shim) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.windows) == 0 {
		return errors.New("No window created")
	}
	s.windows[len(s.windows)-1].SetSize(width, height)
	return nil
}

// ProcessPlatformEvents implements display.Shim.
func (s *Shim) ProcessPlatformEvents() { glfw.PollEvents() }

// Close destroys the windows and terminates GLFW.
func (s *Shim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.windows {
		w.Destroy()
	}
	s.windows = nil
	glfw.Terminate()
	return nil
}

func (s *Shim) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeySpace:
		if s.Paused() {
			s.Resume()
		} else {
			s.Pause()
		}
	case glfw.KeyN:
		s.Step(1)
	case glfw.KeyEscape:
		s.Quit()
	}
}
