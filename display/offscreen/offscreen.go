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

// Package offscreen is a display backend without a window system. Windows
// are images held in memory.
package offscreen

import (
	"context"
	"image"
	"image/draw"
	"sync"

	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/pkg/errors"
)

// Name is the name the backend is registered as.
const Name = "offscreen"

func init() {
	display.Register(Name, func(ctx context.Context) (display.Shim, error) { return New(), nil })
}

// Window is an in-memory window.
type Window struct {
	native uint64

	mu  sync.Mutex
	img *image.RGBA
}

// Native implements display.Window.
func (w *Window) Native() uint64 { return w.native }

// Size implements display.Window.
func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.img.Bounds()
	return b.Dx(), b.Dy()
}

// Draw composites src over the window contents.
func (w *Window) Draw(src image.Image) {
	w.mu.Lock()
	defer w.mu.Unlock()
	draw.Draw(w.img, w.img.Bounds(), src, src.Bounds().Min, draw.Over)
}

func (w *Window) snapshot() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := image.NewRGBA(w.img.Bounds())
	copy(out.Pix, w.img.Pix)
	return out
}

// Shim is the offscreen display.Shim.
type Shim struct {
	display.Control

	mu      sync.Mutex
	windows []*Window
	events  int
	closed  bool
}

var (
	_ display.Shim    = &Shim{}
	_ display.Grabber = &Shim{}
)

// New returns a new offscreen shim.
func New() *Shim { return &Shim{} }

// CreateWindow implements display.Shim.
func (s *Shim) CreateWindow(width, height int) (display.Window, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("Invalid window size %dx%d", width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, display.ErrClosed
	}
	w := &Window{
		native: uint64(len(s.windows) + 1),
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	s.windows = append(s.windows, w)
	return w, nil
}

// Resize implements display.Shim. The window contents are cleared.
func (s *Shim) Resize(width, height int) error {
	w, err := s.current()
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return errors.Errorf("Invalid window size %dx%d", width, height)
	}
	w.mu.Lock()
	w.img = image.NewRGBA(image.Rect(0, 0, width, height))
	w.mu.Unlock()
	return nil
}

// ProcessPlatformEvents implements display.Shim. There are no platform
// events; the calls are counted.
func (s *Shim) ProcessPlatformEvents() {
	s.mu.Lock()
	s.events++
	s.mu.Unlock()
}

// Events returns the number of ProcessPlatformEvents calls.
func (s *Shim) Events() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// Windows returns the windows created so far.
func (s *Shim) Windows() []*Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Window(nil), s.windows...)
}

// Grab implements display.Grabber, returning a copy of the most recently
// created window.
func (s *Shim) Grab() (image.Image, error) {
	w, err := s.current()
	if err != nil {
		return nil, err
	}
	return w.snapshot(), nil
}

// Close implements display.Shim.
func (s *Shim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.windows = nil
	return nil
}

func (s *Shim) current() (*Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return nil, display.ErrClosed
	case len(s.windows) == 0:
		return nil, errors.New("No window created")
	}
	return s.windows[len(s.windows)-1], nil
}
