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

package offscreen_test

import (
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/LunarG/VulkanTools-sub015/core/assert"
	"github.com/LunarG/VulkanTools-sub015/core/log"
	"github.com/LunarG/VulkanTools-sub015/display"
	"github.com/LunarG/VulkanTools-sub015/display/offscreen"
)

func TestRegistered(t *testing.T) {
	ctx := log.Testing(t)
	assert.For(ctx, "backends").ThatSlice(display.Backends()).Equals([]string{offscreen.Name})
	s, err := display.New(ctx, offscreen.Name)
	assert.For(ctx, "New").ThatError(err).Succeeded()
	assert.For(ctx, "shim").That(s).IsNotNil()
}

func TestWindow(t *testing.T) {
	ctx := log.Testing(t)
	s := offscreen.New()
	_, err := s.CreateWindow(0, 10)
	assert.For(ctx, "empty").ThatError(err).Failed()

	w, err := s.CreateWindow(32, 16)
	assert.For(ctx, "create").ThatError(err).Succeeded()
	assert.For(ctx, "native").That(w.Native()).Equals(uint64(1))
	assert.For(ctx, "resize").ThatError(s.Resize(8, 4)).Succeeded()
	width, height := w.Size()
	assert.For(ctx, "width").ThatInteger(width).Equals(8)
	assert.For(ctx, "height").ThatInteger(height).Equals(4)

	s.ProcessPlatformEvents()
	s.ProcessPlatformEvents()
	assert.For(ctx, "events").ThatInteger(s.Events()).Equals(2)

	assert.For(ctx, "close").ThatError(s.Close()).Succeeded()
	_, err = s.CreateWindow(8, 8)
	assert.For(ctx, "closed").ThatError(err).Equals(display.ErrClosed)
}

func TestFrames(t *testing.T) {
	ctx := log.Testing(t)
	s := offscreen.New()
	_, err := s.Grab()
	assert.For(ctx, "no window").ThatError(err).Failed()

	w, _ := s.CreateWindow(4, 4)
	red := image.NewUniform(color.RGBA{R: 0xff, A: 0xff})
	w.(*offscreen.Window).Draw(red)
	img, err := s.Grab()
	assert.For(ctx, "grab").ThatError(err).Succeeded()

	dir := offscreen.PNGDir(t.TempDir())
	assert.For(ctx, "write").ThatError(dir.WriteFrame(ctx, 3, img)).Succeeded()
	_, err = os.Stat(dir.Path(3))
	assert.For(ctx, "stat").ThatError(err).Succeeded()

	got, err := offscreen.ReadPNG(dir.Path(3))
	assert.For(ctx, "read").ThatError(err).Succeeded()
	assert.For(ctx, "round trip").ThatBoolean(display.Compare(img, got).Equal()).IsTrue()
	blank := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.For(ctx, "differs").ThatInteger(display.Compare(blank, got).Pixels).Equals(16)
}
